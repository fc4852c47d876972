// Package access decides whether a session token may reach a protected
// operation.
package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/storefront/internal/apperr"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/session"
)

const (
	MsgNotLoggedIn = "Not logged in"
	MsgAdminsOnly  = "Access denied: Admins only"
)

// Gate only reads the session store.
type Gate struct {
	Sessions session.Store
}

func NewGate(s session.Store) *Gate {
	return &Gate{Sessions: s}
}

func (g *Gate) RequireAuthenticated(ctx context.Context, token string) (*session.Record, error) {
	if token == "" {
		return nil, apperr.New(apperr.ErrUnauthorized, MsgNotLoggedIn)
	}

	rec, err := g.Sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, apperr.New(apperr.ErrUnauthorized, MsgNotLoggedIn)
		}
		logging.FromContext(ctx).With("svc", "access").Error("session_lookup", "status", "failed", "error", err)
		return nil, fmt.Errorf("access: load session: %w", errors.Join(apperr.ErrInternal, err))
	}
	return rec, nil
}

func (g *Gate) RequireAdmin(ctx context.Context, token string) (*session.Record, error) {
	rec, err := g.RequireAuthenticated(ctx, token)
	if err != nil {
		return nil, err
	}
	if !rec.IsAdmin {
		return nil, apperr.New(apperr.ErrForbidden, MsgAdminsOnly)
	}
	return rec, nil
}
