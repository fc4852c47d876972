// Package session keeps server-side login sessions keyed by an opaque token.
//
// Sessions live for a fixed TTL counted from creation; lookups never extend
// them. Every Store implementation is safe for concurrent use.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
)

const TTL = 24 * time.Hour

var ErrNotFound = errors.New("session not found")

type Record struct {
	Token     string    `json:"-"`
	AccountID uuid.UUID `json:"account_id"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (r *Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

type Store interface {
	Create(ctx context.Context, accountID uuid.UUID, name string, isAdmin bool) (*Record, error)
	// Get returns ErrNotFound for unknown and expired tokens.
	Get(ctx context.Context, token string) (*Record, error)
	// Destroy is a no-op for unknown tokens.
	Destroy(ctx context.Context, token string) error
}

func newRecord(accountID uuid.UUID, name string, isAdmin bool, now time.Time) (*Record, error) {
	token, err := newToken(32)
	if err != nil {
		return nil, err
	}
	return &Record{
		Token:     token,
		AccountID: accountID,
		Name:      name,
		IsAdmin:   isAdmin,
		CreatedAt: now,
		ExpiresAt: now.Add(TTL),
	}, nil
}

func newToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
