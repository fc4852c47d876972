package access

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/apperr"
	"github.com/Skotchmaster/storefront/internal/session"
)

const sessionKey = "session"

// TokenSource pulls the session token out of a request.
type TokenSource interface {
	Token(r *http.Request) string
}

type Middleware struct {
	Gate   *Gate
	Tokens TokenSource
}

type check func(ctx context.Context, token string) (*session.Record, error)

func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, m.Gate.RequireAuthenticated)
}

func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, m.Gate.RequireAdmin)
}

func (m *Middleware) require(next echo.HandlerFunc, fn check) echo.HandlerFunc {
	return func(c echo.Context) error {
		rec, err := fn(c.Request().Context(), m.Tokens.Token(c.Request()))
		if err != nil {
			return echo.NewHTTPError(apperr.HTTPStatus(err), apperr.Message(err))
		}

		c.Set(sessionKey, rec)
		return next(c)
	}
}

// SessionFrom returns the record stored by RequireAuth or RequireAdmin.
func SessionFrom(c echo.Context) (*session.Record, bool) {
	rec, ok := c.Get(sessionKey).(*session.Record)
	return rec, ok
}
