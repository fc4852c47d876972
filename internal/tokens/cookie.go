// Package tokens signs the session cookie. The cookie carries a short HS256
// JWT whose jti is the opaque session token; the session itself lives in a
// session.Store.
package tokens

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const CookieName = "sid"

type Codec struct {
	Secret []byte
	Secure bool
	Name   string
	MaxAge time.Duration
}

func NewCodec(secret []byte, secure bool, maxAge time.Duration) *Codec {
	return &Codec{Secret: secret, Secure: secure, Name: CookieName, MaxAge: maxAge}
}

func (c *Codec) name() string {
	if c.Name == "" {
		return CookieName
	}
	return c.Name
}

// Sign returns the compact JWT for a session token.
func (c *Codec) Sign(token string, exp time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        token,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.Secret)
}

// Parse verifies the signature and expiry and returns the session token.
func (c *Codec) Parse(signed string) (string, error) {
	var claims jwt.RegisteredClaims
	tkn, err := jwt.ParseWithClaims(signed, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return c.Secret, nil
	})
	if err != nil {
		return "", err
	}
	if !tkn.Valid || claims.ID == "" {
		return "", errors.New("invalid session cookie")
	}
	return claims.ID, nil
}

func (c *Codec) Issue(token string, exp time.Time) (*http.Cookie, error) {
	signed, err := c.Sign(token, exp)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     c.name(),
		Value:    signed,
		Path:     "/",
		Expires:  exp,
		MaxAge:   int(c.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

func (c *Codec) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     c.name(),
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Token extracts the session token from the request cookie. A missing,
// tampered or expired cookie yields "".
func (c *Codec) Token(r *http.Request) string {
	ck, err := r.Cookie(c.name())
	if err != nil || ck.Value == "" {
		return ""
	}
	token, err := c.Parse(ck.Value)
	if err != nil {
		return ""
	}
	return token
}
