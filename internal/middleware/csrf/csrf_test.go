package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(cfg Config) *echo.Echo {
	e := echo.New()
	e.Use(Middleware(cfg))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/form", ok)
	e.POST("/orders", ok)
	e.POST("/auth/login", ok)
	return e
}

func fetchToken(t *testing.T, e *echo.Echo) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/form", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "XSRF-TOKEN" {
			assert.Equal(t, ck.Value, rec.Header().Get("X-CSRF-Token"))
			return ck
		}
	}
	t.Fatal("csrf cookie not set")
	return nil
}

func post(e *echo.Echo, path, origin, header string, ck *http.Cookie) int {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.Host = "shop.local"
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if header != "" {
		req.Header.Set("X-CSRF-Token", header)
	}
	if ck != nil {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code
}

func TestMiddleware(t *testing.T) {
	e := newServer(Config{SkipPaths: []string{"/auth/login"}, TrustedOrigins: []string{"http://localhost:3000"}})
	ck := fetchToken(t, e)

	assert.Equal(t, http.StatusOK, post(e, "/orders", "http://shop.local", ck.Value, ck))
	assert.Equal(t, http.StatusOK, post(e, "/orders", "http://localhost:3000", ck.Value, ck))
	assert.Equal(t, http.StatusForbidden, post(e, "/orders", "http://shop.local", "", ck))
	assert.Equal(t, http.StatusForbidden, post(e, "/orders", "http://shop.local", "wrong", ck))
	assert.Equal(t, http.StatusForbidden, post(e, "/orders", "http://evil.example", ck.Value, ck))
	assert.Equal(t, http.StatusForbidden, post(e, "/orders", "", ck.Value, ck))

	// skipped paths are not checked
	assert.Equal(t, http.StatusOK, post(e, "/auth/login", "", "", nil))
}
