package httpserver

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/storefront/internal/access"
	"github.com/Skotchmaster/storefront/internal/handlers"
	"github.com/Skotchmaster/storefront/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/storefront/internal/middleware/logging"
	"github.com/Skotchmaster/storefront/internal/ratelimit"
)

const HealthPath = "/health"

type Deps struct {
	AuthHandler    *handlers.AuthHandler
	OrderHandler   *handlers.OrderHandler
	ContactHandler *handlers.ContactHandler
	Access         *access.Middleware
}

type Options struct {
	Logger        *slog.Logger
	CORSOrigins   []string
	GlobalLimiter ratelimit.Limiter
	// CSRF is nil when protection is disabled.
	CSRF *csrf.Config
	// TrustedProxies are the peers allowed to set X-Forwarded-For. Empty
	// means the socket address is the client address.
	TrustedProxies []*net.IPNet
}

// ParseProxies parses TRUSTED_PROXIES entries. A bare IP is a single-host range.
func ParseProxies(values []string) ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(values))
	for _, v := range values {
		if ip := net.ParseIP(v); ip != nil {
			bits := 8 * net.IPv6len
			if ip4 := ip.To4(); ip4 != nil {
				ip, bits = ip4, 8*net.IPv4len
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(v)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", v, err)
		}
		nets = append(nets, n)
	}
	return nets, nil
}

// IPExtractor decides what c.RealIP returns. Forwarded headers are only
// honoured when they arrive from a listed proxy.
func IPExtractor(proxies []*net.IPNet) echo.IPExtractor {
	if len(proxies) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, n := range proxies {
		opts = append(opts, echo.TrustIPRange(n))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

// Use installs the global middleware chain.
func Use(e *echo.Echo, o Options) {
	e.IPExtractor = IPExtractor(o.TrustedProxies)
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	if o.Logger != nil {
		e.Use(loggingmw.RequestLogger(o.Logger))
	}
	if len(o.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     o.CORSOrigins,
			AllowCredentials: true,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAccept, "X-CSRF-Token"},
		}))
	}
	if o.GlobalLimiter != nil {
		e.Use(ratelimit.Middleware(o.GlobalLimiter, HealthPath))
	}
	if o.CSRF != nil {
		cfg := *o.CSRF
		cfg.SkipPaths = append(cfg.SkipPaths, HealthPath, "/auth/signup", "/auth/login")
		cfg.TrustedOrigins = append(cfg.TrustedOrigins, o.CORSOrigins...)
		e.Use(csrf.Middleware(cfg))
	}
}

func Register(e *echo.Echo, d *Deps) {
	e.GET(HealthPath, func(c echo.Context) error { return c.String(http.StatusOK, "OK") })

	auth := e.Group("/auth")

	auth.POST("/signup", d.AuthHandler.Signup)
	auth.POST("/login", d.AuthHandler.Login)
	auth.GET("/logout", d.AuthHandler.Logout)
	auth.GET("/me", d.AuthHandler.Me)
	auth.GET("/user-info", d.AuthHandler.UserInfo)
	auth.POST("/contact", d.ContactHandler.Save)
	auth.GET("/mycontacts", d.ContactHandler.Mine, d.Access.RequireAuth)

	orders := e.Group("/orders")

	orders.POST("", d.OrderHandler.Place)
	orders.GET("/mine", d.OrderHandler.Mine, d.Access.RequireAuth)

	admin := e.Group("/admin", d.Access.RequireAdmin)

	admin.GET("/orders", d.OrderHandler.All)
}
