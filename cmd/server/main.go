package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/storefront/internal/access"
	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/es"
	"github.com/Skotchmaster/storefront/internal/handlers"
	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/csrf"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/ratelimit"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/tokens"
	httpserver "github.com/Skotchmaster/storefront/internal/transport/http"
)

const (
	sessionPurgeInterval = 15 * time.Minute
	limiterSweepInterval = time.Minute
	shutdownTimeout      = 10 * time.Second
)

func fatal(l *slog.Logger, msg string, err error) {
	l.Error(msg, "error", err)
	os.Exit(1)
}

func main() {
	cfg := config.Load()
	config.MustNonEmptyBytes(cfg.SessionSecret, "SESSION_SECRET")
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustOneOf(cfg.SessionBackend, "SESSION_BACKEND", config.BackendDatabase, config.BackendRedis, config.BackendMemory)
	config.MustOneOf(cfg.RateLimitBackend, "RATE_LIMIT_BACKEND", config.BackendMemory, config.BackendRedis)
	config.MustOneOf(cfg.CatalogBackend, "CATALOG_BACKEND", config.BackendDatabase, config.BackendES)

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		fatal(logger, "db_open", err)
	}
	if err := db.Migrate(gdb); err != nil {
		fatal(logger, "db_migrate", err)
	}
	store := &repo.GormRepo{DB: gdb}

	var rdb *redis.Client
	if cfg.SessionBackend == config.BackendRedis || cfg.RateLimitBackend == config.BackendRedis {
		config.MustNonEmpty(cfg.RedisAddr, "REDIS_ADDR")
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			fatal(logger, "redis_ping", err)
		}
	}

	var sessions session.Store
	switch cfg.SessionBackend {
	case config.BackendRedis:
		sessions = session.NewRedisStore(rdb)
	case config.BackendMemory:
		sessions = session.NewMemoryStore()
	default:
		gs := session.NewGormStore(gdb)
		go gs.RunJanitor(ctx, sessionPurgeInterval, logger.With("svc", "session"))
		sessions = gs
	}

	newLimiter := func(name string, p ratelimit.Policy) ratelimit.Limiter {
		if cfg.RateLimitBackend == config.BackendRedis {
			return ratelimit.Exempt(ratelimit.NewRedisLimiter(rdb, name, p), ratelimit.HealthCheckIdentity)
		}
		ml := ratelimit.NewMemoryLimiter(p)
		go ml.RunSweeper(ctx, limiterSweepInterval)
		return ratelimit.Exempt(ml, ratelimit.HealthCheckIdentity)
	}

	var events service.EventPublisher
	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = mykafka.NewProducer(cfg.KafkaBrokers, logger)
		if err != nil {
			fatal(logger, "kafka_producer", err)
		}
		events = producer
	}

	var catalog service.ProductCatalog = store
	if cfg.CatalogBackend == config.BackendES {
		config.MustNonEmpty(cfg.ESURL, "ES_URL")
		esClient, err := es.NewClient(ctx, cfg, logger)
		if err != nil {
			fatal(logger, "es_connect", err)
		}
		catalog = &es.Catalog{ES: esClient, Index: cfg.ESProductIndex}
	}

	var sender notify.Sender = notify.LogSender{Log: logger}
	if cfg.SESVerifiedEmail != "" {
		ses, err := notify.NewSESSender(ctx, notify.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
			Endpoint:        cfg.SESEndpoint,
			From:            cfg.SESVerifiedEmail,
		})
		if err != nil {
			fatal(logger, "ses_client", err)
		}
		sender = ses
	}
	dispatcher := notify.NewDispatcher(sender, cfg.NotifyWorkers, cfg.NotifyQueue, cfg.NotifyTimeout, logger)

	hasher := hash.New(cfg.BcryptCost)
	gate := access.NewGate(sessions)
	cookies := tokens.NewCodec(cfg.SessionSecret, cfg.CookieSecure, session.TTL)

	e := echo.New()
	e.HideBanner = true

	proxies, err := httpserver.ParseProxies(cfg.TrustedProxies)
	if err != nil {
		fatal(logger, "config_trusted_proxies", err)
	}

	opts := httpserver.Options{
		Logger:         logger,
		CORSOrigins:    config.CSV(cfg.CORSOrigin),
		GlobalLimiter:  newLimiter("global", ratelimit.GlobalPolicy),
		TrustedProxies: proxies,
	}
	if cfg.CSRFEnabled {
		c := csrf.DefaultConfig()
		c.Secure = cfg.CookieSecure
		opts.CSRF = &c
	}
	httpserver.Use(e, opts)

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &handlers.AuthHandler{
			Auth:    service.NewAuthService(store, sessions, hasher, newLimiter("login", ratelimit.LoginPolicy), events),
			Cookies: cookies,
		},
		OrderHandler: &handlers.OrderHandler{
			Orders: &service.OrderService{
				Gate:     gate,
				Orders:   store,
				Catalog:  catalog,
				Accounts: store,
				Hasher:   hasher,
				Notifier: dispatcher,
				Events:   events,
			},
			Cookies: cookies,
		},
		ContactHandler: &handlers.ContactHandler{
			Contacts: &service.ContactService{Gate: gate, Contacts: store},
			Cookies:  cookies,
		},
		Access: &access.Middleware{Gate: gate, Tokens: cookies},
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown", "status", "started")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "component", "http", "error", err)
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Error("shutdown", "component", "notify", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("shutdown", "component", "kafka", "error", err)
		}
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("shutdown", "component", "redis", "error", err)
		}
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("shutdown", "component", "db", "error", err)
	}

	logger.Info("shutdown", "status", "complete")
}
