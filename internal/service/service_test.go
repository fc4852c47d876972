package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skotchmaster/storefront/internal/access"
	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/ratelimit"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/testutil"
)

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (f *fakeNotifier) Enqueue(msg notify.Message) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
	return true
}

type published struct {
	topic, key string
	event      any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (f *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, published{topic: topic, key: key, event: event})
	return f.err
}

type failingOrders struct{ OrderRepository }

func (failingOrders) CreateOrder(context.Context, *models.Order) error {
	return errors.New("pq: connection refused")
}

type brokenCatalog struct{}

func (brokenCatalog) FindProductByID(context.Context, string) (*models.Product, error) {
	return nil, errors.New("es: timeout")
}

type env struct {
	repo     *repo.GormRepo
	sessions *session.MemoryStore
	hasher   hash.Hasher
	notifier *fakeNotifier
	events   *fakePublisher
	auth     *AuthService
	orders   *OrderService
	contacts *ContactService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	r := &repo.GormRepo{DB: testutil.NewDB(t)}
	sessions := session.NewMemoryStore()
	hasher := hash.New(bcrypt.MinCost)
	gate := access.NewGate(sessions)
	notifier := &fakeNotifier{}
	events := &fakePublisher{}
	limiter := ratelimit.Exempt(ratelimit.NewMemoryLimiter(ratelimit.LoginPolicy), ratelimit.HealthCheckIdentity)

	return &env{
		repo:     r,
		sessions: sessions,
		hasher:   hasher,
		notifier: notifier,
		events:   events,
		auth:     NewAuthService(r, sessions, hasher, limiter, events),
		orders: &OrderService{
			Gate:     gate,
			Orders:   r,
			Catalog:  r,
			Accounts: r,
			Hasher:   hasher,
			Notifier: notifier,
			Events:   events,
		},
		contacts: &ContactService{Gate: gate, Contacts: r},
	}
}

// login signs up a fresh account and returns its session token.
func (e *env) login(t *testing.T, email string, admin bool) string {
	t.Helper()
	ctx := context.Background()

	acc, err := e.auth.Signup(ctx, SignupInput{Name: "Alice", Email: email, Password: "secret1"})
	require.NoError(t, err)
	if admin {
		require.NoError(t, e.repo.DB.Model(acc).Update("is_admin", true).Error)
	}

	res, err := e.auth.Login(ctx, "127.0.0.1", email, "secret1")
	require.NoError(t, err)
	return res.Token
}

func (e *env) orderCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.repo.DB.Model(&models.Order{}).Count(&n).Error)
	return n
}
