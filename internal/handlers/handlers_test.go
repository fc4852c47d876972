package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skotchmaster/storefront/internal/access"
	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/ratelimit"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

type testHandlers struct {
	repo    *repo.GormRepo
	auth    *AuthHandler
	orders  *OrderHandler
	contact *ContactHandler
}

func setup(t *testing.T) *testHandlers {
	t.Helper()

	r := &repo.GormRepo{DB: testutil.NewDB(t)}
	sessions := session.NewMemoryStore()
	hasher := hash.New(bcrypt.MinCost)
	gate := access.NewGate(sessions)
	cookies := tokens.NewCodec([]byte("handler-test-secret"), false, session.TTL)
	limiter := ratelimit.Exempt(ratelimit.NewMemoryLimiter(ratelimit.LoginPolicy), ratelimit.HealthCheckIdentity)

	return &testHandlers{
		repo: r,
		auth: &AuthHandler{
			Auth:    service.NewAuthService(r, sessions, hasher, limiter, nil),
			Cookies: cookies,
		},
		orders: &OrderHandler{
			Orders:  &service.OrderService{Gate: gate, Orders: r, Catalog: r, Accounts: r, Hasher: hasher},
			Cookies: cookies,
		},
		contact: &ContactHandler{
			Contacts: &service.ContactService{Gate: gate, Contacts: r},
			Cookies:  cookies,
		},
	}
}

func jsonContext(method, target string, payload any, cookies ...*http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	bodyBytes, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, target, bytes.NewReader(bodyBytes))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func requireHTTPError(t *testing.T, err error, code int, msg string) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, code, he.Code)
	if msg != "" {
		require.Equal(t, msg, he.Message)
	}
}

func (h *testHandlers) signupAndLogin(t *testing.T, email string) *http.Cookie {
	t.Helper()

	c, rec := jsonContext(http.MethodPost, "/auth/signup", map[string]string{
		"name": "Alice", "email": email, "password": "secret1",
	})
	require.NoError(t, h.auth.Signup(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = jsonContext(http.MethodPost, "/auth/login", map[string]string{
		"email": email, "password": "secret1",
	})
	require.NoError(t, h.auth.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	for _, ck := range rec.Result().Cookies() {
		if ck.Name == tokens.CookieName {
			return ck
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestSignup(t *testing.T) {
	h := setup(t)
	payload := map[string]string{"name": "Alice", "email": "a@x.com", "password": "secret1"}

	c, rec := jsonContext(http.MethodPost, "/auth/signup", payload)
	require.NoError(t, h.auth.Signup(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Signup successful", body["message"])
	assert.Empty(t, rec.Result().Cookies(), "signup must not log in")

	c, _ = jsonContext(http.MethodPost, "/auth/signup", payload)
	requireHTTPError(t, h.auth.Signup(c), http.StatusBadRequest, "User already exists")

	c, _ = jsonContext(http.MethodPost, "/auth/signup", map[string]string{"name": "B", "email": "bad", "password": "secret1"})
	requireHTTPError(t, h.auth.Signup(c), http.StatusBadRequest, "Invalid email")
}

func TestLogin(t *testing.T) {
	h := setup(t)
	ck := h.signupAndLogin(t, "a@x.com")
	assert.True(t, ck.HttpOnly)
	assert.NotEmpty(t, ck.Value)

	c, _ := jsonContext(http.MethodPost, "/auth/login", map[string]string{"email": "a@x.com", "password": "wrong-one"})
	requireHTTPError(t, h.auth.Login(c), http.StatusUnauthorized, "Invalid credentials")

	c, _ = jsonContext(http.MethodPost, "/auth/login", map[string]string{"email": "", "password": "x"})
	requireHTTPError(t, h.auth.Login(c), http.StatusBadRequest, "Enter a valid email")
}

func TestLogin_RateLimited(t *testing.T) {
	h := setup(t)
	payload := map[string]string{"email": "a@x.com", "password": "secret1"}

	for i := 0; i < 5; i++ {
		c, _ := jsonContext(http.MethodPost, "/auth/login", payload)
		requireHTTPError(t, h.auth.Login(c), http.StatusUnauthorized, "")
	}
	c, _ := jsonContext(http.MethodPost, "/auth/login", payload)
	requireHTTPError(t, h.auth.Login(c), http.StatusTooManyRequests, service.MsgTooManyLogins)
}

func TestLogin_MalformedBodiesCount(t *testing.T) {
	h := setup(t)

	for i := 0; i < 5; i++ {
		c, _ := jsonContext(http.MethodPost, "/auth/login", "not-an-object")
		requireHTTPError(t, h.auth.Login(c), http.StatusBadRequest, msgBadBody)
	}

	c, _ := jsonContext(http.MethodPost, "/auth/login", "not-an-object")
	requireHTTPError(t, h.auth.Login(c), http.StatusTooManyRequests, service.MsgTooManyLogins)

	c, _ = jsonContext(http.MethodPost, "/auth/login", map[string]string{"email": "a@x.com", "password": "secret1"})
	requireHTTPError(t, h.auth.Login(c), http.StatusTooManyRequests, service.MsgTooManyLogins)
}

func TestMeAndLogout(t *testing.T) {
	h := setup(t)
	ck := h.signupAndLogin(t, "a@x.com")

	c, rec := jsonContext(http.MethodGet, "/auth/me", nil, ck)
	require.NoError(t, h.auth.Me(c))
	var me map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.NotNil(t, me["userId"])
	assert.Equal(t, false, me["isAdmin"])

	c, rec = jsonContext(http.MethodGet, "/auth/user-info", nil, ck)
	require.NoError(t, h.auth.UserInfo(c))
	assert.JSONEq(t, `{"name":"Alice"}`, rec.Body.String())

	c, rec = jsonContext(http.MethodGet, "/auth/logout", nil, ck)
	require.NoError(t, h.auth.Logout(c))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, LoginPage, rec.Header().Get(echo.HeaderLocation))

	c, rec = jsonContext(http.MethodGet, "/auth/me", nil, ck)
	require.NoError(t, h.auth.Me(c))
	assert.JSONEq(t, `{"userId":null,"isAdmin":false}`, rec.Body.String())

	// logging out again without a session still redirects
	c, rec = jsonContext(http.MethodGet, "/auth/logout", nil)
	require.NoError(t, h.auth.Logout(c))
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestPlaceOrder(t *testing.T) {
	h := setup(t)
	ck := h.signupAndLogin(t, "a@x.com")

	c, rec := jsonContext(http.MethodPost, "/orders", map[string]string{"productId": "P1", "paymentMode": "cod"}, ck)
	require.NoError(t, h.orders.Place(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var receipt map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &receipt))
	assert.Len(t, receipt["orderId"], 9)
	assert.Equal(t, "P1", receipt["productId"])
	assert.Equal(t, "Unknown Product", receipt["productName"])
	assert.Equal(t, "cod", receipt["paymentMode"])

	c, _ = jsonContext(http.MethodPost, "/orders", map[string]string{"productId": "P1", "paymentMode": "card", "cardNumber": "4111"}, ck)
	requireHTTPError(t, h.orders.Place(c), http.StatusBadRequest, "Missing card details")

	c, _ = jsonContext(http.MethodPost, "/orders", map[string]string{"productId": "P1", "paymentMode": "bitcoin"}, ck)
	requireHTTPError(t, h.orders.Place(c), http.StatusBadRequest, "Unsupported payment mode")

	c, _ = jsonContext(http.MethodPost, "/orders", map[string]string{"productId": "P1", "paymentMode": "cod"})
	requireHTTPError(t, h.orders.Place(c), http.StatusUnauthorized, "Not logged in")

	var n int64
	require.NoError(t, h.repo.DB.Model(&models.Order{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestPlaceOrder_TamperedCookie(t *testing.T) {
	h := setup(t)
	ck := h.signupAndLogin(t, "a@x.com")
	forged := &http.Cookie{Name: ck.Name, Value: ck.Value + "x"}

	c, _ := jsonContext(http.MethodPost, "/orders", map[string]string{"productId": "P1", "paymentMode": "cod"}, forged)
	requireHTTPError(t, h.orders.Place(c), http.StatusUnauthorized, "")
}

func TestOrderListing(t *testing.T) {
	h := setup(t)
	ck := h.signupAndLogin(t, "a@x.com")

	c, _ := jsonContext(http.MethodPost, "/orders", map[string]string{"productId": "P1", "paymentMode": "upi", "upiId": "a@upi"}, ck)
	require.NoError(t, h.orders.Place(c))

	c, rec := jsonContext(http.MethodGet, "/orders/mine?page=1&size=5", nil, ck)
	require.NoError(t, h.orders.Mine(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "upi_id_hash")
	assert.NotContains(t, rec.Body.String(), "$2a$")

	var page struct {
		Orders []map[string]any `json:"orders"`
		Size   int              `json:"size"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Orders, 1)
	assert.Equal(t, 5, page.Size)

	c, _ = jsonContext(http.MethodGet, "/admin/orders", nil, ck)
	requireHTTPError(t, h.orders.All(c), http.StatusForbidden, "Access denied: Admins only")
}

func TestOrderListing_HugePage(t *testing.T) {
	h := setup(t)
	ck := h.signupAndLogin(t, "a@x.com")

	c, _ := jsonContext(http.MethodPost, "/orders", map[string]string{"productId": "P1", "paymentMode": "cod"}, ck)
	require.NoError(t, h.orders.Place(c))

	c, rec := jsonContext(http.MethodGet, "/orders/mine?page=99999999999999999999&size=100", nil, ck)
	require.NoError(t, h.orders.Mine(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Orders []map[string]any `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Empty(t, page.Orders)
}

func TestContacts(t *testing.T) {
	h := setup(t)
	ck := h.signupAndLogin(t, "a@x.com")

	c, rec := jsonContext(http.MethodPost, "/auth/contact", map[string]string{"name": "A", "email": "a@x.com", "message": "hello"}, ck)
	require.NoError(t, h.contact.Save(c))
	assert.JSONEq(t, `{"message":"Contact saved"}`, rec.Body.String())

	c, _ = jsonContext(http.MethodPost, "/auth/contact", map[string]string{"name": "A", "email": "a@x.com", "message": "hello"})
	requireHTTPError(t, h.contact.Save(c), http.StatusUnauthorized, "Not logged in")

	c, rec = jsonContext(http.MethodGet, "/auth/mycontacts", nil, ck)
	require.NoError(t, h.contact.Mine(c))
	var contacts []models.Contact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &contacts))
	require.Len(t, contacts, 1)
	assert.Equal(t, "hello", contacts[0].Message)
	assert.WithinDuration(t, time.Now(), contacts[0].CreatedAt, time.Minute)
}
