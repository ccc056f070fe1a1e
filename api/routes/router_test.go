package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/counterline/counterline-backend/api/middleware"
	"github.com/counterline/counterline-backend/internal/cart"
	"github.com/counterline/counterline-backend/internal/orders"
	pkgAuth "github.com/counterline/counterline-backend/pkg/auth"
	"github.com/counterline/counterline-backend/pkg/auth/session"
	"github.com/counterline/counterline-backend/pkg/config"
	"github.com/counterline/counterline-backend/pkg/enums"
	"github.com/counterline/counterline-backend/pkg/logger"
	"github.com/counterline/counterline-backend/pkg/metrics"
	"github.com/counterline/counterline-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubSessions struct{}

func (stubSessions) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type fakeRedis struct {
	mu     sync.Mutex
	values map[string]string
	hits   map[string]int64
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, hits: map[string]int64{}}
}

func (f *fakeRedis) Ping(context.Context) error { return nil }

func (f *fakeRedis) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	switch v := value.(type) {
	case string:
		f.values[key] = v
	case []byte:
		f.values[key] = string(v)
	}
	return true, nil
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.values, k)
	}
	return nil
}

func (f *fakeRedis) IdempotencyKey(scope, id string) string { return "idem:" + scope + ":" + id }

func (f *fakeRedis) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits[scope]++
	return f.hits[scope] <= limit, f.hits[scope], nil
}

type stubCart struct{ cart.Service }

func (stubCart) ViewEnriched(ctx context.Context, userID uuid.UUID) (*cart.EnrichedCart, error) {
	return &cart.EnrichedCart{Items: []cart.EnrichedCartLine{}}, nil
}

type stubOrders struct {
	orders.Service

	mu     sync.Mutex
	placed int
}

func (s *stubOrders) PlaceOrder(ctx context.Context, userID uuid.UUID, orderType string) (*orders.OrderDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.placed++
	return &orders.OrderDTO{ID: uuid.New(), UserID: userID, TokenNumber: "001"}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60},
		AuthRateLimit: config.AuthRateLimitConfig{
			LoginWindow:        time.Minute,
			LoginUserNameLimit: 2,
			LoginIPLimit:       100,
			OTPWindow:          time.Minute,
			OTPPhoneLimit:      2,
			OTPIPLimit:         100,
		},
		Orders: config.OrdersConfig{IdempotencyTTL: time.Hour},
	}
}

type testRouter struct {
	handler http.Handler
	orders  *stubOrders
	reg     *prometheus.Registry
}

func newTestRouter(t *testing.T, cfg *config.Config) testRouter {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	reg := prometheus.NewRegistry()
	ord := &stubOrders{}
	handler := NewRouter(
		cfg,
		logg,
		stubPinger{},
		newFakeRedis(),
		stubSessions{},
		reg,
		metrics.NewHTTPMetrics(reg),
		Services{Cart: stubCart{}, Orders: ord},
	)
	return testRouter{handler: handler, orders: ord, reg: reg}
}

func buildToken(t *testing.T, cfg *config.Config, role enums.Role, subject uuid.UUID) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		SubjectID: subject,
		Role:      role,
		JTI:       session.NewAccessID(),
	})
	require.NoError(t, err)
	return token
}

func serve(h http.Handler, method, path, token, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	tr := newTestRouter(t, testConfig())

	assert.Equal(t, http.StatusOK, serve(tr.handler, http.MethodGet, "/health/live", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(tr.handler, http.MethodGet, "/health/ready", "", "").Code)

	rec := serve(tr.handler, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestCartRequiresUserRole(t *testing.T) {
	cfg := testConfig()
	tr := newTestRouter(t, cfg)

	assert.Equal(t, http.StatusUnauthorized, serve(tr.handler, http.MethodPost, "/api/v1/cart/listingCarts", "", "").Code)

	clientToken := buildToken(t, cfg, enums.RoleClient, uuid.New())
	assert.Equal(t, http.StatusForbidden, serve(tr.handler, http.MethodPost, "/api/v1/cart/listingCarts", clientToken, "").Code)

	userToken := buildToken(t, cfg, enums.RoleUser, uuid.New())
	assert.Equal(t, http.StatusOK, serve(tr.handler, http.MethodPost, "/api/v1/cart/listingCarts", userToken, "").Code)
}

func TestClientRoutesRejectUsers(t *testing.T) {
	cfg := testConfig()
	tr := newTestRouter(t, cfg)
	userToken := buildToken(t, cfg, enums.RoleUser, uuid.New())

	for _, path := range []string{
		"/api/v1/category/create",
		"/api/v1/item/listingItems",
		"/api/v1/banner/listing",
		"/api/v1/order/fetchTotal",
		"/api/v1/order/updateOrderStatus/" + uuid.NewString(),
	} {
		rec := serve(tr.handler, http.MethodPost, path, userToken, "{}")
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
	}
}

func TestOrderCreateReplaysIdempotencyKey(t *testing.T) {
	cfg := testConfig()
	tr := newTestRouter(t, cfg)
	userToken := buildToken(t, cfg, enums.RoleUser, uuid.New())
	body := `{"orderType":"Parcel"}`

	first := serve(tr.handler, http.MethodPost, "/api/v1/order/create", userToken, body, middleware.IdempotencyHeader, "k-1")
	require.Equal(t, http.StatusCreated, first.Code)

	second := serve(tr.handler, http.MethodPost, "/api/v1/order/create", userToken, body, middleware.IdempotencyHeader, "k-1")
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, tr.orders.placed)

	third := serve(tr.handler, http.MethodPost, "/api/v1/order/create", userToken, body)
	assert.Equal(t, http.StatusCreated, third.Code)
	assert.Equal(t, 2, tr.orders.placed)
	otherToken := buildToken(t, cfg, enums.RoleUser, uuid.New())
	fourth := serve(tr.handler, http.MethodPost, "/api/v1/order/create", otherToken, body, middleware.IdempotencyHeader, "k-1")
	assert.Equal(t, http.StatusCreated, fourth.Code)
	assert.NotEqual(t, first.Body.String(), fourth.Body.String())
	assert.Equal(t, 3, tr.orders.placed)
}

func TestLoginIsRateLimitedPerUserName(t *testing.T) {
	cfg := testConfig()
	tr := newTestRouter(t, cfg)
	body := `{"userName":"Owner","password":"pw"}`

	for i := 0; i < 2; i++ {
		rec := serve(tr.handler, http.MethodPost, "/api/v1/client/login", "", body)
		assert.NotEqual(t, http.StatusTooManyRequests, rec.Code)
	}
	rec := serve(tr.handler, http.MethodPost, "/api/v1/client/login", "", `{"userName":" owner ","password":"pw"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
