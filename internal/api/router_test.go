package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cheetahbyte/licensemgr/internal/config"
	"github.com/cheetahbyte/licensemgr/internal/handlers"
	"github.com/cheetahbyte/licensemgr/internal/handlers/dto"
	"github.com/cheetahbyte/licensemgr/internal/metrics"
	"github.com/cheetahbyte/licensemgr/internal/registry"
	"github.com/cheetahbyte/licensemgr/internal/services"
)

type testAPI struct {
	router   *chi.Mux
	registry *registry.Registry
}

func newTestAPI(t *testing.T, admin config.AdminConfig) *testAPI {
	t.Helper()

	reg := registry.New()
	m := metrics.New()
	stack := services.InitServices(reg, m, admin)

	r := chi.NewRouter()
	Register(r, handlers.New(stack, 1024), Options{RequestTimeout: time.Second, Metrics: m.Handler()})

	return &testAPI{router: r, registry: reg}
}

func (a *testAPI) do(t *testing.T, method, target, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestCreateAndList(t *testing.T) {
	a := newTestAPI(t, config.AdminConfig{})
	before := time.Now().UnixMilli()

	rec := a.do(t, http.MethodPost, "/licenses", `{"host":"game.example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	created := decode[dto.LicenseResponse](t, rec)
	assert.Len(t, created.Key, 6)
	assert.Equal(t, "game.example.com", created.Host)
	assert.InDelta(t, before+259_200_000, created.Expires, 1000)

	rec = a.do(t, http.MethodGet, "/licenses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []dto.LicenseResponse{created}, decode[[]dto.LicenseResponse](t, rec))

	rec = a.do(t, http.MethodGet, "/licenses/"+created.Key, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decode[dto.LicenseResponse](t, rec))
}

func TestListEmptyIsArray(t *testing.T) {
	a := newTestAPI(t, config.AdminConfig{})

	rec := a.do(t, http.MethodGet, "/licenses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCreateWithExpires(t *testing.T) {
	a := newTestAPI(t, config.AdminConfig{})

	rec := a.do(t, http.MethodPost, "/licenses", `{"host":"a.com","expires":4102444800000}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(4102444800000), decode[dto.LicenseResponse](t, rec).Expires)

	rec = a.do(t, http.MethodPost, "/licenses", `{"host":"b.com","expires":1.7e12}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(1_700_000_000_000), decode[dto.LicenseResponse](t, rec).Expires)

	rec = a.do(t, http.MethodPost, "/licenses", `{"host":"c.com","expires":4102444800000.75}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(4102444800000), decode[dto.LicenseResponse](t, rec).Expires)
}

func TestCreateRejectsBadBodies(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		error  string
	}{
		{"missing host", `{"expires":123}`, http.StatusInternalServerError, "No host defined in request body"},
		{"empty host", `{"host":""}`, http.StatusInternalServerError, "No host defined in request body"},
		{"malformed json", `{"host":`, http.StatusBadRequest, ""},
		{"wrong type", `{"host":42}`, http.StatusBadRequest, ""},
		{"empty body", ``, http.StatusBadRequest, ""},
		{"too large", `{"host":"` + strings.Repeat("x", 2048) + `"}`, http.StatusRequestEntityTooLarge, ""},
		{"trailing garbage", `{"host":"a.com"} not json`, http.StatusBadRequest, ""},
		{"second value", `{"host":"a.com"}{"host":"b.com"}`, http.StatusBadRequest, ""},
		{"too large after object", `{"host":"b.com"}` + strings.Repeat(" x", 4096), http.StatusRequestEntityTooLarge, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAPI(t, config.AdminConfig{})

			req := httptest.NewRequest(http.MethodPost, "/licenses", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			a.router.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.error != "" {
				assert.Equal(t, tt.error, decode[dto.ErrorResponse](t, rec).Error)
			} else {
				assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
			}
			assert.Zero(t, a.registry.Len())
		})
	}
}

func TestDelete(t *testing.T) {
	a := newTestAPI(t, config.AdminConfig{})
	lic, err := a.registry.Create("a.com", 0)
	require.NoError(t, err)

	rec := a.do(t, http.MethodDelete, "/licenses/missing", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"License not found"}`, rec.Body.String())

	rec = a.do(t, http.MethodDelete, "/licenses/"+lic.Key, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Empty(t, a.registry.List())

	rec = a.do(t, http.MethodGet, "/licenses/"+lic.Key, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidate(t *testing.T) {
	a := newTestAPI(t, config.AdminConfig{})
	live, err := a.registry.Create("a.com", 0)
	require.NoError(t, err)
	stale, err := a.registry.Create("a.com", 1000)
	require.NoError(t, err)

	tests := []struct {
		name   string
		query  string
		status int
		body   string
	}{
		{"valid", "license=" + live.Key + "&host=a.com", http.StatusOK, `{"status":"License valid"}`},
		{"wrong product", "license=" + live.Key + "&host=b.com", http.StatusForbidden, `{"error":"License for incorrect product"}`},
		{"missing host", "license=" + live.Key, http.StatusForbidden, `{"error":"License for incorrect product"}`},
		{"unknown", "license=nope&host=a.com", http.StatusForbidden, `{"error":"Invalid License"}`},
		{"padded key", "license=%20" + live.Key + "&host=a.com", http.StatusForbidden, `{"error":"Invalid License"}`},
		{"no params", "", http.StatusForbidden, `{"error":"Invalid License"}`},
		{"expired", "license=" + stale.Key + "&host=a.com", http.StatusForbidden, `{"error":"Expired License"}`},
		{"expired again", "license=" + stale.Key + "&host=a.com", http.StatusForbidden, `{"error":"Invalid License"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(t, http.MethodGet, "/validate?"+tt.query, "")
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}

	assert.Equal(t, []registry.License{live}, a.registry.List())
}

func TestCORSAndOptions(t *testing.T) {
	a := newTestAPI(t, config.AdminConfig{})

	for _, target := range []string{"/licenses", "/validate", "/does/not/exist"} {
		rec := a.do(t, http.MethodOptions, target, "")
		assert.Equal(t, http.StatusOK, rec.Code, target)
		assert.Empty(t, rec.Body.String())
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
	}

	rec := a.do(t, http.MethodGet, "/licenses", "")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestInvalidRoutes(t *testing.T) {
	a := newTestAPI(t, config.AdminConfig{})

	tests := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/"},
		{http.MethodGet, "/nothing"},
		{http.MethodPut, "/licenses"},
		{http.MethodDelete, "/licenses"},
		{http.MethodPost, "/validate"},
		{http.MethodPost, "/auth/login"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := a.do(t, tt.method, tt.target, "")
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.JSONEq(t, `{"error":"Invalid route"}`, rec.Body.String())
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	a := newTestAPI(t, config.AdminConfig{})
	_, err := a.registry.Create("a.com", 0)
	require.NoError(t, err)

	rec := a.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","licenses":1}`, rec.Body.String())

	a.do(t, http.MethodGet, "/validate?license=zzz&host=a.com", "")

	rec = a.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `licensemgr_license_validations_total{outcome="invalid"} 1`)
	assert.Contains(t, rec.Body.String(), "licensemgr_licenses_active 1")
}

func TestAdminGate(t *testing.T) {
	hash, err := services.HashPassword("hunter2")
	require.NoError(t, err)
	a := newTestAPI(t, config.AdminConfig{JWTSecret: "secret", PasswordHash: hash, TokenTTL: time.Hour})

	rec := a.do(t, http.MethodGet, "/licenses", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())

	rec = a.do(t, http.MethodGet, "/licenses", "", "Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodPost, "/auth/login", `{"password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodPost, "/auth/login", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPost, "/auth/login", `{"password":"hunter2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[dto.LoginResponse](t, rec)
	require.NotEmpty(t, login.Token)

	rec = a.do(t, http.MethodPost, "/licenses", `{"host":"a.com"}`, "Authorization", "Bearer "+login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	created := decode[dto.LicenseResponse](t, rec)

	// validation stays public
	rec = a.do(t, http.MethodGet, "/validate?license="+created.Key+"&host=a.com", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodOptions, "/licenses", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Content-Type, Authorization", rec.Header().Get("Access-Control-Allow-Headers"))
}
