package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"betfunnels-copy/internal/common/auth"
	"betfunnels-copy/internal/common/config"
	"betfunnels-copy/internal/common/errors"
	"betfunnels-copy/internal/common/logger"
	"betfunnels-copy/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "segredo"

type fakeGenerator struct {
	got    *models.FunnelSpec
	result *models.GenerationResult
	err    error
}

func (f *fakeGenerator) Generate(ctx context.Context, spec *models.FunnelSpec) (*models.GenerationResult, error) {
	f.got = spec
	return f.result, f.err
}

type fakeSearcher struct {
	query string
	limit int
	names []string
	err   error
}

func (f *fakeSearcher) SearchCasinoNames(ctx context.Context, query string, limit int) ([]string, error) {
	f.query, f.limit = query, limit
	return f.names, f.err
}

type pingFunc func(ctx context.Context) error

func (p pingFunc) Ping(ctx context.Context) error { return p(ctx) }

type testAPI struct {
	router    *gin.Engine
	generator *fakeGenerator
	searcher  *fakeSearcher
	redis     *miniredis.Miniredis
}

func newTestAPI(t *testing.T, secret string, readiness map[string]Pinger) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := &config.Config{}
	cfg.Generation.DayCount = 6
	cfg.Generation.SearchLimit = 12
	cfg.CORS.AllowOrigins = []string{"*"}
	cfg.CORS.AllowHeaders = []string{"content-type", "x-app-password"}

	gen := &fakeGenerator{result: &models.GenerationResult{CopyAll: "🔹DIA 1\nOlá", MatchedCasino: "Ginga"}}
	search := &fakeSearcher{names: []string{"Ginga", "Ginga Bet"}}

	router := NewRouter(RouterConfig{
		Config:    cfg,
		Generator: gen,
		Casinos:   search,
		Gate:      auth.NewPasswordGate(secret),
		Limiter:   auth.NewAttemptLimiter(client, 3, time.Minute),
		Readiness: readiness,
		Logger:    logger.NewTestLogger(t),
	})
	return &testAPI{router: router, generator: gen, searcher: search, redis: mr}
}

func (a *testAPI) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func authed() map[string]string {
	return map[string]string{passwordHeader: testPassword}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

const validBody = `{"casino":" Ginga ","funnelType":"Ativação FTD","tier":"VIP","days":[{"mode":"A","gameName":"Fortune Tiger","buttonCount":2,"buttons":[{"text":"Jogue R$20"},{"text":"Jogue R$50"}]}]}`

func TestGenerateCopy_Success(t *testing.T) {
	api := newTestAPI(t, testPassword, nil)

	w := api.do(http.MethodPost, "/api/generate-copy", validBody, authed())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "🔹DIA 1\nOlá", body["copyAll"])
	assert.Equal(t, "Ginga", body["casino"])
	assert.NotEmpty(t, body["requestId"])
	assert.Equal(t, body["requestId"], w.Header().Get(requestIDHeader))

	require.NotNil(t, api.generator.got)
	assert.Equal(t, "Ginga", api.generator.got.Casino)
	assert.Len(t, api.generator.got.Days, 6)
}

func TestGenerateCopy_KeepsIncomingRequestID(t *testing.T) {
	api := newTestAPI(t, testPassword, nil)
	headers := authed()
	headers[requestIDHeader] = "req-123"

	w := api.do(http.MethodPost, "/api/generate-copy", validBody, headers)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-123", decode(t, w)["requestId"])
}

func TestGenerateCopy_Errors(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		headers    map[string]string
		body       string
		genErr     error
		wantStatus int
		wantCode   string
		wantError  string
		check      func(t *testing.T, body map[string]interface{})
	}{
		{
			name:       "missing password",
			secret:     testPassword,
			body:       validBody,
			wantStatus: http.StatusUnauthorized,
			wantCode:   "AUTH_ERROR",
			wantError:  "Não autorizado.",
		},
		{
			name:       "password not configured",
			headers:    authed(),
			body:       validBody,
			wantStatus: http.StatusInternalServerError,
			wantCode:   "CONFIGURATION_ERROR",
			wantError:  "Senha não configurada.",
		},
		{
			name:       "not json",
			secret:     testPassword,
			headers:    authed(),
			body:       `{"casino":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
		},
		{
			name:       "schema violation",
			secret:     testPassword,
			headers:    authed(),
			body:       `{"casino":"Ginga","funnelType":"Retenção"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
			check: func(t *testing.T, body map[string]interface{}) {
				assert.NotEmpty(t, body["issues"])
			},
		},
		{
			name:       "no active day",
			secret:     testPassword,
			headers:    authed(),
			body:       `{"casino":"Ginga","funnelType":"Ativação FTD","days":[]}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "casino not found",
			secret:     testPassword,
			headers:    authed(),
			body:       validBody,
			genErr:     errors.NewCasinoNotFoundError("Ginga", []string{"Ginga"}, []string{"Vera Bet"}),
			wantStatus: http.StatusNotFound,
			wantCode:   "CASINO_NOT_FOUND",
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, []interface{}{"Vera Bet"}, body["availableCasinos"])
			},
		},
		{
			name:       "template misses days",
			secret:     testPassword,
			headers:    authed(),
			body:       validBody,
			genErr:     errors.NewMissingDayMarkersError([]int{1, 2}, []int{3, 4, 5, 6}),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "MISSING_DAY_MARKERS",
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, []interface{}{3.0, 4.0, 5.0, 6.0}, body["missingDays"])
			},
		},
		{
			name:       "model failure hides cause",
			secret:     testPassword,
			headers:    authed(),
			body:       validBody,
			genErr:     errors.NewModelError(stderrors.New("quota exceeded for key AIza")),
			wantStatus: http.StatusBadGateway,
			wantCode:   "MODEL_ERROR",
			wantError:  "Falha ao gerar a copy. Tente novamente.",
			check: func(t *testing.T, body map[string]interface{}) {
				assert.NotContains(t, body, "details")
			},
		},
		{
			name:       "unexpected error",
			secret:     testPassword,
			headers:    authed(),
			body:       validBody,
			genErr:     stderrors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
			wantError:  "Erro inesperado.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, tt.secret, nil)
			api.generator.err = tt.genErr

			w := api.do(http.MethodPost, "/api/generate-copy", tt.body, tt.headers)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			body := decode(t, w)
			assert.Equal(t, tt.wantCode, body["code"])
			assert.NotEmpty(t, body["requestId"])
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
			}
			if tt.check != nil {
				tt.check(t, body)
			}
		})
	}
}

func TestSearchCasinos(t *testing.T) {
	api := newTestAPI(t, testPassword, nil)

	w := api.do(http.MethodPost, "/api/search-casinos", `{"query":"  gin "}`, authed())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"Ginga", "Ginga Bet"}, decode(t, w)["options"])
	assert.Equal(t, "gin", api.searcher.query)
	assert.Equal(t, 12, api.searcher.limit)
}

func TestSearchCasinos_EmptyBodyIsEmptyQuery(t *testing.T) {
	api := newTestAPI(t, testPassword, nil)
	api.searcher.names = []string{}

	w := api.do(http.MethodPost, "/api/search-casinos", "", authed())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{}, decode(t, w)["options"])
	assert.Equal(t, "", api.searcher.query)
}

func TestSearchCasinos_StoreFailure(t *testing.T) {
	api := newTestAPI(t, testPassword, nil)
	api.searcher.err = errors.NewStoreError(stderrors.New("connection refused"))

	w := api.do(http.MethodPost, "/api/search-casinos", `{"query":"gin"}`, authed())
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Falha ao buscar cassinos.", decode(t, w)["error"])
}

func TestCheckPassword(t *testing.T) {
	api := newTestAPI(t, testPassword, nil)

	w := api.do(http.MethodPost, "/api/check-password", `{"password":"errada"}`, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Senha inválida.", decode(t, w)["error"])

	w = api.do(http.MethodPost, "/api/check-password", `{"password":"segredo"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["ok"])

	// success clears the failure counter
	assert.False(t, api.redis.Exists("pwd_attempts:192.0.2.1"))
}

func TestCheckPassword_TooManyAttempts(t *testing.T) {
	api := newTestAPI(t, testPassword, nil)

	for i := 0; i < 3; i++ {
		w := api.do(http.MethodPost, "/api/check-password", `{"password":"errada"}`, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := api.do(http.MethodPost, "/api/check-password", `{"password":"segredo"}`, nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	body := decode(t, w)
	assert.Equal(t, "TOO_MANY_ATTEMPTS", body["code"])
	assert.Equal(t, 60.0, body["retryAfterSeconds"])
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	api.redis.FastForward(time.Minute)
	w = api.do(http.MethodPost, "/api/check-password", `{"password":"segredo"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCheckPassword_NotConfigured(t *testing.T) {
	api := newTestAPI(t, "", nil)

	w := api.do(http.MethodPost, "/api/check-password", `{"password":"x"}`, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Senha não configurada.", decode(t, w)["error"])
}

func TestCheckPassword_LimiterDownFailsOpen(t *testing.T) {
	api := newTestAPI(t, testPassword, nil)
	api.redis.Close()

	w := api.do(http.MethodPost, "/api/check-password", `{"password":"segredo"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	api := newTestAPI(t, testPassword, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/generate-copy", nil)
	req.Header.Set("Origin", "https://betfunnels.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "content-type, x-app-password")
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")), "x-app-password")
}

func TestHealthAndReady(t *testing.T) {
	api := newTestAPI(t, testPassword, map[string]Pinger{
		"postgres": pingFunc(func(ctx context.Context) error { return nil }),
		"redis":    pingFunc(func(ctx context.Context) error { return stderrors.New("dial tcp: refused") }),
	})

	w := api.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])

	w = api.do(http.MethodGet, "/ready", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode(t, w)
	assert.Equal(t, "not_ready", body["status"])
	assert.Equal(t, map[string]interface{}{"postgres": "ok", "redis": "dial tcp: refused"}, body["checks"])

	w = api.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
