package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/greenprompt/backend/internal/config"
	"github.com/ayush/greenprompt/backend/internal/logging"
	"github.com/ayush/greenprompt/backend/internal/models"
	"github.com/ayush/greenprompt/backend/internal/savings"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:             "0",
		DatabaseDriver:   "sqlite",
		DatabaseURL:      filepath.Join(t.TempDir(), "test.db"),
		SessionSecret:    "test-secret",
		SessionTTL:       time.Hour,
		CORSOrigin:       "http://localhost:5173",
		GridIntensity:    savings.DefaultGridIntensity,
		LoginMaxAttempts: 3,
		LoginWindow:      time.Minute,
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	app, err := NewApp(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newClient(t *testing.T, h http.Handler) *client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{t: t, base: srv.URL, http: &http.Client{Jar: jar}}
}

func (c *client) do(method, path string, body any, out any) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestEndToEnd(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	c := newClient(t, app.Handler())
	creds := map[string]string{"email": "a@x.com", "password": "pw1"}

	var signup models.UserResponse
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/auth/signup", creds, &signup))
	require.NotNil(t, signup.User)
	assert.Equal(t, int64(1), signup.User.ID)
	assert.Equal(t, "a@x.com", signup.User.Email)

	var errBody map[string]string
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodPost, "/api/auth/login",
		map[string]string{"email": "a@x.com", "password": "wrongpw"}, &errBody))
	assert.NotEmpty(t, errBody["error"])

	assert.Equal(t, http.StatusConflict, c.do(http.MethodPost, "/api/auth/signup", creds, nil))

	var me models.UserResponse
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/auth/me", nil, &me))
	require.NotNil(t, me.User)
	assert.Equal(t, int64(1), me.User.ID)

	var opt models.OptimizeResponse
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/optimize", map[string]any{
		"prompt":           "Please explain the theory",
		"optimized_prompt": "explain theory",
		"tokens_before":    10,
		"tokens_after":     6,
	}, &opt))
	assert.Equal(t, 4, opt.TokensSaved)
	require.NotNil(t, opt.UserID)
	assert.Equal(t, int64(1), *opt.UserID)

	var st models.StatsResponse
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/stats", nil, &st))
	assert.Equal(t, int64(1), st.Users)
	assert.Equal(t, int64(1), st.PromptsOptimized)
	assert.InDelta(t, 4*0.0003/1000*0.45, st.CO2SavedKg, 1e-15)
	assert.InDelta(t, st.CO2SavedKg*1000, st.CO2SavedG, 1e-12)
	assert.InDelta(t, 4*0.0003/1000, st.EnergySavedKWh, 1e-15)

	var ok map[string]bool
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/auth/logout", nil, &ok))
	assert.True(t, ok["ok"])

	me = models.UserResponse{}
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/auth/me", nil, &me))
	assert.Nil(t, me.User)

	var anon models.OptimizeResponse
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/optimize", map[string]any{"prompt": "hello"}, &anon))
	assert.Nil(t, anon.UserID)
	assert.Zero(t, anon.TokensSaved)

	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/stats", nil, &st))
	assert.Equal(t, int64(2), st.PromptsOptimized)
}

func TestStats_EmptyDatabase(t *testing.T) {
	c := newClient(t, newTestApp(t, testConfig(t)).Handler())

	var st map[string]float64
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/stats", nil, &st))
	for _, k := range []string{"users", "co2_saved_kg", "co2_saved_g", "prompts_optimized", "energy_saved_kwh", "impact_score"} {
		v, ok := st[k]
		assert.True(t, ok, k)
		assert.Zero(t, v, k)
	}
}

func TestSessionTokenFromOtherSecretIsAnonymous(t *testing.T) {
	cfg := testConfig(t)
	app := newTestApp(t, cfg)
	c := newClient(t, app.Handler())
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/auth/signup",
		map[string]string{"email": "a@x.com", "password": "pw1"}, nil))

	other := *cfg
	other.SessionSecret = "rotated"
	app2 := newTestApp(t, &other)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	base, err := url.Parse(c.base)
	require.NoError(t, err)
	for _, ck := range c.http.Jar.Cookies(base) {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	app2.Handler().ServeHTTP(w, req)
	assert.JSONEq(t, `{"user":null}`, w.Body.String())
}

func TestHealthAndSuggest(t *testing.T) {
	c := newClient(t, newTestApp(t, testConfig(t)).Handler())

	var ok map[string]bool
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/health", nil, &ok))
	assert.True(t, ok["ok"])

	var sug models.SuggestResponse
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/optimize/suggest",
		map[string]string{"prompt": "Please kindly summarize the article"}, &sug))
	assert.Equal(t, "summarize article", sug.OptimizedPrompt)

	var st models.StatsResponse
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/stats", nil, &st))
	assert.Zero(t, st.PromptsOptimized)
}

func TestCORS(t *testing.T) {
	h := newTestApp(t, testConfig(t)).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/optimize", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestLoginThrottle(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.RedisAddr = mr.Addr()
	c := newClient(t, newTestApp(t, cfg).Handler())

	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/auth/signup",
		map[string]string{"email": "a@x.com", "password": "pw1"}, nil))

	bad := map[string]string{"email": "a@x.com", "password": "nope"}
	for i := 0; i < cfg.LoginMaxAttempts; i++ {
		assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodPost, "/api/auth/login", bad, nil))
	}
	assert.Equal(t, http.StatusTooManyRequests, c.do(http.MethodPost, "/api/auth/login",
		map[string]string{"email": "a@x.com", "password": "pw1"}, nil))

	mr.FastForward(cfg.LoginWindow + time.Second)
	assert.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/auth/login",
		map[string]string{"email": "a@x.com", "password": "pw1"}, nil))
}

func TestLoginThrottle_ForwardedForRotation(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.RedisAddr = mr.Addr()
	c := newClient(t, newTestApp(t, cfg).Handler())

	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/auth/signup",
		map[string]string{"email": "a@x.com", "password": "pw1"}, nil))

	codes := map[int]int{}
	for i := 0; i < 10; i++ {
		req, err := http.NewRequest(http.MethodPost, c.base+"/api/auth/login",
			strings.NewReader(`{"email":"a@x.com","password":"wrong"}`))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		resp, err := c.http.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		codes[resp.StatusCode]++
	}

	assert.Equal(t, cfg.LoginMaxAttempts, codes[http.StatusUnauthorized])
	assert.Equal(t, 10-cfg.LoginMaxAttempts, codes[http.StatusTooManyRequests])
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewApp_BadDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatabaseDriver = "oracle"
	_, err := NewApp(context.Background(), cfg, logging.Discard())
	assert.Error(t, err)
}
