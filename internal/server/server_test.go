package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"nailsxlauren/internal/catalog"
	"nailsxlauren/internal/config"
	"nailsxlauren/internal/database"
	"nailsxlauren/internal/services"
	"nailsxlauren/internal/util"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "server-test-secret-that-is-long-enough-for-hs256"

type recordingMailer struct {
	mu   sync.Mutex
	sent []services.EmailMessage
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg services.EmailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type testEnv struct {
	handler http.Handler
	db      *gorm.DB
	mailer  *recordingMailer
	cfg     *config.Config
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "Nails X Lauren API",
			Version:     "1.0.0",
			Environment: "test",
			Port:        "0",
			Host:        "127.0.0.1",
		},
		Session: config.SessionConfig{
			Secret:        testSecret,
			TTL:           time.Hour,
			Mode:          config.SessionModeToken,
			CookieName:    config.DefaultCookieName(config.SessionModeToken),
			AdminPassword: "letmein",
		},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"https://nailsxlauren.com"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         600,
		},
		Mail: config.MailConfig{Provider: "console", OperatorEmail: "owner@nailsxlauren.com"},
	}
}

func newTestEnv(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}

	db, err := database.Open(config.DatabaseConfig{URL: "sqlite:///:memory:"}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	cat, err := catalog.Default()
	require.NoError(t, err)

	log := zerolog.Nop()
	mailer := &recordingMailer{}
	bookings := database.NewBookingRepository(db)
	users := database.NewUserRepository(db)

	deps := Deps{
		Bookings: services.NewBookingService(bookings, mailer, cat, cfg.Mail.OperatorEmail, log),
		Admin:    services.NewBookingAdminService(bookings, log),
		Auth:     services.NewAuthService(users, util.NewTokenIssuer(cfg.Session.Secret, cfg.Session.TTL), cfg.Session, log),
		Health: services.NewHealthService(cfg.App.Name, func(ctx context.Context) error {
			return database.HealthCheck(ctx, db)
		}, log),
		Catalog: cat,
	}
	return &testEnv{handler: New(cfg, deps, log).Handler(), db: db, mailer: mailer, cfg: cfg}
}

func (e *testEnv) do(method, target string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch v := body.(type) {
	case nil:
	case string:
		buf.WriteString(v)
	default:
		_ = json.NewEncoder(&buf).Encode(v)
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T) *http.Cookie {
	t.Helper()
	rec := e.do(http.MethodPost, "/api/admin/login", map[string]string{"password": "letmein"})
	require.Equal(t, http.StatusOK, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == e.cfg.Session.CookieName {
			return c
		}
	}
	t.Fatal("login did not set the session cookie")
	return nil
}

func validBooking(name string) map[string]interface{} {
	return map[string]interface{}{
		"fullName":         name,
		"phoneNumber":      "0412 345 678",
		"email":            strings.ToLower(strings.Fields(name)[0]) + "@example.com",
		"selectedServices": []string{"gel-x-set"},
		"preferredDate":    "2025-06-20",
		"preferredTime":    "10:00",
		"message":          "First visit",
	}
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestRootAndHealth(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Nails X Lauren API", decodeJSON(t, rec)["service"])
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))

	rec = env.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "ok", body["database"])
}

func TestServicesEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodGet, "/api/services", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	list, ok := body["services"].([]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, list)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(http.MethodGet, "/", nil)

	rec := env.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestMetricsLabelByRoute(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(http.MethodGet, "/adminpage/bookings/2025/06/14", nil)
	env.do(http.MethodGet, "/no-such-page-7f3a", nil)

	body := env.do(http.MethodGet, "/metrics", nil).Body.String()
	assert.Contains(t, body, `endpoint="/adminpage/{*path}"`)
	assert.Contains(t, body, `endpoint="unmatched"`)
	assert.NotContains(t, body, "/adminpage/bookings/2025")
	assert.NotContains(t, body, "no-such-page-7f3a")
}

func TestSubmitBooking(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/api/book", validBooking("Jane Doe"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeJSON(t, rec)
	assert.Equal(t, services.MsgBookingReceived, body["message"])
	assert.True(t, strings.HasPrefix(body["bookingId"].(string), "BK-"))
	assert.Equal(t, "$40", body["estimatedPrice"])
	assert.Equal(t, 1, env.mailer.count())

	var count int64
	require.NoError(t, env.db.Table("bookings").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSubmitBookingRejectsBadInput(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/api/book", map[string]string{"fullName": "Jane"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, services.MsgMissingFields, decodeJSON(t, rec)["error"])

	rec = env.do(http.MethodPost, "/api/book", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgInvalidBody, decodeJSON(t, rec)["error"])

	assert.Equal(t, 0, env.mailer.count())
	var count int64
	require.NoError(t, env.db.Table("bookings").Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmitBookingMailFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	env.mailer.err = errors.New("smtp: connection refused")

	rec := env.do(http.MethodPost, "/api/book", validBooking("Jane Doe"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, services.MsgNotifyFailed, decodeJSON(t, rec)["error"])
	assert.NotContains(t, rec.Body.String(), "connection refused")

	var count int64
	require.NoError(t, env.db.Table("bookings").Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmitBookingRateLimited(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.RateLimit = config.RateLimitConfig{RPS: 0.001, Burst: 1}
	})

	first := env.do(http.MethodPost, "/api/book", validBooking("Jane Doe"))
	assert.Equal(t, http.StatusOK, first.Code)

	second := env.do(http.MethodPost, "/api/book", validBooking("Jane Doe"))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "Too many requests", decodeJSON(t, second)["error"])
	assert.Equal(t, 1, env.mailer.count())
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/api/admin/login", map[string]string{"password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, services.MsgInvalidPassword, body["message"])
	assert.Empty(t, rec.Result().Cookies())

	rec = env.do(http.MethodPost, "/api/admin/login", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, decodeJSON(t, rec)["ok"])

	rec = env.do(http.MethodPost, "/api/admin/login", map[string]string{"password": "letmein"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeJSON(t, rec)["ok"])

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "nxla_admin", c.Name)
	assert.NotEmpty(t, c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, int(time.Hour.Seconds()), c.MaxAge)
}

func TestLoginWithAccount(t *testing.T) {
	env := newTestEnv(t, nil)
	hash, err := util.HashPassword("s3cret-pass")
	require.NoError(t, err)
	_, _, err = database.NewUserRepository(env.db).Upsert(context.Background(), "lauren", hash)
	require.NoError(t, err)

	rec := env.do(http.MethodPost, "/api/admin/login", map[string]string{"username": "lauren", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/api/admin/login", map[string]string{"username": "lauren", "password": "s3cret-pass"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, rec.Result().Cookies(), 1)

	page := env.do(http.MethodGet, "/adminpage", nil, rec.Result().Cookies()[0])
	assert.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "lauren")
}

func TestLogoutClearsCookie(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/api/admin/logout", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "nxla_admin=")
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestSessionGate(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, path := range []string{"/adminpage", "/adminpage/", "/adminpage/bookings"} {
		rec := env.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusFound, rec.Code, path)
		assert.Equal(t, "/", rec.Header().Get("Location"), path)
	}

	rec := env.do(http.MethodGet, "/api/admin/bookings", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", decodeJSON(t, rec)["error"])

	bogus := &http.Cookie{Name: "nxla_admin", Value: "not-a-token"}
	rec = env.do(http.MethodGet, "/api/admin/bookings/export", nil, bogus)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	cookie := env.login(t)
	rec = env.do(http.MethodGet, "/adminpage/bookings", nil, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestAdminListAndSearch(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, name := range []string{"Jane Doe", "Amy Smith", "Jane Roe"} {
		require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/api/book", validBooking(name)).Code)
	}
	cookie := env.login(t)

	rec := env.do(http.MethodGet, "/api/admin/bookings?limit=2", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var page services.ListResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(3), page.Count)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.TotalPages)

	rec = env.do(http.MethodGet, "/api/admin/bookings?search=JANE", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(2), page.Count)

	rec = env.do(http.MethodGet, "/api/admin/bookings?search=nobody", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestAdminDeleteAndReschedule(t *testing.T) {
	env := newTestEnv(t, nil)
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/api/book", validBooking("Jane Doe")).Code)
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/api/book", validBooking("Amy Smith")).Code)
	cookie := env.login(t)

	var page services.ListResult
	rec := env.do(http.MethodGet, "/api/admin/bookings", nil, cookie)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Data, 2)
	first, second := page.Data[0].ID, page.Data[1].ID

	rec = env.do(http.MethodPut, "/api/admin/bookings",
		map[string]interface{}{"id": first, "preferred_date": "2025-07-01", "preferred_time": ""}, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated services.RescheduleResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.True(t, updated.Success)
	require.NotNil(t, updated.Data.PreferredDate)
	assert.Equal(t, "2025-07-01", *updated.Data.PreferredDate)
	assert.Nil(t, updated.Data.PreferredTime)

	rec = env.do(http.MethodPut, "/api/admin/bookings", map[string]interface{}{"id": "missing"}, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodDelete, "/api/admin/bookings", map[string]string{}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, services.MsgMissingID, decodeJSON(t, rec)["error"])

	rec = env.do(http.MethodDelete, "/api/admin/bookings", map[string]string{"id": first}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeJSON(t, rec)["success"])

	rec = env.do(http.MethodDelete, "/api/admin/bookings?id="+second, nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodDelete, "/api/admin/bookings", map[string]string{"id": first}, cookie)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var count int64
	require.NoError(t, env.db.Table("bookings").Count(&count).Error)
	assert.Zero(t, count)
}

func TestAdminExport(t *testing.T) {
	env := newTestEnv(t, nil)
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/api/book", validBooking("Jane Doe")).Code)
	cookie := env.login(t)

	rec := env.do(http.MethodGet, "/api/admin/bookings/export?format=csv", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="bookings-page1.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "Full Name")
	assert.Contains(t, rec.Body.String(), "Jane Doe")

	rec = env.do(http.MethodGet, "/api/admin/bookings/export?format=xlsx&range=3m", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="bookings-page1.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	rec = env.do(http.MethodGet, "/api/admin/bookings/export?format=pdf", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	rec = env.do(http.MethodGet, "/api/admin/bookings/export?format=docx", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/book", nil)
	req.Header.Set("Origin", "https://nailsxlauren.com")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://nailsxlauren.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
