package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"chrona/internal/config"
	"chrona/internal/store"
)

type client struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func newClient(t *testing.T, now time.Time) *client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.Database.Driver = config.DriverMemory
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTL = time.Hour
	cfg.Auth.BcryptCost = bcrypt.MinCost
	router := NewRouter(cfg, store.NewMemoryStore(), func() time.Time { return now })
	return &client{t: t, router: router}
}

func (c *client) as(token string) *client {
	return &client{t: c.t, router: c.router, token: token}
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// signUp registers email and returns a bearer token obtained through /token.
func (c *client) signUp(email string) string {
	c.t.Helper()
	w := c.do(http.MethodPost, "/register", gin.H{"email": email, "password": "secret1", "name": "Tester"})
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())

	form := url.Values{"username": {email}, "password": {"secret1"}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())

	tok := decode[map[string]any](c.t, rec)
	assert.Equal(c.t, "bearer", tok["token_type"])
	assert.NotEmpty(c.t, tok["user_id"])
	return tok["access_token"].(string)
}

func TestHealth(t *testing.T) {
	c := newClient(t, time.Now())
	w := c.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Time Tracker API is running"}`, w.Body.String())
}

func TestTrackThenReport(t *testing.T) {
	c := newClient(t, time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC))
	alice := c.as(c.signUp("alice@example.com"))

	w := alice.do(http.MethodPost, "/tasks/", gin.H{"name": "Writing"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	taskID := decode[map[string]any](t, w)["id"].(string)

	w = alice.do(http.MethodPost, "/time-entries/", gin.H{"task_id": taskID, "start_time": "2024-01-01T09:00:00Z"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	entry := decode[map[string]any](t, w)
	entryID := entry["id"].(string)
	assert.Equal(t, "2024-01-01T09:00:00", entry["start_time"])
	assert.Nil(t, entry["end_time"])
	assert.Nil(t, entry["duration"])

	w = alice.do(http.MethodPut, "/time-entries/"+entryID, gin.H{"end_time": "2024-01-01T10:30:00.123+02:00", "duration": 90})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	entry = decode[map[string]any](t, w)
	assert.Equal(t, "2024-01-01T10:30:00", entry["end_time"])
	assert.Equal(t, 90.0, entry["duration"])

	w = alice.do(http.MethodGet, "/stats/daily", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"date":"2024-01-01","total_duration":90,"tasks":[{"task_id":"`+taskID+`","task_name":"Writing","duration":90}]}`, w.Body.String())

	w = alice.do(http.MethodGet, "/stats/weekly?date=2024-01-03", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	weekly := decode[map[string]any](t, w)
	assert.Equal(t, "2024-01-01", weekly["week_start"])
	assert.Equal(t, "2024-01-07", weekly["week_end"])
	assert.Len(t, weekly["daily_breakdown"], 7)

	w = alice.do(http.MethodGet, "/stats/weekly/pdf", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))

	w = alice.do(http.MethodDelete, "/tasks/"+taskID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = alice.do(http.MethodDelete, "/time-entries/"+entryID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = alice.do(http.MethodDelete, "/tasks/"+taskID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = alice.do(http.MethodGet, "/tasks/"+taskID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCrossUserAccess(t *testing.T) {
	c := newClient(t, time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC))
	alice := c.as(c.signUp("alice@example.com"))
	bob := c.as(c.signUp("bob@example.com"))

	w := alice.do(http.MethodPost, "/tasks/", gin.H{"name": "Writing"})
	require.Equal(t, http.StatusOK, w.Code)
	taskID := decode[map[string]any](t, w)["id"].(string)

	w = bob.do(http.MethodGet, "/tasks/"+taskID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = bob.do(http.MethodPost, "/time-entries/", gin.H{"task_id": taskID, "start_time": "2024-01-01T09:00:00"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = bob.do(http.MethodGet, "/tasks/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = c.do(http.MethodGet, "/tasks/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]any](t, w), 1, "anonymous list is unscoped")

	w = c.do(http.MethodPost, "/tasks/", gin.H{"name": "Anon"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = c.do(http.MethodGet, "/stats/daily", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = c.as("garbage").do(http.MethodGet, "/tasks/", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEntryValidation(t *testing.T) {
	c := newClient(t, time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC))
	alice := c.as(c.signUp("alice@example.com"))
	w := alice.do(http.MethodPost, "/tasks/", gin.H{"name": "Writing"})
	taskID := decode[map[string]any](t, w)["id"].(string)

	tests := []struct {
		name   string
		body   gin.H
		status int
	}{
		{"unknown task", gin.H{"task_id": "nope", "start_time": "2024-01-01T09:00:00"}, http.StatusNotFound},
		{"bad timestamp", gin.H{"task_id": taskID, "start_time": "yesterday"}, http.StatusBadRequest},
		{"missing start", gin.H{"task_id": taskID}, http.StatusBadRequest},
		{"end before start", gin.H{"task_id": taskID, "start_time": "2024-01-01T09:00:00", "end_time": "2024-01-01T08:00:00"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := alice.do(http.MethodPost, "/time-entries/", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}

	w = alice.do(http.MethodGet, "/time-entries/?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = alice.do(http.MethodGet, "/stats/daily?date=01/01/2024", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginAndMe(t *testing.T) {
	c := newClient(t, time.Now())
	c.signUp("carol@example.com")

	w := c.do(http.MethodPost, "/register", gin.H{"email": "carol@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = c.do(http.MethodPost, "/login", gin.H{"email": "carol@example.com", "password": "wrong!!"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = c.do(http.MethodPost, "/login", gin.H{"email": "carol@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	token := decode[map[string]any](t, w)["access_token"].(string)

	w = c.as(token).do(http.MethodGet, "/users/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[map[string]any](t, w)
	assert.Equal(t, "carol@example.com", me["email"])
	assert.NotContains(t, me, "password_hash")

	w = c.do(http.MethodGet, "/users/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = c.do(http.MethodPost, "/auth/google", gin.H{"id_token": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code, "google sign-in is off without a client id")
}
