package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-acs-bot/internal/bot"
	"go-acs-bot/internal/database"
	"go-acs-bot/internal/middleware"
	"go-acs-bot/internal/models"
	"go-acs-bot/internal/notification/telegram"
	"go-acs-bot/internal/registry"
)

const jwtSecret = "api-test-secret"

type fakeBots struct {
	secret  string
	updates map[string][]telegram.Update
}

func (f *fakeBots) Bots() []bot.BotInfo {
	return []bot.BotInfo{{ID: "isp1", Name: "ISP Net", Username: "isp_bot", Admins: 1, Customers: 1}}
}

func (f *fakeBots) Customers(id string) ([]registry.Entry, error) {
	if id != "isp1" {
		return nil, bot.ErrUnknownBot
	}
	return []registry.Entry{{ChatID: "200", Customer: &models.Customer{Name: "Budi", DeviceSN: "SN1", AllowedCommands: models.DefaultAllowedCommands()}}}, nil
}

func (f *fakeBots) HandleWebhook(id string, u telegram.Update) error {
	if id != "isp1" {
		return bot.ErrUnknownBot
	}
	f.updates[id] = append(f.updates[id], u)
	return nil
}

func (f *fakeBots) WebhookSecret() string { return f.secret }

type fakeLogs struct {
	filter database.LogFilter
}

func (f *fakeLogs) GetLogs(_ context.Context, filter database.LogFilter) ([]*models.CommandLog, int64, error) {
	f.filter = filter
	return []*models.CommandLog{{ID: 1, Bot: "isp1", ChatID: "100", Role: models.RoleAdmin, Command: "/status", Outcome: "ok"}}, 1, nil
}

type fakeUsers struct {
	user    *models.User
	updated bool
}

func (f *fakeUsers) GetUserByUsername(username string) (*models.User, error) {
	if f.user == nil || username != f.user.Username {
		return nil, database.ErrUserNotFound
	}
	cp := *f.user
	return &cp, nil
}

func (f *fakeUsers) UpdateUser(*models.User) error {
	f.updated = true
	return nil
}

type fixture struct {
	router http.Handler
	bots   *fakeBots
	logs   *fakeLogs
	users  *fakeUsers
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)

	f := &fixture{
		bots:  &fakeBots{secret: "hook-secret", updates: map[string][]telegram.Update{}},
		logs:  &fakeLogs{},
		users: &fakeUsers{user: &models.User{ID: 1, Username: "admin", Password: string(hash), Role: "admin"}},
	}
	f.router = NewRouter(NewHandler(f.bots, f.logs, f.users, jwtSecret))
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) bearer(t *testing.T) map[string]string {
	t.Helper()
	token, err := middleware.GenerateToken(jwtSecret, f.users.user, time.Now())
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","bots":1}`, rec.Body.String())
}

func TestLogin(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/auth/login", []byte(`{"username":"admin","password":"wrong"}`), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, f.users.updated)

	rec = f.do(t, http.MethodPost, "/api/auth/login", []byte(`{"username":"admin","password":"admin123"}`), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, f.users.updated)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	rec = f.do(t, http.MethodGet, "/api/bots", nil, map[string]string{"Authorization": "Bearer " + resp.Token})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginMalformedBody(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/auth/login", []byte(`{`), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIRequiresToken(t *testing.T) {
	f := newFixture(t)
	for _, path := range []string{"/api/bots", "/api/bots/isp1/customers", "/api/logs"} {
		rec := f.do(t, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestListBotsAndCustomers(t *testing.T) {
	f := newFixture(t)
	auth := f.bearer(t)

	rec := f.do(t, http.MethodGet, "/api/bots", nil, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":"isp1","name":"ISP Net","username":"isp_bot","admins":1,"customers":1}]`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/bots/isp1/customers", nil, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"chatId":"200","name":"Budi","deviceSN":"SN1","allowedCommands":["wifi-status","wifi-password"]}]`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/bots/nope/customers", nil, auth)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetLogsFilter(t *testing.T) {
	f := newFixture(t)
	auth := f.bearer(t)

	rec := f.do(t, http.MethodGet, "/api/logs?bot=isp1&outcome=failed&limit=5000&offset=10&since=2026-03-01T00:00:00Z", nil, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "isp1", f.logs.filter.Bot)
	assert.Equal(t, "failed", f.logs.filter.Outcome)
	assert.Equal(t, 1000, f.logs.filter.Limit)
	assert.Equal(t, 10, f.logs.filter.Offset)
	assert.True(t, f.logs.filter.Since.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Contains(t, rec.Body.String(), `"total":1`)

	rec = f.do(t, http.MethodGet, "/api/logs?since=yesterday", nil, auth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhook(t *testing.T) {
	f := newFixture(t)
	update := []byte(`{"update_id":42,"message":{"message_id":1,"chat":{"id":100,"type":"private"},"date":0,"text":"/myid"}}`)

	rec := f.do(t, http.MethodPost, "/telegram/isp1/webhook", update, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/telegram/isp1/webhook", update, map[string]string{SecretTokenHeader: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	good := map[string]string{SecretTokenHeader: "hook-secret"}
	rec = f.do(t, http.MethodPost, "/telegram/isp1/webhook", update, good)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.bots.updates["isp1"], 1)
	assert.EqualValues(t, 42, f.bots.updates["isp1"][0].UpdateID)
	assert.Equal(t, "100", f.bots.updates["isp1"][0].Message.ChatID())

	rec = f.do(t, http.MethodPost, "/telegram/other/webhook", update, good)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/telegram/isp1/webhook", []byte(strings.Repeat("x", 10)), good)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
