package bot_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-acs-bot/internal/bot"
	"go-acs-bot/internal/config"
	"go-acs-bot/internal/models"
	"go-acs-bot/internal/notification/telegram"
	"go-acs-bot/internal/store"
)

const validToken = "123456:AAbbCCddEEffGGhhIIjjKKllMMnnOOppQQr"

// fakeTelegram answers the Bot API calls the manager makes
type fakeTelegram struct {
	*httptest.Server

	mu       sync.Mutex
	webhooks []string
	sent     chan map[string]string
	updates  chan []telegram.Update
}

func newFakeTelegram(t *testing.T) *fakeTelegram {
	t.Helper()
	f := &fakeTelegram{
		sent:    make(chan map[string]string, 16),
		updates: make(chan []telegram.Update, 4),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		w.Header().Set("Content-Type", "application/json")

		switch method {
		case "getMe":
			io.WriteString(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"ISP","username":"isp_bot"}}`)
		case "setWebhook":
			var req map[string]interface{}
			json.Unmarshal(body, &req)
			f.mu.Lock()
			f.webhooks = append(f.webhooks, req["url"].(string))
			f.mu.Unlock()
			io.WriteString(w, `{"ok":true,"result":true}`)
		case "deleteWebhook":
			io.WriteString(w, `{"ok":true,"result":true}`)
		case "sendMessage":
			var req map[string]string
			json.Unmarshal(body, &req)
			f.sent <- req
			io.WriteString(w, `{"ok":true,"result":{"message_id":1,"chat":{"id":1,"type":"private"},"date":0}}`)
		case "getUpdates":
			select {
			case batch := <-f.updates:
				res, _ := json.Marshal(batch)
				io.WriteString(w, `{"ok":true,"result":`+string(res)+`}`)
			case <-r.Context().Done():
			case <-time.After(200 * time.Millisecond):
				io.WriteString(w, `{"ok":true,"result":[]}`)
			}
		default:
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"ok":false,"error_code":404,"description":"Not Found"}`)
		}
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeTelegram) registered() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.webhooks...)
}

func newRepo(t *testing.T, servers map[string]*models.ServerConfig) *config.Repository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	data, err := json.Marshal(config.Document{Servers: servers})
	require.NoError(t, err)
	fs := store.NewFileStore(path)
	require.NoError(t, fs.Save(context.Background(), data))

	repo := config.NewRepository(fs)
	require.NoError(t, repo.Load(context.Background()))
	return repo
}

func servers() map[string]*models.ServerConfig {
	acs := models.ACSConfig{BaseURL: "http://127.0.0.1:1", Username: "u", Password: "p"}
	return map[string]*models.ServerConfig{
		"isp1": {
			Name:     "ISP Net",
			BotToken: validToken,
			AdminIDs: []string{"100"},
			GenieACS: acs,
			Customers: map[string]*models.Customer{
				"200": {Name: "Budi", DeviceSN: "SN1", AllowedCommands: models.DefaultAllowedCommands()},
			},
		},
		"broken": {
			Name:     "Broken",
			BotToken: "not-a-token",
			AdminIDs: []string{"100"},
			GenieACS: acs,
		},
	}
}

func receive(t *testing.T, ch <-chan map[string]string) map[string]string {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(3 * time.Second):
		t.Fatal("no message sent")
		return nil
	}
}

func TestManagerWebhookMode(t *testing.T) {
	tg := newFakeTelegram(t)
	m := bot.NewManager(newRepo(t, servers()), bot.ManagerOptions{
		TransportMode:  config.TransportWebhook,
		WebhookURL:     "https://bot.example.net/",
		WebhookSecret:  "s3cret",
		TelegramAPIURL: tg.URL,
		ACSTimeout:     time.Second,
	}, nil)

	require.NoError(t, m.Start(context.Background()))

	bots := m.Bots()
	require.Len(t, bots, 1)
	assert.Equal(t, bot.BotInfo{ID: "isp1", Name: "ISP Net", Username: "isp_bot", Admins: 1, Customers: 1}, bots[0])
	assert.Equal(t, []string{"https://bot.example.net/telegram/isp1/webhook"}, tg.registered())
	assert.Equal(t, "s3cret", m.WebhookSecret())

	customers, err := m.Customers("isp1")
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "200", customers[0].ChatID)

	_, err = m.Customers("broken")
	assert.ErrorIs(t, err, bot.ErrUnknownBot)
	assert.ErrorIs(t, m.HandleWebhook("broken", telegram.Update{}), bot.ErrUnknownBot)

	update := telegram.Update{UpdateID: 1, Message: &telegram.Message{Chat: telegram.Chat{ID: 555}, Text: "/myid"}}
	require.NoError(t, m.HandleWebhook("isp1", update))

	msg := receive(t, tg.sent)
	assert.Equal(t, "555", msg["chat_id"])
	assert.Equal(t, telegram.ParseModeMarkdownV2, msg["parse_mode"])
	assert.Contains(t, msg["text"], "`555`")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, m.Stop(ctx))
}

func TestManagerPollingMode(t *testing.T) {
	tg := newFakeTelegram(t)
	m := bot.NewManager(newRepo(t, servers()), bot.ManagerOptions{
		TransportMode:  config.TransportPolling,
		TelegramAPIURL: tg.URL,
		PollTimeout:    0,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, m.Start(ctx))

	tg.updates <- []telegram.Update{{UpdateID: 7, Message: &telegram.Message{Chat: telegram.Chat{ID: 200}, Text: "/start"}}}

	msg := receive(t, tg.sent)
	assert.Equal(t, "200", msg["chat_id"])
	assert.Contains(t, msg["text"], "Selamat datang Budi")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer stopCancel()
	assert.NoError(t, m.Stop(stopCtx))
}

func TestManagerFailsWithoutAnyBot(t *testing.T) {
	tg := newFakeTelegram(t)
	all := servers()
	delete(all, "isp1")

	m := bot.NewManager(newRepo(t, all), bot.ManagerOptions{
		TransportMode:  config.TransportPolling,
		TelegramAPIURL: tg.URL,
	}, nil)
	assert.Error(t, m.Start(context.Background()))
}

func TestManagerStartsServerWithoutAdmins(t *testing.T) {
	tg := newFakeTelegram(t)
	all := servers()
	all["isp1"].AdminIDs = nil

	m := bot.NewManager(newRepo(t, all), bot.ManagerOptions{
		TransportMode:  config.TransportWebhook,
		WebhookURL:     "https://bot.example.net",
		WebhookSecret:  "s3cret",
		TelegramAPIURL: tg.URL,
	}, nil)
	require.NoError(t, m.Start(context.Background()))

	bots := m.Bots()
	require.Len(t, bots, 1)
	assert.Zero(t, bots[0].Admins)

	update := telegram.Update{UpdateID: 1, Message: &telegram.Message{Chat: telegram.Chat{ID: 200}, Text: "/start"}}
	require.NoError(t, m.HandleWebhook("isp1", update))
	msg := receive(t, tg.sent)
	assert.Equal(t, "200", msg["chat_id"])
	assert.Contains(t, msg["text"], "Selamat datang Budi")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, m.Stop(ctx))
}
