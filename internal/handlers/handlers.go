package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"go-acs-bot/internal/bot"
	"go-acs-bot/internal/database"
	"go-acs-bot/internal/logger"
	"go-acs-bot/internal/middleware"
	"go-acs-bot/internal/models"
	"go-acs-bot/internal/notification/telegram"
	"go-acs-bot/internal/registry"
)

// SecretTokenHeader carries the webhook secret registered with setWebhook
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// BotDirectory is the view of the running bots the API needs
type BotDirectory interface {
	Bots() []bot.BotInfo
	Customers(id string) ([]registry.Entry, error)
	HandleWebhook(id string, u telegram.Update) error
	WebhookSecret() string
}

// AuditReader reads the command audit log
type AuditReader interface {
	GetLogs(ctx context.Context, f database.LogFilter) ([]*models.CommandLog, int64, error)
}

// UserStore looks up API operators
type UserStore interface {
	GetUserByUsername(username string) (*models.User, error)
	UpdateUser(user *models.User) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	Bots      BotDirectory
	Logs      AuditReader
	Users     UserStore
	JWTSecret string
	log       zerolog.Logger
	now       func() time.Time
}

// NewHandler creates a new Handler
func NewHandler(bots BotDirectory, logs AuditReader, users UserStore, jwtSecret string) *Handler {
	return &Handler{
		Bots:      bots,
		Logs:      logs,
		Users:     users,
		JWTSecret: jwtSecret,
		log:       logger.WithComponent("api"),
		now:       time.Now,
	}
}

// NewRouter wires every route behind request logging and JWT auth
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(h.log), middleware.AuthMiddleware(h.JWTSecret))

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/telegram/{name}/webhook", h.Webhook).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/bots", h.ListBots).Methods(http.MethodGet)
	api.HandleFunc("/bots/{name}/customers", h.ListCustomers).Methods(http.MethodGet)
	api.HandleFunc("/logs", h.GetLogs).Methods(http.MethodGet)

	return r
}

// Health reports liveness and the number of running bots
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"bots":   len(h.Bots.Bots()),
	})
}

// ============== Auth Handlers ==============

// Login exchanges operator credentials for a JWT
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	user, err := h.Users.GetUserByUsername(req.Username)
	if err != nil || user == nil {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	now := h.now()
	user.LastLogin = &now
	if err := h.Users.UpdateUser(user); err != nil {
		h.log.Warn().Err(err).Str("username", user.Username).Msg("failed to record last login")
	}

	token, err := middleware.GenerateToken(h.JWTSecret, user, now)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   token,
		"user": map[string]string{
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

// ============== Bot Handlers ==============

// ListBots returns every running bot
func (h *Handler) ListBots(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.Bots.Bots())
}

type customerView struct {
	ChatID          string   `json:"chatId"`
	Name            string   `json:"name"`
	DeviceSN        string   `json:"deviceSN"`
	AllowedCommands []string `json:"allowedCommands"`
}

// ListCustomers returns the registry of one bot
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	entries, err := h.Bots.Customers(name)
	if err != nil {
		if errors.Is(err, bot.ErrUnknownBot) {
			respondError(w, http.StatusNotFound, "Bot not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to get customers")
		return
	}

	out := make([]customerView, 0, len(entries))
	for _, e := range entries {
		out = append(out, customerView{
			ChatID:          e.ChatID,
			Name:            e.Customer.Name,
			DeviceSN:        e.Customer.DeviceSN,
			AllowedCommands: e.Customer.AllowedCommands,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

// Webhook accepts one update pushed by Telegram. The reply is sent
// asynchronously so Telegram never waits on the ACS.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	secret := h.Bots.WebhookSecret()
	got := r.Header.Get(SecretTokenHeader)
	if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
		respondError(w, http.StatusUnauthorized, "Invalid secret token")
		return
	}

	var u telegram.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&u); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid update")
		return
	}

	if err := h.Bots.HandleWebhook(mux.Vars(r)["name"], u); err != nil {
		if errors.Is(err, bot.ErrUnknownBot) {
			respondError(w, http.StatusNotFound, "Bot not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to handle update")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ============== Log Handlers ==============

// GetLogs returns the command audit log
func (h *Handler) GetLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := database.LogFilter{
		Bot:     q.Get("bot"),
		ChatID:  q.Get("chatId"),
		Outcome: q.Get("outcome"),
		Limit:   getQueryInt(r, "limit", 100),
		Offset:  getQueryInt(r, "offset", 0),
	}
	if since := q.Get("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid since, expected RFC3339")
			return
		}
		filter.Since = t
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	logs, total, err := h.Logs.GetLogs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to read audit log")
		respondError(w, http.StatusInternalServerError, "Failed to get logs")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"total": total,
	})
}

// ============== Helper Functions ==============

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func getQueryInt(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}
	return i
}
