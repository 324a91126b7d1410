package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"go-acs-bot/internal/access"
	"go-acs-bot/internal/config"
	"go-acs-bot/internal/executor"
	"go-acs-bot/internal/genieacs"
	"go-acs-bot/internal/logger"
	"go-acs-bot/internal/notification/telegram"
	"go-acs-bot/internal/registry"
	"go-acs-bot/internal/resolver"
)

// ErrUnknownBot is returned for a server id that is not running
var ErrUnknownBot = errors.New("unknown bot")

// ManagerOptions are the process wide transport settings
type ManagerOptions struct {
	TransportMode  string
	WebhookURL     string
	WebhookSecret  string
	TelegramAPIURL string
	ACSTimeout     time.Duration
	PollTimeout    int
}

// Instance is one running bot
type Instance struct {
	ID         string
	Name       string
	Username   string
	Admins     int
	Dispatcher *Dispatcher
	Registry   *registry.Registry

	client *telegram.Client
}

// BotInfo is the public summary of an instance
type BotInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	Admins    int    `json:"admins"`
	Customers int    `json:"customers"`
}

// Manager runs one independent dispatcher per configured server
type Manager struct {
	repo  *config.Repository
	opts  ManagerOptions
	audit AuditLogger
	log   zerolog.Logger

	mu   sync.RWMutex
	bots map[string]*Instance

	// handlers run on baseCtx, which outlives the pollers so in-flight
	// commands can finish during shutdown
	baseCtx    context.Context
	cancelBase context.CancelFunc
	stopPoll   context.CancelFunc
	pollers    sync.WaitGroup
	inflight   sync.WaitGroup
}

func NewManager(repo *config.Repository, opts ManagerOptions, audit AuditLogger) *Manager {
	return &Manager{
		repo:  repo,
		opts:  opts,
		audit: audit,
		log:   logger.WithComponent("bot-manager"),
		bots:  make(map[string]*Instance),
	}
}

// Start builds and starts a bot for every valid server. Invalid servers are
// skipped; it fails only when no bot could be started.
func (m *Manager) Start(ctx context.Context) error {
	m.baseCtx, m.cancelBase = context.WithCancel(context.WithoutCancel(ctx))
	pollCtx, stopPoll := context.WithCancel(ctx)
	m.stopPoll = stopPoll

	for _, id := range m.repo.ServerIDs() {
		inst, err := m.startBot(ctx, pollCtx, id)
		if err != nil {
			m.log.Error().Err(err).Str("bot", id).Msg("bot not started")
			continue
		}
		m.mu.Lock()
		m.bots[id] = inst
		m.mu.Unlock()
		m.log.Info().
			Str("bot", id).
			Str("username", inst.Username).
			Str("transport", m.opts.TransportMode).
			Msg("bot started")
	}

	if len(m.Bots()) == 0 {
		return errors.New("no bot could be started")
	}
	return nil
}

func (m *Manager) startBot(ctx, pollCtx context.Context, id string) (*Instance, error) {
	srv, found := m.repo.Server(id)
	if !found {
		return nil, ErrUnknownBot
	}
	if err := config.ValidateServer(id, srv); err != nil {
		return nil, err
	}

	log := logger.WithBot("bot", id)
	if len(srv.AdminIDs) == 0 {
		log.Warn().Msg("no admin registered; only customer commands will work")
	}
	acsLog := logger.WithBot("genieacs", id)
	tgLog := logger.WithBot("telegram", id)

	gw := genieacs.NewClient(srv.GenieACS, genieacs.Options{Timeout: m.opts.ACSTimeout, Logger: &acsLog})
	res := resolver.New(gw)
	reg := registry.New(id, srv.Customers, res, m.repo, logger.WithBot("registry", id))
	tg := telegram.New(srv.BotToken, telegram.Options{APIURL: m.opts.TelegramAPIURL, Logger: &tgLog})

	me, err := tg.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("telegram getMe: %w", err)
	}

	name := srv.Name
	if name == "" {
		name = id
	}
	inst := &Instance{
		ID:       id,
		Name:     name,
		Username: me.Username,
		Admins:   len(srv.AdminIDs),
		Registry: reg,
		client:   tg,
	}
	inst.Dispatcher = NewDispatcher(Deps{
		Name:        name,
		BotUsername: me.Username,
		Access:      access.New(srv.AdminIDs, reg),
		Registry:    reg,
		Finder:      res,
		Gateway:     gw,
		Executor:    executor.New(res, gw, logger.WithBot("executor", id)),
		Messenger:   tg,
		Audit:       m.audit,
		Logger:      log,
	})

	if m.opts.TransportMode == config.TransportWebhook {
		url := strings.TrimRight(m.opts.WebhookURL, "/") + WebhookPath(id)
		if err := tg.SetWebhook(ctx, url, m.opts.WebhookSecret); err != nil {
			return nil, fmt.Errorf("telegram setWebhook: %w", err)
		}
		return inst, nil
	}

	// getUpdates is refused while a webhook is registered
	if err := tg.DeleteWebhook(ctx); err != nil {
		log.Warn().Err(err).Msg("deleteWebhook failed")
	}
	poller := telegram.NewPoller(tg, m.opts.PollTimeout, log)
	m.pollers.Add(1)
	go func() {
		defer m.pollers.Done()
		if err := poller.Run(pollCtx, func(u telegram.Update) { m.dispatch(inst, u) }); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("poller stopped")
		}
	}()
	return inst, nil
}

// WebhookPath is the route Telegram posts updates of bot id to
func WebhookPath(id string) string {
	return "/telegram/" + id + "/webhook"
}

// dispatch handles u on its own goroutine
func (m *Manager) dispatch(inst *Instance, u telegram.Update) {
	m.inflight.Add(1)
	go func() {
		defer m.inflight.Done()
		inst.Dispatcher.HandleUpdate(m.baseCtx, u)
	}()
}

// HandleWebhook routes an update received over HTTP to bot id
func (m *Manager) HandleWebhook(id string, u telegram.Update) error {
	inst, found := m.Bot(id)
	if !found {
		return ErrUnknownBot
	}
	m.dispatch(inst, u)
	return nil
}

// WebhookSecret is the secret token Telegram echoes back on every webhook call
func (m *Manager) WebhookSecret() string {
	return m.opts.WebhookSecret
}

func (m *Manager) Bot(id string) (*Instance, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inst, found := m.bots[id]
	return inst, found
}

// Bots returns a summary of every running bot sorted by id
func (m *Manager) Bots() []BotInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	infos := make([]BotInfo, 0, len(m.bots))
	for _, id := range m.repo.ServerIDs() {
		inst, found := m.bots[id]
		if !found {
			continue
		}
		infos = append(infos, BotInfo{
			ID:        inst.ID,
			Name:      inst.Name,
			Username:  inst.Username,
			Admins:    inst.Admins,
			Customers: inst.Registry.Len(),
		})
	}
	return infos
}

// Customers lists the registry of bot id
func (m *Manager) Customers(id string) ([]registry.Entry, error) {
	inst, found := m.Bot(id)
	if !found {
		return nil, ErrUnknownBot
	}
	return inst.Registry.List(), nil
}

// Stop halts the pollers and waits for in-flight commands until ctx expires
func (m *Manager) Stop(ctx context.Context) error {
	if m.stopPoll != nil {
		m.stopPoll()
	}
	m.pollers.Wait()

	done := make(chan struct{})
	go func() {
		m.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.log.Info().Msg("all bots stopped")
		if m.cancelBase != nil {
			m.cancelBase()
		}
		return nil
	case <-ctx.Done():
		if m.cancelBase != nil {
			m.cancelBase()
		}
		return fmt.Errorf("waiting for in-flight commands: %w", ctx.Err())
	}
}
