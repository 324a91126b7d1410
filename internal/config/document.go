package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"go-acs-bot/internal/models"
	"go-acs-bot/internal/store"
)

var botTokenPattern = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]{35,}$`)

// Document is the persisted bot configuration, keyed by server id
type Document struct {
	Servers map[string]*models.ServerConfig `json:"servers"`
}

// ValidateServer checks one server entry before its bot is started. A server
// without admins is valid; its customers can still use the bot.
func ValidateServer(id string, s *models.ServerConfig) error {
	if s == nil {
		return fmt.Errorf("server %s: empty entry", id)
	}
	if !botTokenPattern.MatchString(s.BotToken) {
		return fmt.Errorf("server %s: bot token missing or malformed", id)
	}
	if !strings.HasPrefix(s.GenieACS.BaseURL, "http://") && !strings.HasPrefix(s.GenieACS.BaseURL, "https://") {
		return fmt.Errorf("server %s: genieacs baseUrl must start with http:// or https://", id)
	}
	return nil
}

// ValidBotToken reports whether token has the shape BotFather hands out
func ValidBotToken(token string) bool {
	return botTokenPattern.MatchString(token)
}

// Repository owns the configuration document. Every registry mutation goes
// through SaveCustomers, which rewrites the whole document.
type Repository struct {
	store store.Store

	// saveMu serializes writes to the store
	saveMu sync.Mutex
	mu     sync.Mutex
	doc    Document
}

func NewRepository(s store.Store) *Repository {
	return &Repository{store: s, doc: Document{Servers: map[string]*models.ServerConfig{}}}
}

// Load reads the document from the store. A missing document is an error:
// without servers there is nothing to run.
func (r *Repository) Load(ctx context.Context) error {
	data, err := r.store.Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("no bot configuration found: %w", err)
	}
	if err != nil {
		return err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse bot configuration: %w", err)
	}
	if doc.Servers == nil {
		doc.Servers = map[string]*models.ServerConfig{}
	}
	for _, s := range doc.Servers {
		if s != nil && s.Customers == nil {
			s.Customers = map[string]*models.Customer{}
		}
	}

	r.mu.Lock()
	r.doc = doc
	r.mu.Unlock()
	return nil
}

// ServerIDs returns the configured server ids, sorted
func (r *Repository) ServerIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.doc.Servers))
	for id := range r.doc.Servers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Server returns a deep copy of one server entry
func (r *Repository) Server(id string) (*models.ServerConfig, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.doc.Servers[id]
	if !ok || s == nil {
		return nil, false
	}
	return cloneServer(s), true
}

// SaveCustomers replaces the customer set of one server and persists the
// whole document. The in-memory document keeps the new set even when the
// write fails.
func (r *Repository) SaveCustomers(ctx context.Context, id string, customers map[string]*models.Customer) error {
	r.saveMu.Lock()
	defer r.saveMu.Unlock()

	r.mu.Lock()
	s, ok := r.doc.Servers[id]
	if !ok || s == nil {
		r.mu.Unlock()
		return fmt.Errorf("unknown server %q", id)
	}
	s.Customers = make(map[string]*models.Customer, len(customers))
	for chatID, c := range customers {
		s.Customers[chatID] = c.Clone()
	}
	data, err := json.MarshalIndent(r.doc, "", "  ")
	r.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encode bot configuration: %w", err)
	}

	return r.store.Save(ctx, data)
}

func cloneServer(s *models.ServerConfig) *models.ServerConfig {
	cp := *s
	cp.AdminIDs = append([]string(nil), s.AdminIDs...)
	cp.Customers = make(map[string]*models.Customer, len(s.Customers))
	for id, c := range s.Customers {
		cp.Customers[id] = c.Clone()
	}
	return &cp
}
