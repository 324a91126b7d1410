// Package registry keeps the customers of one bot and persists them on every change.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"go-acs-bot/internal/genieacs"
	"go-acs-bot/internal/models"
)

//go:generate mockgen -destination=../mocks/registry.go -package=mocks go-acs-bot/internal/registry Persister,Notifier,DeviceFinder

// ErrCustomerNotFound is returned by Remove for an unknown identity
var ErrCustomerNotFound = errors.New("customer not found")

// PersistenceError means the change is live in memory but was not saved
type PersistenceError struct {
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist customers: %v", e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// Event tells the notifier what happened to a customer
type Event int

const (
	EventRegistered Event = iota
	EventRemoved
)

// Persister saves the full customer set of one server
type Persister interface {
	SaveCustomers(ctx context.Context, server string, customers map[string]*models.Customer) error
}

// Notifier informs a customer about a change to their registration
type Notifier interface {
	NotifyCustomer(ctx context.Context, chatID string, event Event, customer *models.Customer) error
}

// DeviceFinder resolves a serial number or PPPoE username
type DeviceFinder interface {
	Find(ctx context.Context, term string) (genieacs.Device, error)
}

// Result describes a completed mutation. NotifyErr is a soft failure.
type Result struct {
	Customer  *models.Customer
	Device    genieacs.Device
	NotifyErr error
}

// Registry is safe for concurrent use. Concurrent writes for the same identity
// are last-write-wins.
type Registry struct {
	server    string
	persister Persister
	finder    DeviceFinder
	log       zerolog.Logger

	// writeMu orders mutations with their saves so the last saved snapshot
	// is always the newest one
	writeMu   sync.Mutex
	mu        sync.RWMutex
	customers map[string]*models.Customer
	notifier  Notifier
}

// New seeds the registry with the customers loaded from the configuration document
func New(server string, initial map[string]*models.Customer, finder DeviceFinder, persister Persister, log zerolog.Logger) *Registry {
	customers := make(map[string]*models.Customer, len(initial))
	for id, c := range initial {
		if c == nil {
			continue
		}
		customers[id] = c.Clone()
	}
	return &Registry{
		server:    server,
		persister: persister,
		finder:    finder,
		log:       log,
		customers: customers,
	}
}

// SetNotifier wires the outbound channel used for welcome and removal notices
func (r *Registry) SetNotifier(n Notifier) {
	r.mu.Lock()
	r.notifier = n
	r.mu.Unlock()
}

// Get returns a copy of the customer bound to chatID
func (r *Registry) Get(chatID string) (*models.Customer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.customers[chatID]
	if !ok {
		return nil, false
	}
	return c.Clone(), true
}

// Entry is one row of List
type Entry struct {
	ChatID   string
	Customer *models.Customer
}

// List returns all customers sorted by chat id
func (r *Registry) List() []Entry {
	r.mu.RLock()
	entries := make([]Entry, 0, len(r.customers))
	for id, c := range r.customers {
		entries = append(entries, Entry{ChatID: id, Customer: c.Clone()})
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].ChatID < entries[j].ChatID })
	return entries
}

// Len returns the number of registered customers
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.customers)
}

// Add binds chatID to the device identified by deviceSN. The device must resolve
// first; otherwise nothing changes. An existing binding is overwritten.
func (r *Registry) Add(ctx context.Context, chatID, name, deviceSN string) (*Result, error) {
	device, err := r.finder.Find(ctx, deviceSN)
	if err != nil {
		return nil, err
	}

	customer := &models.Customer{
		Name:            name,
		DeviceSN:        deviceSN,
		AllowedCommands: models.DefaultAllowedCommands(),
	}

	r.writeMu.Lock()
	r.mu.Lock()
	r.customers[chatID] = customer
	snapshot := r.snapshotLocked()
	notifier := r.notifier
	r.mu.Unlock()
	persistErr := r.persist(ctx, snapshot)
	r.writeMu.Unlock()

	r.log.Info().Str("chat_id", chatID).Str("device", deviceSN).Msg("customer registered")

	res := &Result{Customer: customer.Clone(), Device: device}
	res.NotifyErr = r.notify(ctx, notifier, chatID, EventRegistered, customer)
	if persistErr != nil {
		return res, persistErr
	}
	return res, nil
}

// Remove deletes the binding of chatID
func (r *Registry) Remove(ctx context.Context, chatID string) (*Result, error) {
	r.writeMu.Lock()
	r.mu.Lock()
	customer, ok := r.customers[chatID]
	if !ok {
		r.mu.Unlock()
		r.writeMu.Unlock()
		return nil, ErrCustomerNotFound
	}
	delete(r.customers, chatID)
	snapshot := r.snapshotLocked()
	notifier := r.notifier
	r.mu.Unlock()
	persistErr := r.persist(ctx, snapshot)
	r.writeMu.Unlock()

	r.log.Info().Str("chat_id", chatID).Msg("customer removed")

	res := &Result{Customer: customer.Clone()}
	res.NotifyErr = r.notify(ctx, notifier, chatID, EventRemoved, customer)
	if persistErr != nil {
		return res, persistErr
	}
	return res, nil
}

func (r *Registry) snapshotLocked() map[string]*models.Customer {
	snap := make(map[string]*models.Customer, len(r.customers))
	for id, c := range r.customers {
		snap[id] = c.Clone()
	}
	return snap
}

func (r *Registry) persist(ctx context.Context, snapshot map[string]*models.Customer) error {
	if r.persister == nil {
		return nil
	}
	if err := r.persister.SaveCustomers(ctx, r.server, snapshot); err != nil {
		r.log.Error().Err(err).Msg("failed to persist customers")
		return &PersistenceError{Cause: err}
	}
	return nil
}

func (r *Registry) notify(ctx context.Context, n Notifier, chatID string, ev Event, c *models.Customer) error {
	if n == nil {
		return nil
	}
	if err := n.NotifyCustomer(ctx, chatID, ev, c.Clone()); err != nil {
		r.log.Warn().Err(err).Str("chat_id", chatID).Msg("customer notification failed")
		return err
	}
	return nil
}
