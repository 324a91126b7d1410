// Package resolver maps a search term typed in chat to one device record.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"go-acs-bot/internal/genieacs"
)

// ErrDeviceNotFound is returned when no record matches the term
var ErrDeviceNotFound = errors.New("device not found")

// InventoryError means the inventory itself could not be fetched
type InventoryError struct {
	Cause error
}

func (e *InventoryError) Error() string {
	return fmt.Sprintf("fetch inventory: %v", e.Cause)
}

func (e *InventoryError) Unwrap() error {
	return e.Cause
}

// rule is one way a record can match a term
type rule func(d genieacs.Device, term string) bool

// rules are tried in order against each record; a record matches if any rule does
var rules = []rule{
	func(d genieacs.Device, term string) bool {
		return matchPath(d, "VirtualParameters.getSerialNumber._value", term)
	},
	func(d genieacs.Device, term string) bool {
		return d.Matches(genieacs.PPPoEUsername, term)
	},
	func(d genieacs.Device, term string) bool {
		return d.Matches(genieacs.PPPoEUsername2, term)
	},
	func(d genieacs.Device, term string) bool {
		for _, path := range genieacs.StructuredSerial {
			if matchPath(d, path, term) {
				return true
			}
		}
		return d.Matches(genieacs.WANPPPUsername, term)
	},
}

func matchPath(d genieacs.Device, path, term string) bool {
	v, ok := d.Lookup(path)
	return ok && v == term
}

// Resolve returns the first record in inventory order that satisfies any rule.
// Matching is exact and case-sensitive; an empty term never matches.
func Resolve(term string, inventory []genieacs.Device) (genieacs.Device, bool) {
	if term == "" {
		return nil, false
	}
	for _, d := range inventory {
		for _, r := range rules {
			if r(d, term) {
				return d, true
			}
		}
	}
	return nil, false
}

// ResolveUsername matches only PPPoE usernames, virtual or native
func ResolveUsername(username string, inventory []genieacs.Device) (genieacs.Device, bool) {
	if username == "" {
		return nil, false
	}
	for _, d := range inventory {
		if d.Matches(genieacs.PPPoEUsername, username) ||
			d.Matches(genieacs.PPPoEUsername2, username) ||
			d.Matches(genieacs.WANPPPUsername, username) {
			return d, true
		}
	}
	return nil, false
}

// Resolver resolves terms against a live gateway
type Resolver struct {
	gateway genieacs.Gateway
}

func New(gateway genieacs.Gateway) *Resolver {
	return &Resolver{gateway: gateway}
}

// Find fetches the inventory once and resolves term in it
func (r *Resolver) Find(ctx context.Context, term string) (genieacs.Device, error) {
	inventory, err := r.gateway.ListDevices(ctx)
	if err != nil {
		return nil, &InventoryError{Cause: err}
	}
	d, ok := Resolve(term, inventory)
	if !ok {
		return nil, ErrDeviceNotFound
	}
	return d, nil
}

// Inventory returns the raw inventory, for listings
func (r *Resolver) Inventory(ctx context.Context) ([]genieacs.Device, error) {
	inventory, err := r.gateway.ListDevices(ctx)
	if err != nil {
		return nil, &InventoryError{Cause: err}
	}
	return inventory, nil
}
