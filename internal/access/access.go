// Package access classifies a chat identity against the admin roster and the customer registry.
package access

import (
	"go-acs-bot/internal/models"
)

// CustomerLookup is satisfied by the customer registry
type CustomerLookup interface {
	Get(chatID string) (*models.Customer, bool)
}

// Decision is the outcome of classifying one identity
type Decision struct {
	Role     models.Role
	Customer *models.Customer
}

func (d Decision) IsAdmin() bool    { return d.Role == models.RoleAdmin }
func (d Decision) IsCustomer() bool { return d.Role == models.RoleCustomer }

// Control holds the immutable admin roster of one bot
type Control struct {
	admins    map[string]struct{}
	customers CustomerLookup
}

func New(adminIDs []string, customers CustomerLookup) *Control {
	admins := make(map[string]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &Control{admins: admins, customers: customers}
}

// Classify never fails. Admins win over customers when an identity is both.
func (c *Control) Classify(chatID string) Decision {
	if _, ok := c.admins[chatID]; ok {
		return Decision{Role: models.RoleAdmin}
	}
	if c.customers != nil {
		if cust, ok := c.customers.Get(chatID); ok {
			return Decision{Role: models.RoleCustomer, Customer: cust}
		}
	}
	return Decision{Role: models.RoleUnauthorized}
}

// Admins returns the roster in no particular order
func (c *Control) Admins() []string {
	ids := make([]string, 0, len(c.admins))
	for id := range c.admins {
		ids = append(ids, id)
	}
	return ids
}
