package models

import (
	"encoding/json"
	"time"
)

// Role is the access level of a chat identity
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleCustomer     Role = "customer"
	RoleUnauthorized Role = "unauthorized"
)

// Customer command permissions stored in allowedCommands
const (
	PermWiFiStatus   = "wifi-status"
	PermWiFiPassword = "wifi-password"
)

// DefaultAllowedCommands is granted to every newly registered customer
func DefaultAllowedCommands() []string {
	return []string{PermWiFiStatus, PermWiFiPassword}
}

// Customer represents a registered end customer bound to one device
type Customer struct {
	Name            string   `json:"name"`
	DeviceSN        string   `json:"deviceSN"` // serial number or PPPoE username
	AllowedCommands []string `json:"allowedCommands"`
}

// Allows reports whether the customer was granted a command permission
func (c *Customer) Allows(perm string) bool {
	for _, p := range c.AllowedCommands {
		if p == perm {
			return true
		}
	}
	return false
}

// Clone returns a deep copy
func (c *Customer) Clone() *Customer {
	if c == nil {
		return nil
	}
	cp := *c
	cp.AllowedCommands = append([]string(nil), c.AllowedCommands...)
	return &cp
}

// ACSConfig holds GenieACS NBI connection settings
type ACSConfig struct {
	BaseURL  string `json:"baseUrl"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ServerConfig is one managed server: a bot, its admins, its ACS and its customers
type ServerConfig struct {
	Name      string               `json:"name"`
	BotToken  string               `json:"botToken"`
	AdminIDs  []string             `json:"adminIds"`
	GenieACS  ACSConfig            `json:"genieacs"`
	Customers map[string]*Customer `json:"customers,omitempty"`
}

// TaskType represents the type of ACS task
type TaskType string

const (
	TaskSetParameterValues TaskType = "setParameterValues"
	TaskReboot             TaskType = "reboot"
)

// ParameterValue is a single [path, value, xsd type] triple
type ParameterValue struct {
	Path  string
	Value string
	Type  string
}

// MarshalJSON encodes the triple as a JSON array, the shape GenieACS expects
func (p ParameterValue) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string{p.Path, p.Value, p.Type})
}

// Task is the body posted to /devices/{id}/tasks
type Task struct {
	Name            TaskType         `json:"name"`
	Device          string           `json:"device,omitempty"`
	ParameterValues []ParameterValue `json:"parameterValues,omitempty"`
}

// CommandLog is one audited bot command
type CommandLog struct {
	ID        int64     `json:"id"`
	Bot       string    `json:"bot"`
	ChatID    string    `json:"chatId"`
	Role      Role      `json:"role"`
	Command   string    `json:"command"`
	Outcome   string    `json:"outcome"`
	Details   string    `json:"details,omitempty"`
	TraceID   string    `json:"traceId"`
	CreatedAt time.Time `json:"createdAt"`
}

// User is an operator of the HTTP API
type User struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Password  string     `json:"-"` // bcrypt hash, never exposed
	Role      string     `json:"role"`
	LastLogin *time.Time `json:"lastLogin"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
