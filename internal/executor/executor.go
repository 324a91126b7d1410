// Package executor turns authorized intents into GenieACS tasks.
package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"go-acs-bot/internal/format"
	"go-acs-bot/internal/genieacs"
	"go-acs-bot/internal/models"
)

const (
	MinWiFiPasswordLength = 8
	MaxSSIDLength         = 32

	xsdString = "xsd:string"

	pathKeyPassphrase = "InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.KeyPassphrase"
	pathPreSharedKey  = "InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.PreSharedKey.1.PreSharedKey"
	pathSSID          = "InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.SSID"
	pathWANUsername   = "InternetGatewayDevice.WANDevice.1.WANConnectionDevice.1.WANPPPConnection.1.Username"
	pathWANPassword   = "InternetGatewayDevice.WANDevice.1.WANConnectionDevice.1.WANPPPConnection.1.Password"
)

// ValidationError fields
const (
	FieldPassword    = "password"
	FieldSSID        = "ssid"
	FieldWANUsername = "wan_username"
	FieldWANPassword = "wan_password"
	FieldDevice      = "device"
)

// ValidationError rejects an intent before any remote call is made
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DeviceFinder resolves a search term to a device record
type DeviceFinder interface {
	Find(ctx context.Context, term string) (genieacs.Device, error)
}

// Executor is stateless; every call resolves the device again
type Executor struct {
	finder  DeviceFinder
	gateway genieacs.Gateway
	log     zerolog.Logger
}

func New(finder DeviceFinder, gateway genieacs.Gateway, log zerolog.Logger) *Executor {
	return &Executor{finder: finder, gateway: gateway, log: log}
}

// Reboot queues a reboot task
func (e *Executor) Reboot(ctx context.Context, term string) (genieacs.Device, error) {
	return e.run(ctx, term, models.Task{Name: models.TaskReboot})
}

// SetWiFiPassword writes the WPA passphrase to both places devices read it from
func (e *Executor) SetWiFiPassword(ctx context.Context, term, password string) (genieacs.Device, error) {
	if err := ValidateWiFiPassword(password); err != nil {
		return nil, err
	}
	return e.run(ctx, term, setParams(
		models.ParameterValue{Path: pathKeyPassphrase, Value: password, Type: xsdString},
		models.ParameterValue{Path: pathPreSharedKey, Value: password, Type: xsdString},
	))
}

// SetWiFiSSID renames the primary WLAN. The vendor alias field depends on the
// manufacturer, so the device is resolved before the task is built.
func (e *Executor) SetWiFiSSID(ctx context.Context, term, ssid string) (genieacs.Device, error) {
	if err := ValidateSSID(ssid); err != nil {
		return nil, err
	}
	device, err := e.finder.Find(ctx, term)
	if err != nil {
		return nil, err
	}
	params := []models.ParameterValue{{Path: pathSSID, Value: ssid, Type: xsdString}}
	if alias := SSIDAliasPath(device.ValueOr(genieacs.Manufacturer, "")); alias != "" {
		params = append(params, models.ParameterValue{Path: alias, Value: ssid, Type: xsdString})
	}
	return device, e.post(ctx, device, setParams(params...))
}

// SetWANCredentials rewrites the PPPoE login of the first WAN PPP connection
func (e *Executor) SetWANCredentials(ctx context.Context, term, username, password string) (genieacs.Device, error) {
	if strings.TrimSpace(username) == "" {
		return nil, &ValidationError{Field: FieldWANUsername, Reason: "must not be empty"}
	}
	if password == "" {
		return nil, &ValidationError{Field: FieldWANPassword, Reason: "must not be empty"}
	}
	return e.run(ctx, term, setParams(
		models.ParameterValue{Path: pathWANUsername, Value: username, Type: xsdString},
		models.ParameterValue{Path: pathWANPassword, Value: password, Type: xsdString},
	))
}

// ValidateWiFiPassword enforces the WPA2 minimum length, counted in UTF-16 units
func ValidateWiFiPassword(password string) error {
	if format.Length(password) < MinWiFiPasswordLength {
		return &ValidationError{
			Field:  FieldPassword,
			Reason: fmt.Sprintf("must be at least %d characters", MinWiFiPasswordLength),
		}
	}
	return nil
}

func ValidateSSID(ssid string) error {
	if strings.TrimSpace(ssid) == "" {
		return &ValidationError{Field: FieldSSID, Reason: "must not be empty"}
	}
	if len(ssid) > MaxSSIDLength {
		return &ValidationError{Field: FieldSSID, Reason: fmt.Sprintf("must be at most %d bytes", MaxSSIDLength)}
	}
	return nil
}

func (e *Executor) run(ctx context.Context, term string, task models.Task) (genieacs.Device, error) {
	device, err := e.finder.Find(ctx, term)
	if err != nil {
		return nil, err
	}
	return device, e.post(ctx, device, task)
}

func (e *Executor) post(ctx context.Context, device genieacs.Device, task models.Task) error {
	id := device.ID()
	if id == "" {
		return &ValidationError{Field: FieldDevice, Reason: "record has no usable id"}
	}
	if err := e.gateway.PostTask(ctx, id, task); err != nil {
		e.log.Error().Err(err).Str("device_id", id).Str("task", string(task.Name)).Msg("task rejected")
		return err
	}
	e.log.Info().Str("device_id", id).Str("task", string(task.Name)).Msg("task queued")
	return nil
}

func setParams(params ...models.ParameterValue) models.Task {
	return models.Task{Name: models.TaskSetParameterValues, ParameterValues: params}
}
