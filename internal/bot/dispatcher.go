// Package bot turns chat updates into ACS operations for one configured server.
package bot

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"go-acs-bot/internal/access"
	"go-acs-bot/internal/executor"
	"go-acs-bot/internal/format"
	"go-acs-bot/internal/genieacs"
	"go-acs-bot/internal/models"
	"go-acs-bot/internal/notification/telegram"
	"go-acs-bot/internal/registry"
	"go-acs-bot/internal/resolver"
)

// Outcome is the terminal state of one handled message
type Outcome string

const (
	OutcomeIgnored      Outcome = "ignored"
	OutcomeUnauthorized Outcome = "unauthorized"
	OutcomeDenied       Outcome = "denied"
	OutcomeOK           Outcome = "ok"
	OutcomePartial      Outcome = "partial"
	OutcomeUsage        Outcome = "usage"
	OutcomeNotFound     Outcome = "not_found"
	OutcomeInvalid      Outcome = "invalid"
	OutcomeFailed       Outcome = "failed"
)

// Deps are the collaborators of one dispatcher
type Deps struct {
	Name        string
	BotUsername string
	Access      *access.Control
	Registry    *registry.Registry
	Finder      DeviceSource
	Gateway     genieacs.Gateway
	Executor    *executor.Executor
	Messenger   Messenger
	Audit       AuditLogger
	Logger      zerolog.Logger
}

// Dispatcher handles every message of one bot. It is safe for concurrent use.
type Dispatcher struct {
	name        string
	botUsername string
	access      *access.Control
	registry    *registry.Registry
	finder      DeviceSource
	gateway     genieacs.Gateway
	executor    *executor.Executor
	messenger   Messenger
	audit       AuditLogger
	log         zerolog.Logger
}

// NewDispatcher wires deps and registers itself as the registry notifier
func NewDispatcher(deps Deps) *Dispatcher {
	d := &Dispatcher{
		name:        deps.Name,
		botUsername: deps.BotUsername,
		access:      deps.Access,
		registry:    deps.Registry,
		finder:      deps.Finder,
		gateway:     deps.Gateway,
		executor:    deps.Executor,
		messenger:   deps.Messenger,
		audit:       deps.Audit,
		log:         deps.Logger,
	}
	if d.registry != nil {
		d.registry.SetNotifier(d)
	}
	return d
}

// request is one classified command on its way through a handler
type request struct {
	chatID   string
	cmd      command
	decision access.Decision
	log      zerolog.Logger
}

type reply struct {
	text    string
	outcome Outcome
	err     error
}

func okReply(text string) reply {
	return reply{text: text, outcome: OutcomeOK}
}

// HandleUpdate handles a text message update and ignores everything else
func (d *Dispatcher) HandleUpdate(ctx context.Context, u telegram.Update) Outcome {
	if u.Message == nil || u.Message.Text == "" {
		return OutcomeIgnored
	}
	return d.HandleMessage(ctx, u.Message.ChatID(), u.Message.Text)
}

// HandleMessage classifies chatID, runs the command and sends exactly one
// (possibly chunked) reply. Unauthorized identities get no reply at all.
func (d *Dispatcher) HandleMessage(ctx context.Context, chatID, text string) Outcome {
	cmd, isCmd := parseCommand(text, d.botUsername)
	if !isCmd {
		return OutcomeIgnored
	}
	def, known := commands[cmd.name]
	if !known {
		return OutcomeIgnored
	}

	start := time.Now()
	traceID := uuid.NewString()
	req := &request{
		chatID:   chatID,
		cmd:      cmd,
		decision: d.access.Classify(chatID),
		log: d.log.With().
			Str("trace_id", traceID).
			Str("chat_id", chatID).
			Str("command", cmd.name).
			Logger(),
	}

	rep := d.execute(ctx, def, req)

	if rep.text != "" {
		if err := d.send(ctx, chatID, rep.text); err != nil {
			req.log.Error().Err(err).Msg("failed to send reply")
		}
	}

	ev := req.log.Info()
	if rep.err != nil {
		ev = req.log.Warn().Err(rep.err)
	}
	ev.Str("role", string(req.decision.Role)).
		Str("outcome", string(rep.outcome)).
		Dur("took", time.Since(start)).
		Msg("command handled")

	d.record(ctx, req, traceID, rep)
	return rep.outcome
}

// execute gates the command on role, permission and arity, then runs it.
// A panic in a handler becomes an internal error reply.
func (d *Dispatcher) execute(ctx context.Context, def commandDef, req *request) (rep reply) {
	switch def.scope {
	case scopeAdmin:
		if !req.decision.IsAdmin() {
			return reply{outcome: OutcomeUnauthorized}
		}
	case scopeCustomer:
		if !req.decision.IsCustomer() {
			return reply{outcome: OutcomeUnauthorized}
		}
		if def.perm != "" && !req.decision.Customer.Allows(def.perm) {
			return reply{text: msgNotPermitted, outcome: OutcomeDenied}
		}
	}

	if len(req.cmd.args) < def.minArgs {
		return reply{text: usage(def.usage), outcome: OutcomeUsage}
	}

	defer func() {
		if r := recover(); r != nil {
			req.log.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("command handler panicked")
			rep = reply{text: msgInternalError, outcome: OutcomeFailed, err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return def.run(d, ctx, req)
}

// fail maps err onto a user facing reply. generic is used when nothing more
// specific is known.
func (d *Dispatcher) fail(err error, generic string) reply {
	var vErr *executor.ValidationError
	switch {
	case errors.Is(err, resolver.ErrDeviceNotFound):
		return reply{text: msgDeviceNotFound, outcome: OutcomeNotFound, err: err}
	case errors.As(err, &vErr):
		return reply{text: validationMessage(vErr), outcome: OutcomeInvalid, err: err}
	case errors.Is(err, genieacs.ErrCircuitOpen):
		return reply{text: msgACSUnavailable, outcome: OutcomeFailed, err: err}
	}

	switch genieacs.StatusCode(err) {
	case 404:
		return reply{text: msgDeviceNotFound, outcome: OutcomeNotFound, err: err}
	case 400:
		return reply{text: msgInvalidParameter, outcome: OutcomeInvalid, err: err}
	}
	return reply{text: generic, outcome: OutcomeFailed, err: err}
}

func validationMessage(err *executor.ValidationError) string {
	switch err.Field {
	case executor.FieldPassword:
		return msgPasswordTooShort
	case executor.FieldSSID:
		return msgSSIDInvalid
	case executor.FieldWANUsername, executor.FieldWANPassword:
		return msgEmptyCredential
	default:
		return msgInvalidParameter
	}
}

// send splits text into chunks and delivers them in order, stopping at the
// first failure
func (d *Dispatcher) send(ctx context.Context, chatID, text string) error {
	for i, chunk := range format.Chunk(text, format.MaxMessageLength) {
		if err := d.messenger.SendMessage(ctx, chatID, chunk); err != nil {
			return fmt.Errorf("chunk %d: %w", i+1, err)
		}
	}
	return nil
}

// record writes the audit entry. Arguments are never stored since they may
// carry passwords.
func (d *Dispatcher) record(ctx context.Context, req *request, traceID string, rep reply) {
	if d.audit == nil {
		return
	}
	entry := models.CommandLog{
		Bot:       d.name,
		ChatID:    req.chatID,
		Role:      req.decision.Role,
		Command:   req.cmd.name,
		Outcome:   string(rep.outcome),
		TraceID:   traceID,
		CreatedAt: time.Now().UTC(),
	}
	if rep.err != nil {
		entry.Details = rep.err.Error()
	}
	if err := d.audit.LogCommand(ctx, entry); err != nil {
		req.log.Warn().Err(err).Msg("failed to write audit log")
	}
}

// NotifyCustomer sends the welcome or removal notice. It satisfies registry.Notifier.
func (d *Dispatcher) NotifyCustomer(ctx context.Context, chatID string, event registry.Event, customer *models.Customer) error {
	var text string
	switch event {
	case registry.EventRegistered:
		text = renderWelcome(d.name, customer)
	case registry.EventRemoved:
		text = renderFarewell()
	default:
		return fmt.Errorf("unknown registry event %d", event)
	}
	return d.send(ctx, chatID, text)
}
