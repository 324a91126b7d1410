package bot

import (
	"context"

	"go-acs-bot/internal/genieacs"
	"go-acs-bot/internal/models"
)

//go:generate mockgen -destination=../mocks/bot.go -package=mocks go-acs-bot/internal/bot Messenger,AuditLogger,DeviceSource

// Messenger delivers one already formatted MarkdownV2 message
type Messenger interface {
	SendMessage(ctx context.Context, chatID, text string) error
}

// AuditLogger records the outcome of every command
type AuditLogger interface {
	LogCommand(ctx context.Context, entry models.CommandLog) error
}

// DeviceSource is the resolver as seen by the dispatcher
type DeviceSource interface {
	Find(ctx context.Context, term string) (genieacs.Device, error)
	Inventory(ctx context.Context) ([]genieacs.Device, error)
}
