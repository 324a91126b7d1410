package telegram

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ParseModeMarkdownV2 is the only parse mode the bot sends
const ParseModeMarkdownV2 = "MarkdownV2"

// Update is one inbound event from getUpdates or a webhook call
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Message is the subset of a Telegram message the bot reads
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Date      int64  `json:"date"`
	Text      string `json:"text,omitempty"`
}

// ChatID returns the chat identity as the string form used in configuration
func (m *Message) ChatID() string {
	return strconv.FormatInt(m.Chat.ID, 10)
}

type Chat struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	Username string `json:"username,omitempty"`
}

type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	Username  string `json:"username,omitempty"`
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type getUpdatesRequest struct {
	Offset         int64    `json:"offset,omitempty"`
	Timeout        int      `json:"timeout"`
	AllowedUpdates []string `json:"allowed_updates,omitempty"`
}

type setWebhookRequest struct {
	URL            string   `json:"url"`
	SecretToken    string   `json:"secret_token,omitempty"`
	AllowedUpdates []string `json:"allowed_updates,omitempty"`
}

type responseParameters struct {
	RetryAfter int `json:"retry_after,omitempty"`
}

// envelope is the common Bot API response wrapper
type envelope struct {
	OK          bool                `json:"ok"`
	Result      json.RawMessage     `json:"result,omitempty"`
	Description string              `json:"description,omitempty"`
	ErrorCode   int                 `json:"error_code,omitempty"`
	Parameters  *responseParameters `json:"parameters,omitempty"`
}

// APIError is a Bot API call that came back with ok=false
type APIError struct {
	Method      string
	Code        int
	Description string
	RetryAfter  int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: %d %s", e.Method, e.Code, e.Description)
}

// IsForbidden is true when the user blocked the bot or never started it
func (e *APIError) IsForbidden() bool {
	return e.Code == 403
}

// ConnectionError wraps a transport failure with the bot token scrubbed
type ConnectionError struct {
	Method string
	msg    string
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("telegram %s: %s", e.Method, e.msg)
}
