package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const (
	DefaultAPIURL  = "https://api.telegram.org"
	defaultTimeout = 15 * time.Second

	// getUpdates holds the connection open for the poll timeout; give the
	// HTTP request this much more before cancelling it
	pollGrace = 10 * time.Second
)

// Options tunes a Client
type Options struct {
	APIURL  string
	Timeout time.Duration
	Logger  *zerolog.Logger
}

// Client represents a Telegram bot client
type Client struct {
	http    *resty.Client
	token   string
	timeout time.Duration
	log     zerolog.Logger
}

// New creates a new Telegram client for one bot token
func New(token string, opts Options) *Client {
	apiURL := strings.TrimRight(opts.APIURL, "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	return &Client{
		http: resty.New().
			SetBaseURL(apiURL+"/bot"+token).
			SetHeader("Content-Type", "application/json"),
		token:   token,
		timeout: timeout,
		log:     log,
	}
}

// GetMe checks the token and returns the bot account
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var me User
	if err := c.call(ctx, "getMe", nil, &me, c.timeout); err != nil {
		return nil, err
	}
	return &me, nil
}

// SendMessage sends a message to Telegram with MarkdownV2 formatting
func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	if chatID == "" {
		return fmt.Errorf("telegram sendMessage: empty chat id")
	}
	req := sendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: ParseModeMarkdownV2,
	}
	return c.call(ctx, "sendMessage", req, nil, c.timeout)
}

// GetUpdates long-polls for new messages starting at offset
func (c *Client) GetUpdates(ctx context.Context, offset int64, pollTimeout int) ([]Update, error) {
	req := getUpdatesRequest{
		Offset:         offset,
		Timeout:        pollTimeout,
		AllowedUpdates: []string{"message"},
	}
	var updates []Update
	wait := time.Duration(pollTimeout)*time.Second + pollGrace
	if err := c.call(ctx, "getUpdates", req, &updates, wait); err != nil {
		return nil, err
	}
	return updates, nil
}

// SetWebhook points Telegram at url; calls carry secret in the
// X-Telegram-Bot-Api-Secret-Token header
func (c *Client) SetWebhook(ctx context.Context, url, secret string) error {
	req := setWebhookRequest{
		URL:            url,
		SecretToken:    secret,
		AllowedUpdates: []string{"message"},
	}
	return c.call(ctx, "setWebhook", req, nil, c.timeout)
}

// DeleteWebhook switches the bot back to getUpdates
func (c *Client) DeleteWebhook(ctx context.Context) error {
	return c.call(ctx, "deleteWebhook", struct{}{}, nil, c.timeout)
}

func (c *Client) call(ctx context.Context, method string, body, out interface{}, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	start := time.Now()
	resp, err := req.Post("/" + method)
	if err != nil {
		return &ConnectionError{Method: method, msg: c.scrub(err.Error())}
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return &APIError{Method: method, Code: resp.StatusCode(), Description: http.StatusText(resp.StatusCode())}
	}
	if !env.OK {
		apiErr := &APIError{Method: method, Code: env.ErrorCode, Description: env.Description}
		if env.Parameters != nil {
			apiErr.RetryAfter = env.Parameters.RetryAfter
		}
		return apiErr
	}

	c.log.Debug().Str("method", method).Dur("latency", time.Since(start)).Msg("telegram call")
	if out != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("telegram %s: decode result: %w", method, err)
		}
	}
	return nil
}

// scrub removes the bot token, which is part of every request URL
func (c *Client) scrub(s string) string {
	if c.token == "" {
		return s
	}
	return strings.ReplaceAll(s, c.token, "<token>")
}
