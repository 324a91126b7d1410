package genieacs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"go-acs-bot/internal/models"
)

const (
	defaultTimeout = 30 * time.Second

	breakerMaxRequests      = 1
	breakerInterval         = 60 * time.Second
	breakerTimeout          = 30 * time.Second
	breakerFailureThreshold = 5
)

//go:generate mockgen -destination=../mocks/genieacs.go -package=mocks go-acs-bot/internal/genieacs Gateway

// Gateway is the subset of the GenieACS NBI the bot uses
type Gateway interface {
	ListDevices(ctx context.Context) ([]Device, error)
	GetDevice(ctx context.Context, id string) (Device, error)
	PostTask(ctx context.Context, id string, task models.Task) error
}

// Options tunes a Client
type Options struct {
	Timeout time.Duration
	Logger  *zerolog.Logger
}

// Client talks to one GenieACS instance
type Client struct {
	http    *resty.Client
	cb      *gobreaker.CircuitBreaker
	baseURL string
	log     zerolog.Logger
}

var _ Gateway = (*Client)(nil)

// NewClient builds a client for cfg. Credentials are sent as HTTP basic auth.
func NewClient(cfg models.ACSConfig, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	httpClient := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if cfg.Username != "" || cfg.Password != "" {
		httpClient.SetBasicAuth(cfg.Username, cfg.Password)
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	settings := gobreaker.Settings{
		Name:        "genieacs:" + baseURL,
		MaxRequests: breakerMaxRequests,
		Interval:    breakerInterval,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("genieacs circuit breaker state changed")
		},
	}

	return &Client{
		http:    httpClient,
		cb:      gobreaker.NewCircuitBreaker(settings),
		baseURL: baseURL,
		log:     log,
	}
}

// ListDevices fetches the whole inventory
func (c *Client) ListDevices(ctx context.Context) ([]Device, error) {
	body, err := c.do(ctx, http.MethodGet, "/devices", nil)
	if err != nil {
		return nil, err
	}
	var devices []Device
	if err := json.Unmarshal(body, &devices); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return devices, nil
}

// GetDevice fetches one device record by its ACS id
func (c *Client) GetDevice(ctx context.Context, id string) (Device, error) {
	body, err := c.do(ctx, http.MethodGet, "/devices/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var device Device
	if err := json.Unmarshal(body, &device); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if device == nil {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: "device not found"}
	}
	return device, nil
}

// PostTask queues a task and asks the ACS to send a connection request.
// It does not wait for the device to apply it.
func (c *Client) PostTask(ctx context.Context, id string, task models.Task) error {
	path := "/devices/" + url.PathEscape(id) + "/tasks?connection_request"
	_, err := c.do(ctx, http.MethodPost, path, task)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	start := time.Now()

	result, err := c.cb.Execute(func() (interface{}, error) {
		req := c.http.R().SetContext(ctx)
		if body != nil {
			req.SetHeader("Content-Type", "application/json").SetBody(body)
		}
		resp, err := req.Execute(method, c.baseURL+path)
		if err != nil {
			return nil, &ConnectionError{Cause: err}
		}

		status := resp.StatusCode()
		latency := time.Since(start)

		if status >= http.StatusInternalServerError {
			apiErr := &APIError{StatusCode: status, Message: strings.TrimSpace(resp.String())}
			c.log.Error().Err(apiErr).Str("method", method).Str("path", path).Dur("latency", latency).Msg("genieacs request failed")
			return nil, apiErr
		}
		if status < 200 || status >= 300 {
			apiErr := &APIError{StatusCode: status, Message: strings.TrimSpace(resp.String())}
			c.log.Warn().Err(apiErr).Str("method", method).Str("path", path).Dur("latency", latency).Msg("genieacs request rejected")
			// client errors do not count against the breaker
			return apiErr, nil
		}

		c.log.Debug().Str("method", method).Str("path", path).Int("status", status).Dur("latency", latency).Msg("genieacs request")
		return resp.Body(), nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrCircuitOpen
		}
		return nil, err
	}

	if apiErr, ok := result.(*APIError); ok {
		return nil, apiErr
	}
	b, ok := result.([]byte)
	if !ok {
		return nil, ErrInvalidResponse
	}
	return b, nil
}
