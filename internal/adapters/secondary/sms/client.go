package sms

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lorrc/ticket-relay/internal/core/ports"
)

// Config holds the gateway connection parameters.
type Config struct {
	GatewayURL string
	AccountSID string
	AuthToken  string
	From       string
}

// Client is the outbound SMS gateway adapter: a single form-encoded POST with
// basic auth. Fire-and-forget; the gateway's own retry policy is its concern.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

var _ ports.SMSGateway = (*Client)(nil)

// NewClient creates a gateway client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 10 * time.Second},
		logger: logger.With("component", "sms_gateway"),
	}
}

// Send posts one message to the gateway and reports whether it was accepted.
func (c *Client) Send(ctx context.Context, destination, text string) (ports.SMSResult, error) {
	data := url.Values{}
	data.Set("To", destination)
	data.Set("From", c.cfg.From)
	data.Set("Body", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GatewayURL, strings.NewReader(data.Encode()))
	if err != nil {
		return ports.SMSResult{}, err
	}
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("gateway request failed", "error", err)
		return ports.SMSResult{Delivered: false, Detail: err.Error()}, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	result := ports.SMSResult{
		Delivered: resp.StatusCode < 400,
		Detail:    fmt.Sprintf("gateway responded %d", resp.StatusCode),
	}

	if !result.Delivered {
		c.logger.Warn("gateway rejected message",
			"status_code", resp.StatusCode,
			"body", string(body),
		)
		result.Detail = fmt.Sprintf("gateway responded %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return result, nil
}

// Disabled is the no-op gateway used when SMS is not configured. It logs the
// message it would have sent and reports it as not delivered.
type Disabled struct {
	logger *slog.Logger
}

var _ ports.SMSGateway = (*Disabled)(nil)

// NewDisabled creates the no-op gateway.
func NewDisabled(logger *slog.Logger) *Disabled {
	return &Disabled{logger: logger.With("component", "sms_gateway")}
}

// Send logs and drops the message.
func (d *Disabled) Send(_ context.Context, destination, text string) (ports.SMSResult, error) {
	d.logger.Info("sms gateway disabled, dropping message",
		"destination", destination,
		"length", len(text),
	)
	return ports.SMSResult{Delivered: false, Detail: "sms gateway not configured"}, nil
}
