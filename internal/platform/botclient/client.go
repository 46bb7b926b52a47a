// Package botclient talks to the notification bot that relays assignments to
// curators' chats.
//
// The bot exposes two endpoints: GET /health and
// POST /send-assignment?argument=<assignment id>. A successful send answers
// 200 with {"errors": [chat ids that could not be reached]}; any other
// status carries {"detail": "..."} or a plain-text body.
package botclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/umtracker/umtracker-api/internal/config"
	"github.com/umtracker/umtracker-api/internal/domain"
	"github.com/umtracker/umtracker-api/internal/platform/logger"
)

const (
	healthPath = "/health"
	sendPath   = "/send-assignment"

	// maxBodyBytes caps how much of a bot response is read.
	maxBodyBytes = 1 << 20
)

// SendResult is the raw outcome of one send call, before reconciliation.
type SendResult struct {
	Status      domain.DeliveryStatus
	Undelivered []int64
	Error       string
	// HTTPStatus is zero when no response was received.
	HTTPStatus int
}

// Client is an HTTP client for the bot.
type Client struct {
	baseURL       string
	http          *http.Client
	healthTimeout time.Duration
	sendTimeout   time.Duration
	logger        *slog.Logger
}

// New creates a client from cfg. If httpClient is nil, a client with an
// instrumented default transport is used.
func New(cfg config.BotConfig, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		http:          httpClient,
		healthTimeout: cfg.HealthTimeout,
		sendTimeout:   cfg.SendTimeout,
		logger:        logger.With(slog.String("component", "bot_client")),
	}
}

type healthResponse struct {
	BotAvailable *bool `json:"bot_available"`
}

// Ping reports whether the bot is reachable and willing to deliver. A 200
// response without a bot_available field counts as available.
func (c *Client) Ping(ctx context.Context) bool {
	log := logger.FromContextOrDefault(ctx, c.logger)

	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		log.Error("failed to build health request", slog.String("error", err.Error()))
		return false
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("bot health check failed", slog.String("error", err.Error()))
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		log.Warn("bot health check returned non-OK status", slog.Int("status", resp.StatusCode))
		return false
	}

	var body healthResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		log.Warn("bot health response is not JSON", slog.String("error", err.Error()))
		return false
	}
	return body.BotAvailable == nil || *body.BotAvailable
}

type sendResponse struct {
	Errors []int64 `json:"errors"`
}

// SendAssignment asks the bot to deliver assignment id. Transport failures
// are reported in the result rather than as an error.
func (c *Client) SendAssignment(ctx context.Context, id int64) SendResult {
	log := logger.FromContextOrDefault(ctx, c.logger).With(slog.Int64("assignment_id", id))

	ctx, cancel := context.WithTimeout(ctx, c.sendTimeout)
	defer cancel()

	endpoint := c.baseURL + sendPath + "?" + url.Values{"argument": {strconv.FormatInt(id, 10)}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return SendResult{Status: domain.DeliveryFailed, Error: err.Error()}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("bot send failed", slog.String("error", err.Error()))
		return SendResult{Status: domain.DeliveryFailed, Error: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return SendResult{Status: domain.DeliveryFailed, Error: err.Error(), HTTPStatus: resp.StatusCode}
	}

	if resp.StatusCode == http.StatusOK {
		var body sendResponse
		if err := json.Unmarshal(raw, &body); err != nil {
			log.Warn("bot send response is not JSON", slog.String("error", err.Error()))
			return SendResult{Status: domain.DeliveryFailed, Error: err.Error(), HTTPStatus: resp.StatusCode}
		}
		status := domain.DeliverySent
		if len(body.Errors) > 0 {
			status = domain.DeliveryPartiallySent
		}
		return SendResult{Status: status, Undelivered: body.Errors, HTTPStatus: resp.StatusCode}
	}

	detail := errorDetail(raw)
	log.Warn("bot rejected assignment",
		slog.Int("status", resp.StatusCode),
		slog.String("detail", detail))
	return SendResult{Status: domain.DeliveryFailed, Error: detail, HTTPStatus: resp.StatusCode}
}

// errorDetail extracts the reason from a non-OK bot response: the detail
// field of a JSON object, any other JSON value as text, or the raw body.
func errorDetail(raw []byte) string {
	var payload any
	detail := strings.TrimSpace(string(raw))
	if err := json.Unmarshal(raw, &payload); err == nil {
		switch v := payload.(type) {
		case map[string]any:
			detail = ""
			if d, ok := v["detail"]; ok && d != nil {
				if s, ok := d.(string); ok {
					detail = s
				} else {
					detail = fmt.Sprint(d)
				}
			}
		case string:
			detail = v
		}
	}
	if detail == "" {
		return domain.DeliveryErrUnknown
	}
	return detail
}
