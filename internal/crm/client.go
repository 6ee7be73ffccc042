// Package crm delivers accepted leads to the external CRM webhooks.
//
// Delivery is best effort: every attempt yields a Result and never an error
// that callers must propagate to the submitter.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"intake_backend/platform/config"
	"intake_backend/platform/logger"
	"intake_backend/platform/metrics"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
)

// MaxPayloadBytes caps the encoded webhook body.
const MaxPayloadBytes = 100 * 1024

// Targets identify which webhook a payload is sent to.
const (
	TargetAssessment  = "assessment"
	TargetResidential = "residential"
)

// Outcome classifies a delivery attempt.
type Outcome string

const (
	Delivered Outcome = "delivered"
	Failed    Outcome = "failed"
	Skipped   Outcome = "skipped"
	// Queued means the attempt was handed to the background worker.
	Queued Outcome = "queued"
)

var (
	ErrPayloadTooLarge = errors.New("webhook payload exceeds size limit")
	ErrNotConfigured   = errors.New("webhook url not configured")
)

// Result describes one delivery attempt.
type Result struct {
	Target  string
	Outcome Outcome
	Status  int
	Latency time.Duration
	Err     error
}

// Delivery is one payload bound for one webhook target.
type Delivery struct {
	SubmissionID uuid.UUID
	Target       string
	Tier         string
	Payload      any
}

// Dispatcher hands a delivery to the CRM, either inline or through a queue.
type Dispatcher interface {
	Dispatch(ctx context.Context, d Delivery) Result
}

// Client posts JSON payloads to the configured webhook URLs. Each target has
// its own circuit breaker so a failing residential endpoint does not block
// assessment delivery.
type Client struct {
	urls     map[string]string
	http     *http.Client
	breakers map[string]*gobreaker.CircuitBreaker
	log      *logger.Logger
	metrics  *metrics.Metrics
}

var _ Dispatcher = (*Client)(nil)

// NewClient builds a client for both webhook targets. Targets without a URL
// are skipped at send time.
func NewClient(cfg config.CRMConfig, log *logger.Logger, m *metrics.Metrics) *Client {
	timeout := cfg.GetCRMWebhookTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	urls := map[string]string{
		TargetAssessment:  strings.TrimSpace(cfg.GetCRMWebhookURL()),
		TargetResidential: strings.TrimSpace(cfg.GetCRMResidentialWebhookURL()),
	}
	breakers := make(map[string]*gobreaker.CircuitBreaker, len(urls))
	for target := range urls {
		breakers[target] = newBreaker("crm-" + target)
	}

	return &Client{
		urls:     urls,
		http:     &http.Client{Timeout: timeout},
		breakers: breakers,
		log:      log,
		metrics:  m,
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
	})
}

// Configured reports whether target has a webhook URL.
func (c *Client) Configured(target string) bool {
	return c != nil && c.urls[target] != ""
}

// Dispatch delivers d inline.
func (c *Client) Dispatch(ctx context.Context, d Delivery) Result {
	return c.Send(ctx, d.Target, d.Payload)
}

// Send posts payload to target and records the outcome.
func (c *Client) Send(ctx context.Context, target string, payload any) Result {
	res := c.send(ctx, target, payload)
	if c != nil {
		c.metrics.RecordWebhook(target, string(res.Outcome), res.Latency)
		c.log.WithContext(ctx).WebhookDelivery(target, string(res.Outcome), res.Status, res.Latency, res.Err)
	}
	return res
}

func (c *Client) send(ctx context.Context, target string, payload any) Result {
	res := Result{Target: target, Outcome: Skipped}
	if !c.Configured(target) {
		res.Err = ErrNotConfigured
		return res
	}

	body, err := json.Marshal(payload)
	if err != nil {
		res.Outcome, res.Err = Failed, fmt.Errorf("marshal webhook payload: %w", err)
		return res
	}
	if len(body) > MaxPayloadBytes {
		res.Outcome, res.Err = Failed, ErrPayloadTooLarge
		return res
	}

	start := time.Now()
	status, err := c.breakers[target].Execute(func() (any, error) {
		return c.post(ctx, c.urls[target], body)
	})
	res.Latency = time.Since(start)
	if code, ok := status.(int); ok {
		res.Status = code
	}
	if err != nil {
		res.Outcome, res.Err = Failed, err
		return res
	}
	res.Outcome = Delivered
	return res
}

func (c *Client) post(ctx context.Context, url string, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("webhook request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
