package crm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"intake_backend/platform/logger"
	"intake_backend/platform/metrics"

	"github.com/sony/gobreaker"
)

type stubConfig struct {
	url         string
	residential string
	timeout     time.Duration
}

func (s stubConfig) GetCRMWebhookURL() string            { return s.url }
func (s stubConfig) GetCRMResidentialWebhookURL() string { return s.residential }
func (s stubConfig) GetCRMWebhookTimeout() time.Duration { return s.timeout }
func (s stubConfig) GetA2PCampaignID() string            { return "" }

func newTestClient(cfg stubConfig) *Client {
	return NewClient(cfg, logger.Discard(), metrics.New())
}

func TestSend_Delivered(t *testing.T) {
	bodies := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		var body map[string]any
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		bodies <- body
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(stubConfig{url: srv.URL, timeout: time.Second})
	res := client.Send(context.Background(), TargetAssessment, map[string]any{"email": "ada@example.com"})

	if res.Outcome != Delivered || res.Status != http.StatusOK || res.Err != nil {
		t.Fatalf("unexpected result %+v", res)
	}
	if got := <-bodies; got["email"] != "ada@example.com" {
		t.Fatalf("payload not forwarded: %v", got)
	}
}

func TestSend_NonSuccessStatusFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(stubConfig{url: srv.URL, timeout: time.Second})
	res := client.Send(context.Background(), TargetAssessment, map[string]any{})

	if res.Outcome != Failed || res.Status != http.StatusBadGateway {
		t.Fatalf("expected failed 502, got %+v", res)
	}
	if res.Err == nil || !strings.Contains(res.Err.Error(), "502") {
		t.Fatalf("expected status in error, got %v", res.Err)
	}
}

func TestSend_SkippedWhenNotConfigured(t *testing.T) {
	client := newTestClient(stubConfig{timeout: time.Second})
	res := client.Send(context.Background(), TargetResidential, map[string]any{})
	if res.Outcome != Skipped || !errors.Is(res.Err, ErrNotConfigured) {
		t.Fatalf("expected skipped, got %+v", res)
	}
}

func TestSend_RejectsOversizePayload(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	client := newTestClient(stubConfig{url: srv.URL, timeout: time.Second})
	res := client.Send(context.Background(), TargetAssessment, map[string]string{"blob": strings.Repeat("x", MaxPayloadBytes)})

	if res.Outcome != Failed || !errors.Is(res.Err, ErrPayloadTooLarge) {
		t.Fatalf("expected oversize failure, got %+v", res)
	}
	if calls.Load() != 0 {
		t.Fatalf("oversize payload must not be sent")
	}
}

func TestSend_TimeoutFails(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := newTestClient(stubConfig{url: srv.URL, timeout: 50 * time.Millisecond})
	res := client.Send(context.Background(), TargetAssessment, map[string]any{})
	if res.Outcome != Failed || res.Err == nil {
		t.Fatalf("expected timeout failure, got %+v", res)
	}
}

func TestSend_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(stubConfig{url: srv.URL, residential: srv.URL, timeout: time.Second})
	for i := 0; i < 5; i++ {
		client.Send(context.Background(), TargetAssessment, map[string]any{})
	}

	res := client.Send(context.Background(), TargetAssessment, map[string]any{})
	if res.Outcome != Failed || !errors.Is(res.Err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open breaker, got %+v", res)
	}
	if calls.Load() != 5 {
		t.Fatalf("expected 5 upstream calls before tripping, got %d", calls.Load())
	}

	other := client.Send(context.Background(), TargetResidential, map[string]any{})
	if other.Status != http.StatusInternalServerError {
		t.Fatalf("residential breaker should still be closed, got %+v", other)
	}
}
