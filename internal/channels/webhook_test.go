package channels

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Fullex26/hubnotify/internal/config"
	"github.com/Fullex26/hubnotify/pkg/models"
)

func TestWebhook_Name(t *testing.T) {
	w := &Webhook{}
	if got := w.Name(); got != "webhook" {
		t.Errorf("Name() = %q, want %q", got, "webhook")
	}
}

func TestNewWebhook_DefaultMethod(t *testing.T) {
	w := NewWebhook(config.WebhookConfig{URL: "http://example.com"})
	if w.method != "POST" {
		t.Errorf("method = %q, want %q", w.method, "POST")
	}
}

func TestNewWebhook_CustomMethod(t *testing.T) {
	w := NewWebhook(config.WebhookConfig{URL: "http://example.com", Method: "PUT"})
	if w.method != "PUT" {
		t.Errorf("method = %q, want %q", w.method, "PUT")
	}
}

func TestWebhook_Send_Success(t *testing.T) {
	var capturedMethod string
	var capturedContentType string
	var capturedUA string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedMethod = r.Method
		capturedContentType = r.Header.Get("Content-Type")
		capturedUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	wh := &Webhook{url: srv.URL, method: "POST", client: srv.Client()}
	if err := wh.Send(context.Background(), sampleReport(models.StatusSucceeded)); err != nil {
		t.Errorf("Send() error: %v", err)
	}
	if capturedMethod != "POST" {
		t.Errorf("method = %q, want POST", capturedMethod)
	}
	if capturedContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", capturedContentType)
	}
	if !strings.HasPrefix(capturedUA, "hubnotify/") {
		t.Errorf("User-Agent = %q, want hubnotify/<version>", capturedUA)
	}
}

func TestWebhook_Send_ReportBody(t *testing.T) {
	var capturedBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	report := sampleReport(models.StatusFailed)
	report.Error = "no payload"
	report.Payload = json.RawMessage(`{"action":"opened"}`)

	wh := &Webhook{url: srv.URL, method: "POST", client: srv.Client()}
	wh.Send(context.Background(), report)

	var got models.Report
	if err := json.Unmarshal(capturedBody, &got); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if got.ID != report.ID || got.Status != models.StatusFailed || got.Error != "no payload" {
		t.Errorf("payload mismatch: got %+v", got)
	}
	if got.Context.Repository != "octo/app" {
		t.Errorf("context lost: %+v", got.Context)
	}
	if got.Payload != nil {
		t.Errorf("event payload should be dropped by default, got %s", got.Payload)
	}
}

func TestWebhook_Send_IncludePayload(t *testing.T) {
	var capturedBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	report := sampleReport(models.StatusSucceeded)
	report.Payload = json.RawMessage(`{"action":"opened"}`)

	wh := &Webhook{url: srv.URL, method: "POST", includePayload: true, client: srv.Client()}
	wh.Send(context.Background(), report)

	var got models.Report
	if err := json.Unmarshal(capturedBody, &got); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if string(got.Payload) != `{"action":"opened"}` {
		t.Errorf("Payload = %s", got.Payload)
	}
}

func TestWebhook_Send_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	wh := &Webhook{url: srv.URL, method: "POST", client: srv.Client()}
	err := wh.Send(context.Background(), models.Report{})
	if err == nil {
		t.Fatal("expected error for 500 status")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestWebhook_Send_CustomMethod(t *testing.T) {
	var capturedMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedMethod = r.Method
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	wh := &Webhook{url: srv.URL, method: "PUT", client: srv.Client()}
	wh.Send(context.Background(), models.Report{})

	if capturedMethod != "PUT" {
		t.Errorf("method = %q, want PUT", capturedMethod)
	}
}

func TestWebhook_Test(t *testing.T) {
	var capturedBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	wh := &Webhook{url: srv.URL, method: "POST", client: srv.Client()}
	if err := wh.Test(context.Background()); err != nil {
		t.Errorf("Test() error: %v", err)
	}

	var payload map[string]string
	json.Unmarshal(capturedBody, &payload)
	if payload["message"] != "hubnotify test message" {
		t.Errorf("message = %q", payload["message"])
	}
}
