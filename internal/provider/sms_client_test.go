package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSMSClient_SendSuccess(t *testing.T) {
	t.Parallel()

	var gotReq map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if key := r.Header.Get("apiKey"); key != "secret-key" {
			t.Fatalf("expected apiKey header, got %q", key)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"SMSMessageData": map[string]any{
				"Message": "Sent to 1/1",
				"Recipients": []map[string]any{
					{"number": "+254700000000", "status": "Success", "messageId": "ATXid_1", "cost": "KES 0.80"},
				},
			},
		})
	}))
	t.Cleanup(srv.Close)

	c := NewSMSClient(srv.URL, "sandbox", "secret-key")

	out, err := c.Send(context.Background(), "Hello", "DECODED", []string{"+254700000000"}, true)
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	if len(out) != 1 {
		t.Fatalf("expected 1 recipient outcome, got %d", len(out))
	}
	if out[0].Number != "+254700000000" || out[0].MessageID != "ATXid_1" {
		t.Fatalf("unexpected outcome: %+v", out[0])
	}

	if gotReq["username"] != "sandbox" {
		t.Fatalf("expected username in request body, got %v", gotReq["username"])
	}
	if gotReq["to"] != "+254700000000" {
		t.Fatalf("expected joined recipients, got %v", gotReq["to"])
	}
	if gotReq["message"] != "Hello" {
		t.Fatalf("expected message body, got %v", gotReq["message"])
	}
	if gotReq["enqueue"] != float64(1) {
		t.Fatalf("expected enqueue=1, got %v", gotReq["enqueue"])
	}
}

func TestSMSClient_SendRejectedStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	c := NewSMSClient(srv.URL, "sandbox", "wrong")

	_, err := c.Send(context.Background(), "Hello", "", []string{"+254700000000"}, false)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestSMSClient_SendConnectionError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewSMSClient(srv.URL, "sandbox", "key")

	_, err := c.Send(context.Background(), "Hello", "", []string{"+254700000000"}, false)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestSMSClient_SendUndecodableBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>nope</html>"))
	}))
	t.Cleanup(srv.Close)

	c := NewSMSClient(srv.URL, "sandbox", "key")

	_, err := c.Send(context.Background(), "Hello", "", []string{"+254700000000"}, false)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
