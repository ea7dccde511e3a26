package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSend_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/chat" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}

		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["message"] != "What should I feed my dog?" {
			t.Errorf("unexpected message: %v", req["message"])
		}
		if req["chat_id"] != "chat_local1" {
			t.Errorf("unexpected chat_id: %v", req["chat_id"])
		}

		json.NewEncoder(w).Encode(map[string]any{
			"chat_id": "chat_local1",
			"message": "A balanced diet.",
			"sources": []map[string]any{
				{"text": "Dogs require protein...", "score": 0.85, "url": "https://example.com", "title": "Nutrition"},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, 0)
	reply, err := c.Send(context.Background(), "What should I feed my dog?", "chat_local1")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if reply.ChatID != "chat_local1" {
		t.Errorf("expected echoed chat id, got %q", reply.ChatID)
	}
	if reply.Message != "A balanced diet." {
		t.Errorf("unexpected reply message: %q", reply.Message)
	}
	if len(reply.Sources) != 1 || reply.Sources[0].Score != 0.85 {
		t.Errorf("sources not decoded: %+v", reply.Sources)
	}
}

func TestSend_NullChatID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if v, present := req["chat_id"]; !present || v != nil {
			t.Errorf("expected chat_id null, got %v (present=%v)", v, present)
		}
		// Service mints an id when the request carries none.
		json.NewEncoder(w).Encode(map[string]any{"chat_id": "chat_minted01", "message": "Hi"})
	}))
	defer srv.Close()

	reply, err := New(srv.URL, 0).Send(context.Background(), "Hello", "")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if reply.ChatID != "chat_minted01" {
		t.Errorf("expected minted chat id, got %q", reply.ChatID)
	}
	if len(reply.Sources) != 0 {
		t.Errorf("absent sources should decode as none, got %+v", reply.Sources)
	}
}

func TestSend_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Error processing request"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	reply, err := New(srv.URL, 0).Send(context.Background(), "Hello", "")
	if reply != nil {
		t.Errorf("failed exchange must not return partial data, got %+v", reply)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusInternalServerError {
		t.Errorf("expected StatusError 500, got %v", err)
	}
}

func TestSend_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{{not json"))
	}))
	defer srv.Close()

	reply, err := New(srv.URL, 0).Send(context.Background(), "Hello", "")
	if err == nil {
		t.Fatal("expected error for malformed body")
	}
	if reply != nil {
		t.Errorf("failed exchange must not return partial data, got %+v", reply)
	}
}

func TestSend_Unreachable(t *testing.T) {
	// Closed server: connection refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	if _, err := New(srv.URL, 0).Send(context.Background(), "Hello", ""); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}))
	defer srv.Close()

	if err := New(srv.URL, 0).Health(context.Background()); err != nil {
		t.Errorf("Health: %v", err)
	}
}

func TestHealth_Down(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	var se *StatusError
	if err := New(srv.URL, 0).Health(context.Background()); !errors.As(err, &se) {
		t.Errorf("expected StatusError, got %v", err)
	}
}
