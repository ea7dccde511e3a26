// Package client talks to the remote answering service. One exchange is a
// single request/response pair: the user's message plus an optional
// session identifier go out, the assistant's reply and its sources come
// back.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pawchat/pawchat/internal/session"
)

// Client is the HTTP exchange client for the chat service.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the service at baseURL. A zero timeout leaves
// the transport default in place.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Reply is a successful exchange outcome. ChatID is authoritative: the
// service echoes the id it was given, or mints one when the request
// carried none.
type Reply struct {
	ChatID  string
	Message string
	Sources []session.Source
}

// StatusError reports a non-2xx response from the service.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chat service returned status %d", e.Code)
}

type chatRequest struct {
	Message string  `json:"message"`
	ChatID  *string `json:"chat_id"`
}

type chatResponse struct {
	ChatID  string           `json:"chat_id"`
	Message string           `json:"message"`
	Sources []session.Source `json:"sources"`
}

// Send posts one message to the service and waits for the reply. chatID
// may be empty, in which case the request carries a null chat_id and the
// service mints one. Send never retries: the service's idempotency under
// retry is unknown.
//
// On any failure — transport, non-2xx status, undecodable body — the
// returned Reply is nil; callers must not mutate session state from a
// failed exchange.
func (c *Client) Send(ctx context.Context, message, chatID string) (*Reply, error) {
	reqBody := chatRequest{Message: message}
	if chatID != "" {
		reqBody.ChatID = &chatID
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// The error body is not required to conform to any schema.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var body chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}

	return &Reply{
		ChatID:  body.ChatID,
		Message: body.Message,
		Sources: body.Sources,
	}, nil
}

// Health checks the service's /api/health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("health request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}
