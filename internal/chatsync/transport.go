package chatsync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/curlmap/curlmap-api/internal/domain/chat"
	"github.com/curlmap/curlmap-api/internal/pkg/response"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx answer from the chat API
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("chat api error: status=%d code=%s message=%s request_id=%s", e.Status, e.Code, e.Message, e.RequestID)
	}
	return fmt.Sprintf("chat api error: status=%d code=%s message=%s", e.Status, e.Code, e.Message)
}

// HTTPTransport talks to the chat endpoints over HTTP
type HTTPTransport struct {
	baseURL string
	token   string
	ua      string
	http    *http.Client
}

// NewHTTPTransport creates a transport for the API rooted at baseURL
// (for example http://localhost:8080/api/v1)
func NewHTTPTransport(baseURL, token string, timeout time.Duration, ua string) *HTTPTransport {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		ua:      ua,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// FetchChat loads the chat with its most recent messages
func (t *HTTPTransport) FetchChat(ctx context.Context, chatID uuid.UUID, limit int) (*chat.ChatResponse, error) {
	path := "/chats/" + chatID.String()
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out chat.ChatResponse
	if err := t.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendMessage posts one message
func (t *HTTPTransport) SendMessage(ctx context.Context, chatID uuid.UUID, req chat.SendMessageRequest) (*chat.MessageResponse, error) {
	var out chat.MessageResponse
	if err := t.do(ctx, http.MethodPost, "/chats/"+chatID.String()+"/messages", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkRead marks the chat as read for the token's user
func (t *HTTPTransport) MarkRead(ctx context.Context, chatID uuid.UUID) error {
	return t.do(ctx, http.MethodPost, "/chats/"+chatID.String()+"/read", nil, nil)
}

func (t *HTTPTransport) do(ctx context.Context, method, path string, body, out any) error {
	if t == nil || t.http == nil {
		return fmt.Errorf("chat api request error: transport is nil")
	}
	if t.baseURL == "" {
		return fmt.Errorf("chat api config error: base_url is empty")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("chat api request error: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("chat api request error: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
	if t.ua != "" {
		req.Header.Set("User-Agent", t.ua)
	}

	resp, err := t.http.Do(req)
	if err != nil {
		return classifyRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("chat api read error: status=%d: %w", resp.StatusCode, err)
	}

	var envelope struct {
		Success bool                `json:"success"`
		Data    json.RawMessage     `json:"data"`
		Error   *response.ErrorInfo `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode, Message: string(raw), RequestID: resp.Header.Get("X-Request-ID")}
		}
		return fmt.Errorf("chat api decode error: %w", err)
	}

	if resp.StatusCode >= 300 || !envelope.Success {
		apiErr := &APIError{Status: resp.StatusCode, RequestID: resp.Header.Get("X-Request-ID")}
		if envelope.Error != nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		}
		return apiErr
	}

	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("chat api decode error: %w", err)
	}
	return nil
}

func classifyRequestError(ctx context.Context, err error) error {
	if isTimeoutError(ctx, err) {
		return fmt.Errorf("chat api timeout: %w", err)
	}
	if isNetworkError(err) {
		return fmt.Errorf("chat api network error: %w", err)
	}
	return fmt.Errorf("chat api request error: %w", err)
}

func isTimeoutError(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isNetworkError(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH)
}
