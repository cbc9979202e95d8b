package service

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

	"github.com/google/uuid"
	"go.uber.org/zap"
	"ktx-reserve-cli/model"
)

const (
	defaultUserAgent = "ktx-reserve-cli"
	defaultTimeout   = 12 * time.Second
	errorBodyLimit   = 8 << 10
)

// ErrLoginRequired is returned before any request is sent when an operation needs a session.
var ErrLoginRequired = errors.New("login required")

// Endpoints holds the base URL of each backend service.
type Endpoints struct {
	User        string
	Train       string
	Seat        string
	Reservation string
}

// Client wraps HTTP access to the reservation backend services.
type Client struct {
	httpClient *http.Client
	endpoints  Endpoints
	userAgent  string
	session    model.Session
	logger     *zap.Logger
}

// APIError is returned when a backend responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Status     string
	Endpoint   string
	Body       string
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return "api error"
	}
	if e.Message != "" {
		return fmt.Sprintf("api error: %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error: %s: %s", e.Status, e.Body)
}

// IsNotFound reports whether the error represents a 404 from a backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// Message converts err into the text shown to the user. Server-reported messages are
// returned verbatim; everything else falls back to the screen's generic message.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrLoginRequired) {
		return "Login required."
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// NewClient creates a new API client. If httpClient is nil, a default client is used.
func NewClient(httpClient *http.Client, endpoints Endpoints, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: httpClient,
		endpoints:  endpoints,
		userAgent:  defaultUserAgent,
		logger:     logger,
	}
}

// WithSession returns a copy of the client that authenticates as s.
func (c *Client) WithSession(s model.Session) *Client {
	clone := *c
	clone.session = s
	return &clone
}

// Session returns the session the client authenticates as.
func (c *Client) Session() model.Session {
	return c.session
}

func (c *Client) do(ctx context.Context, method string, endpoint string, body any, out any) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("url", endpoint),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	c.logger.Debug("request completed",
		zap.String("method", method),
		zap.String("url", endpoint),
		zap.Int("status", res.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.String("request_id", requestID),
	)

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, errorBodyLimit))
		return &APIError{
			StatusCode: res.StatusCode,
			Status:     res.Status,
			Endpoint:   endpoint,
			Body:       strings.TrimSpace(string(snippet)),
			Message:    extractMessage(snippet),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response from %s: %w", endpoint, err)
	}
	return nil
}

// extractMessage reads the error text a backend put in a failure body: either
// {"message": "..."} or a bare JSON string.
func extractMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err == nil {
		return strings.TrimSpace(envelope.Message)
	}
	var text string
	if err := json.Unmarshal(trimmed, &text); err == nil {
		return strings.TrimSpace(text)
	}
	return ""
}
