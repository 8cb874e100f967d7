package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/elakbay/elakbay/internal/config"
	"github.com/elakbay/elakbay/internal/domain"
	"github.com/elakbay/elakbay/pkg/storage"
	"go.uber.org/zap"
)

// sessionStorageKey is where the persisted session lives in local storage.
const sessionStorageKey = "elakbay-auth"

const defaultTimeout = 15 * time.Second

// Client talks to the hosted backend: GoTrue auth endpoints and PostgREST
// row endpoints. It owns the persisted session and broadcasts auth changes
// to subscribers; all business rules live server-side.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
	store   storage.Store
	logger  *zap.Logger
	now     func() time.Time

	mu      sync.Mutex
	session *domain.Session
	subs    map[int]chan AuthChange
	nextSub int
}

// NewClient creates a backend client and restores any persisted session.
// Missing credentials are tolerated; calls then fail with ErrNotConfigured.
func NewClient(cfg config.SupabaseConfig, store storage.Store, logger *zap.Logger) *Client {
	c := &Client{
		baseURL: cfg.URL,
		anonKey: cfg.AnonKey,
		http:    &http.Client{Timeout: defaultTimeout},
		store:   store,
		logger:  logger,
		now:     time.Now,
		subs:    make(map[int]chan AuthChange),
	}

	c.restoreSession()
	return c
}

// Configured reports whether backend credentials are present.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.anonKey != ""
}

// restoreSession loads the persisted session, if any. A corrupt entry is
// discarded rather than surfaced; the user simply stays signed out.
func (c *Client) restoreSession() {
	raw, ok := c.store.Get(sessionStorageKey)
	if !ok || raw == "" {
		return
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		c.logger.Warn("Discarding unreadable persisted session", zap.Error(err))
		_ = c.store.Delete(sessionStorageKey)
		return
	}

	c.mu.Lock()
	c.session = &session
	c.mu.Unlock()
}

// do executes one backend request and decodes the JSON response into out
// (when out is non-nil). Non-2xx responses become *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, headers map[string]string, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.bearerToken())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseAPIError(resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", path, err)
		}
	}

	return nil
}

// bearerToken returns the session access token when present, else the anon key.
func (c *Client) bearerToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil && c.session.AccessToken != "" {
		return c.session.AccessToken
	}
	return c.anonKey
}

// errorBody covers GoTrue and PostgREST error shapes; the fields overlap
// but never all appear at once.
type errorBody struct {
	Code             any    `json:"code"`
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	ErrorText        string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func parseAPIError(status int, raw []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Message: http.StatusText(status)}

	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		switch code := body.Code.(type) {
		case string:
			apiErr.Code = code
		case float64:
			apiErr.Code = fmt.Sprintf("%d", int(code))
		}

		for _, msg := range []string{body.Message, body.Msg, body.ErrorDescription, body.ErrorText} {
			if msg != "" {
				apiErr.Message = msg
				break
			}
		}
	}

	return apiErr
}
