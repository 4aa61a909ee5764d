package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/flourish/riskassess/internal/platform/auth"
)

// maxAttempts bounds retries for a single request. Transient failures get
// retried with a short backoff; anything still failing after the third
// attempt is reported to the caller.
const maxAttempts = 3

// ErrNotConfigured is returned when no upstream base URL was provided.
var ErrNotConfigured = errors.New("upstream study source not configured")

// Client talks to the upstream study source over JSON with a bearer token
// drawn from the shared session. A 401 clears the session so the next
// caller sees the waiting state instead of hammering a dead token.
type Client struct {
	baseURL string
	session *auth.Session
	http    *http.Client
	logger  zerolog.Logger
	backoff time.Duration // test hook
}

func NewClient(baseURL string, session *auth.Session, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		session: session,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
		backoff: 500 * time.Millisecond,
	}
}

// Configured reports whether a base URL was provided.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// GetJSON performs a GET against the upstream and decodes the JSON response
// into out. The query may be nil.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	token, err := c.session.Token()
	if err != nil {
		// No token yet. Callers fall back to local data.
		return err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return fmt.Errorf("build upstream request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("upstream GET %s: %w", path, err)
			c.logger.Warn().Err(err).
				Str("path", path).
				Int("attempt", attempt).
				Msg("upstream request failed")
			continue
		}

		func() {
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusUnauthorized:
				c.session.Clear()
				lastErr = auth.ErrWaitingForAuth
			case resp.StatusCode >= 500:
				lastErr = fmt.Errorf("upstream GET %s: status %d", path, resp.StatusCode)
			case resp.StatusCode != http.StatusOK:
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
				lastErr = fmt.Errorf("upstream GET %s: status %d: %s", path, resp.StatusCode, body)
			default:
				lastErr = json.NewDecoder(resp.Body).Decode(out)
				if lastErr != nil {
					lastErr = fmt.Errorf("decode upstream response: %w", lastErr)
				}
			}
		}()

		// Auth failures and client errors are not retryable.
		if lastErr == nil || errors.Is(lastErr, auth.ErrWaitingForAuth) {
			return lastErr
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return lastErr
		}
	}

	return lastErr
}
