// Package portal talks to the remote attendance status page. One call
// fetches one roll number's page and reduces it to visible text; retries
// are the orchestrator's business, not ours.
package portal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/campusview/attendance-api/pkg/config"
	"github.com/campusview/attendance-api/pkg/htmltext"
)

// ErrTimeout marks an attempt abandoned by the local per-attempt deadline.
var ErrTimeout = errors.New("attendance portal timed out")

// StatusError is a non-2xx response from the portal.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, http.StatusText(e.Code))
}

// NetworkError wraps connection or DNS failures.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("portal request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Client fetches attendance pages from the portal.
type Client struct {
	baseURL   string
	userAgent string
	campuses  []string
	timeout   time.Duration
	http      *http.Client
	logger    *zap.Logger
}

// NewClient builds a portal client. timeout bounds each individual fetch
// attempt locally, independent of the remote server's behaviour.
func NewClient(cfg config.PortalConfig, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		campuses:  cfg.Campuses,
		timeout:   timeout,
		http:      &http.Client{},
		logger:    logger,
	}
}

// DefaultCampus returns the first configured campus.
func (c *Client) DefaultCampus() string {
	if len(c.campuses) == 0 {
		return ""
	}
	return c.campuses[0]
}

// ValidCampus reports whether the campus is one of the configured set.
func (c *Client) ValidCampus(campus string) bool {
	for _, known := range c.campuses {
		if campus == known {
			return true
		}
	}
	return false
}

// Fetch retrieves the attendance page for one roll number and returns its
// flattened text. Failures are typed: ErrTimeout, *StatusError or
// *NetworkError.
func (c *Client) Fetch(ctx context.Context, rollNumber, campus string) (string, error) {
	if campus == "" {
		campus = c.DefaultCampus()
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/%s/%s", c.baseURL, campus, rollNumber)
	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return "", &NetworkError{Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || attemptCtx.Err() == context.DeadlineExceeded {
			return "", ErrTimeout
		}
		return "", &NetworkError{Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{Code: resp.StatusCode}
	}

	text, err := htmltext.Flatten(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || attemptCtx.Err() == context.DeadlineExceeded {
			return "", ErrTimeout
		}
		return "", &NetworkError{Err: err}
	}

	c.logger.Debug("portal page fetched",
		zap.String("roll", rollNumber),
		zap.String("campus", campus),
		zap.Duration("latency", time.Since(start)),
	)
	return text, nil
}
