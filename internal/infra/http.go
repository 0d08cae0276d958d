package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"
)

// StatusError reports a non-2xx HTTP response from an upstream provider.
type StatusError struct {
	URL        string
	StatusCode int
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// IsRateLimited reports whether err wraps an upstream 429.
func IsRateLimited(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusTooManyRequests
}

const (
	defaultTimeout  = 30 * time.Second
	defaultAttempts = 3
	baseBackoff     = 500 * time.Millisecond
	maxBackoff      = 8 * time.Second
)

var httpClient = &http.Client{Timeout: defaultTimeout}

// DoGet performs an HTTP GET with the given headers and returns the raw
// response body. Responses with status 429, 502, 503 or 504 are retried
// with exponential backoff and jitter, up to defaultAttempts tries; a 429
// Retry-After header, when present, overrides the computed backoff.
func DoGet(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < defaultAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepBackoff(ctx, attempt, lastErr); err != nil {
				return nil, err
			}
		}

		body, err := doGetOnce(ctx, url, headers)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

// GetJSON performs DoGet and decodes the body into dest.
func GetJSON(ctx context.Context, url string, headers map[string]string, dest any) error {
	body, err := DoGet(ctx, url, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode response from %s: %w", url, err)
	}
	return nil
}

func doGetOnce(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{
			URL:        url,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	return io.ReadAll(resp.Body)
}

func retryable(err error) bool {
	se, ok := err.(*StatusError)
	if !ok {
		return false
	}
	switch se.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// sleepBackoff waits before retry n (1-based). The delay doubles each
// attempt, capped at maxBackoff, with up to 25% random jitter added.
func sleepBackoff(ctx context.Context, n int, lastErr error) error {
	delay := baseBackoff << (n - 1)
	if delay > maxBackoff {
		delay = maxBackoff
	}
	if se, ok := lastErr.(*StatusError); ok && se.RetryAfter > 0 {
		delay = se.RetryAfter
	}
	delay += time.Duration(rand.Int63n(int64(delay) / 4))

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}
