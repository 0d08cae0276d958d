package infra

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	c := NewCache(time.Minute)
	c.Set("k", 42)

	v, ok := c.Get("k")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if v.(int) != 42 {
		t.Errorf("got %v, want 42", v)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for absent key")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(time.Minute)
	c.SetWithTTL("k", "v", 10*time.Millisecond)

	if _, ok := c.Get("k"); !ok {
		t.Fatal("expected hit before expiry")
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after expiry")
	}
}

func TestCacheInvalidateFlush(t *testing.T) {
	c := NewCache(time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Error("expected miss after Invalidate")
	}

	c.Flush()
	if c.Len() != 0 {
		t.Errorf("got %d entries after Flush, want 0", c.Len())
	}
}

func TestCacheCleanup(t *testing.T) {
	c := NewCache(time.Minute)
	c.SetWithTTL("stale", 1, -time.Second)
	c.Set("fresh", 2)

	c.Cleanup()
	if c.Len() != 1 {
		t.Errorf("got %d entries after Cleanup, want 1", c.Len())
	}
}

func TestRateLimiterAllowsBurst(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := rl.Wait(ctx); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("burst took %v, expected no blocking", elapsed)
	}
}

func TestRateLimiterBlocksWhenExhausted(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	if err := rl.Wait(ctx); err != nil {
		t.Fatalf("first Wait: %v", err)
	}
	if err := rl.Wait(ctx); err != context.DeadlineExceeded {
		t.Errorf("got %v, want context.DeadlineExceeded", err)
	}
}

func TestDoGetRetriesOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	body, err := DoGet(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("DoGet: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("unexpected body %q", body)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("got %d calls, want 2", n)
	}
}

func TestDoGetNoRetryOnClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := DoGet(context.Background(), srv.URL, nil)
	se, ok := err.(*StatusError)
	if !ok {
		t.Fatalf("got %T, want *StatusError", err)
	}
	if se.StatusCode != http.StatusNotFound {
		t.Errorf("got status %d, want 404", se.StatusCode)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("got %d calls, want 1", n)
	}
}

func TestDoGetRateLimitExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := DoGet(context.Background(), srv.URL, nil)
	if !IsRateLimited(err) {
		t.Fatalf("got %v, want rate-limited StatusError", err)
	}
}

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Api-Token"); got != "secret" {
			t.Errorf("header X-Api-Token = %q, want secret", got)
		}
		w.Write([]byte(`{"symbol":"AAPL","price":123.45}`))
	}))
	defer srv.Close()

	var out struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
	}
	err := GetJSON(context.Background(), srv.URL, map[string]string{"X-Api-Token": "secret"}, &out)
	if err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if out.Symbol != "AAPL" || out.Price != 123.45 {
		t.Errorf("unexpected decode: %+v", out)
	}
}
