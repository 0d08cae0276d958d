package edgar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const tenKHTML = `<!DOCTYPE html>
<html><head><title>10-K</title><style>body { color: black; }</style></head>
<body>
<script>var tracking = true;</script>
<h1>UNITED STATES SECURITIES AND EXCHANGE COMMISSION</h1>
<p>Annual   Report Pursuant to Section 13</p>

<p>Item 1. Business</p>
</body></html>`

func TestDocumentText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "finvar") {
			t.Errorf("missing user agent, got %q", ua)
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(tenKHTML))
	}))
	defer srv.Close()

	text, truncated, err := DocumentText(context.Background(), srv.URL, "", 0)
	if err != nil {
		t.Fatalf("DocumentText: %v", err)
	}
	if truncated {
		t.Error("short document reported truncated")
	}
	if !strings.Contains(text, "SECURITIES AND EXCHANGE COMMISSION") {
		t.Errorf("heading missing from extracted text:\n%s", text)
	}
	if !strings.Contains(text, "Annual Report Pursuant to Section 13") {
		t.Error("inner whitespace not collapsed")
	}
	if strings.Contains(text, "tracking") || strings.Contains(text, "color: black") {
		t.Error("script/style content leaked into text")
	}
}

func TestDocumentTextTruncation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>" + strings.Repeat("risk factors ", 100) + "</p></body></html>"))
	}))
	defer srv.Close()

	text, truncated, err := DocumentText(context.Background(), srv.URL, "test agent", 50)
	if err != nil {
		t.Fatalf("DocumentText: %v", err)
	}
	if !truncated {
		t.Error("expected truncation")
	}
	if got := len([]rune(text)); got != 50 {
		t.Errorf("text length = %d, want 50", got)
	}
}

func TestDocumentTextUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	if _, _, err := DocumentText(context.Background(), srv.URL, "test agent", 0); err == nil {
		t.Fatal("expected error for 403 response")
	}
}
