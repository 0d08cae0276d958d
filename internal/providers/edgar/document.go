package edgar

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/atuladas/finvar/internal/infra"
)

// DefaultDocumentRunes bounds extracted filing text. Full 10-K documents run
// to several megabytes of markup.
const DefaultDocumentRunes = 200_000

// DocumentText downloads a filing document from EDGAR and extracts its
// readable text: markup stripped, whitespace collapsed, truncated to at most
// maxRunes runes. An empty userAgent falls back to the package default; the
// SEC rejects requests without one.
func DocumentText(ctx context.Context, url, userAgent string, maxRunes int) (string, bool, error) {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if maxRunes <= 0 {
		maxRunes = DefaultDocumentRunes
	}

	body, err := infra.DoGet(ctx, url, map[string]string{
		"User-Agent": userAgent,
		"Accept":     "text/html,application/xhtml+xml",
	})
	if err != nil {
		return "", false, fmt.Errorf("fetching filing document: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("parsing filing document: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	text := collapseText(doc.Text())
	runes := []rune(text)
	if len(runes) > maxRunes {
		return string(runes[:maxRunes]), true, nil
	}
	return text, false, nil
}

// collapseText normalizes extracted HTML text: spaces collapsed within
// lines, blank lines dropped.
func collapseText(s string) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		out = append(out, strings.Join(fields, " "))
	}
	return strings.Join(out, "\n")
}
