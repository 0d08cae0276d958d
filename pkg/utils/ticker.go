// Package utils provides common utility functions for FinVAR.
package utils

import (
	"fmt"
	"strings"
)

// NormalizeTicker canonicalizes a user-supplied ticker: uppercase, trimmed,
// with the chat-style "$" prefix removed.
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))
	return strings.TrimPrefix(ticker, "$")
}

// ValidateTicker reports whether a normalized ticker looks plausible:
// 1-10 characters from [A-Z0-9.^-], starting with a letter or caret.
func ValidateTicker(ticker string) error {
	if ticker == "" {
		return fmt.Errorf("empty ticker")
	}
	if len(ticker) > 10 {
		return fmt.Errorf("ticker %q too long", ticker)
	}
	first := ticker[0]
	if !(first >= 'A' && first <= 'Z') && first != '^' {
		return fmt.Errorf("ticker %q must start with a letter", ticker)
	}
	for _, c := range ticker {
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '.' || c == '-' || c == '^':
		default:
			return fmt.Errorf("ticker %q contains invalid character %q", ticker, c)
		}
	}
	return nil
}
