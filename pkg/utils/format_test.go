package utils

import "testing"

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1234567.89, "$1,234,567.89"},
		{0, "$0.00"},
		{999, "$999.00"},
		{1000, "$1,000.00"},
		{-42.5, "-$42.50"},
	}
	for _, tt := range tests {
		if got := FormatUSD(tt.in); got != tt.want {
			t.Errorf("FormatUSD(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatUSDCompact(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{2.9e12, "$2.90T"},
		{1.5e9, "$1.50B"},
		{1927345, "$1.93M"},
		{2500, "$2.50K"},
		{12.34, "$12.34"},
		{-1.5e6, "-$1.50M"},
	}
	for _, tt := range tests {
		if got := FormatUSDCompact(tt.in); got != tt.want {
			t.Errorf("FormatUSDCompact(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(4.2); got != "+4.20%" {
		t.Errorf("positive = %q", got)
	}
	if got := FormatPercent(-1.333); got != "-1.33%" {
		t.Errorf("negative = %q", got)
	}
	if got := FormatPercent(0); got != "0.00%" {
		t.Errorf("zero = %q", got)
	}
}
