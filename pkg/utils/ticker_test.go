package utils

import "testing"

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"aapl", "AAPL"},
		{" msft ", "MSFT"},
		{"$TSLA", "TSLA"},
		{"brk-b", "BRK-B"},
		{"^GSPC", "^GSPC"},
	}
	for _, tt := range tests {
		if got := NormalizeTicker(tt.in); got != tt.want {
			t.Errorf("NormalizeTicker(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateTicker(t *testing.T) {
	valid := []string{"AAPL", "BRK-B", "^GSPC", "RDS.A", "A"}
	for _, s := range valid {
		if err := ValidateTicker(s); err != nil {
			t.Errorf("ValidateTicker(%q) = %v, want nil", s, err)
		}
	}

	invalid := []string{"", "TOOLONGTICKER", "1AAPL", "AA PL", "AAPL!"}
	for _, s := range invalid {
		if err := ValidateTicker(s); err == nil {
			t.Errorf("ValidateTicker(%q) = nil, want error", s)
		}
	}
}
