package config

import "os"

// APIKeySource represents where an API key comes from.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus represents the status of a provider credential.
type KeyStatus struct {
	Name   string       `json:"name"`
	Source APIKeySource `json:"source"`
	IsSet  bool         `json:"is_set"`
	Masked string       `json:"masked,omitempty"` // e.g., "abc...xyz"
}

// CheckAPIKeys returns the status of all provider credentials. Keyless
// providers (Yahoo Finance) are not listed.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	return []KeyStatus{
		checkKey("FMP API Key", cfg.Providers.FMPKey, "FMP_API_KEY"),
		checkKey("Alpha Vantage API Key", cfg.Providers.AlphaVantage, "ALPHAVANTAGE_API_KEY"),
		checkKey("EDGAR User-Agent", cfg.Providers.EdgarUserAgent, "EDGAR_USER_AGENT"),
	}
}

// checkKey checks if a key is set and where it came from.
func checkKey(name, value, envVar string) KeyStatus {
	status := KeyStatus{
		Name:  name,
		IsSet: value != "",
	}

	if value != "" {
		if os.Getenv(envVar) != "" {
			status.Source = KeySourceEnv
		} else {
			status.Source = KeySourceConfig
		}
		status.Masked = maskKey(value)
	} else {
		status.Source = KeySourceNone
	}

	return status
}

// maskKey masks a credential for display, showing only first 3 and last 3
// characters.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
