// Package providers wires the concrete data providers into a registry.
package providers

import (
	"os"

	"github.com/atuladas/finvar/internal/provider"
	"github.com/atuladas/finvar/internal/providers/alphavantage"
	"github.com/atuladas/finvar/internal/providers/edgar"
	"github.com/atuladas/finvar/internal/providers/fmp"
	"github.com/atuladas/finvar/internal/providers/yfinance"
)

// Keys holds the API keys for the keyed providers. Empty keys disable the
// corresponding provider.
type Keys struct {
	FMP          string
	AlphaVantage string

	// EdgarUserAgent identifies EDGAR requests per SEC policy. Empty means
	// the package default.
	EdgarUserAgent string
}

// KeysFromEnv reads provider API keys from the environment.
func KeysFromEnv() Keys {
	return Keys{
		FMP:            os.Getenv("FMP_API_KEY"),
		AlphaVantage:   os.Getenv("ALPHAVANTAGE_API_KEY"),
		EdgarUserAgent: os.Getenv("EDGAR_USER_AGENT"),
	}
}

// RegisterAllTo registers all available providers to the given registry.
// Yahoo Finance is always registered; keyed providers only when their key
// is present.
func RegisterAllTo(reg *provider.Registry, keys Keys) error {
	// --- YFinance (free, no API key) ---
	yf := yfinance.New()
	if err := yf.Init(nil); err != nil {
		return err
	}
	if err := reg.Register(yf); err != nil {
		return err
	}

	// --- FMP (requires API key) ---
	if keys.FMP != "" {
		fp := fmp.New()
		if err := fp.Init(map[string]string{"api_key": keys.FMP}); err != nil {
			return err
		}
		if err := reg.Register(fp); err != nil {
			return err
		}
		// FMP carries every line item the statement schema knows about,
		// so prefer it for fundamentals when available.
		for _, m := range []provider.ModelType{
			provider.ModelIncomeStatement,
			provider.ModelBalanceSheet,
			provider.ModelCashFlowStatement,
		} {
			if err := reg.SetDefault(m, "fmp"); err != nil {
				return err
			}
		}
	}

	// --- SEC EDGAR (free, no API key) ---
	ed := edgar.New()
	if keys.EdgarUserAgent != "" {
		ed = edgar.NewWithUserAgent(keys.EdgarUserAgent)
	}
	if err := ed.Init(nil); err != nil {
		return err
	}
	if err := reg.Register(ed); err != nil {
		return err
	}

	// --- Alpha Vantage (requires API key) ---
	if keys.AlphaVantage != "" {
		av := alphavantage.New()
		if err := av.Init(map[string]string{"api_key": keys.AlphaVantage}); err != nil {
			return err
		}
		if err := reg.Register(av); err != nil {
			return err
		}
	}

	return nil
}

// NewRegistry builds a registry with every available provider registered.
func NewRegistry(keys Keys) (*provider.Registry, error) {
	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg, keys); err != nil {
		return nil, err
	}
	return reg, nil
}
