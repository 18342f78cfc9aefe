// Package providers initializes and registers all concrete data providers
// with the global provider registry.
package providers

import (
	"os"

	"github.com/raghuchilukamari/investor-gps/internal/provider"
	"github.com/raghuchilukamari/investor-gps/internal/providers/bls"
	"github.com/raghuchilukamari/investor-gps/internal/providers/fred"
	"github.com/raghuchilukamari/investor-gps/internal/providers/yfinance"
)

// RegisterAll creates and registers all available providers with the
// global registry. Providers that require API keys are only registered
// when their environment variable is set.
func RegisterAll() error {
	return RegisterAllTo(provider.Global())
}

// RegisterAllTo registers all available providers to the given registry,
// reading credentials from the environment.
func RegisterAllTo(reg *provider.Registry) error {
	return RegisterWithKeys(reg, os.Getenv("BLS_API_KEY"), os.Getenv("FRED_API_KEY"))
}

// RegisterWithKeys registers all available providers to the given registry
// using explicit credentials. The FRED provider is skipped when its key is
// empty; the BLS registration key is optional.
func RegisterWithKeys(reg *provider.Registry, blsKey, fredKey string) error {
	// --- YFinance (free, no API key) ---
	yf := yfinance.New()
	if err := yf.Init(nil); err != nil {
		return err
	}
	if err := reg.Register(yf); err != nil {
		return err
	}

	// --- BLS (registration key optional) ---
	bp := bls.New()
	if err := bp.Init(map[string]string{"registration_key": blsKey}); err != nil {
		return err
	}
	if err := reg.Register(bp); err != nil {
		return err
	}

	// --- FRED (requires API key) ---
	if fredKey != "" {
		fp := fred.New()
		if err := fp.Init(map[string]string{"api_key": fredKey}); err != nil {
			return err
		}
		if err := reg.Register(fp); err != nil {
			return err
		}
	}

	return nil
}
