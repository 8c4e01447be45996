package contracts

import (
	"errors"
	"fmt"
)

// ⭐ SSOT: error taxonomy, matched with errors.Is at every boundary
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrDataUnavailable   = errors.New("no market data available")
	ErrInvalidEntryPrice = errors.New("invalid entry price")
	ErrShortSeries       = errors.New("series too short")

	// ErrExternalService is satisfied by every FetchError
	ErrExternalService = errors.New("market data fetch failed")

	ErrSymbolNotFound = errors.New("symbol not found")
	ErrRateLimited    = errors.New("rate limited")
	ErrNetwork        = errors.New("network error")
)

// DataUnavailable reports an empty required series for symbol
func DataUnavailable(symbol string) error {
	return fmt.Errorf("%w for %s", ErrDataUnavailable, symbol)
}

// InvalidEntryPrice reports a zero (or non-finite) entry price for symbol
func InvalidEntryPrice(symbol string) error {
	return fmt.Errorf("%w for %s: must be non-zero", ErrInvalidEntryPrice, symbol)
}

// NotFound reports an unknown position
func NotFound(symbol string) error {
	return fmt.Errorf("position %s: %w", symbol, ErrNotFound)
}

// Duplicate reports an attempt to create an existing position
func Duplicate(symbol string) error {
	return fmt.Errorf("%w: position for %s already exists", ErrValidation, symbol)
}

// FetchError is returned by every MarketDataPort vendor.
// Kind is one of ErrSymbolNotFound, ErrRateLimited, ErrNetwork.
type FetchError struct {
	Vendor string
	Symbol string
	Kind   error
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s: %v", e.Vendor, e.Symbol, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v: %v", e.Vendor, e.Symbol, e.Kind, e.Err)
}

// Unwrap lets errors.Is match the kind, ErrExternalService and the cause
func (e *FetchError) Unwrap() []error {
	errs := []error{e.Kind, ErrExternalService}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewFetchError builds a FetchError
func NewFetchError(vendor, symbol string, kind, err error) *FetchError {
	return &FetchError{Vendor: vendor, Symbol: symbol, Kind: kind, Err: err}
}
