package contracts

import "strings"

// Position is a holding of Quantity shares of Symbol bought at EntryPrice
// ⭐ SSOT: position shape shared by store, engine and API
type Position struct {
	Symbol     string  `json:"symbol"`
	Quantity   float64 `json:"quantity"`    // signed, negative for shorts
	EntryPrice float64 `json:"entry_price"` // percentage denominator, must be non-zero
}

// NormalizeSymbol upper-cases and trims a ticker before any lookup
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Normalized returns a copy with the symbol normalized
func (p Position) Normalized() Position {
	p.Symbol = NormalizeSymbol(p.Symbol)
	return p
}
