package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/wonny/stocktracker/internal/batch"
	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/internal/format"
)

const (
	doubleSeparator = "═══════════════════════════════════════════════════════════════════════════"
	separator       = "───────────────────────────────────────────────────────────────────────────"
)

// parsePositionSpec parses SYMBOL=QTY@PRICE, e.g. "AAPL=10@150.5" or "TSLA=-5@200"
func parsePositionSpec(spec string) (contracts.Position, error) {
	symbol, rest, ok := strings.Cut(spec, "=")
	if !ok {
		return contracts.Position{}, fmt.Errorf("position %q: expected SYMBOL=QTY@PRICE", spec)
	}
	qtyStr, priceStr, ok := strings.Cut(rest, "@")
	if !ok {
		return contracts.Position{}, fmt.Errorf("position %q: expected SYMBOL=QTY@PRICE", spec)
	}

	qty, err := strconv.ParseFloat(strings.TrimSpace(qtyStr), 64)
	if err != nil {
		return contracts.Position{}, fmt.Errorf("position %q: bad quantity: %w", spec, err)
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(priceStr), 64)
	if err != nil {
		return contracts.Position{}, fmt.Errorf("position %q: bad entry price: %w", spec, err)
	}

	if math.IsNaN(qty) || math.IsInf(qty, 0) {
		return contracts.Position{}, fmt.Errorf("position %q: quantity must be a finite number", spec)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return contracts.Position{}, fmt.Errorf("position %q: entry price must be a finite number", spec)
	}

	pos := contracts.Position{Symbol: symbol, Quantity: qty, EntryPrice: price}.Normalized()
	if pos.Symbol == "" {
		return contracts.Position{}, fmt.Errorf("position %q: empty symbol", spec)
	}
	return pos, nil
}

func parsePositions(specs []string) ([]contracts.Position, error) {
	out := make([]contracts.Position, 0, len(specs))
	seen := make(map[string]bool, len(specs))
	for _, spec := range specs {
		pos, err := parsePositionSpec(spec)
		if err != nil {
			return nil, err
		}
		if seen[pos.Symbol] {
			return nil, contracts.Duplicate(pos.Symbol)
		}
		seen[pos.Symbol] = true
		out = append(out, pos)
	}
	return out, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printPositions prints a position list
func printPositions(w io.Writer, list []contracts.Position) {
	fmt.Fprintf(w, "%-10s %12s %12s\n", "SYMBOL", "QUANTITY", "ENTRY")
	fmt.Fprintln(w, strings.Repeat("─", 36))
	for _, p := range list {
		fmt.Fprintf(w, "%-10s %12s %12s\n", p.Symbol, format.Quantity(p.Quantity), format.Money(p.EntryPrice))
	}
	fmt.Fprintf(w, "\n%d position(s)\n", len(list))
}

// printStats prints one position's valuation
func printStats(w io.Writer, s *contracts.PositionStats) {
	fmt.Fprintln(w, doubleSeparator)
	fmt.Fprintf(w, "  %s  %s @ %s\n", s.Symbol, format.Quantity(s.Quantity), format.Money(s.EntryPrice))
	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "  Current Price : %s\n", format.Money(s.CurrentPrice))
	fmt.Fprintf(w, "  Total Cost    : %s\n", format.Money(s.TotalCost))
	fmt.Fprintf(w, "  Current Value : %s\n", format.Money(s.CurrentValue))
	fmt.Fprintf(w, "  Total P/L     : %s (%s)\n", format.Signed(s.TotalPL), format.Pct(s.TotalPLPct))
	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "  Yesterday     : O %s  H %s  L %s  C %s  V %d\n",
		format.Money(s.Yesterday.Open), format.Money(s.Yesterday.High),
		format.Money(s.Yesterday.Low), format.Money(s.Yesterday.Close), s.Yesterday.Volume)
	fmt.Fprintf(w, "  Today         : O %s  H %s  L %s  V %d\n",
		format.Money(s.Today.Open), format.Money(s.Today.High),
		format.Money(s.Today.Low), s.Today.Volume)
	fmt.Fprintln(w, doubleSeparator)
}

// printPremarket prints the premarket table followed by the outcome summary
func printPremarket(w io.Writer, rows []contracts.PremarketRow) {
	fmt.Fprintf(w, "%-8s %10s %10s %10s %10s %10s %9s %12s %9s %12s\n",
		"SYMBOL", "QTY", "ENTRY", "PREV", "OPEN", "CURRENT", "CHG%", "P/L", "P/L%", "VALUE")
	fmt.Fprintln(w, doubleSeparator+"════════════════════════════")

	for _, r := range rows {
		switch r.Outcome {
		case contracts.OutcomeSuccess:
			m := r.PremarketMetrics
			fmt.Fprintf(w, "%-8s %10s %10s %10s %10s %10s %9s %12s %9s %12s\n",
				r.Symbol, format.Quantity(r.Quantity), format.Money(r.EntryPrice),
				format.Money(m.PrevClose), format.Money(m.TodayOpen), format.Money(m.CurrentPrice),
				format.Pct(m.TodayChangePct), format.Signed(m.PositionPL),
				format.Pct(m.PositionPLPct), format.Money(m.TotalValue))
		case contracts.OutcomeNoData:
			fmt.Fprintf(w, "%-8s %10s %10s  no premarket data\n",
				r.Symbol, format.Quantity(r.Quantity), format.Money(r.EntryPrice))
		default:
			fmt.Fprintf(w, "%-8s %10s %10s  error: %s\n",
				r.Symbol, format.Quantity(r.Quantity), format.Money(r.EntryPrice), r.Message)
		}
	}

	s := batch.Summarize(rows)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d position(s): %d ok, %d no data, %d failed\n", s.Total, s.Success, s.NoData, s.Error)
}
