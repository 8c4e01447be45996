package contracts

// DayStats is the full OHLCV summary of the previous session
type DayStats struct {
	Open   float64 `json:"open"`
	Close  float64 `json:"close"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Volume int64   `json:"volume"`
}

// TodayStats omits close; today's close is PositionStats.CurrentPrice
type TodayStats struct {
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Volume int64   `json:"volume"`
}

// PositionStats is the single-position valuation; never persisted
type PositionStats struct {
	Symbol       string     `json:"symbol"`
	Quantity     float64    `json:"quantity"`
	EntryPrice   float64    `json:"entry_price"`
	CurrentPrice float64    `json:"current_price"`
	TotalCost    float64    `json:"total_cost"`
	CurrentValue float64    `json:"current_value"`
	TotalPL      float64    `json:"total_pl"`
	TotalPLPct   float64    `json:"total_pl_pct"`
	Yesterday    DayStats   `json:"yesterday"`
	Today        TodayStats `json:"today"`
}

// Outcome classifies a per-symbol premarket computation
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeNoData  Outcome = "no_data"
	OutcomeError   Outcome = "error"
)

// PremarketMetrics holds the fields only present on a successful row
type PremarketMetrics struct {
	PrevClose      float64 `json:"prev_close"`
	TodayOpen      float64 `json:"today_open"`
	CurrentPrice   float64 `json:"current_price"`
	TodayChange    float64 `json:"today_change"`
	TodayChangePct float64 `json:"today_change_pct"`
	PositionPL     float64 `json:"position_pl"`
	PositionPLPct  float64 `json:"position_pl_pct"`
	TotalValue     float64 `json:"total_value"`
}

// PremarketRow is one line of the batch premarket view, tagged by Outcome.
// Metrics is set only for OutcomeSuccess, Message only for OutcomeError.
type PremarketRow struct {
	Outcome    Outcome `json:"outcome"`
	Symbol     string  `json:"symbol"`
	Quantity   float64 `json:"quantity"`
	EntryPrice float64 `json:"entry_price"`
	*PremarketMetrics
	Message string `json:"message,omitempty"`
}

// SuccessRow builds a computed row
func SuccessRow(symbol string, quantity, entryPrice float64, m PremarketMetrics) PremarketRow {
	return PremarketRow{
		Outcome:          OutcomeSuccess,
		Symbol:           symbol,
		Quantity:         quantity,
		EntryPrice:       entryPrice,
		PremarketMetrics: &m,
	}
}

// NoDataRow marks a symbol whose series were too short to compute
func NoDataRow(symbol string, quantity, entryPrice float64) PremarketRow {
	return PremarketRow{
		Outcome:    OutcomeNoData,
		Symbol:     symbol,
		Quantity:   quantity,
		EntryPrice: entryPrice,
	}
}

// ErrorRow captures a failure for one symbol without failing the batch
func ErrorRow(symbol string, quantity, entryPrice float64, err error) PremarketRow {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return PremarketRow{
		Outcome:    OutcomeError,
		Symbol:     symbol,
		Quantity:   quantity,
		EntryPrice: entryPrice,
		Message:    msg,
	}
}
