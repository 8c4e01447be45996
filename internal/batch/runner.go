// Package batch fans premarket computation out over a bounded worker pool.
package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/pkg/logger"
)

// Computer produces one premarket row per position
type Computer interface {
	Compute(ctx context.Context, pos contracts.Position) contracts.PremarketRow
}

// Config holds runner configuration
type Config struct {
	Workers      int           // Number of concurrent workers
	FetchTimeout time.Duration // Per-symbol deadline, 0 disables
}

// DefaultConfig mirrors the BATCH_* defaults
func DefaultConfig() Config {
	return Config{Workers: 5, FetchTimeout: 10 * time.Second}
}

// Runner computes premarket rows for a list of positions.
// ⭐ SSOT: one symbol's failure never aborts or reorders the batch
type Runner struct {
	computer Computer
	cfg      Config
	logger   *logger.Logger
}

// NewRunner creates a new Runner
func NewRunner(computer Computer, cfg Config, log *logger.Logger) *Runner {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Runner{
		computer: computer,
		cfg:      cfg,
		logger:   log.WithComponent("batch"),
	}
}

type job struct {
	index int
	pos   contracts.Position
}

// Run returns one row per position, in input order
func (r *Runner) Run(ctx context.Context, positions []contracts.Position) []contracts.PremarketRow {
	rows := make([]contracts.PremarketRow, len(positions))
	if len(positions) == 0 {
		return rows
	}

	workers := r.cfg.Workers
	if workers > len(positions) {
		workers = len(positions)
	}

	r.logger.WithFields(map[string]interface{}{
		"positions": len(positions),
		"workers":   workers,
	}).Debug("Starting premarket batch")

	start := time.Now()
	jobCh := make(chan job, len(positions))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			r.worker(ctx, workerID, jobCh, rows)
		}(i)
	}

	for i, pos := range positions {
		jobCh <- job{index: i, pos: pos}
	}
	close(jobCh)

	wg.Wait()

	s := Summarize(rows)
	r.logger.WithFields(map[string]interface{}{
		"success":  s.Success,
		"no_data":  s.NoData,
		"failed":   s.Error,
		"total":    s.Total,
		"duration": time.Since(start).String(),
	}).Info("Premarket batch completed")

	return rows
}

// worker writes each result into its own slot; slots are never shared
func (r *Runner) worker(ctx context.Context, workerID int, jobCh <-chan job, rows []contracts.PremarketRow) {
	for j := range jobCh {
		row := r.computeOne(ctx, j.pos)
		if row.Outcome == contracts.OutcomeError {
			r.logger.WithSymbol(row.Symbol).WithFields(map[string]interface{}{
				"worker":  workerID,
				"message": row.Message,
			}).Warn("Premarket computation failed")
		}
		rows[j.index] = row
	}
}

func (r *Runner) computeOne(ctx context.Context, pos contracts.Position) (row contracts.PremarketRow) {
	pos = pos.Normalized()

	if err := ctx.Err(); err != nil {
		return contracts.ErrorRow(pos.Symbol, pos.Quantity, pos.EntryPrice, err)
	}

	if r.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.FetchTimeout)
		defer cancel()
	}

	defer func() {
		if rec := recover(); rec != nil {
			row = contracts.ErrorRow(pos.Symbol, pos.Quantity, pos.EntryPrice, fmt.Errorf("panic: %v", rec))
		}
	}()

	return r.computer.Compute(ctx, pos)
}

// Summary counts rows by outcome
type Summary struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	NoData  int `json:"no_data"`
	Error   int `json:"error"`
}

// Summarize counts outcomes for logging and CLI footers
func Summarize(rows []contracts.PremarketRow) Summary {
	s := Summary{Total: len(rows)}
	for _, row := range rows {
		switch row.Outcome {
		case contracts.OutcomeSuccess:
			s.Success++
		case contracts.OutcomeNoData:
			s.NoData++
		default:
			s.Error++
		}
	}
	return s
}
