package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/toolshare/internal/domain"
	"github.com/yourorg/toolshare/internal/observability/metrics"
)

// StatsWorker periodically refreshes the registry gauges from the record
// store. It only reads; entity state is never touched here.
type StatsWorker struct {
	tools        domain.RecordStore[*domain.ToolListing]
	transactions domain.RecordStore[*domain.BorrowingTransaction]
	logger       *slog.Logger
	interval     time.Duration
}

// NewStatsWorker creates a new stats worker
func NewStatsWorker(
	tools domain.RecordStore[*domain.ToolListing],
	transactions domain.RecordStore[*domain.BorrowingTransaction],
	logger *slog.Logger,
	interval time.Duration,
) *StatsWorker {
	return &StatsWorker{
		tools:        tools,
		transactions: transactions,
		logger:       logger,
		interval:     interval,
	}
}

// Start begins the refresh loop and blocks until ctx is cancelled
func (w *StatsWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("stats worker started", slog.Duration("interval", w.interval))
	w.refresh()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("stats worker stopped")
			return
		case <-ticker.C:
			w.refresh()
		}
	}
}

func (w *StatsWorker) refresh() {
	tools, err := w.tools.Values()
	if err != nil {
		w.logger.Error("failed to list tools", slog.String("error", err.Error()))
		return
	}
	available := 0
	for _, t := range tools {
		if t.Availability {
			available++
		}
	}
	metrics.SetAvailableTools(available)

	transactions, err := w.transactions.Values()
	if err != nil {
		w.logger.Error("failed to list transactions", slog.String("error", err.Error()))
		return
	}
	open := 0
	for _, txn := range transactions {
		if txn.Active() {
			open++
		}
	}
	metrics.SetOpenLoans(open)
}
