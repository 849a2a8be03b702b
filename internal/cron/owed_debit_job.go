package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/shipdesk-backend/internal/credits"
	"github.com/angelmondragon/shipdesk-backend/pkg/logger"
)

const (
	owedDebitBatch       = 50
	owedDebitMaxAttempts = 10
)

type OwedDebitJobParams struct {
	Logger      *logger.Logger
	Ledger      owedDebitReconciler
	BatchSize   int
	MaxAttempts int
}

type owedDebitReconciler interface {
	ReconcileOwedDebits(ctx context.Context, limit, maxAttempts int) (credits.ReconcileSummary, error)
}

// NewOwedDebitJob retries credit debits that failed after their order was created.
func NewOwedDebitJob(params OwedDebitJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("credit ledger required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = owedDebitBatch
	}
	maxAttempts := params.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = owedDebitMaxAttempts
	}
	return &owedDebitJob{
		logg:        params.Logger,
		ledger:      params.Ledger,
		batch:       batch,
		maxAttempts: maxAttempts,
	}, nil
}

type owedDebitJob struct {
	logg        *logger.Logger
	ledger      owedDebitReconciler
	batch       int
	maxAttempts int
}

func (j *owedDebitJob) Name() string { return "owed-debit-reconcile" }

// Run reports an error only when the batch could not be loaded; per-row
// failures stay on the outbox row for the next cycle.
func (j *owedDebitJob) Run(ctx context.Context) error {
	summary, err := j.ledger.ReconcileOwedDebits(ctx, j.batch, j.maxAttempts)
	if err != nil {
		return fmt.Errorf("reconcile owed debits: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"applied": summary.Applied,
		"skipped": summary.Skipped,
		"failed":  summary.Failed,
	})
	if summary.Failed > 0 {
		j.logg.Warn(logCtx, "owed debit reconciliation left failures")
		return nil
	}
	j.logg.Info(logCtx, "owed debit reconciliation complete")
	return nil
}
