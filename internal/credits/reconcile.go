package credits

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/shipdesk-backend/pkg/db/models"
	"github.com/angelmondragon/shipdesk-backend/pkg/enums"
	"github.com/angelmondragon/shipdesk-backend/pkg/outbox"
)

// ReconcileSummary counts what one reconciliation pass did.
type ReconcileSummary struct {
	Applied int
	Skipped int
	Failed  int
}

// ReconcileOwedDebits retries pending owed debits. Each row is applied and
// marked published in one transaction; failures bump the attempt counter.
func (l *Ledger) ReconcileOwedDebits(ctx context.Context, limit, maxAttempts int) (ReconcileSummary, error) {
	var summary ReconcileSummary
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.outboxRepo.FetchUnpublished(ctx, enums.EventCreditDebitOwed, maxAttempts, limit)
	if err != nil {
		return summary, err
	}

	for _, row := range rows {
		var owed outbox.CreditDebitOwed
		if _, err := outbox.DecodeData(row, &owed); err != nil {
			summary.Failed++
			l.markFailed(ctx, row, err)
			continue
		}

		amount := owed.Amount
		if amount <= 0 {
			if amount, err = l.OrderCreditCost(ctx, owed.ClientID); err != nil {
				summary.Failed++
				l.markFailed(ctx, row, err)
				continue
			}
		}

		applied := false
		err := l.tx.WithTx(ctx, func(tx *gorm.DB) error {
			debited, err := alreadyDebited(tx, owed.OrderID)
			if err != nil {
				return err
			}
			if !debited {
				orderID := owed.OrderID
				if err := debit(tx, owed.ClientID, owed.UserID, &orderID, amount, enums.CreditTxnReconciledDebit); err != nil {
					return err
				}
				applied = true
			}
			return l.outboxRepo.WithTx(tx).MarkPublished(ctx, row.ID)
		})
		if err != nil {
			summary.Failed++
			l.markFailed(ctx, row, err)
			continue
		}
		if applied {
			summary.Applied++
		} else {
			summary.Skipped++
		}
	}
	return summary, nil
}

func (l *Ledger) markFailed(ctx context.Context, row models.OutboxEvent, cause error) {
	if err := l.outboxRepo.MarkFailed(ctx, row.ID, cause); err != nil && l.logg != nil {
		l.logg.Error(l.logg.WithField(ctx, "outbox_id", row.ID.String()), "mark owed debit failed", err)
	}
	if l.logg != nil && !errors.Is(cause, ErrInsufficientCredits) {
		l.logg.Warn(l.logg.WithField(ctx, "outbox_id", row.ID.String()), fmt.Sprintf("owed debit not applied: %v", cause))
	}
}

func alreadyDebited(tx *gorm.DB, orderID int64) (bool, error) {
	if orderID <= 0 {
		return false, nil
	}
	var count int64
	err := tx.Model(&models.CreditTransaction{}).
		Where("order_id = ? AND kind IN ?", orderID, []enums.CreditTxnKind{enums.CreditTxnOrderDebit, enums.CreditTxnReconciledDebit}).
		Count(&count).Error
	return count > 0, err
}
