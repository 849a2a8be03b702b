package credits

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/shipdesk-backend/pkg/db/models"
	"github.com/angelmondragon/shipdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shipdesk-backend/pkg/errors"
	"github.com/angelmondragon/shipdesk-backend/pkg/logger"
	"github.com/angelmondragon/shipdesk-backend/pkg/outbox"
)

// ErrInsufficientCredits is returned when a conditional debit matched no balance row.
var ErrInsufficientCredits = errors.New("insufficient credits")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type settingsSource interface {
	Settings(ctx context.Context, clientID int64) (*models.Client, error)
}

// Ledger owns every mutation of credit_balances.
type Ledger struct {
	db          *gorm.DB
	tx          txRunner
	settings    settingsSource
	outbox      outboxPublisher
	outboxRepo  *outbox.Repository
	defaultCost int
	logg        *logger.Logger
}

// Options wires a Ledger.
type Options struct {
	DB          *gorm.DB
	Tx          txRunner
	Settings    settingsSource
	Outbox      outboxPublisher
	OutboxRepo  *outbox.Repository
	DefaultCost int
	Logger      *logger.Logger
}

// NewLedger validates the collaborators and builds a Ledger.
func NewLedger(opts Options) (*Ledger, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("db required")
	}
	if opts.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if opts.Settings == nil {
		return nil, fmt.Errorf("settings source required")
	}
	if opts.Outbox == nil || opts.OutboxRepo == nil {
		return nil, fmt.Errorf("outbox required")
	}
	if opts.DefaultCost <= 0 {
		opts.DefaultCost = 1
	}
	return &Ledger{
		db:          opts.DB,
		tx:          opts.Tx,
		settings:    opts.Settings,
		outbox:      opts.Outbox,
		outboxRepo:  opts.OutboxRepo,
		defaultCost: opts.DefaultCost,
		logg:        opts.Logger,
	}, nil
}

// Balance returns the spendable credits of a client. A client without a
// balance row has zero credits.
func (l *Ledger) Balance(ctx context.Context, clientID int64) (int, error) {
	var row models.CreditBalance
	err := l.db.WithContext(ctx).First(&row, "client_id = ?", clientID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load credit balance")
	}
	return row.Balance, nil
}

// OrderCreditCost returns the per-order cost configured for the tenant.
func (l *Ledger) OrderCreditCost(ctx context.Context, clientID int64) (int, error) {
	client, err := l.settings.Settings(ctx, clientID)
	if err != nil {
		return 0, err
	}
	if client.OrderCreditCost > 0 {
		return client.OrderCreditCost, nil
	}
	return l.defaultCost, nil
}

// HasSufficientCredits reports whether the balance covers cost.
func (l *Ledger) HasSufficientCredits(ctx context.Context, clientID int64, cost int) (bool, error) {
	balance, err := l.Balance(ctx, clientID)
	if err != nil {
		return false, err
	}
	return balance >= cost, nil
}

// DeductOrderCredits debits the tenant's order cost for orderID.
func (l *Ledger) DeductOrderCredits(ctx context.Context, clientID, userID, orderID int64) error {
	cost, err := l.OrderCreditCost(ctx, clientID)
	if err != nil {
		return err
	}
	return l.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return debit(tx, clientID, userID, &orderID, cost, enums.CreditTxnOrderDebit)
	})
}

// GrantCredits tops up a balance and returns the new value.
func (l *Ledger) GrantCredits(ctx context.Context, clientID, userID int64, amount int) (int, error) {
	if amount <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	var balance int
	err := l.tx.WithTx(ctx, func(tx *gorm.DB) error {
		row := models.CreditBalance{ClientID: clientID, Balance: amount, UpdatedAt: time.Now().UTC()}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "client_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"balance":    gorm.Expr("credit_balances.balance + ?", amount),
				"updated_at": time.Now().UTC(),
			}),
		}).Create(&row).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.CreditTransaction{
			ClientID: clientID,
			UserID:   userID,
			Amount:   amount,
			Kind:     enums.CreditTxnTopUp,
		}).Error; err != nil {
			return err
		}
		var current models.CreditBalance
		if err := tx.First(&current, "client_id = ?", clientID).Error; err != nil {
			return err
		}
		balance = current.Balance
		return nil
	})
	return balance, err
}

// RecordDebitOwed persists a debit that failed so the reconciliation job can apply it later.
func (l *Ledger) RecordDebitOwed(ctx context.Context, owed outbox.CreditDebitOwed) error {
	return l.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return l.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCreditDebitOwed,
			AggregateType: enums.AggregateOrder,
			AggregateID:   strconv.FormatInt(owed.OrderID, 10),
			Actor:         &outbox.ActorRef{UserID: owed.UserID, ClientID: owed.ClientID},
			Data:          owed,
		})
	})
}

// debit applies a conditional decrement so the balance never goes negative.
func debit(tx *gorm.DB, clientID, userID int64, orderID *int64, cost int, kind enums.CreditTxnKind) error {
	res := tx.Model(&models.CreditBalance{}).
		Where("client_id = ? AND balance >= ?", clientID, cost).
		Updates(map[string]any{
			"balance":    gorm.Expr("balance - ?", cost),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientCredits
	}
	return tx.Create(&models.CreditTransaction{
		ClientID: clientID,
		UserID:   userID,
		OrderID:  orderID,
		Amount:   -cost,
		Kind:     kind,
	}).Error
}
