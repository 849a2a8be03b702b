package credits

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/shipdesk-backend/pkg/db"
	"github.com/angelmondragon/shipdesk-backend/pkg/db/models"
	"github.com/angelmondragon/shipdesk-backend/pkg/enums"
	"github.com/angelmondragon/shipdesk-backend/pkg/outbox"
)

type staticSettings struct {
	cost int
	err  error
}

func (s staticSettings) Settings(ctx context.Context, clientID int64) (*models.Client, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Client{ID: clientID, OrderCreditCost: s.cost}, nil
}

func newTestLedger(t *testing.T, cost int) (*Ledger, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:credits_%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.CreditBalance{}, &models.CreditTransaction{}, &models.OutboxEvent{}))

	repo := outbox.NewRepository(conn)
	ledger, err := NewLedger(Options{
		DB:         conn,
		Tx:         db.Wrap(conn),
		Settings:   staticSettings{cost: cost},
		Outbox:     outbox.NewService(repo, nil),
		OutboxRepo: repo,
	})
	require.NoError(t, err)
	return ledger, conn
}

func TestBalanceMissingRowIsZero(t *testing.T) {
	ledger, _ := newTestLedger(t, 1)
	balance, err := ledger.Balance(context.Background(), 42)
	require.NoError(t, err)
	assert.Zero(t, balance)

	ok, err := ledger.HasSufficientCredits(context.Background(), 42, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGrantAndDeduct(t *testing.T) {
	ledger, conn := newTestLedger(t, 2)
	ctx := context.Background()

	balance, err := ledger.GrantCredits(ctx, 1, 9, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, balance)
	balance, err = ledger.GrantCredits(ctx, 1, 9, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, balance)

	ok, err := ledger.HasSufficientCredits(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, ledger.DeductOrderCredits(ctx, 1, 9, 100))
	require.NoError(t, ledger.DeductOrderCredits(ctx, 1, 9, 101))
	err = ledger.DeductOrderCredits(ctx, 1, 9, 102)
	assert.ErrorIs(t, err, ErrInsufficientCredits)

	balance, err = ledger.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, balance)

	var debits []models.CreditTransaction
	require.NoError(t, conn.Where("kind = ?", enums.CreditTxnOrderDebit).Order("id").Find(&debits).Error)
	require.Len(t, debits, 2)
	assert.Equal(t, -2, debits[0].Amount)
	require.NotNil(t, debits[0].OrderID)
	assert.EqualValues(t, 100, *debits[0].OrderID)
}

func TestOrderCreditCostFallsBackToDefault(t *testing.T) {
	ledger, _ := newTestLedger(t, 0)
	cost, err := ledger.OrderCreditCost(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, cost)
}

func TestGrantRejectsNonPositiveAmount(t *testing.T) {
	ledger, _ := newTestLedger(t, 1)
	_, err := ledger.GrantCredits(context.Background(), 1, 1, 0)
	assert.Error(t, err)
}

func TestReconcileOwedDebits(t *testing.T) {
	ledger, conn := newTestLedger(t, 1)
	ctx := context.Background()

	require.NoError(t, ledger.RecordDebitOwed(ctx, outbox.CreditDebitOwed{ClientID: 1, UserID: 9, OrderID: 200, Amount: 1, Reason: "timeout"}))
	require.NoError(t, ledger.RecordDebitOwed(ctx, outbox.CreditDebitOwed{ClientID: 2, UserID: 9, OrderID: 300, Amount: 1, Reason: "timeout"}))

	_, err := ledger.GrantCredits(ctx, 1, 9, 5)
	require.NoError(t, err)

	summary, err := ledger.ReconcileOwedDebits(ctx, 10, 5)
	require.NoError(t, err)
	assert.Equal(t, ReconcileSummary{Applied: 1, Failed: 1}, summary)

	balance, err := ledger.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, balance)

	var pending []models.OutboxEvent
	require.NoError(t, conn.Where("published_at IS NULL").Find(&pending).Error)
	require.Len(t, pending, 1)
	assert.Equal(t, "300", pending[0].AggregateID)
	assert.Equal(t, 1, pending[0].AttemptCount)
	require.NotNil(t, pending[0].LastError)
	assert.Contains(t, *pending[0].LastError, ErrInsufficientCredits.Error())

	_, err = ledger.GrantCredits(ctx, 2, 9, 1)
	require.NoError(t, err)
	summary, err = ledger.ReconcileOwedDebits(ctx, 10, 5)
	require.NoError(t, err)
	assert.Equal(t, ReconcileSummary{Applied: 1}, summary)
}

func TestReconcileSkipsOrdersAlreadyDebited(t *testing.T) {
	ledger, _ := newTestLedger(t, 1)
	ctx := context.Background()

	_, err := ledger.GrantCredits(ctx, 1, 9, 5)
	require.NoError(t, err)
	require.NoError(t, ledger.DeductOrderCredits(ctx, 1, 9, 77))
	require.NoError(t, ledger.RecordDebitOwed(ctx, outbox.CreditDebitOwed{ClientID: 1, UserID: 9, OrderID: 77, Amount: 1}))

	summary, err := ledger.ReconcileOwedDebits(ctx, 10, 5)
	require.NoError(t, err)
	assert.Equal(t, ReconcileSummary{Skipped: 1}, summary)

	balance, err := ledger.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, balance)
}

func TestReconcileRespectsMaxAttempts(t *testing.T) {
	ledger, conn := newTestLedger(t, 1)
	ctx := context.Background()

	require.NoError(t, ledger.RecordDebitOwed(ctx, outbox.CreditDebitOwed{ClientID: 5, UserID: 9, OrderID: 1, Amount: 1}))
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Where("1 = 1").Update("attempt_count", 3).Error)

	summary, err := ledger.ReconcileOwedDebits(ctx, 10, 3)
	require.NoError(t, err)
	assert.Equal(t, ReconcileSummary{}, summary)
}

func TestNewLedgerValidatesCollaborators(t *testing.T) {
	_, err := NewLedger(Options{})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrInsufficientCredits))
}
