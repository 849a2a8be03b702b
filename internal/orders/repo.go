package orders

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/angelmondragon/shipdesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shipdesk-backend/pkg/errors"
	"github.com/angelmondragon/shipdesk-backend/pkg/pagination"
	"github.com/angelmondragon/shipdesk-backend/pkg/visibility"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, clientID, orderID int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("client_id = ? AND id = ?", clientID, orderID).
		First(&order).Error
	if err != nil {
		return nil, notFoundOr(err, "order not found")
	}
	return &order, nil
}

func (r *repository) FindScoped(ctx context.Context, scope visibility.Scope, orderID int64) (*models.Order, error) {
	var order models.Order
	err := scope.Apply(r.db.WithContext(ctx).Model(&models.Order{})).
		Where("orders.id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, notFoundOr(err, "order not found")
	}
	if !scope.Allows(order) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return &order, nil
}

func (r *repository) FindByIDsScoped(ctx context.Context, scope visibility.Scope, ids []int64) ([]models.Order, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Order
	err := scope.Apply(r.db.WithContext(ctx).Model(&models.Order{})).
		Where("orders.id IN ?", ids).
		Order("orders.id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load orders")
	}
	visible := rows[:0]
	for _, row := range rows {
		if scope.Allows(row) {
			visible = append(visible, row)
		}
	}
	return visible, nil
}

func (r *repository) CountInTenant(ctx context.Context, clientID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("client_id = ? AND id IN ?", clientID, ids).
		Count(&count).Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	return count, nil
}

func (r *repository) ReferenceExists(ctx context.Context, clientID int64, reference string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("client_id = ? AND reference_number = ?", clientID, reference).
		Count(&count).Error
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check reference number")
	}
	return count > 0, nil
}

func (r *repository) ListScoped(ctx context.Context, scope visibility.Scope, params pagination.Params) (*OrderList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	query := scope.Apply(r.db.WithContext(ctx).Model(&models.Order{}))
	if cursor != nil {
		query = query.Where("orders.id < ?", cursor.ID)
	}
	var rows []models.Order
	if err := query.Order("orders.id DESC").Limit(pagination.LimitWithBuffer(limit)).Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	list := &OrderList{Orders: make([]OrderSummary, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{ID: rows[len(rows)-1].ID})
	}
	for _, row := range rows {
		list.Orders = append(list.Orders, summaryFromModel(row))
	}
	return list, nil
}

func (r *repository) DeleteByIDs(ctx context.Context, clientID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("client_id = ? AND id IN ?", clientID, ids).
		Delete(&models.Order{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, msg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
