package models

import (
	"time"

	"github.com/angelmondragon/shipdesk-backend/pkg/enums"
)

// CreditBalance holds the spendable order credits of a client.
type CreditBalance struct {
	ClientID  int64     `gorm:"column:client_id;primaryKey;autoIncrement:false"`
	Balance   int       `gorm:"column:balance;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// CreditTransaction is an append-only record of a balance movement.
type CreditTransaction struct {
	ID        int64               `gorm:"column:id;primaryKey;autoIncrement"`
	ClientID  int64               `gorm:"column:client_id;not null;index"`
	UserID    int64               `gorm:"column:user_id;not null"`
	OrderID   *int64              `gorm:"column:order_id;index"`
	Amount    int                 `gorm:"column:amount;not null"`
	Kind      enums.CreditTxnKind `gorm:"column:kind;not null"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
}
