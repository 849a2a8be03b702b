package models

import (
	"time"

	"github.com/angelmondragon/shipdesk-backend/pkg/enums"
)

// User is an actor belonging to a client tenant.
type User struct {
	ID        int64          `gorm:"column:id;primaryKey;autoIncrement"`
	ClientID  int64          `gorm:"column:client_id;not null;index"`
	Name      string         `gorm:"column:name;not null"`
	Email     string         `gorm:"column:email;not null;uniqueIndex"`
	Role      enums.UserRole `gorm:"column:role;not null"`
	SubGroup  *string        `gorm:"column:sub_group"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
