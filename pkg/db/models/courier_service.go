package models

import "time"

// CourierService is a selectable carrier name.
type CourierService struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;not null"`
	Code      string    `gorm:"column:code;not null;uniqueIndex"`
	Active    bool      `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
