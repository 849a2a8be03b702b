package models

import "time"

// CatalogCredential authenticates a client against the external inventory service.
type CatalogCredential struct {
	ClientID        int64     `gorm:"column:client_id;primaryKey;autoIncrement:false"`
	APIKey          string    `gorm:"column:api_key;not null"`
	CatalogClientID string    `gorm:"column:catalog_client_id;not null"`
	BaseURL         *string   `gorm:"column:base_url"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
