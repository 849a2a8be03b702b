package models

import "time"

// Client is a tenant and carries the settings used when booking shipments.
type Client struct {
	ID                        int64   `gorm:"column:id;primaryKey;autoIncrement"`
	CompanyName               string  `gorm:"column:company_name;not null"`
	Name                      string  `gorm:"column:name;not null"`
	Email                     string  `gorm:"column:email;not null"`
	OrderCreditCost           int     `gorm:"column:order_credit_cost;not null;default:1"`
	ReferencePrefixEnabled    bool    `gorm:"column:reference_prefix_enabled;not null;default:false"`
	ReferencePrefix           string  `gorm:"column:reference_prefix;not null;default:'REF'"`
	DefaultProductDescription string  `gorm:"column:default_product_description"`
	ReturnAddress             string  `gorm:"column:return_address"`
	SellerName                string  `gorm:"column:seller_name"`
	SellerGSTIN               *string `gorm:"column:seller_gstin"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
