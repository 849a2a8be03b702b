package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shipdesk-backend/pkg/enums"
	"github.com/angelmondragon/shipdesk-backend/pkg/types"
)

// Order is a shipment request owned by a client tenant.
type Order struct {
	ID              int64  `gorm:"column:id;primaryKey;autoIncrement"`
	ClientID        int64  `gorm:"column:client_id;not null;uniqueIndex:ux_orders_client_reference,priority:1;index"`
	ReferenceNumber string `gorm:"column:reference_number;not null;uniqueIndex:ux_orders_client_reference,priority:2"`

	Name           string              `gorm:"column:name;not null"`
	Mobile         string              `gorm:"column:mobile;not null"`
	Address        string              `gorm:"column:address;not null"`
	City           string              `gorm:"column:city;not null"`
	State          string              `gorm:"column:state;not null"`
	Country        string              `gorm:"column:country;not null"`
	Pincode        string              `gorm:"column:pincode;not null"`
	CourierService string              `gorm:"column:courier_service;not null"`
	PickupLocation string              `gorm:"column:pickup_location;not null"`
	Weight         decimal.Decimal     `gorm:"column:weight;type:numeric(10,3);not null"`
	PackageValue   decimal.Decimal     `gorm:"column:package_value;type:numeric(12,2);not null"`
	TotalItems     int                 `gorm:"column:total_items;not null"`
	IsCOD          bool                `gorm:"column:is_cod;not null;default:false"`
	CODAmount      decimal.NullDecimal `gorm:"column:cod_amount;type:numeric(12,2)"`
	ResellerName   *string             `gorm:"column:reseller_name"`
	ResellerMobile *string             `gorm:"column:reseller_mobile"`

	TrackingID             *string              `gorm:"column:tracking_id"`
	DelhiveryWaybillNumber *string              `gorm:"column:delhivery_waybill_number"`
	DelhiveryOrderID       *string              `gorm:"column:delhivery_order_id"`
	DelhiveryAPIStatus     *string              `gorm:"column:delhivery_api_status"`
	TrackingStatus         enums.TrackingStatus `gorm:"column:tracking_status;not null;default:'pending'"`
	LastCourierAttempt     *time.Time           `gorm:"column:last_courier_attempt"`

	CreatedBy int64              `gorm:"column:created_by;not null;index"`
	SubGroup  *string            `gorm:"column:sub_group;index"`
	Products  types.ProductLines `gorm:"column:products;type:jsonb"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderNumber is the display number derived from the id.
func (o Order) OrderNumber() string {
	return fmt.Sprintf("ORD-%d", o.ID)
}

// Tracking returns the tracking id or an empty string.
func (o Order) Tracking() string {
	if o.TrackingID == nil {
		return ""
	}
	return *o.TrackingID
}
