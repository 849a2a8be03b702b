package models

import "time"

// PickupLocation is a registered warehouse a client ships from.
type PickupLocation struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ClientID      int64     `gorm:"column:client_id;not null;uniqueIndex:ux_pickup_locations_client_name,priority:1"`
	Name          string    `gorm:"column:name;not null;uniqueIndex:ux_pickup_locations_client_name,priority:2"`
	Address       string    `gorm:"column:address;not null"`
	City          string    `gorm:"column:city;not null"`
	State         string    `gorm:"column:state;not null"`
	Pincode       string    `gorm:"column:pincode;not null"`
	Phone         string    `gorm:"column:phone;not null"`
	ReturnAddress *string   `gorm:"column:return_address"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
