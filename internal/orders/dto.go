package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shipdesk-backend/internal/inventory"
	"github.com/angelmondragon/shipdesk-backend/pkg/db/models"
	"github.com/angelmondragon/shipdesk-backend/pkg/enums"
	"github.com/angelmondragon/shipdesk-backend/pkg/types"
)

// CreateOrderInput is the order draft submitted by a tenant user.
// Required numerics are pointers so a missing value is distinguishable from zero.
type CreateOrderInput struct {
	Name           string           `json:"name" validate:"required"`
	Mobile         string           `json:"mobile" validate:"required,in_mobile"`
	Address        string           `json:"address" validate:"required"`
	City           string           `json:"city" validate:"required"`
	State          string           `json:"state" validate:"required"`
	Country        string           `json:"country" validate:"required"`
	Pincode        string           `json:"pincode" validate:"required"`
	CourierService string           `json:"courierService" validate:"required"`
	PickupLocation string           `json:"pickupLocation" validate:"required"`
	PackageValue   *decimal.Decimal `json:"packageValue" validate:"required,gte=0"`
	Weight         *decimal.Decimal `json:"weight" validate:"required,gt=0"`
	TotalItems     *int             `json:"totalItems" validate:"required,gt=0"`
	IsCOD          bool             `json:"isCod"`
	CODAmount      *decimal.Decimal `json:"codAmount,omitempty" validate:"omitempty,gte=0"`
	ResellerName   *string          `json:"resellerName,omitempty"`
	ResellerMobile *string          `json:"resellerMobile,omitempty" validate:"omitempty,in_mobile"`

	ReferenceNumber string              `json:"referenceNumber,omitempty"`
	TrackingID      string              `json:"trackingId,omitempty"`
	SkipTracking    bool                `json:"skipTracking,omitempty"`
	Products        []types.ProductLine `json:"products,omitempty" validate:"omitempty,dive"`
}

// CreatedOrder is the confirmation returned after creation.
type CreatedOrder struct {
	ID              int64                `json:"id"`
	OrderNumber     string               `json:"orderNumber"`
	ReferenceNumber string               `json:"referenceNumber"`
	TrackingID      *string              `json:"trackingId"`
	CourierStatus   enums.TrackingStatus `json:"courierStatus"`
}

// CreateResult is the creation response body.
type CreateResult struct {
	Success bool         `json:"success"`
	Order   CreatedOrder `json:"order"`
}

// DeletedOrder identifies a removed row in the deletion report.
type DeletedOrder struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Mobile     string  `json:"mobile"`
	TrackingID *string `json:"trackingId"`
}

// CourierCancellation is the outcome of one courier cancellation attempt.
type CourierCancellation struct {
	OrderID int64  `json:"orderId"`
	Waybill string `json:"waybill"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// DeleteResult reports the deletion and every compensation attempted for it.
type DeleteResult struct {
	Success               bool                  `json:"success"`
	DeletedCount          int                   `json:"deletedCount"`
	DeletedOrders         []DeletedOrder        `json:"deletedOrders"`
	CourierCancellations  []CourierCancellation `json:"courierCancellations"`
	InventoryRestorations []inventory.Outcome   `json:"inventoryRestorations"`
}

// OrderSummary is a row in the scoped order list.
type OrderSummary struct {
	ID              int64                `json:"id"`
	OrderNumber     string               `json:"orderNumber"`
	ReferenceNumber string               `json:"referenceNumber"`
	Name            string               `json:"name"`
	Mobile          string               `json:"mobile"`
	City            string               `json:"city"`
	CourierService  string               `json:"courierService"`
	TrackingID      *string              `json:"trackingId"`
	TrackingStatus  enums.TrackingStatus `json:"trackingStatus"`
	CreatedBy       int64                `json:"createdBy"`
	CreatedAt       time.Time            `json:"createdAt"`
}

// OrderList is a page of orders ordered by id descending.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"nextCursor,omitempty"`
}

// OrderDetail is the full order view, also used as the order.created webhook body.
type OrderDetail struct {
	ID                     int64                `json:"id"`
	OrderNumber            string               `json:"orderNumber"`
	ReferenceNumber        string               `json:"referenceNumber"`
	TrackingID             *string              `json:"trackingId"`
	Name                   string               `json:"name"`
	Mobile                 string               `json:"mobile"`
	Address                string               `json:"address"`
	City                   string               `json:"city"`
	State                  string               `json:"state"`
	Country                string               `json:"country"`
	Pincode                string               `json:"pincode"`
	CourierService         string               `json:"courierService"`
	PickupLocation         string               `json:"pickupLocation"`
	PackageValue           decimal.Decimal      `json:"packageValue"`
	Weight                 decimal.Decimal      `json:"weight"`
	TotalItems             int                  `json:"totalItems"`
	IsCOD                  bool                 `json:"isCod"`
	CODAmount              *decimal.Decimal     `json:"codAmount"`
	ResellerName           *string              `json:"resellerName"`
	ResellerMobile         *string              `json:"resellerMobile"`
	DelhiveryWaybillNumber *string              `json:"delhiveryWaybillNumber"`
	DelhiveryOrderID       *string              `json:"delhiveryOrderId"`
	DelhiveryAPIStatus     *string              `json:"delhiveryApiStatus"`
	TrackingStatus         enums.TrackingStatus `json:"trackingStatus"`
	LastCourierAttempt     *time.Time           `json:"lastCourierAttempt"`
	SubGroup               *string              `json:"subGroup"`
	Products               []types.ProductLine  `json:"products,omitempty"`
	CreatedBy              int64                `json:"createdBy"`
	CreatedAt              time.Time            `json:"createdAt"`
	UpdatedAt              time.Time            `json:"updatedAt"`
}

// WebhookClient identifies the tenant in webhook bodies.
type WebhookClient struct {
	ID          int64  `json:"id"`
	CompanyName string `json:"companyName"`
	Name        string `json:"name"`
	Email       string `json:"email"`
}

// OrderCreatedPayload is the order.created webhook body.
type OrderCreatedPayload struct {
	Event  string        `json:"event"`
	Order  OrderDetail   `json:"order"`
	Client WebhookClient `json:"client"`
}

func summaryFromModel(o models.Order) OrderSummary {
	return OrderSummary{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber(),
		ReferenceNumber: o.ReferenceNumber,
		Name:            o.Name,
		Mobile:          o.Mobile,
		City:            o.City,
		CourierService:  o.CourierService,
		TrackingID:      o.TrackingID,
		TrackingStatus:  o.TrackingStatus,
		CreatedBy:       o.CreatedBy,
		CreatedAt:       o.CreatedAt,
	}
}

// DetailFromModel maps a stored order to its API view.
func DetailFromModel(o models.Order) OrderDetail {
	detail := OrderDetail{
		ID:                     o.ID,
		OrderNumber:            o.OrderNumber(),
		ReferenceNumber:        o.ReferenceNumber,
		TrackingID:             o.TrackingID,
		Name:                   o.Name,
		Mobile:                 o.Mobile,
		Address:                o.Address,
		City:                   o.City,
		State:                  o.State,
		Country:                o.Country,
		Pincode:                o.Pincode,
		CourierService:         o.CourierService,
		PickupLocation:         o.PickupLocation,
		PackageValue:           o.PackageValue,
		Weight:                 o.Weight,
		TotalItems:             o.TotalItems,
		IsCOD:                  o.IsCOD,
		ResellerName:           o.ResellerName,
		ResellerMobile:         o.ResellerMobile,
		DelhiveryWaybillNumber: o.DelhiveryWaybillNumber,
		DelhiveryOrderID:       o.DelhiveryOrderID,
		DelhiveryAPIStatus:     o.DelhiveryAPIStatus,
		TrackingStatus:         o.TrackingStatus,
		LastCourierAttempt:     o.LastCourierAttempt,
		SubGroup:               o.SubGroup,
		Products:               o.Products,
		CreatedBy:              o.CreatedBy,
		CreatedAt:              o.CreatedAt,
		UpdatedAt:              o.UpdatedAt,
	}
	if o.CODAmount.Valid {
		amount := o.CODAmount.Decimal
		detail.CODAmount = &amount
	}
	return detail
}

func webhookClientFromModel(c *models.Client) WebhookClient {
	if c == nil {
		return WebhookClient{}
	}
	return WebhookClient{ID: c.ID, CompanyName: c.CompanyName, Name: c.Name, Email: c.Email}
}
