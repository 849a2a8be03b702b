package courier

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	delhivery "github.com/angelmondragon/shipdesk-backend/pkg/courier"
	"github.com/angelmondragon/shipdesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shipdesk-backend/pkg/errors"
	"github.com/angelmondragon/shipdesk-backend/pkg/logger"
)

const (
	paymentModeCOD     = "COD"
	paymentModePrepaid = "Prepaid"

	defaultProductsDesc = "General merchandise"
)

var gramsPerKilogram = decimal.NewFromInt(1000)

type shipmentAPI interface {
	CreateShipment(ctx context.Context, req delhivery.CreateRequest) (*delhivery.CreateResult, error)
	CancelShipment(ctx context.Context, waybill string) (*delhivery.CancelResult, error)
}

type tenantConfig interface {
	Settings(ctx context.Context, clientID int64) (*models.Client, error)
	PickupLocation(ctx context.Context, clientID int64, name string) (*models.PickupLocation, error)
}

// DelhiveryGateway builds booking payloads from tenant configuration and the order draft.
type DelhiveryGateway struct {
	api    shipmentAPI
	config tenantConfig
	logg   *logger.Logger
}

// NewDelhiveryGateway wires the gateway over the Delhivery HTTP client.
func NewDelhiveryGateway(api shipmentAPI, config tenantConfig, logg *logger.Logger) (*DelhiveryGateway, error) {
	if api == nil {
		return nil, fmt.Errorf("delhivery api required")
	}
	if config == nil {
		return nil, fmt.Errorf("tenant config required")
	}
	return &DelhiveryGateway{api: api, config: config, logg: logg}, nil
}

func (g *DelhiveryGateway) CreateOrder(ctx context.Context, draft models.Order) (*Booking, error) {
	client, err := g.config.Settings(ctx, draft.ClientID)
	if err != nil {
		return nil, err
	}
	pickup, err := g.config.PickupLocation(ctx, draft.ClientID, draft.PickupLocation)
	if err != nil {
		if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
			return nil, err
		}
		if g.logg != nil {
			g.logg.Warn(g.logg.WithField(ctx, "pickup_location", draft.PickupLocation), "pickup location not registered, booking without return overrides")
		}
		pickup = nil
	}

	result, err := g.api.CreateShipment(ctx, BuildCreateRequest(draft, client, pickup))
	if err != nil {
		return nil, err
	}
	return &Booking{Waybill: result.Waybill, OrderID: result.OrderID, Status: result.Status}, nil
}

func (g *DelhiveryGateway) CancelOrder(ctx context.Context, trackingID, pickupLocation string, clientID int64) (*Cancellation, error) {
	if g.logg != nil {
		ctx = g.logg.WithFields(ctx, map[string]any{
			"client_id":       clientID,
			"tracking_id":     trackingID,
			"pickup_location": pickupLocation,
		})
		g.logg.Debug(ctx, "cancelling delhivery shipment")
	}
	result, err := g.api.CancelShipment(ctx, trackingID)
	if err != nil {
		return nil, err
	}
	return &Cancellation{Message: result.Message}, nil
}

// BuildCreateRequest merges tenant settings, the pickup location and the order
// into a Delhivery manifest request. pickup may be nil.
func BuildCreateRequest(order models.Order, client *models.Client, pickup *models.PickupLocation) delhivery.CreateRequest {
	shipment := delhivery.Shipment{
		Name:         order.Name,
		Address:      order.Address,
		Pin:          order.Pincode,
		City:         order.City,
		State:        order.State,
		Country:      order.Country,
		Phone:        order.Mobile,
		Order:        order.ReferenceNumber,
		PaymentMode:  paymentModePrepaid,
		CODAmount:    "0",
		TotalAmount:  order.PackageValue.StringFixed(2),
		ProductsDesc: defaultProductsDesc,
		Quantity:     strconv.Itoa(order.TotalItems),
		Weight:       order.Weight.Mul(gramsPerKilogram).Round(0).String(),
	}
	if order.IsCOD {
		shipment.PaymentMode = paymentModeCOD
		amount := order.PackageValue
		if order.CODAmount.Valid {
			amount = order.CODAmount.Decimal
		}
		shipment.CODAmount = amount.StringFixed(2)
	}

	if client != nil {
		if desc := strings.TrimSpace(client.DefaultProductDescription); desc != "" {
			shipment.ProductsDesc = desc
		}
		shipment.SellerName = strings.TrimSpace(client.SellerName)
		if shipment.SellerName == "" {
			shipment.SellerName = strings.TrimSpace(client.CompanyName)
		}
		if client.SellerGSTIN != nil {
			shipment.SellerGSTTIN = strings.TrimSpace(*client.SellerGSTIN)
		}
		shipment.ReturnAdd = strings.TrimSpace(client.ReturnAddress)
	}
	if order.ResellerName != nil && strings.TrimSpace(*order.ResellerName) != "" {
		shipment.SellerName = strings.TrimSpace(*order.ResellerName)
	}

	if pickup != nil {
		if pickup.ReturnAddress != nil && strings.TrimSpace(*pickup.ReturnAddress) != "" {
			shipment.ReturnAdd = strings.TrimSpace(*pickup.ReturnAddress)
		}
		if shipment.ReturnAdd == "" {
			shipment.ReturnAdd = pickup.Address
		}
		shipment.ReturnPin = pickup.Pincode
		shipment.ReturnCity = pickup.City
		shipment.ReturnState = pickup.State
		shipment.ReturnPhone = pickup.Phone
	}

	name := order.PickupLocation
	if pickup != nil {
		name = pickup.Name
	}
	return delhivery.CreateRequest{
		Shipments:      []delhivery.Shipment{shipment},
		PickupLocation: delhivery.PickupLocation{Name: name},
	}
}
