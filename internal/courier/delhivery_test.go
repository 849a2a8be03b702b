package courier

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	delhivery "github.com/angelmondragon/shipdesk-backend/pkg/courier"
	"github.com/angelmondragon/shipdesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shipdesk-backend/pkg/errors"
)

type stubAPI struct {
	lastCreate delhivery.CreateRequest
	lastCancel string
	createErr  error
	cancelErr  error
}

func (s *stubAPI) CreateShipment(ctx context.Context, req delhivery.CreateRequest) (*delhivery.CreateResult, error) {
	s.lastCreate = req
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &delhivery.CreateResult{Waybill: "WB123", OrderID: req.Shipments[0].Order, Status: "Success"}, nil
}

func (s *stubAPI) CancelShipment(ctx context.Context, waybill string) (*delhivery.CancelResult, error) {
	s.lastCancel = waybill
	if s.cancelErr != nil {
		return nil, s.cancelErr
	}
	return &delhivery.CancelResult{Status: true, Message: "Shipment cancelled"}, nil
}

type stubConfig struct {
	client *models.Client
	pickup *models.PickupLocation
	err    error
}

func (s stubConfig) Settings(ctx context.Context, clientID int64) (*models.Client, error) {
	return s.client, nil
}

func (s stubConfig) PickupLocation(ctx context.Context, clientID int64, name string) (*models.PickupLocation, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.pickup == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pickup location not found")
	}
	return s.pickup, nil
}

func strPtr(v string) *string { return &v }

func draftOrder() models.Order {
	return models.Order{
		ClientID:        1,
		ReferenceNumber: "REF-9876543210-ABC",
		Name:            "Ravi",
		Mobile:          "9876543210",
		Address:         "12 MG Road",
		City:            "Bengaluru",
		State:           "KA",
		Country:         "India",
		Pincode:         "560001",
		CourierService:  "Delhivery",
		PickupLocation:  "main",
		Weight:          decimal.RequireFromString("1.25"),
		PackageValue:    decimal.RequireFromString("499"),
		TotalItems:      2,
	}
}

func TestIsGatewayCourier(t *testing.T) {
	assert.True(t, IsGatewayCourier("delhivery"))
	assert.True(t, IsGatewayCourier(" DELHIVERY "))
	assert.False(t, IsGatewayCourier("bluedart"))
	assert.False(t, IsGatewayCourier(""))
}

func TestBuildCreateRequestPrepaid(t *testing.T) {
	client := &models.Client{CompanyName: "Acme", DefaultProductDescription: "Apparel", ReturnAddress: "Client HQ", SellerGSTIN: strPtr("29ABCDE1234F1Z5")}
	pickup := &models.PickupLocation{Name: "Main", Address: "Dock 4", City: "Bengaluru", State: "KA", Pincode: "560002", Phone: "9000000000"}

	req := BuildCreateRequest(draftOrder(), client, pickup)
	require.Len(t, req.Shipments, 1)
	s := req.Shipments[0]
	assert.Equal(t, "Main", req.PickupLocation.Name)
	assert.Equal(t, "Prepaid", s.PaymentMode)
	assert.Equal(t, "0", s.CODAmount)
	assert.Equal(t, "499.00", s.TotalAmount)
	assert.Equal(t, "1250", s.Weight)
	assert.Equal(t, "2", s.Quantity)
	assert.Equal(t, "Apparel", s.ProductsDesc)
	assert.Equal(t, "Acme", s.SellerName)
	assert.Equal(t, "29ABCDE1234F1Z5", s.SellerGSTTIN)
	assert.Equal(t, "Client HQ", s.ReturnAdd)
	assert.Equal(t, "560002", s.ReturnPin)
	assert.Equal(t, "REF-9876543210-ABC", s.Order)
}

func TestBuildCreateRequestCODAndOverrides(t *testing.T) {
	order := draftOrder()
	order.IsCOD = true
	order.CODAmount = decimal.NewNullDecimal(decimal.RequireFromString("450.5"))
	order.ResellerName = strPtr("Reseller Co")
	pickup := &models.PickupLocation{Name: "Main", Address: "Dock 4", ReturnAddress: strPtr("Returns Desk")}

	s := BuildCreateRequest(order, &models.Client{}, pickup).Shipments[0]
	assert.Equal(t, "COD", s.PaymentMode)
	assert.Equal(t, "450.50", s.CODAmount)
	assert.Equal(t, "Reseller Co", s.SellerName)
	assert.Equal(t, "Returns Desk", s.ReturnAdd)
	assert.Equal(t, "General merchandise", s.ProductsDesc)
}

func TestBuildCreateRequestFallsBackToPickupAddress(t *testing.T) {
	pickup := &models.PickupLocation{Name: "Main", Address: "Dock 4"}
	s := BuildCreateRequest(draftOrder(), &models.Client{}, pickup).Shipments[0]
	assert.Equal(t, "Dock 4", s.ReturnAdd)
}

func TestCreateOrderBooksShipment(t *testing.T) {
	api := &stubAPI{}
	gw, err := NewDelhiveryGateway(api, stubConfig{client: &models.Client{ID: 1}}, nil)
	require.NoError(t, err)

	booking, err := gw.CreateOrder(context.Background(), draftOrder())
	require.NoError(t, err)
	assert.Equal(t, "WB123", booking.Waybill)
	assert.Equal(t, "main", api.lastCreate.PickupLocation.Name)
}

func TestCreateOrderPropagatesFailures(t *testing.T) {
	api := &stubAPI{createErr: pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("pincode not serviceable"), "delhivery rejected shipment")}
	gw, err := NewDelhiveryGateway(api, stubConfig{client: &models.Client{ID: 1}}, nil)
	require.NoError(t, err)

	_, err = gw.CreateOrder(context.Background(), draftOrder())
	require.Error(t, err)
	assert.Equal(t, "pincode not serviceable", delhivery.UpstreamDetail(err))

	gw, err = NewDelhiveryGateway(&stubAPI{}, stubConfig{client: &models.Client{ID: 1}, err: errors.New("db down")}, nil)
	require.NoError(t, err)
	_, err = gw.CreateOrder(context.Background(), draftOrder())
	assert.EqualError(t, err, "db down")
}

func TestCancelOrder(t *testing.T) {
	api := &stubAPI{}
	gw, err := NewDelhiveryGateway(api, stubConfig{}, nil)
	require.NoError(t, err)

	res, err := gw.CancelOrder(context.Background(), "WB123", "main", 1)
	require.NoError(t, err)
	assert.Equal(t, "Shipment cancelled", res.Message)
	assert.Equal(t, "WB123", api.lastCancel)
}
