package courier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/shipdesk-backend/pkg/errors"
)

func sampleRequest() CreateRequest {
	return CreateRequest{
		Shipments: []Shipment{{
			Name:        "Asha",
			Address:     "12 MG Road",
			Pin:         "560001",
			City:        "Bengaluru",
			State:       "KA",
			Country:     "India",
			Phone:       "9876543210",
			Order:       "REF-9876543210-A1",
			PaymentMode: "Prepaid",
			TotalAmount: "499.00",
			Quantity:    "1",
			Weight:      "500",
		}},
		PickupLocation: PickupLocation{Name: "Main WH"},
	}
}

func TestCreateShipmentSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, createPath, r.URL.Path)
		assert.Equal(t, "Token tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		form, err := url.ParseQuery(string(raw))
		require.NoError(t, err)
		assert.Equal(t, "json", form.Get("format"))

		var data CreateRequest
		require.NoError(t, json.Unmarshal([]byte(form.Get("data")), &data))
		assert.Equal(t, "Main WH", data.PickupLocation.Name)
		require.Len(t, data.Shipments, 1)
		assert.Equal(t, "REF-9876543210-A1", data.Shipments[0].Order)

		_, _ = w.Write([]byte(`{"success":true,"packages":[{"status":"Success","waybill":"WB123","refnum":"REF-9876543210-A1"}]}`))
	}))
	defer srv.Close()

	client, err := NewClient("tok", WithBaseURL(srv.URL))
	require.NoError(t, err)

	res, err := client.CreateShipment(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "WB123", res.Waybill)
	assert.Equal(t, "REF-9876543210-A1", res.OrderID)
	assert.Equal(t, "Success", res.Status)
}

func TestCreateShipmentRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"rmk":"ClientWarehouse matching query does not exist","packages":[{"status":"Fail","remarks":["Non serviceable pincode"]}]}`))
	}))
	defer srv.Close()

	client, err := NewClient("tok", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = client.CreateShipment(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
	assert.Equal(t, "Non serviceable pincode", UpstreamDetail(err))
}

func TestCreateShipmentHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, err := NewClient("tok", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = client.CreateShipment(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.Contains(t, UpstreamDetail(err), "status 401")
}

func TestCancelShipment(t *testing.T) {
	var captured editRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, editPath, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		if captured.Waybill == "WB-BAD" {
			_, _ = w.Write([]byte(`{"status":false,"error":"Shipment already dispatched"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":true,"remark":"Shipment has been cancelled","waybill":"WB123"}`))
	}))
	defer srv.Close()

	client, err := NewClient("tok", WithBaseURL(srv.URL))
	require.NoError(t, err)

	res, err := client.CancelShipment(context.Background(), "WB123")
	require.NoError(t, err)
	assert.True(t, res.Status)
	assert.Equal(t, "Shipment has been cancelled", res.Message)
	assert.Equal(t, "true", captured.Cancellation)

	_, err = client.CancelShipment(context.Background(), "WB-BAD")
	require.Error(t, err)
	assert.Equal(t, "Shipment already dispatched", UpstreamDetail(err))

	_, err = client.CancelShipment(context.Background(), " ")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestNewClientRequiresToken(t *testing.T) {
	_, err := NewClient("  ")
	assert.ErrorIs(t, err, errTokenRequired)
}
