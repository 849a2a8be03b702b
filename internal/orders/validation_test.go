package orders

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/shipdesk-backend/pkg/errors"
)

func validInput() CreateOrderInput {
	value := decimal.RequireFromString("499.00")
	weight := decimal.RequireFromString("0.5")
	items := 1
	return CreateOrderInput{
		Name:           "Asha Rao",
		Mobile:         "9876543210",
		Address:        "12 MG Road",
		City:           "Bengaluru",
		State:          "KA",
		Country:        "India",
		Pincode:        "560001",
		CourierService: "Delhivery",
		PickupLocation: "Main Warehouse",
		PackageValue:   &value,
		Weight:         &weight,
		TotalItems:     &items,
	}
}

func TestValidateAcceptsCompleteDraft(t *testing.T) {
	require.NoError(t, validInput().Validate())
}

func TestValidateReportsMissingField(t *testing.T) {
	in := validInput()
	in.Pincode = "  "
	err := in.Validate()
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	assert.Equal(t, pkgerrors.ReasonMissingField, pkgerrors.ReasonOf(err))
	assert.Equal(t, "pincode", pkgerrors.As(err).Details().(map[string]any)["field"])

	in = validInput()
	in.TotalItems = nil
	assert.Equal(t, pkgerrors.ReasonMissingField, pkgerrors.ReasonOf(in.Validate()))
}

func TestValidateRejectsBadMobiles(t *testing.T) {
	in := validInput()
	in.Mobile = "12345"
	assert.Equal(t, pkgerrors.ReasonInvalidMobile, pkgerrors.ReasonOf(in.Validate()))

	in = validInput()
	bad := "0000000000"
	in.ResellerMobile = &bad
	err := in.Validate()
	assert.Equal(t, pkgerrors.ReasonInvalidMobile, pkgerrors.ReasonOf(err))
	assert.Equal(t, "resellerMobile", pkgerrors.As(err).Details().(map[string]any)["field"])
}

func TestValidateRejectsNonPositiveNumbers(t *testing.T) {
	in := validInput()
	zero := decimal.Zero
	in.Weight = &zero
	assert.Equal(t, pkgerrors.ReasonInvalidField, pkgerrors.ReasonOf(in.Validate()))

	in = validInput()
	items := 0
	in.TotalItems = &items
	assert.Equal(t, pkgerrors.ReasonInvalidField, pkgerrors.ReasonOf(in.Validate()))
}

func TestValidateReportsMissingBeforeMobile(t *testing.T) {
	in := validInput()
	in.Mobile = "12345"
	in.City = ""
	err := in.Validate()
	assert.Equal(t, pkgerrors.ReasonMissingField, pkgerrors.ReasonOf(err))
	assert.Equal(t, "city", pkgerrors.As(err).Details().(map[string]any)["field"])
}

func TestValidateIgnoresBlankResellerMobile(t *testing.T) {
	in := validInput()
	blank := "  "
	in.ResellerMobile = &blank
	require.NoError(t, in.Validate())
}

func TestValidateRejectsBadProductLines(t *testing.T) {
	in := validInput()
	in.Products = []productLine{{SKU: "SKU-1", Quantity: 1}, {SKU: " ", Quantity: 2}}
	err := in.Validate()
	assert.Equal(t, pkgerrors.ReasonMissingField, pkgerrors.ReasonOf(err))
	assert.Equal(t, "products[1].sku", pkgerrors.As(err).Details().(map[string]any)["field"])
	assert.Equal(t, " ", in.Products[1].SKU)

	in.Products = []productLine{{SKU: "SKU-1", Quantity: 0}}
	assert.Equal(t, pkgerrors.ReasonInvalidField, pkgerrors.ReasonOf(in.Validate()))
}
