package orders

import (
	"strings"

	"github.com/angelmondragon/shipdesk-backend/pkg/types"
	"github.com/angelmondragon/shipdesk-backend/pkg/validation"
)

// Validate runs the draft's validate tags against a whitespace-trimmed copy.
// Missing fields are reported before malformed mobiles, and those before
// out-of-range values.
func (in CreateOrderInput) Validate() error {
	trimmed := in.trimmed()
	return validation.Struct(&trimmed)
}

func (in CreateOrderInput) trimmed() CreateOrderInput {
	for _, f := range []*string{
		&in.Name, &in.Mobile, &in.Address, &in.City, &in.State, &in.Country,
		&in.Pincode, &in.CourierService, &in.PickupLocation,
	} {
		*f = strings.TrimSpace(*f)
	}
	if in.ResellerMobile != nil {
		mobile := strings.TrimSpace(*in.ResellerMobile)
		in.ResellerMobile = nil
		if mobile != "" {
			in.ResellerMobile = &mobile
		}
	}
	if in.Products != nil {
		lines := make([]types.ProductLine, len(in.Products))
		for i, line := range in.Products {
			line.SKU = strings.TrimSpace(line.SKU)
			lines[i] = line
		}
		in.Products = lines
	}
	return in
}

func fieldError(reason, field, msg string) error {
	return validation.FieldError(reason, field, msg)
}
