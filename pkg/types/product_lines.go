package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// ProductLine is one catalog SKU attached to an order.
type ProductLine struct {
	SKU      string `json:"sku" validate:"required"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

// ProductLines is stored as a JSON array; nil means the order was keyed manually.
type ProductLines []ProductLine

// Value marshals the lines as JSON, or NULL when empty.
func (p ProductLines) Value() (driver.Value, error) {
	if len(p) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal([]ProductLine(p))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan decodes a JSON array from the driver value.
func (p *ProductLines) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("product lines: unsupported type %T", value)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		*p = nil
		return nil
	}
	var lines []ProductLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		return fmt.Errorf("product lines: %w", err)
	}
	*p = lines
	return nil
}

// Restorable drops lines without a SKU or with a non-positive quantity.
func (p ProductLines) Restorable() ProductLines {
	out := make(ProductLines, 0, len(p))
	for _, line := range p {
		if strings.TrimSpace(line.SKU) == "" || line.Quantity <= 0 {
			continue
		}
		out = append(out, line)
	}
	return out
}
