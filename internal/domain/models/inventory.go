package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// maxExactFloat bounds quantities that survive a float64 round trip.
const maxExactFloat = 1 << 53

// ItemID is the opaque identifier assigned to an item by the inventory backend.
// The zero value means the id is undefined.
type ItemID string

// IsZero reports whether the id is undefined.
func (id ItemID) IsZero() bool {
	return strings.TrimSpace(string(id)) == ""
}

func (id ItemID) String() string {
	return string(id)
}

// UnmarshalJSON accepts both string and numeric ids, since json-server style
// backends hand out integers.
func (id *ItemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode item id: %w", err)
		}
		*id = ItemID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode item id: %w", err)
	}
	*id = ItemID(n.String())
	return nil
}

// Item is a single inventory record as held by the dashboard.
type Item struct {
	ID       ItemID
	Name     string
	Quantity int
	Price    decimal.Decimal
	Category string
}

// Snapshot is a point-in-time copy of the whole inventory collection, in the
// order the backend returned it.
type Snapshot []Item

// ItemFields is the payload sent to the backend when creating or replacing an item.
type ItemFields struct {
	Name     string
	Quantity int
	Price    decimal.Decimal
	Category string
}

// Fields returns the mutable part of the item.
func (i Item) Fields() ItemFields {
	return ItemFields{
		Name:     i.Name,
		Quantity: i.Quantity,
		Price:    i.Price,
		Category: i.Category,
	}
}

// WithID builds the item stored under id with these fields.
func (f ItemFields) WithID(id ItemID) Item {
	return Item{
		ID:       id,
		Name:     f.Name,
		Quantity: f.Quantity,
		Price:    f.Price,
		Category: f.Category,
	}
}

type itemWire struct {
	ID       ItemID `json:"id,omitempty"`
	Name     any    `json:"name"`
	Quantity any    `json:"quantity"`
	Price    any    `json:"price"`
	Category any    `json:"category"`
}

type fieldsWire struct {
	Name     string      `json:"name"`
	Quantity int         `json:"quantity"`
	Price    json.Number `json:"price"`
	Category string      `json:"category"`
}

// UnmarshalJSON decodes an item, coercing quantity and price to numbers.
// Values that are not numeric become zero instead of failing the decode.
func (i *Item) UnmarshalJSON(data []byte) error {
	var wire itemWire
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&wire); err != nil {
		return fmt.Errorf("decode item: %w", err)
	}

	*i = Item{
		ID:       wire.ID,
		Name:     coerceText(wire.Name),
		Quantity: CoerceQuantity(wire.Quantity),
		Price:    CoercePrice(wire.Price),
		Category: coerceText(wire.Category),
	}
	return nil
}

// MarshalJSON encodes the item with a numeric price.
func (i Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID ItemID `json:"id"`
		fieldsWire
	}{
		ID:         i.ID,
		fieldsWire: i.Fields().wire(),
	})
}

// MarshalJSON encodes the fields without an id so the backend assigns one.
func (f ItemFields) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.wire())
}

// UnmarshalJSON decodes fields with the same coercion rules as Item.
func (f *ItemFields) UnmarshalJSON(data []byte) error {
	var item Item
	if err := item.UnmarshalJSON(data); err != nil {
		return err
	}
	*f = item.Fields()
	return nil
}

func (f ItemFields) wire() fieldsWire {
	return fieldsWire{
		Name:     f.Name,
		Quantity: f.Quantity,
		Price:    json.Number(f.Price.String()),
		Category: f.Category,
	}
}

// CoerceQuantity converts a loosely typed value into a whole quantity.
// Fractions are truncated and anything non-numeric yields zero.
func CoerceQuantity(value any) int {
	f, ok := numeric(value)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if math.Abs(f) > maxExactFloat {
		return 0
	}
	return int(f)
}

// CoercePrice converts a loosely typed value into a decimal price.
// Anything non-numeric yields zero.
func CoercePrice(value any) decimal.Decimal {
	switch v := value.(type) {
	case decimal.Decimal:
		return v
	case json.Number:
		return parseDecimal(v.String())
	case string:
		return parseDecimal(v)
	}

	f, ok := numeric(value)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func parseDecimal(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func numeric(value any) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func coerceText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
