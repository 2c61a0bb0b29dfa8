package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemUnmarshal_CoercesLooseValues(t *testing.T) {
	payload := `[
		{"id": 1, "name": "Widget", "quantity": "5", "price": "2.50", "category": "Tools"},
		{"id": "abc", "name": "Gadget", "quantity": 20, "price": 9.99, "category": "Toys"},
		{"id": 3, "name": "Broken", "quantity": "lots", "price": "n/a", "category": null},
		{"name": "Draft only", "quantity": 7.9}
	]`

	var snapshot Snapshot
	require.NoError(t, json.Unmarshal([]byte(payload), &snapshot))
	require.Len(t, snapshot, 4)

	assert.Equal(t, ItemID("1"), snapshot[0].ID)
	assert.Equal(t, 5, snapshot[0].Quantity)
	assert.True(t, decimal.RequireFromString("2.5").Equal(snapshot[0].Price))

	assert.Equal(t, ItemID("abc"), snapshot[1].ID)
	assert.Equal(t, 20, snapshot[1].Quantity)
	assert.True(t, decimal.RequireFromString("9.99").Equal(snapshot[1].Price))

	assert.Equal(t, 0, snapshot[2].Quantity)
	assert.True(t, snapshot[2].Price.IsZero())
	assert.Equal(t, "", snapshot[2].Category)

	assert.True(t, snapshot[3].ID.IsZero())
	assert.Equal(t, 7, snapshot[3].Quantity)
}

func TestItemFieldsMarshal_OmitsID(t *testing.T) {
	fields := ItemFields{Name: "Widget", Quantity: 3, Price: decimal.RequireFromString("1.25"), Category: "Tools"}

	data, err := json.Marshal(fields)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Widget","quantity":3,"price":1.25,"category":"Tools"}`, string(data))
}

func TestItemMarshal_RoundTripKeepsID(t *testing.T) {
	item := Item{ID: "42", Name: "Bolt", Quantity: 100, Price: decimal.RequireFromString("0.10"), Category: "Hardware"}

	data, err := json.Marshal(item)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"42","name":"Bolt","quantity":100,"price":0.1,"category":"Hardware"}`, string(data))

	var decoded Item
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, item.ID, decoded.ID)
	assert.Equal(t, item.Quantity, decoded.Quantity)
	assert.True(t, item.Price.Equal(decoded.Price))
}

func TestCoerceQuantity(t *testing.T) {
	cases := map[string]struct {
		in   any
		want int
	}{
		"int":            {in: 12, want: 12},
		"numeric string": {in: " 8 ", want: 8},
		"fraction":       {in: "3.7", want: 3},
		"empty string":   {in: "", want: 0},
		"text":           {in: "twelve", want: 0},
		"nil":            {in: nil, want: 0},
		"nan":            {in: "NaN", want: 0},
		"bool":           {in: true, want: 0},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, CoerceQuantity(tc.in))
		})
	}
}

func TestDraftFields(t *testing.T) {
	draft := Draft{Name: "  Widget ", Quantity: "4", Price: "abc", Category: "Tools"}

	fields := draft.Fields()
	assert.Equal(t, "Widget", fields.Name)
	assert.Equal(t, 4, fields.Quantity)
	assert.True(t, fields.Price.IsZero())

	back := DraftFromItem(fields.WithID("9"))
	assert.Equal(t, ItemID("9"), back.ID)
	assert.Equal(t, "4", back.Quantity)
	assert.False(t, back.IsEmpty())
	assert.True(t, Draft{}.IsEmpty())
}
