package models

import (
	"strconv"
	"strings"
)

// EditorMode is the state of the add/edit form.
type EditorMode string

const (
	EditorModeCreate EditorMode = "create"
	EditorModeEdit   EditorMode = "edit"
)

// Draft is the in-progress form content. Quantity and price stay raw text
// until the draft is submitted.
type Draft struct {
	ID       ItemID `json:"id,omitempty"`
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
	Category string `json:"category"`
}

// DraftFromItem loads an existing item into the form.
func DraftFromItem(item Item) Draft {
	return Draft{
		ID:       item.ID,
		Name:     item.Name,
		Quantity: strconv.Itoa(item.Quantity),
		Price:    item.Price.String(),
		Category: item.Category,
	}
}

// Fields coerces the draft into a backend payload.
func (d Draft) Fields() ItemFields {
	return ItemFields{
		Name:     strings.TrimSpace(d.Name),
		Quantity: CoerceQuantity(d.Quantity),
		Price:    CoercePrice(d.Price),
		Category: strings.TrimSpace(d.Category),
	}
}

// IsEmpty reports whether no field of the draft has been filled in.
func (d Draft) IsEmpty() bool {
	return d == Draft{}
}
