package models

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const MaxNotesLength = 500

var minUnitValue = decimal.New(1, -2)

// Optional tells an omitted JSON field apart from one explicitly set, null included.
type Optional[T any] struct {
	Value T
	Set   bool
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	return json.Unmarshal(b, &o.Value)
}

// Some returns a set Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// ItemSpec describes a new line item.
type ItemSpec struct {
	ProductID uint            `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	UnitValue decimal.Decimal `json:"unit_value"`
}

// ItemPatch is one entry of an update's items array. Entries with ID update
// that line; entries without ID are new lines.
type ItemPatch struct {
	ID        *uint            `json:"id"`
	ProductID *uint            `json:"product_id"`
	Quantity  *int             `json:"quantity" binding:"omitempty,min=1"`
	UnitValue *decimal.Decimal `json:"unit_value"`
}

// Spec converts a new-line patch into an ItemSpec. ok is false when a field is missing.
func (p ItemPatch) Spec() (ItemSpec, bool) {
	if p.ProductID == nil || p.Quantity == nil || p.UnitValue == nil {
		return ItemSpec{}, false
	}
	return ItemSpec{ProductID: *p.ProductID, Quantity: *p.Quantity, UnitValue: *p.UnitValue}, true
}

// OrderDraft is the create payload.
type OrderDraft struct {
	CustomerID uint       `json:"customer_id" binding:"required"`
	Status     Status     `json:"status"`
	Notes      *string    `json:"notes"`
	Items      []ItemSpec `json:"items" binding:"required,min=1,dive"`
}

// Validate checks the rules binding tags cannot express. It fills in the
// default status.
func (d *OrderDraft) Validate() map[string]string {
	errs := map[string]string{}
	if d.Status == "" {
		d.Status = StatusPending
	} else if !d.Status.Valid() {
		errs["status"] = "The selected status is invalid."
	}
	checkNotes(errs, d.Notes)
	if len(d.Items) == 0 {
		errs["items"] = "The items field is required."
	}
	for i, it := range d.Items {
		if it.Quantity < 1 {
			errs[fmt.Sprintf("items.%d.quantity", i)] = "The quantity must be at least 1."
		}
		checkUnitValue(errs, i, it.UnitValue)
	}
	return errs
}

// OrderPatch is a partial update. Nil fields are left untouched; Items == nil
// leaves the line items untouched.
type OrderPatch struct {
	CustomerID *uint             `json:"customer_id"`
	Status     *Status           `json:"status"`
	Notes      Optional[*string] `json:"notes"`
	Items      *[]ItemPatch      `json:"items" binding:"omitempty,dive"`
}

func (p *OrderPatch) Validate() map[string]string {
	errs := map[string]string{}
	if p.CustomerID != nil && *p.CustomerID == 0 {
		errs["customer_id"] = "The selected customer id is invalid."
	}
	if p.Status != nil && !p.Status.Valid() {
		errs["status"] = "The selected status is invalid."
	}
	if p.Notes.Set {
		checkNotes(errs, p.Notes.Value)
	}
	if p.Items == nil {
		return errs
	}
	if len(*p.Items) == 0 {
		errs["items"] = "The items must have at least 1 item."
	}
	for i, it := range *p.Items {
		if it.Quantity != nil && *it.Quantity < 1 {
			errs[fmt.Sprintf("items.%d.quantity", i)] = "The quantity must be at least 1."
		}
		if it.UnitValue != nil {
			checkUnitValue(errs, i, *it.UnitValue)
		}
		if it.ID == nil {
			if _, ok := it.Spec(); !ok {
				errs[fmt.Sprintf("items.%d", i)] = "New items require product_id, quantity and unit_value."
			}
		}
	}
	return errs
}

// Columns returns the scalar columns supplied by the patch.
func (p *OrderPatch) Columns() map[string]any {
	cols := map[string]any{}
	if p.CustomerID != nil {
		cols["customer_id"] = *p.CustomerID
	}
	if p.Status != nil {
		cols["status"] = *p.Status
	}
	if p.Notes.Set {
		cols["notes"] = p.Notes.Value
	}
	return cols
}

func checkNotes(errs map[string]string, notes *string) {
	if notes != nil && utf8.RuneCountInString(*notes) > MaxNotesLength {
		errs["notes"] = fmt.Sprintf("The notes may not be greater than %d characters.", MaxNotesLength)
	}
}

func checkUnitValue(errs map[string]string, i int, v decimal.Decimal) {
	if v.LessThan(minUnitValue) {
		errs[fmt.Sprintf("items.%d.unit_value", i)] = "The unit value must be at least 0.01."
	}
}
