package models_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/joseguilhermeromano/Pastel360/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLineTotal_RoundsHalfAwayFromZero(t *testing.T) {
	cases := []struct {
		qty  int
		unit string
		want string
	}{
		{2, "8.50", "17.00"},
		{1, "7.50", "7.50"},
		{3, "0.335", "1.01"},
		{1, "0.005", "0.01"},
		{7, "1.99", "13.93"},
	}
	for _, c := range cases {
		got := models.LineTotal(c.qty, dec(c.unit))
		assert.Equal(t, c.want, got.StringFixed(2), "qty=%d unit=%s", c.qty, c.unit)
	}
}

func TestSumLineTotals(t *testing.T) {
	items := []models.OrderItem{
		{TotalValue: dec("17.00")},
		{TotalValue: dec("7.50")},
	}
	assert.Equal(t, "24.50", models.SumLineTotals(items).StringFixed(2))
	assert.True(t, models.SumLineTotals(nil).IsZero())
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range models.Statuses {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, models.Status("shipped").Valid())
	assert.False(t, models.Status("").Valid())
}

func TestNewOrderItem_DerivesTotal(t *testing.T) {
	it := models.NewOrderItem(4, models.ItemSpec{ProductID: 3, Quantity: 2, UnitValue: dec("8.50")})
	assert.Equal(t, uint(4), it.OrderID)
	assert.Equal(t, "17.00", it.TotalValue.StringFixed(2))
}

func TestOrderItem_ApplyPatch(t *testing.T) {
	qty := 5
	it := models.OrderItem{ID: 1, ProductID: 3, Quantity: 2, UnitValue: dec("8.50"), TotalValue: dec("17.00")}

	cols := it.ApplyPatch(models.ItemPatch{Quantity: &qty})
	assert.Equal(t, "42.50", it.TotalValue.StringFixed(2))
	assert.Contains(t, cols, "total_value")
	assert.Contains(t, cols, "quantity")
	assert.NotContains(t, cols, "product_id")

	pid := uint(9)
	cols = it.ApplyPatch(models.ItemPatch{ProductID: &pid})
	assert.Equal(t, map[string]any{"product_id": uint(9)}, cols)
	assert.Equal(t, "42.50", it.TotalValue.StringFixed(2))
}

func TestOrderPatch_DistinguishesOmittedFromNull(t *testing.T) {
	var omitted models.OrderPatch
	require.NoError(t, json.Unmarshal([]byte(`{"status":"ready"}`), &omitted))
	assert.False(t, omitted.Notes.Set)
	assert.Nil(t, omitted.Items)
	assert.Equal(t, map[string]any{"status": models.StatusReady}, omitted.Columns())

	var cleared models.OrderPatch
	require.NoError(t, json.Unmarshal([]byte(`{"notes":null,"items":null}`), &cleared))
	assert.True(t, cleared.Notes.Set)
	assert.Nil(t, cleared.Notes.Value)
	assert.Nil(t, cleared.Items)
	cols := cleared.Columns()
	assert.Contains(t, cols, "notes")

	var set models.OrderPatch
	require.NoError(t, json.Unmarshal([]byte(`{"notes":"sem cebola","items":[]}`), &set))
	require.NotNil(t, set.Notes.Value)
	assert.Equal(t, "sem cebola", *set.Notes.Value)
	require.NotNil(t, set.Items)
	assert.Empty(t, *set.Items)
}

func TestOrderPatch_Validate(t *testing.T) {
	var p models.OrderPatch
	require.NoError(t, json.Unmarshal([]byte(`{"items":[]}`), &p))
	assert.Contains(t, p.Validate(), "items")

	require.NoError(t, json.Unmarshal([]byte(`{"items":[{"product_id":9}],"status":"lost"}`), &p))
	errs := p.Validate()
	assert.Contains(t, errs, "items.0")
	assert.Contains(t, errs, "status")

	var ok models.OrderPatch
	require.NoError(t, json.Unmarshal([]byte(`{"items":[{"id":1,"quantity":5},{"product_id":9,"quantity":1,"unit_value":"3.00"}]}`), &ok))
	assert.Empty(t, ok.Validate())
}

func TestOrderDraft_Validate(t *testing.T) {
	notes := strings.Repeat("a", models.MaxNotesLength+1)
	d := models.OrderDraft{
		CustomerID: 1,
		Notes:      &notes,
		Items:      []models.ItemSpec{{ProductID: 1, Quantity: 1, UnitValue: dec("0.00")}},
	}
	errs := d.Validate()
	assert.Contains(t, errs, "notes")
	assert.Contains(t, errs, "items.0.unit_value")
	assert.Equal(t, models.StatusPending, d.Status)

	good := models.OrderDraft{CustomerID: 1, Status: models.StatusApproved, Items: []models.ItemSpec{{ProductID: 1, Quantity: 1, UnitValue: dec("0.01")}}}
	assert.Empty(t, good.Validate())
}

func TestNewOrderResponse_Shape(t *testing.T) {
	o := &models.Order{
		ID:          7,
		CustomerID:  1,
		Status:      models.StatusPending,
		TotalAmount: dec("24.5"),
		Customer:    &models.Customer{ID: 1, Name: "Ana", Mail: "ana@example.com"},
		Items: []models.OrderItem{
			{ID: 1, OrderID: 7, ProductID: 3, Quantity: 2, UnitValue: dec("8.5"), TotalValue: dec("17"),
				Product: &models.Product{ID: 3, Name: "Pastel de carne", Description: "Carne moída"}},
		},
	}

	raw, err := json.Marshal(models.NewOrderResponse(o))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "24.50", got["total_amount"])
	assert.Nil(t, got["notes"])
	assert.Equal(t, "ana@example.com", got["customer"].(map[string]any)["mail"])
	item := got["items"].([]any)[0].(map[string]any)
	assert.Equal(t, "8.50", item["unit_value"])
	assert.Equal(t, "17.00", item["total_value"])
	assert.Equal(t, "Pastel de carne", item["product"].(map[string]any)["name"])
}

func TestNewOrderCreatedMessage(t *testing.T) {
	o := &models.Order{
		ID:          7,
		TotalAmount: dec("24.50"),
		Customer:    &models.Customer{Name: "Ana"},
		Items: []models.OrderItem{
			{Quantity: 2, UnitValue: dec("8.50"), TotalValue: dec("17.00"), Product: &models.Product{Name: "Pastel de carne"}},
			{Quantity: 1, UnitValue: dec("7.50"), TotalValue: dec("7.50")},
		},
	}
	msg := models.NewOrderCreatedMessage("ana@example.com", o)

	assert.Equal(t, models.EventOrderCreated, msg.EventType)
	assert.Equal(t, "Ana", msg.CustomerName)
	require.Len(t, msg.Items, 2)
	assert.Equal(t, "Pastel de carne", msg.Items[0].ProductName)
	assert.Equal(t, "", msg.Items[1].ProductName)
}

func TestCustomerRequest_ApplyAndMissing(t *testing.T) {
	name, mail, birth := "Ana", "ana@example.com", "1990-05-17"
	req := models.CustomerRequest{Name: &name, Mail: &mail, Birthdate: &birth}

	missing := req.MissingForCreate()
	assert.ElementsMatch(t, []string{"phone", "place", "number", "zipcode", "district"}, missing)

	var c models.Customer
	require.NoError(t, req.Apply(&c))
	assert.Equal(t, "Ana", c.Name)
	require.NotNil(t, c.Birthdate)
	assert.Equal(t, 1990, c.Birthdate.Year())
}
