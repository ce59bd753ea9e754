package models

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of decimal places every currency value keeps.
const MoneyPlaces = 2

// RoundMoney rounds half away from zero to two places.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// LineTotal is Round2(quantity * unitValue).
func LineTotal(quantity int, unitValue decimal.Decimal) decimal.Decimal {
	return RoundMoney(unitValue.Mul(decimal.NewFromInt(int64(quantity))))
}

// SumLineTotals adds the stored line totals of items.
func SumLineTotals(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.TotalValue)
	}
	return RoundMoney(total)
}
