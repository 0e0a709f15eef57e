package purchaseorder

import (
	"github.com/shopspring/decimal"
)

type CurrencyScale int32

const DefaultCurrencyScale CurrencyScale = 2

// CalculateTotal prices every line and returns the priced lines with the order total.
//
// Rules:
// - At least one item; quantity and unit price must be > 0.
// - Each line total is rounded to scale; the order total is the sum of rounded lines, so
//   the persisted lines always add up to the persisted total.
func CalculateTotal(items []Item, scale CurrencyScale) ([]Item, decimal.Decimal, error) {
	if len(items) == 0 {
		return nil, decimal.Zero, ValidationError{Code: "ORDER_ITEMS_EMPTY", Message: "an order needs at least one item"}
	}
	if scale <= 0 {
		scale = DefaultCurrencyScale
	}

	out := make([]Item, 0, len(items))
	total := decimal.Zero
	for _, it := range items {
		if it.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, decimal.Zero, ValidationError{Code: "ITEM_QUANTITY_INVALID", Message: "item quantity must be > 0"}
		}
		if it.UnitPrice.LessThanOrEqual(decimal.Zero) {
			return nil, decimal.Zero, ValidationError{Code: "ITEM_PRICE_INVALID", Message: "item unit price must be > 0"}
		}
		it.LineTotal = it.Quantity.Mul(it.UnitPrice).Round(int32(scale))
		total = total.Add(it.LineTotal)
		out = append(out, it)
	}

	if total.LessThanOrEqual(decimal.Zero) {
		return nil, decimal.Zero, ValidationError{Code: "ORDER_TOTAL_INVALID", Message: "order total must be > 0"}
	}
	return out, total, nil
}
