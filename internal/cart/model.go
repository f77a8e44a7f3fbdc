package cart

import "github.com/shopspring/decimal"

// StorageKey is the fixed key the serialized cart lives under.
const StorageKey = "smarthome_cart_v1"

// Line is one purchasable variant in the cart.
type Line struct {
	ID    string          `json:"id"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
	Img   string          `json:"img,omitempty"`
	Qty   int             `json:"qty"`
}

// Subtotal is Price * Qty.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Qty)))
}
