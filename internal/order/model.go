package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Method string

const (
	MethodWhish Method = "whish"
	MethodCash  Method = "cash"
)

func (m Method) Valid() bool {
	return m == MethodWhish || m == MethodCash
}

type Status string

const (
	StatusAwaitingWhish  Status = "awaiting_whish"
	StatusCashOnDelivery Status = "cash_on_delivery"
)

// StatusFor maps a payment method to the order's initial and only status.
func StatusFor(m Method) Status {
	if m == MethodCash {
		return StatusCashOnDelivery
	}
	return StatusAwaitingWhish
}

// Item is the line snapshot captured at order time.
type Item struct {
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
	Qty   int             `json:"qty"`
}

func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Qty)))
}

type Order struct {
	ID        int64
	Number    string
	Status    Status
	Method    Method
	Email     string
	Phone     string
	Name      string
	Address1  string
	Address2  string
	City      string
	Postal    string
	Country   string
	Items     []Item
	Subtotal  decimal.Decimal
	Total     decimal.Decimal
	Currency  string
	CreatedAt time.Time
}

// Titles lists item titles in order, used for the transfer note.
func (o *Order) Titles() []string {
	titles := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		titles = append(titles, it.Title)
	}
	return titles
}

// HasAddress reports whether any shipping field was filled.
func (o *Order) HasAddress() bool {
	return o.Name != "" || o.Address1 != "" || o.Address2 != "" || o.City != "" || o.Postal != "" || o.Country != ""
}

// ItemInput is one requested line. Qty is optional and defaults to 1.
type ItemInput struct {
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
	Qty   *int            `json:"qty,omitempty"`
}

// CreateOrderInput is the order-creation request body.
type CreateOrderInput struct {
	Email    string      `json:"email"`
	Phone    string      `json:"phone,omitempty"`
	Name     string      `json:"name,omitempty"`
	Address1 string      `json:"address1,omitempty"`
	Address2 string      `json:"address2,omitempty"`
	City     string      `json:"city,omitempty"`
	Postal   string      `json:"postal,omitempty"`
	Country  string      `json:"country,omitempty"`
	Method   Method      `json:"method"`
	Items    []ItemInput `json:"items"`
}

type CreateOrderResult struct {
	ID     int64           `json:"id"`
	Number string          `json:"number"`
	Total  decimal.Decimal `json:"total"`
}
