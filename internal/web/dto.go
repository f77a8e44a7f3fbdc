package web

import (
	"time"

	"smarthome-be/internal/order"
)

type createOrderResponse struct {
	ID     int64   `json:"id"`
	Number string  `json:"number"`
	Total  float64 `json:"total"`
}

type itemResponse struct {
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Qty   int     `json:"qty"`
}

type orderResponse struct {
	ID        int64          `json:"id"`
	Number    string         `json:"number"`
	Status    order.Status   `json:"status"`
	Method    order.Method   `json:"method"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone,omitempty"`
	Name      string         `json:"name,omitempty"`
	Address1  string         `json:"address1,omitempty"`
	Address2  string         `json:"address2,omitempty"`
	City      string         `json:"city,omitempty"`
	Postal    string         `json:"postal,omitempty"`
	Country   string         `json:"country,omitempty"`
	Items     []itemResponse `json:"items"`
	Subtotal  float64        `json:"subtotal"`
	Total     float64        `json:"total"`
	Currency  string         `json:"currency"`
	CreatedAt time.Time      `json:"created_at"`
}

func toOrderResponse(o *order.Order) orderResponse {
	resp := orderResponse{
		ID:        o.ID,
		Number:    o.Number,
		Status:    o.Status,
		Method:    o.Method,
		Email:     o.Email,
		Phone:     o.Phone,
		Name:      o.Name,
		Address1:  o.Address1,
		Address2:  o.Address2,
		City:      o.City,
		Postal:    o.Postal,
		Country:   o.Country,
		Items:     make([]itemResponse, 0, len(o.Items)),
		Subtotal:  o.Subtotal.InexactFloat64(),
		Total:     o.Total.InexactFloat64(),
		Currency:  o.Currency,
		CreatedAt: o.CreatedAt,
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, itemResponse{Title: it.Title, Price: it.Price.InexactFloat64(), Qty: it.Qty})
	}
	return resp
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
