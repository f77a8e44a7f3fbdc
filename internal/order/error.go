package order

import "errors"

var (
	ErrEmptyItems    = errors.New("cart is empty")
	ErrInvalidMethod = errors.New("invalid payment method")
	ErrInvalidItem   = errors.New("invalid item")
	ErrCreateOrder   = errors.New("failed to create order")
	ErrOrderNotFound = errors.New("order not found")
)
