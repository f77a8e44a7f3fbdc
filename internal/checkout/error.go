package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrEmailRequired  = errors.New("email is required")
	ErrEmptyCart      = errors.New("your cart is empty")
	ErrSubmitInFlight = errors.New("your order is already being placed")
)

const fallbackMessage = "We could not place your order. Please try again."

// SubmitError is a failed order submission. Message is safe to show the shopper.
type SubmitError struct {
	Message string
	Err     error
}

func (e *SubmitError) Error() string {
	return e.Message
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// APIError is a non-2xx response from the order endpoint.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("order api: %d %s", e.Status, e.Message)
}
