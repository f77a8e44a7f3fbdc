package order

import "context"

// Notifier delivers the order receipt after an order is persisted.
type Notifier interface {
	SendReceipt(ctx context.Context, o *Order) error
}

type NopNotifier struct{}

func (NopNotifier) SendReceipt(context.Context, *Order) error { return nil }
