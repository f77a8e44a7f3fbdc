package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"smarthome-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	// CreateOrder persists o and assigns its ID, Number and CreatedAt.
	// numberFor derives the number from the allocated id.
	CreateOrder(ctx context.Context, o *Order, numberFor func(int64) string) error
	GetOrderByNumber(ctx context.Context, number string) (*Order, error)
	ListOrders(ctx context.Context, limit int) ([]*Order, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `id, number, status, method, email, phone, name,
	address1, address2, city, postal, country, items, subtotal, total, currency, created_at`

func (r *repository) CreateOrder(ctx context.Context, o *Order, numberFor func(int64) string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateOrder"),
	)

	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}

	// The id comes from the sequence first so the row is inserted once with
	// its final number. A failed insert burns the id; numbers are never reused.
	var id int64
	if err := r.db.QueryRowContext(ctx, `SELECT nextval('orders_id_seq')`).Scan(&id); err != nil {
		log.Error("failed to allocate order id", zap.Error(err))
		return fmt.Errorf("allocate order id: %w", err)
	}

	number := numberFor(id)

	err = r.db.QueryRowContext(ctx, `
		INSERT INTO orders (
			id, number, status, method, email, phone, name,
			address1, address2, city, postal, country,
			items, subtotal, total, currency
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING created_at
	`,
		id, number, o.Status, o.Method, o.Email, o.Phone, o.Name,
		o.Address1, o.Address2, o.City, o.Postal, o.Country,
		items, o.Subtotal, o.Total, o.Currency,
	).Scan(&o.CreatedAt)
	if err != nil {
		log.Error("failed to insert order", zap.Int64("order_id", id), zap.Error(err))
		return fmt.Errorf("insert order: %w", err)
	}

	o.ID = id
	o.Number = number
	return nil
}

func (r *repository) GetOrderByNumber(ctx context.Context, number string) (*Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE number = $1`, number)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) ListOrders(ctx context.Context, limit int) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (*Order, error) {
	var (
		o     Order
		items []byte
	)
	err := s.Scan(
		&o.ID, &o.Number, &o.Status, &o.Method, &o.Email, &o.Phone, &o.Name,
		&o.Address1, &o.Address2, &o.City, &o.Postal, &o.Country,
		&items, &o.Subtotal, &o.Total, &o.Currency, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode items for %s: %w", o.Number, err)
	}
	return &o, nil
}
