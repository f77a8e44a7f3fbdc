package order

import (
	"context"
	"fmt"
	"time"

	"smarthome-be/internal/logger"
	"smarthome-be/internal/metrics"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100

	defaultNotifyTimeout = 10 * time.Second
)

type Service interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error)
	GetOrderByNumber(ctx context.Context, number string) (*Order, error)
	ListRecentOrders(ctx context.Context, limit int) ([]*Order, error)
}

type Config struct {
	Prefix        string
	Currency      string
	NotifyTimeout time.Duration
}

type Option func(*service)

func WithMetrics(r *metrics.Registry) Option {
	return func(s *service) { s.metrics = r }
}

type service struct {
	repo     Repository
	notifier Notifier
	cfg      Config
	metrics  *metrics.Registry
}

func NewService(repo Repository, notifier Notifier, cfg Config, opts ...Option) Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = defaultNotifyTimeout
	}
	s := &service{repo: repo, notifier: notifier, cfg: cfg, metrics: metrics.Default}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateOrder(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error) {
	ctx, span := otel.Tracer("smarthome-be/order").Start(ctx, "order.CreateOrder")
	defer span.End()
	timer := metrics.StartTimer()

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
		zap.Int("item_count", len(in.Items)),
	)

	// 1. Validate before touching storage
	o, err := s.buildOrder(in)
	if err != nil {
		log.Info("rejected order request", zap.Error(err))
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// 2. Persist; the repository assigns the id and the derived number
	err = s.repo.CreateOrder(ctx, o, func(id int64) string {
		return FormatNumber(s.cfg.Prefix, id)
	})
	if err != nil {
		s.metrics.Counter(metrics.OrderCreateFailures).Inc()
		log.Error("failed to persist order", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist order")
		return nil, fmt.Errorf("%w: %v", ErrCreateOrder, err)
	}
	s.metrics.Counter(metrics.OrdersCreated).Inc()
	span.SetAttributes(
		attribute.String("order.number", o.Number),
		attribute.String("order.method", string(o.Method)),
	)

	log = log.With(zap.String("number", o.Number))
	log.Info("order created",
		zap.String("status", string(o.Status)),
		zap.String("total", o.Total.StringFixed(2)),
		zap.Duration("duration", timer.Duration()),
	)

	// 3. Receipt; the order already exists so a failure is only reported
	s.notify(ctx, log, o)

	return &CreateOrderResult{ID: o.ID, Number: o.Number, Total: o.Total}, nil
}

func (s *service) buildOrder(in CreateOrderInput) (*Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyItems
	}

	method := in.Method
	if method == "" {
		method = MethodWhish
	}
	if !method.Valid() {
		return nil, ErrInvalidMethod
	}

	items := make([]Item, 0, len(in.Items))
	subtotal := decimal.Zero
	for i, it := range in.Items {
		qty := 1
		if it.Qty != nil {
			qty = *it.Qty
		}
		if qty < 0 || it.Price.IsNegative() {
			return nil, fmt.Errorf("%w: line %d", ErrInvalidItem, i+1)
		}

		item := Item{Title: it.Title, Price: it.Price, Qty: qty}
		subtotal = subtotal.Add(item.Subtotal())
		items = append(items, item)
	}

	return &Order{
		Status:   StatusFor(method),
		Method:   method,
		Email:    in.Email,
		Phone:    in.Phone,
		Name:     in.Name,
		Address1: in.Address1,
		Address2: in.Address2,
		City:     in.City,
		Postal:   in.Postal,
		Country:  in.Country,
		Items:    items,
		Subtotal: subtotal,
		Total:    subtotal,
		Currency: s.cfg.Currency,
	}, nil
}

func (s *service) notify(ctx context.Context, log *zap.Logger, o *Order) {
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.NotifyTimeout)
	defer cancel()

	if err := s.notifier.SendReceipt(nctx, o); err != nil {
		s.metrics.Counter(metrics.ReceiptFailures).Inc()
		log.Error("failed to send order receipt", zap.Error(err))
		return
	}
	s.metrics.Counter(metrics.ReceiptsSent).Inc()
}

func (s *service) GetOrderByNumber(ctx context.Context, number string) (*Order, error) {
	return s.repo.GetOrderByNumber(ctx, number)
}

func (s *service) ListRecentOrders(ctx context.Context, limit int) ([]*Order, error) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	return s.repo.ListOrders(ctx, limit)
}
