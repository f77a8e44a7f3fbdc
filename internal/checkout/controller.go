package checkout

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"

	"smarthome-be/internal/cart"
	"smarthome-be/internal/metrics"
	"smarthome-be/internal/order"
	"smarthome-be/internal/payment"

	"go.uber.org/zap"
)

type OrderCreator interface {
	CreateOrder(ctx context.Context, in order.CreateOrderInput) (*order.CreateOrderResult, error)
}

type Form struct {
	Email    string
	Phone    string
	Name     string
	Address1 string
	Address2 string
	City     string
	Postal   string
	Country  string
	Method   order.Method
}

type Result struct {
	Number      string
	RedirectURL string
	DeepLink    string
}

type Option func(*Controller)

// WithLinkOpener sets the hook that receives the Whish deep link after a
// successful order.
func WithLinkOpener(open func(link string) error) Option {
	return func(c *Controller) { c.openLink = open }
}

// Controller turns a checkout form plus the cart into an order. At most one
// submission per key is in flight at a time.
type Controller struct {
	creator    OrderCreator
	whishPhone string
	log        *zap.Logger
	openLink   func(string) error

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewController(creator OrderCreator, whishPhone string, log *zap.Logger, opts ...Option) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{
		creator:    creator,
		whishPhone: whishPhone,
		log:        log.With(zap.String("layer", "checkout")),
		inFlight:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) CanSubmit(key string, store *cart.Store) bool {
	if store.Empty() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, busy := c.inFlight[key]
	return !busy
}

func (c *Controller) acquire(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inFlight[key]; busy {
		return false
	}
	c.inFlight[key] = struct{}{}
	return true
}

func (c *Controller) release(key string) {
	c.mu.Lock()
	delete(c.inFlight, key)
	c.mu.Unlock()
}

// Submit places the order. The cart is left as is on success and failure.
func (c *Controller) Submit(ctx context.Context, key string, store *cart.Store, form Form) (*Result, error) {
	if strings.TrimSpace(form.Email) == "" {
		return nil, ErrEmailRequired
	}
	if store.Empty() {
		return nil, ErrEmptyCart
	}
	if !c.acquire(key) {
		return nil, ErrSubmitInFlight
	}
	defer c.release(key)

	metrics.Default.Counter(metrics.CheckoutSubmissions).Inc()

	method := form.Method
	if method == "" {
		method = order.MethodWhish
	}

	lines := store.Lines()
	in := order.CreateOrderInput{
		Email:    strings.TrimSpace(form.Email),
		Phone:    form.Phone,
		Name:     form.Name,
		Address1: form.Address1,
		Address2: form.Address2,
		City:     form.City,
		Postal:   form.Postal,
		Country:  form.Country,
		Method:   method,
		Items:    make([]order.ItemInput, 0, len(lines)),
	}
	titles := make([]string, 0, len(lines))
	for _, l := range lines {
		qty := l.Qty
		in.Items = append(in.Items, order.ItemInput{Title: l.Title, Price: l.Price, Qty: &qty})
		titles = append(titles, l.Title)
	}

	res, err := c.creator.CreateOrder(ctx, in)
	if err != nil {
		c.log.Warn("order submission failed", zap.Error(err))
		return nil, &SubmitError{Message: messageFor(err), Err: err}
	}

	result := &Result{
		Number:      res.Number,
		RedirectURL: "/order/" + url.PathEscape(res.Number),
	}

	if method == order.MethodWhish {
		note := payment.WhishNote(res.Number, titles)
		result.DeepLink = payment.WhishLink(c.whishPhone, res.Total, note)
		if c.openLink != nil {
			if err := c.openLink(result.DeepLink); err != nil {
				c.log.Info("could not open whish link", zap.String("number", res.Number), zap.Error(err))
			}
		}
	}

	return result, nil
}

func messageFor(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	for _, known := range []error{order.ErrEmptyItems, order.ErrInvalidMethod, order.ErrInvalidItem, order.ErrCreateOrder} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return fallbackMessage
}
