package checkout

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"smarthome-be/internal/cart"
	"smarthome-be/internal/order"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCreator struct {
	mock.Mock
}

func (m *MockCreator) CreateOrder(ctx context.Context, in order.CreateOrderInput) (*order.CreateOrderResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.CreateOrderResult), args.Error(1)
}

func cartWithPlugs() *cart.Store {
	s := cart.NewStore(cart.NewMemoryStorage(), nil)
	s.Add(cart.Line{ID: "v1", Title: "Smart Plug", Price: decimal.RequireFromString("19.99")}, 2)
	return s
}

func TestController_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("Whish order opens the deep link", func(t *testing.T) {
		creator := new(MockCreator)
		var opened string
		c := NewController(creator, "+96170123456", nil, WithLinkOpener(func(link string) error {
			opened = link
			return nil
		}))

		creator.On("CreateOrder", mock.Anything, mock.MatchedBy(func(in order.CreateOrderInput) bool {
			return in.Method == order.MethodWhish &&
				in.Email == "a@b.co" &&
				len(in.Items) == 1 &&
				*in.Items[0].Qty == 2 &&
				in.Items[0].Title == "Smart Plug"
		})).Return(&order.CreateOrderResult{ID: 1, Number: "SH-00001", Total: decimal.RequireFromString("39.98")}, nil)

		store := cartWithPlugs()
		res, err := c.Submit(ctx, "session-1", store, Form{Email: " a@b.co "})

		require.NoError(t, err)
		assert.Equal(t, "SH-00001", res.Number)
		assert.Equal(t, "/order/SH-00001", res.RedirectURL)
		assert.Equal(t, res.DeepLink, opened)

		u, err := url.Parse(opened)
		require.NoError(t, err)
		assert.Equal(t, "+96170123456", u.Query().Get("phone"))
		assert.Equal(t, "39.98", u.Query().Get("amount"))
		assert.Equal(t, "Order SH-00001: Smart Plug", u.Query().Get("note"))

		assert.False(t, store.Empty(), "cart is kept after checkout")
		assert.True(t, c.CanSubmit("session-1", store))
	})

	t.Run("Opener failure does not fail the flow", func(t *testing.T) {
		creator := new(MockCreator)
		c := NewController(creator, "", nil, WithLinkOpener(func(string) error {
			return errors.New("unsupported")
		}))
		creator.On("CreateOrder", mock.Anything, mock.Anything).
			Return(&order.CreateOrderResult{Number: "SH-00002", Total: decimal.NewFromInt(1)}, nil)

		res, err := c.Submit(ctx, "k", cartWithPlugs(), Form{Email: "a@b.co"})

		require.NoError(t, err)
		assert.Equal(t, "/order/SH-00002", res.RedirectURL)
	})

	t.Run("Cash order has no deep link", func(t *testing.T) {
		creator := new(MockCreator)
		opened := false
		c := NewController(creator, "+961", nil, WithLinkOpener(func(string) error {
			opened = true
			return nil
		}))
		creator.On("CreateOrder", mock.Anything, mock.MatchedBy(func(in order.CreateOrderInput) bool {
			return in.Method == order.MethodCash
		})).Return(&order.CreateOrderResult{Number: "SH-00003", Total: decimal.NewFromInt(5)}, nil)

		res, err := c.Submit(ctx, "k", cartWithPlugs(), Form{Email: "a@b.co", Method: order.MethodCash})

		require.NoError(t, err)
		assert.Empty(t, res.DeepLink)
		assert.False(t, opened)
	})

	t.Run("Nothing is sent for invalid forms", func(t *testing.T) {
		creator := new(MockCreator)
		c := NewController(creator, "", nil)

		_, err := c.Submit(ctx, "k", cartWithPlugs(), Form{Email: "   "})
		assert.ErrorIs(t, err, ErrEmailRequired)

		_, err = c.Submit(ctx, "k", cart.NewStore(cart.NewMemoryStorage(), nil), Form{Email: "a@b.co"})
		assert.ErrorIs(t, err, ErrEmptyCart)

		creator.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("Server message is surfaced", func(t *testing.T) {
		creator := new(MockCreator)
		c := NewController(creator, "", nil)
		creator.On("CreateOrder", mock.Anything, mock.Anything).
			Return(nil, &APIError{Status: 400, Message: "cart is empty"})

		store := cartWithPlugs()
		_, err := c.Submit(ctx, "k", store, Form{Email: "a@b.co"})

		var submitErr *SubmitError
		require.ErrorAs(t, err, &submitErr)
		assert.Equal(t, "cart is empty", submitErr.Message)
		assert.Equal(t, 2, store.Count())
		assert.True(t, c.CanSubmit("k", store))
	})

	t.Run("Unknown failures use the fallback message", func(t *testing.T) {
		creator := new(MockCreator)
		c := NewController(creator, "", nil)
		creator.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: refused"))

		_, err := c.Submit(ctx, "k", cartWithPlugs(), Form{Email: "a@b.co"})

		assert.EqualError(t, err, fallbackMessage)
	})

	t.Run("In-process service errors keep their message", func(t *testing.T) {
		creator := new(MockCreator)
		c := NewController(creator, "", nil)
		creator.On("CreateOrder", mock.Anything, mock.Anything).
			Return(nil, errors.Join(order.ErrCreateOrder, errors.New("db down")))

		_, err := c.Submit(ctx, "k", cartWithPlugs(), Form{Email: "a@b.co"})

		assert.EqualError(t, err, "failed to create order")
		assert.ErrorIs(t, err, order.ErrCreateOrder)
	})
}

func TestController_InFlightGuard(t *testing.T) {
	creator := new(MockCreator)
	c := NewController(creator, "", nil)

	started := make(chan struct{})
	release := make(chan struct{})
	creator.On("CreateOrder", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(&order.CreateOrderResult{Number: "SH-00009", Total: decimal.NewFromInt(1)}, nil).Once()

	store := cartWithPlugs()
	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background(), "session-1", store, Form{Email: "a@b.co", Method: order.MethodCash})
		done <- err
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("submission did not start")
	}

	assert.False(t, c.CanSubmit("session-1", store))
	assert.True(t, c.CanSubmit("session-2", store))

	_, err := c.Submit(context.Background(), "session-1", store, Form{Email: "a@b.co"})
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.True(t, c.CanSubmit("session-1", store))
	creator.AssertNumberOfCalls(t, "CreateOrder", 1)
}
