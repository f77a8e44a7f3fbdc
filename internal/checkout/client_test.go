package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"smarthome-be/internal/order"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockRoundTripper func(req *http.Request) *http.Response

func (f MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

type MockRoundTripperWithError func(req *http.Request) (*http.Response, error)

func (f MockRoundTripperWithError) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func TestAPIClient_CreateOrder(t *testing.T) {
	in := order.CreateOrderInput{
		Email:  "a@b.co",
		Method: order.MethodCash,
		Items:  []order.ItemInput{{Title: "Smart Plug", Price: decimal.RequireFromString("19.99")}},
	}

	t.Run("Success", func(t *testing.T) {
		client := NewAPIClient("http://shop.test/")
		client.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			assert.Equal(t, http.MethodPost, req.Method)
			assert.Equal(t, "http://shop.test/api/orders", req.URL.String())
			assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
			assert.Equal(t, "cash", body["method"])

			return jsonResponse(http.StatusCreated, `{"id":1,"number":"SH-00001","total":19.99}`)
		})

		res, err := client.CreateOrder(context.Background(), in)

		require.NoError(t, err)
		assert.Equal(t, int64(1), res.ID)
		assert.Equal(t, "SH-00001", res.Number)
		assert.Equal(t, "19.99", res.Total.StringFixed(2))
	})

	t.Run("Error body", func(t *testing.T) {
		client := NewAPIClient("http://shop.test")
		client.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusBadRequest, `{"error":"cart is empty"}`)
		})

		_, err := client.CreateOrder(context.Background(), in)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.Status)
		assert.Equal(t, "cart is empty", apiErr.Message)
	})

	t.Run("Server error without body", func(t *testing.T) {
		client := NewAPIClient("http://shop.test")
		client.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusInternalServerError, ``)
		})

		_, err := client.CreateOrder(context.Background(), in)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Empty(t, apiErr.Message)
		assert.Equal(t, fallbackMessage, messageFor(err))
	})

	t.Run("Transport error", func(t *testing.T) {
		client := NewAPIClient("http://shop.test")
		client.httpClient.Transport = MockRoundTripperWithError(func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		})

		_, err := client.CreateOrder(context.Background(), in)

		assert.ErrorContains(t, err, "connection refused")
	})
}
