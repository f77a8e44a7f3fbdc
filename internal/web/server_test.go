package web

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"smarthome-be/internal/catalog"
	"smarthome-be/internal/checkout"
	"smarthome-be/internal/metrics"
	"smarthome-be/internal/order"
	"smarthome-be/internal/order/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte(strings.Repeat("k", 32))

type fakeCatalog struct {
	products []catalog.Product
}

func (f fakeCatalog) ListProducts(ctx context.Context, limit int) ([]catalog.Product, error) {
	if limit < len(f.products) {
		return f.products[:limit], nil
	}
	return f.products, nil
}

func (f fakeCatalog) GetProduct(ctx context.Context, handle string) (*catalog.Product, error) {
	for _, p := range f.products {
		if p.Handle == handle {
			return &p, nil
		}
	}
	return nil, catalog.ErrProductNotFound
}

func smartPlug() catalog.Product {
	return catalog.Product{
		ID:              "gid://shopify/Product/1",
		Handle:          "smart-plug",
		Title:           "Smart Plug",
		DescriptionHTML: "<ul><li>Works with voice assistants</li></ul><p>Power: 16A</p>",
		Variants: []catalog.Variant{
			{ID: "gid://shopify/ProductVariant/11", Title: "Default Title", Price: decimal.RequireFromString("19.99"), Currency: "USD", Available: true},
		},
	}
}

func testConfig() Config {
	return Config{
		Brand:      "Smart Home",
		Currency:   "USD",
		WhishPhone: "+96170000000",
		SiteURL:    "https://shop.test",
		AdminEmail: "admin@shop.test",
		CSRFKey:    testKey,
	}
}

func newTestServer(t *testing.T, cfg Config, svc order.Service) *Server {
	t.Helper()
	templates, err := LoadEmbedded()
	require.NoError(t, err)

	if svc == nil {
		svc = order.NewService(memory.New(), order.NopNotifier{}, order.Config{Prefix: "SH", Currency: "USD"})
	}

	return NewServer(cfg, Deps{
		Orders:    svc,
		Checkout:  checkout.NewController(svc, cfg.WhishPhone, nil),
		Catalog:   fakeCatalog{products: []catalog.Product{smartPlug()}},
		Sessions:  NewSessionStore(testKey, false),
		Templates: templates,
		Metrics:   metrics.NewRegistry(),
	})
}

var csrfField = regexp.MustCompile(`name="gorilla.csrf.Token" value="([^"]+)"`)

type browser struct {
	t      *testing.T
	client *http.Client
	base   string
}

func newBrowser(t *testing.T, h http.Handler) *browser {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, client: &http.Client{Jar: jar}, base: ts.URL}
}

func (b *browser) get(path string) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.client.Get(b.base + path)
	require.NoError(b.t, err)
	return resp, readBody(b.t, resp)
}

func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.client.PostForm(b.base+path, form)
	require.NoError(b.t, err)
	return resp, readBody(b.t, resp)
}

// token loads page and returns the form token rendered on it.
func (b *browser) token(page string) string {
	b.t.Helper()
	_, body := b.get(page)
	m := csrfField.FindStringSubmatch(body)
	require.Len(b.t, m, 2, "no form token on %s", page)
	return m[1]
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestStorefront_CashCheckout(t *testing.T) {
	b := newBrowser(t, newTestServer(t, testConfig(), nil).Routes())

	token := b.token("/products/smart-plug")
	resp, body := b.post("/cart/add", url.Values{
		"gorilla.csrf.Token": {token},
		"handle":             {"smart-plug"},
		"variant_id":         {"gid://shopify/ProductVariant/11"},
		"qty":                {"2"},
		// ignored, the catalog sets the price
		"price": {"0.01"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/cart", resp.Request.URL.Path)
	assert.Contains(t, body, "Smart Plug")
	assert.Contains(t, body, "39.98")
	assert.Contains(t, body, "Cart (2)")

	token = b.token("/checkout")
	resp, body = b.post("/checkout", url.Values{
		"gorilla.csrf.Token": {token},
		"email":              {"a@b.co"},
		"method":             {"cash"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/order/SH-00001", resp.Request.URL.Path)
	assert.Contains(t, body, "Order SH-00001")
	assert.Contains(t, body, "Cash on delivery")
	assert.Contains(t, body, "39.98")
	assert.NotContains(t, body, "whish://")

	resp, body = b.get("/api/orders/SH-00001")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"status":"cash_on_delivery"`)
	assert.Contains(t, body, `"total":39.98`)

	// cart is kept after a successful order
	_, body = b.get("/cart")
	assert.Contains(t, body, "Smart Plug")
}

func TestStorefront_WhishCheckout(t *testing.T) {
	b := newBrowser(t, newTestServer(t, testConfig(), nil).Routes())

	token := b.token("/products/smart-plug")
	b.post("/cart/add", url.Values{"gorilla.csrf.Token": {token}, "handle": {"smart-plug"}})

	token = b.token("/checkout")
	resp, body := b.post("/checkout", url.Values{"gorilla.csrf.Token": {token}, "email": {"a@b.co"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/order/SH-00001", resp.Request.URL.Path)
	assert.Contains(t, body, "Pay with Whish")
	assert.Contains(t, body, "whish://send?amount=19.99")
	assert.Contains(t, body, "Order SH-00001: Smart Plug")
	assert.Contains(t, body, `class="primary"`)

	// the open prompt is shown once
	_, body = b.get("/order/SH-00001")
	assert.Contains(t, body, "whish://send?amount=19.99")
	assert.NotContains(t, body, `class="primary"`)
}

func TestStorefront_CheckoutValidation(t *testing.T) {
	b := newBrowser(t, newTestServer(t, testConfig(), nil).Routes())

	t.Run("empty cart", func(t *testing.T) {
		token := b.token("/checkout")
		resp, body := b.post("/checkout", url.Values{"gorilla.csrf.Token": {token}, "email": {"a@b.co"}})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, "your cart is empty")
	})

	t.Run("missing email keeps the form", func(t *testing.T) {
		token := b.token("/products/smart-plug")
		b.post("/cart/add", url.Values{"gorilla.csrf.Token": {token}, "handle": {"smart-plug"}})

		token = b.token("/checkout")
		resp, body := b.post("/checkout", url.Values{"gorilla.csrf.Token": {token}, "name": {"Rami"}, "method": {"cash"}})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, "email is required")
		assert.Contains(t, body, `value="Rami"`)
	})
}

func TestStorefront_CartUpdateAndRemove(t *testing.T) {
	b := newBrowser(t, newTestServer(t, testConfig(), nil).Routes())

	token := b.token("/products/smart-plug")
	_, body := b.post("/cart/add", url.Values{"gorilla.csrf.Token": {token}, "handle": {"smart-plug"}})
	assert.Contains(t, body, `class="cart-panel"`)
	assert.Contains(t, body, "1 item(s) in your cart, 19.99 USD")

	_, body = b.get("/cart")
	assert.NotContains(t, body, `class="cart-panel"`)

	token = b.token("/cart")
	_, body = b.post("/cart/update", url.Values{"gorilla.csrf.Token": {token}, "id": {"gid://shopify/ProductVariant/11"}, "qty": {"3"}})
	assert.Contains(t, body, "59.97")

	token = b.token("/cart")
	_, body = b.post("/cart/remove", url.Values{"gorilla.csrf.Token": {token}, "id": {"gid://shopify/ProductVariant/11"}})
	assert.Contains(t, body, "Your cart is empty.")
}

func TestStorefront_UnknownProduct(t *testing.T) {
	b := newBrowser(t, newTestServer(t, testConfig(), nil).Routes())

	resp, body := b.get("/products/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Page not found")

	token := b.token("/products/smart-plug")
	resp, body = b.post("/cart/add", url.Values{"gorilla.csrf.Token": {token}, "handle": {"nope"}})
	assert.Equal(t, "/products", resp.Request.URL.Path)
	assert.Contains(t, body, "no longer available")
	assert.Contains(t, body, "Cart (0)")
}

func TestStorefront_CSRFRequired(t *testing.T) {
	b := newBrowser(t, newTestServer(t, testConfig(), nil).Routes())

	resp, _ := b.post("/cart/add", url.Values{"handle": {"smart-plug"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestStorefront_OrderNotFound(t *testing.T) {
	b := newBrowser(t, newTestServer(t, testConfig(), nil).Routes())

	resp, body := b.get("/order/SH-99999")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "We could not find that order")
	assert.Contains(t, body, `content="noindex"`)
}

func TestStorefront_Pages(t *testing.T) {
	b := newBrowser(t, newTestServer(t, testConfig(), nil).Routes())

	for _, path := range []string{"/", "/about", "/solutions", "/faqs", "/insights", "/concept", "/products"} {
		t.Run(path, func(t *testing.T) {
			resp, body := b.get(path)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, body, "Smart Home")
			assert.Contains(t, body, `rel="canonical" href="https://shop.test`+path+`"`)
		})
	}

	_, body := b.get("/products")
	assert.Contains(t, body, "19.99 USD")

	_, body = b.get("/products/smart-plug")
	assert.Contains(t, body, "Works with voice assistants")
	assert.Contains(t, body, "<th>Power</th><td>16A</td>")

	resp, body := b.get("/does-not-exist")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Page not found")
}

func TestRobotsAndSitemap(t *testing.T) {
	h := newTestServer(t, testConfig(), nil).Routes()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/robots.txt", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Disallow: /checkout")
	assert.Contains(t, w.Body.String(), "Sitemap: https://shop.test/sitemap.xml")

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/xml")
	assert.Contains(t, w.Body.String(), "<loc>https://shop.test/about</loc>")
	assert.Contains(t, w.Body.String(), "<loc>https://shop.test/products/smart-plug</loc>")
}
