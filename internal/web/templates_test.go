package web

import (
	"bytes"
	"testing"
	"testing/fstest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbedded(t *testing.T) {
	tc, err := LoadEmbedded()
	require.NoError(t, err)

	for _, page := range []string{
		"home.html", "about.html", "solutions.html", "faqs.html", "insights.html", "concept.html",
		"products.html", "product.html", "cart.html", "checkout.html", "order.html",
		"order_not_found.html", "not_found.html", "error.html",
	} {
		assert.NotNil(t, tc.Get(page), page)
	}
	assert.Nil(t, tc.Get("missing.html"))
}

func TestTemplateCache_Load(t *testing.T) {
	fsys := fstest.MapFS{
		"templates/layout.html":      {Data: []byte(`{{define "layout"}}[{{template "content" .}}]{{end}}`)},
		"templates/pages/price.html": {Data: []byte(`{{define "content"}}{{money .}}{{end}}`)},
	}

	tc := NewTemplateCache()
	require.NoError(t, tc.Load(fsys))

	var buf bytes.Buffer
	require.NoError(t, tc.Get("price.html").ExecuteTemplate(&buf, "layout", decimal.RequireFromString("5")))
	assert.Equal(t, "[5.00]", buf.String())
}

func TestTemplateCache_LoadEmpty(t *testing.T) {
	tc := NewTemplateCache()
	assert.Error(t, tc.Load(fstest.MapFS{}))
}
