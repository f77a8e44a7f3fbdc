package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"smarthome-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const productFields = `
	id
	handle
	title
	descriptionHtml
	featuredImage { url }
	variants(first: 20) {
		edges { node { id title availableForSale price { amount currencyCode } } }
	}`

const listProductsQuery = `query Products($first: Int!) {
	products(first: $first, sortKey: BEST_SELLING) {
		edges { node {` + productFields + ` } }
	}
}`

const productByHandleQuery = `query Product($handle: String!) {
	product(handle: $handle) {` + productFields + `
	}
}`

// Catalog is what the web layer needs from the product source.
type Catalog interface {
	ListProducts(ctx context.Context, limit int) ([]Product, error)
	GetProduct(ctx context.Context, handle string) (*Product, error)
}

// Client talks to the commerce platform's Storefront GraphQL API.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

func NewClient(domain, token, apiVersion string) *Client {
	return &Client{
		endpoint: fmt.Sprintf("https://%s/api/%s/graphql.json", domain, apiVersion),
		token:    token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type productNode struct {
	ID              string `json:"id"`
	Handle          string `json:"handle"`
	Title           string `json:"title"`
	DescriptionHTML string `json:"descriptionHtml"`
	FeaturedImage   *struct {
		URL string `json:"url"`
	} `json:"featuredImage"`
	Variants struct {
		Edges []struct {
			Node struct {
				ID               string `json:"id"`
				Title            string `json:"title"`
				AvailableForSale bool   `json:"availableForSale"`
				Price            struct {
					Amount       decimal.Decimal `json:"amount"`
					CurrencyCode string          `json:"currencyCode"`
				} `json:"price"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
}

func (n productNode) toProduct() Product {
	p := Product{
		ID:              n.ID,
		Handle:          n.Handle,
		Title:           n.Title,
		DescriptionHTML: n.DescriptionHTML,
	}
	if n.FeaturedImage != nil {
		p.ImageURL = n.FeaturedImage.URL
	}
	for _, e := range n.Variants.Edges {
		p.Variants = append(p.Variants, Variant{
			ID:        e.Node.ID,
			Title:     e.Node.Title,
			Price:     e.Node.Price.Amount,
			Currency:  e.Node.Price.CurrencyCode,
			Available: e.Node.AvailableForSale,
		})
	}
	return p
}

func (c *Client) ListProducts(ctx context.Context, limit int) ([]Product, error) {
	var data struct {
		Products struct {
			Edges []struct {
				Node productNode `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	}
	if err := c.do(ctx, listProductsQuery, map[string]any{"first": limit}, &data); err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(data.Products.Edges))
	for _, e := range data.Products.Edges {
		products = append(products, e.Node.toProduct())
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, handle string) (*Product, error) {
	var data struct {
		Product *productNode `json:"product"`
	}
	if err := c.do(ctx, productByHandleQuery, map[string]any{"handle": handle}, &data); err != nil {
		return nil, err
	}
	if data.Product == nil {
		return nil, ErrProductNotFound
	}
	p := data.Product.toProduct()
	return &p, nil
}

func (c *Client) do(ctx context.Context, query string, vars map[string]any, out any) error {
	log := logger.FromCtx(ctx).With(zap.String("layer", "catalog"))

	body, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Storefront-Access-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("storefront request failed", zap.Error(err))
		return fmt.Errorf("storefront request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		log.Error("storefront returned non-200", zap.Int("status", resp.StatusCode))
		return fmt.Errorf("storefront status %d", resp.StatusCode)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphQLError  `json:"errors"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode storefront response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("storefront: %s", envelope.Errors[0].Message)
	}
	return json.Unmarshal(envelope.Data, out)
}

// Empty is the catalog used when no storefront is configured.
type Empty struct{}

func (Empty) ListProducts(context.Context, int) ([]Product, error) { return nil, nil }

func (Empty) GetProduct(context.Context, string) (*Product, error) { return nil, ErrProductNotFound }

// New returns the storefront client, or Empty when domain or token is unset.
func New(domain, token, apiVersion string) Catalog {
	if domain == "" || token == "" {
		return Empty{}
	}
	return NewClient(domain, token, apiVersion)
}
