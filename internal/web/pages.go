package web

import (
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"smarthome-be/internal/catalog"
	"smarthome-be/internal/logger"
	"smarthome-be/internal/payment"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	homeProductLimit = 4
	shopProductLimit = 24
)

var staticPaths = []string{"/", "/products", "/solutions", "/insights", "/faqs", "/about", "/concept"}

type productCard struct {
	Handle   string
	Title    string
	ImageURL string
	Price    string
}

func toCards(products []catalog.Product) []productCard {
	cards := make([]productCard, 0, len(products))
	for i := range products {
		p := &products[i]
		card := productCard{Handle: p.Handle, Title: p.Title, ImageURL: p.ImageURL}
		if v, ok := p.DefaultVariant(); ok {
			card.Price = strings.TrimSpace(payment.FormatAmount(v.Price) + " " + v.Currency)
		}
		cards = append(cards, card)
	}
	return cards
}

func (s *Server) page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusOK, name, nil)
	}
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.ListProducts(r.Context(), homeProductLimit)
	if err != nil {
		logger.FromCtx(r.Context()).Warn("home products unavailable", zap.Error(err))
	}
	s.render(w, r, http.StatusOK, "home.html", map[string]any{"Products": toCards(products)})
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.ListProducts(r.Context(), shopProductLimit)
	if err != nil {
		logger.FromCtx(r.Context()).Warn("catalog unavailable", zap.Error(err))
	}
	s.render(w, r, http.StatusOK, "products.html", map[string]any{"Products": toCards(products)})
}

func (s *Server) showProduct(w http.ResponseWriter, r *http.Request) {
	handle := mux.Vars(r)["handle"]

	p, err := s.catalog.GetProduct(r.Context(), handle)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			s.render(w, r, http.StatusNotFound, "not_found.html", map[string]any{"NoIndex": true})
			return
		}
		logger.FromCtx(r.Context()).Error("get product failed", zap.String("handle", handle), zap.Error(err))
		s.render(w, r, http.StatusBadGateway, "error.html", map[string]any{"NoIndex": true})
		return
	}

	s.render(w, r, http.StatusOK, "product.html", map[string]any{
		"Product": p,
		"Specs":   catalog.ParseSpecs(p.DescriptionHTML),
	})
}

func (s *Server) robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "User-agent: *\nDisallow: /checkout\nDisallow: /cart\nDisallow: /order/\nDisallow: /admin/\nDisallow: /api/\n\nSitemap: %s/sitemap.xml\n", s.cfg.SiteURL)
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

func (s *Server) sitemap(w http.ResponseWriter, r *http.Request) {
	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, p := range staticPaths {
		set.URLs = append(set.URLs, sitemapURL{Loc: s.cfg.SiteURL + p})
	}

	products, err := s.catalog.ListProducts(r.Context(), shopProductLimit)
	if err != nil {
		logger.FromCtx(r.Context()).Warn("sitemap without products", zap.Error(err))
	}
	for _, p := range products {
		set.URLs = append(set.URLs, sitemapURL{Loc: s.cfg.SiteURL + "/products/" + p.Handle})
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write([]byte(xml.Header))
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		logger.FromCtx(r.Context()).Error("failed to encode sitemap", zap.Error(err))
	}
}
