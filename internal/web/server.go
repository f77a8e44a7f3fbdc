package web

import (
	"bytes"
	"context"
	"encoding/gob"
	"net/http"
	"time"

	"smarthome-be/internal/auth"
	"smarthome-be/internal/cart"
	"smarthome-be/internal/catalog"
	"smarthome-be/internal/checkout"
	"smarthome-be/internal/logger"
	"smarthome-be/internal/metrics"
	"smarthome-be/internal/middleware"
	"smarthome-be/internal/order"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	sessionName    = "smarthome"
	checkoutKeyKey = "checkout_key"
	deepLinkKey    = "whish_link"
	cartOpenKey    = "cart_open"
)

func init() {
	gob.Register(FlashMessage{})
}

type FlashMessage struct {
	Type    string
	Message string
}

type Config struct {
	Brand             string
	Currency          string
	WhishPhone        string
	SiteURL           string
	AdminEmail        string
	AdminPasswordHash string
	CSRFKey           []byte
	CookieSecure      bool
	TrustedOrigins    []string
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type Deps struct {
	Orders    order.Service
	Checkout  *checkout.Controller
	Catalog   catalog.Catalog
	Sessions  sessions.Store
	Templates *TemplateCache
	Tokens    *auth.TokenManager
	Limiter   *middleware.RateLimiter
	Checks    map[string]ReadinessCheck
	Metrics   *metrics.Registry
}

type Server struct {
	cfg       Config
	orders    order.Service
	checkout  *checkout.Controller
	catalog   catalog.Catalog
	sessions  sessions.Store
	templates *TemplateCache
	tokens    *auth.TokenManager
	limiter   *middleware.RateLimiter
	checks    map[string]ReadinessCheck
	metrics   *metrics.Registry
}

func NewServer(cfg Config, deps Deps) *Server {
	s := &Server{
		cfg:       cfg,
		orders:    deps.Orders,
		checkout:  deps.Checkout,
		catalog:   deps.Catalog,
		sessions:  deps.Sessions,
		templates: deps.Templates,
		tokens:    deps.Tokens,
		limiter:   deps.Limiter,
		checks:    deps.Checks,
		metrics:   deps.Metrics,
	}
	if s.catalog == nil {
		s.catalog = catalog.Empty{}
	}
	if s.tokens == nil {
		s.tokens = auth.NewTokenManager("", 0)
	}
	if s.limiter == nil {
		s.limiter = middleware.NewRateLimiter()
	}
	if s.metrics == nil {
		s.metrics = metrics.Default
	}
	return s
}

// Routes builds the full handler chain.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.StrictSlash(true)

	// JSON API, no CSRF
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/orders", s.createOrder).Methods(http.MethodPost)
	api.HandleFunc("/orders/{number}", s.getOrder).Methods(http.MethodGet)
	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeNotFoundJSON(w)
	})

	r.HandleFunc("/admin/login", s.adminLogin).Methods(http.MethodPost)
	r.Handle("/admin/orders", middleware.AdminOnly(s.tokens)(http.HandlerFunc(s.adminOrders))).Methods(http.MethodGet)

	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.readyz).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.metricsHandler).Methods(http.MethodGet)
	r.HandleFunc("/robots.txt", s.robots).Methods(http.MethodGet)
	r.HandleFunc("/sitemap.xml", s.sitemap).Methods(http.MethodGet)

	// HTML pages and forms
	pages := r.NewRoute().Subrouter()
	pages.Use(s.csrfProtect())
	pages.HandleFunc("/", s.home).Methods(http.MethodGet)
	pages.HandleFunc("/about", s.page("about.html")).Methods(http.MethodGet)
	pages.HandleFunc("/solutions", s.page("solutions.html")).Methods(http.MethodGet)
	pages.HandleFunc("/faqs", s.page("faqs.html")).Methods(http.MethodGet)
	pages.HandleFunc("/insights", s.page("insights.html")).Methods(http.MethodGet)
	pages.HandleFunc("/concept", s.page("concept.html")).Methods(http.MethodGet)
	pages.HandleFunc("/products", s.listProducts).Methods(http.MethodGet)
	pages.HandleFunc("/products/{handle}", s.showProduct).Methods(http.MethodGet)
	pages.HandleFunc("/cart", s.showCart).Methods(http.MethodGet)
	pages.HandleFunc("/cart/add", s.addToCart).Methods(http.MethodPost)
	pages.HandleFunc("/cart/update", s.updateCart).Methods(http.MethodPost)
	pages.HandleFunc("/cart/remove", s.removeFromCart).Methods(http.MethodPost)
	pages.HandleFunc("/checkout", s.showCheckout).Methods(http.MethodGet)
	pages.HandleFunc("/checkout", s.submitCheckout).Methods(http.MethodPost)
	pages.HandleFunc("/order/{number}", s.showOrder).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusNotFound, "not_found.html", map[string]any{"NoIndex": true})
	})

	// Chain: RequestID -> Logging -> Tracing -> Security Headers -> Rate Limit -> Router
	return logger.RequestIDMiddleware(
		logger.LoggingMiddleware(
			middleware.Tracing(
				middleware.SecurityHeaders(
					s.limiter.Middleware(r),
				),
			),
		),
	)
}

func (s *Server) csrfProtect() mux.MiddlewareFunc {
	protect := csrf.Protect(
		s.cfg.CSRFKey,
		csrf.Secure(s.cfg.CookieSecure),
		csrf.Path("/"),
		csrf.TrustedOrigins(s.cfg.TrustedOrigins),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.FromCtx(r.Context()).Warn("csrf validation failed", zap.Error(csrf.FailureReason(r)))
			http.Error(w, "Forbidden - invalid form token. Please reload the page and try again.", http.StatusForbidden)
		})),
	)
	return mux.MiddlewareFunc(protect)
}

func (s *Server) session(r *http.Request) *sessions.Session {
	sess, err := s.sessions.Get(r, sessionName)
	if err != nil {
		// A tampered or stale cookie yields a fresh session.
		logger.FromCtx(r.Context()).Debug("discarding unreadable session", zap.Error(err))
	}
	return sess
}

func (s *Server) saveSession(w http.ResponseWriter, r *http.Request, sess *sessions.Session) error {
	err := sess.Save(r, w)
	if err != nil {
		logger.FromCtx(r.Context()).Warn("failed to save session", zap.Error(err))
	}
	return err
}

func (s *Server) cartFor(r *http.Request, sess *sessions.Session) *cart.Store {
	return cart.NewStore(cart.NewSessionStorage(sess), logger.FromCtx(r.Context()))
}

func getFlash(sess *sessions.Session) []FlashMessage {
	var messages []FlashMessage
	for _, f := range sess.Flashes() {
		if fm, ok := f.(FlashMessage); ok {
			messages = append(messages, fm)
		}
	}
	return messages
}

// render executes page inside the layout. The session is saved first so
// consumed flashes are cleared.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data map[string]any) {
	log := logger.FromCtx(r.Context())

	if data == nil {
		data = map[string]any{}
	}
	sess := s.session(r)
	data["Brand"] = s.cfg.Brand
	data["Currency"] = s.cfg.Currency
	data["Year"] = time.Now().Year()
	data["CSRFField"] = csrf.TemplateField(r)
	store := s.cartFor(r, sess)
	// An add on the previous request opens the panel for one page view.
	if open, _ := sess.Values[cartOpenKey].(bool); open {
		delete(sess.Values, cartOpenKey)
		store.Open()
	}
	data["CartOpen"] = store.IsOpen()
	data["CartCount"] = store.Count()
	data["CartTotal"] = store.Total()
	data["Flashes"] = getFlash(sess)
	if _, ok := data["Canonical"]; !ok && status == http.StatusOK {
		data["Canonical"] = s.cfg.SiteURL + r.URL.Path
	}
	s.saveSession(w, r, sess)

	tmpl := s.templates.Get(page)
	if tmpl == nil {
		log.Error("template not found", zap.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Error("failed to render template", zap.String("page", page), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
