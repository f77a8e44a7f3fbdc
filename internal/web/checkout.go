package web

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"smarthome-be/internal/checkout"
	"smarthome-be/internal/logger"
	"smarthome-be/internal/order"
	"smarthome-be/internal/payment"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// checkoutKey identifies the visitor for the one-submission-at-a-time guard.
func checkoutKey(sess *sessions.Session) string {
	if key, ok := sess.Values[checkoutKeyKey].(string); ok && key != "" {
		return key
	}
	key := uuid.NewString()
	sess.Values[checkoutKeyKey] = key
	return key
}

func formFrom(r *http.Request) checkout.Form {
	return checkout.Form{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Phone:    strings.TrimSpace(r.PostFormValue("phone")),
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Address1: strings.TrimSpace(r.PostFormValue("address1")),
		Address2: strings.TrimSpace(r.PostFormValue("address2")),
		City:     strings.TrimSpace(r.PostFormValue("city")),
		Postal:   strings.TrimSpace(r.PostFormValue("postal")),
		Country:  strings.TrimSpace(r.PostFormValue("country")),
		Method:   order.Method(r.PostFormValue("method")),
	}
}

func (s *Server) renderCheckout(w http.ResponseWriter, r *http.Request, sess *sessions.Session, status int, form checkout.Form, message string) {
	key := checkoutKey(sess)
	store := s.cartFor(r, sess)
	s.render(w, r, status, "checkout.html", map[string]any{
		"Form":      form,
		"Error":     message,
		"Lines":     store.Lines(),
		"Total":     store.Total(),
		"CanSubmit": s.checkout.CanSubmit(key, store),
		"NoIndex":   true,
	})
}

func (s *Server) showCheckout(w http.ResponseWriter, r *http.Request) {
	s.renderCheckout(w, r, s.session(r), http.StatusOK, checkout.Form{}, "")
}

func (s *Server) submitCheckout(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	key := checkoutKey(sess)
	form := formFrom(r)

	res, err := s.checkout.Submit(r.Context(), key, s.cartFor(r, sess), form)
	if err != nil {
		var submitErr *checkout.SubmitError
		switch {
		case errors.Is(err, checkout.ErrEmailRequired), errors.Is(err, checkout.ErrEmptyCart):
			s.renderCheckout(w, r, sess, http.StatusBadRequest, form, err.Error())
		case errors.Is(err, checkout.ErrSubmitInFlight):
			s.renderCheckout(w, r, sess, http.StatusConflict, form, "Your order is already being placed.")
		case errors.As(err, &submitErr):
			s.renderCheckout(w, r, sess, http.StatusUnprocessableEntity, form, submitErr.Message)
		default:
			logger.FromCtx(r.Context()).Error("checkout failed", zap.Error(err))
			s.renderCheckout(w, r, sess, http.StatusInternalServerError, form, "We could not place your order. Please try again.")
		}
		return
	}

	if res.DeepLink != "" {
		sess.Values[deepLinkKey] = res.DeepLink
	}
	s.saveSession(w, r, sess)
	http.Redirect(w, r, res.RedirectURL, http.StatusSeeOther)
}

func (s *Server) showOrder(w http.ResponseWriter, r *http.Request) {
	number := mux.Vars(r)["number"]

	o, err := s.orders.GetOrderByNumber(r.Context(), number)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			s.render(w, r, http.StatusNotFound, "order_not_found.html", map[string]any{"Number": number, "NoIndex": true})
			return
		}
		logger.FromCtx(r.Context()).Error("order page failed", zap.String("number", number), zap.Error(err))
		s.render(w, r, http.StatusInternalServerError, "error.html", map[string]any{"NoIndex": true})
		return
	}

	whish := o.Method == order.MethodWhish
	data := map[string]any{
		"Order":   o,
		"Whish":   whish,
		"NoIndex": true,
	}

	var note, link string
	if whish {
		note = payment.WhishNote(o.Number, o.Titles())
		link = payment.WhishLink(s.cfg.WhishPhone, o.Total, note)
		data["Phone"] = s.cfg.WhishPhone
		data["Note"] = note
		data["DeepLink"] = template.URL(link)
	}
	data["Steps"] = payment.Steps(string(o.Method), o.Number, s.cfg.WhishPhone, o.Total, note)

	// The link stashed by a just-completed checkout is shown once.
	sess := s.session(r)
	if pending, ok := sess.Values[deepLinkKey].(string); ok {
		delete(sess.Values, deepLinkKey)
		data["OpenNow"] = whish && pending == link
	}

	s.render(w, r, http.StatusOK, "order.html", data)
}
