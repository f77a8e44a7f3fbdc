package web

import (
	"net/http"
	"strconv"
	"strings"

	"smarthome-be/internal/cart"
	"smarthome-be/internal/logger"

	"go.uber.org/zap"
)

func formQty(r *http.Request) int {
	qty, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("qty")))
	if err != nil || qty < 1 {
		return 1
	}
	return qty
}

func (s *Server) showCart(w http.ResponseWriter, r *http.Request) {
	store := s.cartFor(r, s.session(r))
	s.render(w, r, http.StatusOK, "cart.html", map[string]any{
		"Lines":   store.Lines(),
		"Total":   store.Total(),
		"NoIndex": true,
	})
}

// addToCart prices the line from the catalog, never from the form.
func (s *Server) addToCart(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context())
	sess := s.session(r)

	handle := r.PostFormValue("handle")
	p, err := s.catalog.GetProduct(r.Context(), handle)
	if err != nil {
		log.Warn("add to cart: product lookup failed", zap.String("handle", handle), zap.Error(err))
		sess.AddFlash(FlashMessage{Type: "error", Message: "That product is no longer available."})
		s.saveSession(w, r, sess)
		http.Redirect(w, r, "/products", http.StatusSeeOther)
		return
	}

	variant, ok := p.DefaultVariant()
	if id := r.PostFormValue("variant_id"); id != "" {
		variant, ok = p.Variant(id)
	}
	if !ok {
		sess.AddFlash(FlashMessage{Type: "error", Message: "Please choose an available option."})
		s.saveSession(w, r, sess)
		http.Redirect(w, r, "/products/"+p.Handle, http.StatusSeeOther)
		return
	}

	title := p.Title
	if variant.Title != "" && variant.Title != "Default Title" {
		title += " - " + variant.Title
	}

	// The whole session must fit in one cookie, so lines carry no image.
	prev, hadCart := sess.Values[cart.StorageKey]
	store := s.cartFor(r, sess)
	store.Add(cart.Line{ID: variant.ID, Title: title, Price: variant.Price}, formQty(r))
	sess.AddFlash(FlashMessage{Type: "success", Message: title + " added to your cart."})
	if store.IsOpen() {
		sess.Values[cartOpenKey] = true
	}

	if err := s.saveSession(w, r, sess); err != nil {
		// Keep the cart the browser already holds and say why nothing changed.
		if hadCart {
			sess.Values[cart.StorageKey] = prev
		} else {
			delete(sess.Values, cart.StorageKey)
		}
		delete(sess.Values, cartOpenKey)
		sess.Flashes()
		sess.AddFlash(FlashMessage{Type: "error", Message: "Your cart is full."})
		_ = s.saveSession(w, r, sess)
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (s *Server) updateCart(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	s.cartFor(r, sess).ChangeQty(r.PostFormValue("id"), formQty(r))
	s.saveSession(w, r, sess)
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (s *Server) removeFromCart(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	s.cartFor(r, sess).Remove(r.PostFormValue("id"))
	s.saveSession(w, r, sess)
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}
