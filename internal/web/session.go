package web

import (
	"net/http"

	"github.com/gorilla/sessions"
)

const sessionMaxAge = 30 * 24 * 60 * 60

// NewSessionStore returns the signed cookie store holding the cart, flashes
// and checkout key. secure must be false when served over plain http, or
// browsers never send the cookie back.
func NewSessionStore(key []byte, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}
