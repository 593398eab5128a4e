package middleware

import (
	"net/http"
	"strings"
)

// Vary returns middleware that adds Accept to the Vary header, since every
// route negotiates between JSON and CBOR. Origin is added by the CORS layer.
func Vary() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !varyContains(w.Header(), "Accept") {
				w.Header().Add("Vary", "Accept")
			}
			next.ServeHTTP(w, r)
		})
	}
}

func varyContains(h http.Header, name string) bool {
	for _, v := range h.Values("Vary") {
		for part := range strings.SplitSeq(v, ",") {
			if strings.EqualFold(strings.TrimSpace(part), name) {
				return true
			}
		}
	}
	return false
}
