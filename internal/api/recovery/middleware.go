// Package recovery keeps a panicking handler from taking the server down.
package recovery

import (
	"net/http"
	"runtime/debug"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"salvo-backend/internal/api/respond"
)

// New returns mux middleware that turns a handler panic into a logged 500.
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func New(log zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				ev := log.Error().
					Interface("panic", rec).
					Str("method", r.Method).
					Str("path", r.URL.Path)
				if route := mux.CurrentRoute(r); route != nil {
					if tmpl, err := route.GetPathTemplate(); err == nil {
						ev = ev.Str("route", tmpl)
					}
				}
				ev.Bytes("stack", debug.Stack()).Msg("handler panicked")

				respond.WriteInternalError(w, "unexpected error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
