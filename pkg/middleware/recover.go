package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Recoverer returns middleware that converts handler panics into a 500 response.
// http.ErrAbortHandler is re-panicked so the server can abort the connection.
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
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

				logger.Error(
					"handler panic",
					"request_id", RequestID(r.Context()),
					"panic", rec,
					"stack", string(debug.Stack()),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":"internal server error"}`))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
