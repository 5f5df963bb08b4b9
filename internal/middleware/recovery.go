package middleware

import (
	"fmt"
	"net/http"

	"github.com/BerylCAtieno/image-analyzer/internal/utils"
)

// Recovery is the last-resort catch-all: the panic is logged in full, the client
// only sees a generic message.
func Recovery(logger *utils.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						"error", fmt.Sprint(rec),
						"request_id", RequestIDFrom(r.Context()))
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(`{"error":"internal_server_error","kind":"internal"}`))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
