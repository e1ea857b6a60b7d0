package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/dreamjournal/pkg/ctxutil"
)

// RequestIDHeader carries the trace id in requests and responses.
const RequestIDHeader = "X-Request-Id"

// RequestID puts the incoming request id, or a fresh one, into the context
// as its trace id and echoes it back in the response.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(ctxutil.WithTraceID(r.Context(), id)))
		})
	}
}
