// Package request assigns every inbound request an ID so log lines from
// middleware, handlers, and services can be correlated.
package request

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"presadmin/pkg/requestcontext"
)

const headerRequestID = "X-Request-ID"

// RequestID middleware reuses an inbound X-Request-ID when the caller
// supplies one, otherwise generates a fresh UUID. The ID is stored in the
// context and echoed back on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(headerRequestID, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
