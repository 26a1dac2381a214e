package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey string

const identityKey contextKey = "caller-identity"

// identityMiddleware extracts the authenticated caller identity from the
// trusted header installed by the fronting auth proxy.  Requests without it
// never reach a handler.
func identityMiddleware(header string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := r.Header.Get(header)
		if identity == "" {
			writeError(w, http.StatusUnauthorized, "unauthenticated", "missing caller identity")
			return
		}
		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// callerIdentity returns the identity placed by identityMiddleware.  Empty
// only if a handler is reachable without the middleware, which is a wiring
// bug.
func callerIdentity(r *http.Request) string {
	identity, _ := r.Context().Value(identityKey).(string)
	return identity
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(logger *logrus.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now().UTC()
		next.ServeHTTP(w, r)
		logger.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"remote":     r.RemoteAddr,
			"request_id": w.Header().Get("X-Request-Id"),
			"duration":   time.Since(start).String(),
		}).Info("request")
	})
}
