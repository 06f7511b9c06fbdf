package middleware

import (
	"context"
	"net/http"
	"strings"
)

type userKey struct{}

// maxUserIDLength bounds identifiers forwarded by the fronting auth layer.
const maxUserIDLength = 128

// UserID copies the caller identity from the X-User-ID header into the
// request context. Requests without the header pass through anonymous.
func UserID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-User-ID"))
		if id != "" && len(id) <= maxUserIDLength {
			r = r.WithContext(ContextWithUserID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userKey{}).(string); ok {
		return v
	}
	return ""
}

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	if strings.TrimSpace(userID) == "" {
		return ctx
	}
	return context.WithValue(ctx, userKey{}, userID)
}
