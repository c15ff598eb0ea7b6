package remoteauth

import (
	"context"
	"net/http"
	"sync"
)

type cacheKey struct{}

// RequestCache memoizes the lookup result of one request, nil included.
type RequestCache struct {
	mu       sync.Mutex
	resolved bool
	info     *AuthInfo
}

func WithRequestCache(ctx context.Context) (context.Context, *RequestCache) {
	c := new(RequestCache)
	return context.WithValue(ctx, cacheKey{}, c), c
}

func CacheFrom(ctx context.Context) *RequestCache {
	c, _ := ctx.Value(cacheKey{}).(*RequestCache)
	return c
}

// Middleware gives every request its own cache, dropped with the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, _ := WithRequestCache(r.Context())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
