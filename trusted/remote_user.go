package trusted

import (
	"context"
	"net/http"
)

type remoteUserKey struct{}

// RemoteUser returns the identity established by the filter for r, if any.
func RemoteUser(r *http.Request) string {
	return RemoteUserFrom(r.Context())
}

func RemoteUserFrom(ctx context.Context) string {
	eid, _ := ctx.Value(remoteUserKey{}).(string)
	return eid
}

// WithRemoteUser returns r with eid as remote user. r itself is returned when
// it already carries that identity.
func WithRemoteUser(r *http.Request, eid string) *http.Request {
	if RemoteUser(r) == eid {
		return r
	}
	return r.WithContext(context.WithValue(r.Context(), remoteUserKey{}, eid))
}
