package domain

import "context"

// RequestMeta carries transport details from the HTTP layer so audit rows
// can record where an action came from.
type RequestMeta struct {
	IP        string
	UserAgent string
}

type requestMetaKey struct{}

func WithRequestMeta(ctx context.Context, m RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, m)
}

// RequestMetaFrom returns the meta attached to ctx, or a zero value for
// work that did not originate from an HTTP request.
func RequestMetaFrom(ctx context.Context) RequestMeta {
	m, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return m
}
