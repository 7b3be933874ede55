package session

import "context"

type visitorKey struct{}

// WithVisitor attaches the browser visitor id to ctx. The API client
// reads tokens for this visitor.
func WithVisitor(ctx context.Context, visitor string) context.Context {
	return context.WithValue(ctx, visitorKey{}, visitor)
}

// VisitorFrom returns the visitor id carried by ctx, or "".
func VisitorFrom(ctx context.Context) string {
	v, _ := ctx.Value(visitorKey{}).(string)
	return v
}

type clientAddrKey struct{}

// WithClientAddr attaches the network address of the caller to ctx.
func WithClientAddr(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, clientAddrKey{}, addr)
}

// ClientAddrFrom returns the caller address carried by ctx, or "".
func ClientAddrFrom(ctx context.Context) string {
	addr, _ := ctx.Value(clientAddrKey{}).(string)
	return addr
}
