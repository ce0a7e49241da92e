package core

import "context"

type contextKey string

const (
	ctxKeyIPAddress contextKey = "run_ip"
	ctxKeyUserAgent contextKey = "run_ua"
)

// ContextWithIPAddress adds the client IP to ctx for run history.
func ContextWithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyIPAddress, ip)
}

// ContextWithUserAgent adds the client User-Agent to ctx for run logging.
func ContextWithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, ctxKeyUserAgent, ua)
}

// IPAddressFromContext returns the client IP stored in ctx, or "".
func IPAddressFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyIPAddress).(string); ok {
		return v
	}
	return ""
}

// UserAgentFromContext returns the User-Agent stored in ctx, or "".
func UserAgentFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyUserAgent).(string); ok {
		return v
	}
	return ""
}
