package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/JonMunkholm/alumnicsv/internal/core"
)

var errRateLimited = errors.New("rate limit exceeded")

// WithRequestMetadata adds the client IP and User-Agent to ctx for run history.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, clientIP(r))
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}
