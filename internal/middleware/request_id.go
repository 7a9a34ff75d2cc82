// internal/middleware/request_id.go
package middleware

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

const (
	// RequestIDHeader is the metadata key for the request ID
	RequestIDHeader = "x-request-id"
	// RequestIDHTTPHeader is the same key in HTTP canonical form
	RequestIDHTTPHeader = "X-Request-ID"
)

// requestIDKey is the context key for storing the request ID
type requestIDKey struct{}

// UnaryRequestIDInterceptor extracts x-request-id from incoming metadata or generates
// a new UUID if not present. It injects the request ID into the context and adds it
// to outgoing metadata.
func UnaryRequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		requestID := ensureRequestID(extractRequestID(ctx))
		ctx = WithRequestID(ctx, requestID)

		// Fails outside a real transport, e.g. in tests; the ID still reaches the handler.
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, requestID))

		return handler(ctx, req)
	}
}

// extractRequestID extracts the request ID from incoming metadata
func extractRequestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}

	values := md.Get(RequestIDHeader)
	if len(values) == 0 {
		return ""
	}

	return values[0]
}

// WithRequestID stores a request ID in the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// ensureRequestID returns id, or a new UUID when id is empty
func ensureRequestID(id string) string {
	if id == "" {
		return uuid.New().String()
	}
	return id
}

// GetRequestID retrieves the request ID from the context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}
