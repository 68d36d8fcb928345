package logging

import "context"

type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// RuleSourceKey is the context key for the name of the rule document
	// being parsed.
	RuleSourceKey contextKey = "rule_source"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithRuleSource records which rule document a context is working on.
func WithRuleSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, RuleSourceKey, source)
}

// GetRuleSource retrieves the rule document name from the context.
func GetRuleSource(ctx context.Context) string {
	if source, ok := ctx.Value(RuleSourceKey).(string); ok {
		return source
	}
	return ""
}
