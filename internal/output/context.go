package output

import (
	"context"
	"reflect"
)

// contextKey is a private type for storing values in context
// to avoid collisions with other packages.
type contextKey struct{}

// queryKey is a private type for storing jq query in context.
type queryKey struct{}

type (
	yesKey   struct{}
	limitKey struct{}
	quietKey struct{}
)

// WithFormat returns a new context with the output format attached.
func WithFormat(ctx context.Context, format Format) context.Context {
	return context.WithValue(ctx, contextKey{}, format)
}

// FormatFromContext retrieves the output format from the context.
// If no format is set in the context, it returns FormatText as the default.
func FormatFromContext(ctx context.Context) Format {
	if v, ok := ctx.Value(contextKey{}).(Format); ok {
		return v
	}
	return FormatText
}

// WithQuery adds a jq query string to context.
func WithQuery(ctx context.Context, query string) context.Context {
	return context.WithValue(ctx, queryKey{}, query)
}

// QueryFromContext retrieves the jq query from context.
func QueryFromContext(ctx context.Context) string {
	if q, ok := ctx.Value(queryKey{}).(string); ok {
		return q
	}
	return ""
}

// WithYes sets the --yes flag in context.
func WithYes(ctx context.Context, yes bool) context.Context {
	return context.WithValue(ctx, yesKey{}, yes)
}

// YesFromContext returns true if --yes flag is set.
func YesFromContext(ctx context.Context) bool {
	if y, ok := ctx.Value(yesKey{}).(bool); ok {
		return y
	}
	return false
}

// WithLimit sets the --result-limit value in context.
func WithLimit(ctx context.Context, limit int) context.Context {
	return context.WithValue(ctx, limitKey{}, limit)
}

// LimitFromContext returns the --result-limit value (0 = unlimited).
func LimitFromContext(ctx context.Context) int {
	if l, ok := ctx.Value(limitKey{}).(int); ok {
		return l
	}
	return 0
}

// WithQuiet sets the --quiet flag in context.
func WithQuiet(ctx context.Context, quiet bool) context.Context {
	return context.WithValue(ctx, quietKey{}, quiet)
}

// QuietFromContext returns true if --quiet flag is set.
func QuietFromContext(ctx context.Context) bool {
	if q, ok := ctx.Value(quietKey{}).(bool); ok {
		return q
	}
	return false
}

// ApplyLimit truncates slice data to the --result-limit in ctx. The slice
// keeps its type, so named list types still satisfy Tabular.
func ApplyLimit(ctx context.Context, data interface{}) interface{} {
	limit := LimitFromContext(ctx)
	if limit <= 0 {
		return data
	}
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Slice || v.Len() <= limit {
		return data
	}
	return v.Slice(0, limit).Interface()
}
