package service

import (
	"context"

	"unifiedinbox/internal/privacy"
	"unifiedinbox/internal/tracing"

	"github.com/sirupsen/logrus"
)

// ContextKey is a package-local type to prevent context key collisions
type ContextKey string

// VerboseContextKey is the context key for the verbose logging flag
const VerboseContextKey ContextKey = "verbose"

// WithVerbose marks ctx for unmasked, payload-level logging
func WithVerbose(ctx context.Context, verbose bool) context.Context {
	return context.WithValue(ctx, VerboseContextKey, verbose)
}

// IsVerboseLogging checks if verbose logging is enabled from context
func IsVerboseLogging(ctx context.Context) bool {
	if verbose, ok := ctx.Value(VerboseContextKey).(bool); ok {
		return verbose
	}
	return false
}

// LogFields masks sensitive fields unless ctx is verbose and adds the
// request id when one is present. The input map is not modified.
func LogFields(ctx context.Context, fields logrus.Fields) logrus.Fields {
	out := make(logrus.Fields, len(fields)+1)
	for k, v := range privacy.MaskFields(fields, IsVerboseLogging(ctx)) {
		out[k] = v
	}
	if requestID := tracing.GetRequestInfo(ctx).RequestID; requestID != "" {
		if _, exists := out[LogFieldRequestID]; !exists {
			out[LogFieldRequestID] = requestID
		}
	}
	return out
}
