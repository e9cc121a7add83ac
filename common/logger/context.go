package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// The orchestrator and the session service enrich the context once, and every slog call
// further down (dispatcher, applier, document host) picks the fields up for free.
type LogFields struct {
	SessionID *int64  // Panel session the run or action belongs to
	RunID     *int64  // Analysis run ID
	Stage     *string // Run stage (e.g., "correctness", "tone")
	Category  *string // Suggestion category being dispatched or purged
	Model     *string // Analysis model identifier
	Component string  // Component name (e.g., "proofread.orchestrator")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.SessionID != nil {
		result.SessionID = new.SessionID
	}
	if new.RunID != nil {
		result.RunID = new.RunID
	}
	if new.Stage != nil {
		result.Stage = new.Stage
	}
	if new.Category != nil {
		result.Category = new.Category
	}
	if new.Model != nil {
		result.Model = new.Model
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{RunID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate shortens s to at most maxLen runes, appending "..." if truncated.
// Model output is mostly Bengali, so cutting on bytes would split code points.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
