package logging

import (
	"context"
	"log/slog"
	"strconv"
	"time"
)

type Attr = slog.Attr

// Keys describing the caption pipeline. Session, stage, and correlation keys
// come from the request context instead (see ContextFields).
const (
	FieldVideo      = "video_id"
	FieldModel      = "model"
	FieldPrompt     = "prompt"
	FieldSimilarity = "similarity"
	FieldElapsed    = "elapsed"
)

func Any(key string, value any) Attr { return slog.Any(key, value) }

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// Video tags a record with the resolved video id. References that are still
// full links are logged as given.
func Video(id string) Attr { return slog.String(FieldVideo, id) }

// Model tags a record with the catalog name of the hosted model.
func Model(name string) Attr { return slog.String(FieldModel, name) }

// Prompt tags a record with the prompt kind sent to the model.
func Prompt(kind string) Attr { return slog.String(FieldPrompt, kind) }

// Similarity records a 0..1 score with two decimals.
func Similarity(score float64) Attr {
	return slog.String(FieldSimilarity, strconv.FormatFloat(score, 'f', 2, 64))
}

// Elapsed records the time since started, rounded to milliseconds.
func Elapsed(started time.Time) Attr {
	return slog.Duration(FieldElapsed, time.Since(started).Round(time.Millisecond))
}

func Args(attrs ...Attr) []any {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return args
}

func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NewComponentLogger creates a logger with a standardized component attribute.
// If logger is nil, a no-op logger is used as the base.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

func hasKey(attrs []Attr, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}

// WarnWithContext logs a warning that always carries event_type, error_hint,
// and impact. Missing fields get defaults suited to a failed session action.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	if !hasKey(attrs, FieldEventType) {
		attrs = append(attrs, String(FieldEventType, eventType))
	}
	if !hasKey(attrs, FieldErrorHint) {
		attrs = append(attrs, String(FieldErrorHint, "check the log for the failing request"))
	}
	if !hasKey(attrs, FieldImpact) {
		attrs = append(attrs, String(FieldImpact, "session kept its previous results"))
	}
	logger.Warn(msg, Args(attrs...)...)
}

// NoopHandler discards all log output.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }

func (NoopHandler) WithAttrs([]slog.Attr) slog.Handler { return NoopHandler{} }

func (NoopHandler) WithGroup(string) slog.Handler { return NoopHandler{} }
