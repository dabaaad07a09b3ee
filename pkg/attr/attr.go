// Package attr holds the slog attribute helpers shared by every module so that
// log keys stay consistent across services and handlers.
package attr

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

type ctxKey string

// CorrelationIDKey is the context key under which handlers store the request correlation ID.
const CorrelationIDKey ctxKey = "correlation_id"

func String(key, value string) slog.Attr { return slog.String(key, value) }

func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

func Int64(key string, value int64) slog.Attr { return slog.Int64(key, value) }

func Bool(key string, value bool) slog.Attr { return slog.Bool(key, value) }

func Any(key string, value any) slog.Attr { return slog.Any(key, value) }

// Error renders err under the "error" key. A nil error renders as an empty string.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Scope tags the managed event a log line belongs to.
func Scope(scope string) slog.Attr { return slog.String("scope", scope) }

// RoundID tags a round identifier.
func RoundID(id int64) slog.Attr { return slog.Int64("round_id", id) }

// WithCorrelationID stores id on ctx for ExtractCorrelationID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// ExtractCorrelationID returns the correlation ID stored on ctx as a log attribute.
func ExtractCorrelationID(ctx context.Context) slog.Attr {
	id, _ := ctx.Value(CorrelationIDKey).(string)
	return slog.String("correlation_id", id)
}

// MessageCorrelationID reads watermill's correlation metadata key.
func MessageCorrelationID(metadata map[string]string) string {
	return metadata[middleware.CorrelationIDMetadataKey]
}
