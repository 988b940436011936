package telemetry

import (
	"context"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts a github.com/rs/zerolog.Logger to the Logger
// interface. zerolog is the structured-logging library used across the
// retrieval pack's standalone agent loops (e.g. hyperifyio-goresearch,
// rubrduck); agentcore adopts it for the same concern rather than hand-roll
// a logger on top of log/slog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger wraps an existing zerolog.Logger.
func NewZerologLogger(l zerolog.Logger) Logger {
	return ZerologLogger{log: l}
}

func (z ZerologLogger) Debug(_ context.Context, msg string, keyvals ...any) {
	z.event(z.log.Debug(), msg, keyvals)
}

func (z ZerologLogger) Info(_ context.Context, msg string, keyvals ...any) {
	z.event(z.log.Info(), msg, keyvals)
}

func (z ZerologLogger) Warn(_ context.Context, msg string, keyvals ...any) {
	z.event(z.log.Warn(), msg, keyvals)
}

func (z ZerologLogger) Error(_ context.Context, msg string, keyvals ...any) {
	z.event(z.log.Error(), msg, keyvals)
}

func (z ZerologLogger) event(e *zerolog.Event, msg string, keyvals []any) {
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, keyvals[i+1])
	}
	e.Msg(msg)
}
