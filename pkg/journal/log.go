package journal

import (
	"context"

	"github.com/charmbracelet/log"
)

// LogSink writes events as structured log lines at info level.
type LogSink struct {
	logger *log.Logger
}

// NewLogSink creates a sink writing to logger, or to the default logger
// when logger is nil.
func NewLogSink(logger *log.Logger) *LogSink {
	if logger == nil {
		logger = log.Default()
	}
	return &LogSink{logger: logger.WithPrefix("journal")}
}

func (s *LogSink) Record(_ context.Context, ev Event) error {
	kv := []any{"session", ev.SessionID, "level", int(ev.Level)}
	if ev.Reason != "" {
		kv = append(kv, "reason", ev.Reason)
	}
	if ev.Rect != nil {
		kv = append(kv, "rect", ev.Rect.String())
	}
	s.logger.Info(string(ev.Kind), kv...)
	return nil
}

func (s *LogSink) Close(context.Context) error { return nil }
