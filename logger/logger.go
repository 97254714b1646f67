package logger

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ZeroLogger wraps zerolog.Logger to implement the Logger interface.
type ZeroLogger struct {
	zlog     *zerolog.Logger
	redactor *Redactor
}

// Ensure ZeroLogger implements the interface
var _ Logger = (*ZeroLogger)(nil)

var callerMarshalOnce sync.Once

// New creates a ZeroLogger writing JSON to stdout at the given level.
// If pretty is true, output is formatted for human readability instead.
func New(level string, pretty bool) *ZeroLogger {
	return NewWithWriter(level, pretty, os.Stdout)
}

// NewWithWriter creates a ZeroLogger writing to the supplied writer.
func NewWithWriter(level string, pretty bool, w io.Writer) *ZeroLogger {
	callerMarshalOnce.Do(func() {
		zerolog.CallerMarshalFunc = func(_ uintptr, file string, line int) string {
			base := filepath.Base(file)
			parent := filepath.Base(filepath.Dir(file))
			if parent != "." && parent != "" {
				return parent + "/" + base + ":" + strconv.Itoa(line)
			}
			return base + ":" + strconv.Itoa(line)
		}
	})

	var l zerolog.Logger
	if pretty {
		l = zerolog.New(zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().CallerWithSkipFrameCount(3).Logger()
	} else {
		l = zerolog.New(w).With().Timestamp().CallerWithSkipFrameCount(3).Logger()
	}

	zLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		zLevel = zerolog.InfoLevel
	}
	l = l.Level(zLevel)

	return &ZeroLogger{zlog: &l, redactor: NewRedactor(nil)}
}

// WithRedactor returns a copy of the logger using the supplied redactor for
// sensitive-field masking. A nil redactor disables masking.
func (l *ZeroLogger) WithRedactor(r *Redactor) *ZeroLogger {
	return &ZeroLogger{zlog: l.zlog, redactor: r}
}

// WithContext returns a logger bound to the zerolog logger stored in ctx, when
// one is present and enabled.
func (l *ZeroLogger) WithContext(ctx any) Logger {
	if c, ok := ctx.(context.Context); ok {
		zl := zerolog.Ctx(c)
		if zl == nil || zl.GetLevel() == zerolog.Disabled {
			return l
		}
		return &ZeroLogger{zlog: zl, redactor: l.redactor}
	}
	return l
}

// WithFields returns a logger with additional fields attached to all entries.
func (l *ZeroLogger) WithFields(fields map[string]any) Logger {
	if l.redactor != nil {
		fields = l.redactor.Fields(fields)
	}
	log := l.zlog.With().Fields(fields).Logger()
	return &ZeroLogger{zlog: &log, redactor: l.redactor}
}

// Info creates an info-level log event
func (l *ZeroLogger) Info() LogEvent {
	return &eventAdapter{event: l.zlog.Info(), redactor: l.redactor}
}

// Error creates an error-level log event
func (l *ZeroLogger) Error() LogEvent {
	return &eventAdapter{event: l.zlog.Error(), redactor: l.redactor}
}

// Debug creates a debug-level log event
func (l *ZeroLogger) Debug() LogEvent {
	return &eventAdapter{event: l.zlog.Debug(), redactor: l.redactor}
}

// Warn creates a warning-level log event
func (l *ZeroLogger) Warn() LogEvent {
	return &eventAdapter{event: l.zlog.Warn(), redactor: l.redactor}
}

// Fatal creates a fatal-level log event
func (l *ZeroLogger) Fatal() LogEvent {
	return &eventAdapter{event: l.zlog.Fatal(), redactor: l.redactor}
}
