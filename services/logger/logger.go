// Package logsvc implements core.Logger with zerolog, optionally reporting to Rollbar.
package logsvc

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

// Logger writes structured lines through zerolog.
// Extra args: errors go to the "error" field, maps are merged into the line and a user.User
// sets "user_id" and "user_role".
type Logger struct {
	zl zerolog.Logger
}

var _ core.Logger = (*Logger)(nil) // interface compliance check

// NewLogger writes JSON lines to w, or human-readable ones when pretty is set.
func NewLogger(w io.Writer, debug, pretty bool) *Logger {
	if w == nil {
		w = os.Stdout
	}
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return &Logger{zl: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

// Named returns a copy of l tagging every line with component.
func (l *Logger) Named(component string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", component).Logger()}
}

func (l *Logger) event(e *zerolog.Event, msg string, args []interface{}) {
	for _, arg := range args {
		switch v := arg.(type) {
		case error:
			e = e.Err(v)
		case map[string]interface{}:
			e = e.Fields(v)
		case map[string]string:
			for k, s := range v {
				e = e.Str(k, s)
			}
		case user.User:
			e = e.Str("user_id", v.ID).Str("user_role", v.Role)
		case *user.User:
			if v != nil {
				e = e.Str("user_id", v.ID).Str("user_role", v.Role)
			}
		default:
			e = e.Interface("extra", v)
		}
	}
	e.Msg(msg)
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.event(l.zl.Debug(), msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.event(l.zl.Info(), msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.event(l.zl.Warn(), msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.event(l.zl.Error(), msg, args) }

// Fatal logs then exits.
func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.event(l.zl.WithLevel(zerolog.FatalLevel), msg, args)
	os.Exit(1)
}
