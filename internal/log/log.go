package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stdout)
)

func init() {
	zerolog.TimestampFieldName = "ts"
	zerolog.ErrorFieldName = "err"
	zerolog.TimeFieldFormat = time.RFC3339
}

func newLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

// SetOutput redirects every event to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w)
}

// Writer exposes the logger as an io.Writer so the standard library logger
// (used by fiber internals) ends up in the same stream.
func Writer() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	l := logger
	return l
}

func write(ev *zerolog.Event, c *fiber.Ctx, action string, err error, fields map[string]any) {
	ev = ev.Str("action", action)
	if c != nil {
		ev = ev.Str("ip", c.IP()).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode())
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			ev = ev.Str("req_id", rid)
		}
	}
	if err != nil {
		ev = ev.Err(err)
	}
	if len(fields) > 0 {
		ev = ev.Interface("fields", fields)
	}
	ev.Send()
}

func current() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	l := current()
	write(l.Info(), c, action, nil, fields)
}

func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	l := current()
	write(l.Log().Str("level", "audit"), c, action, nil, fields)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	l := current()
	write(l.Warn(), c, action, nil, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	l := current()
	write(l.Error(), c, action, err, fields)
}
