// Package logger implements a logging adapter using log/slog.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"go.trai.ch/nixster/internal/ui/output"
	"go.trai.ch/nixster/internal/ui/style"
)

// sink is the destination shared by a handler and every handler derived from it.
// Catalog refreshes and session pumps log from several goroutines at once.
type sink struct {
	mu  sync.Mutex
	out *termenv.Output
}

func (s *sink) writeLine(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.out.WriteString(line + "\n")
	return err
}

// PrettyHandler is a slog.Handler that writes one colored line per record:
// an icon for the level, the message, then key=value attributes.
type PrettyHandler struct {
	sink  *sink
	level slog.Leveler
	// preformatted holds the rendered attributes added with WithAttrs.
	preformatted []string
	group        string
}

// NewPrettyHandler creates a new PrettyHandler writing to w, or to stderr when w is nil.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &PrettyHandler{
		sink:  &sink{out: output.New(w)},
		level: level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and outputs the log record.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	icon, color := levelStyle(r.Level)

	var b strings.Builder
	if icon != "" {
		b.WriteString(icon + " ")
	}
	b.WriteString(r.Message)
	for _, attr := range h.preformatted {
		b.WriteString(" " + attr)
	}
	r.Attrs(func(attr slog.Attr) bool {
		b.WriteString(" " + formatAttr(h.group, attr))
		return true
	})

	return h.sink.writeLine(h.sink.out.String(b.String()).Foreground(color).String())
}

func levelStyle(level slog.Level) (string, termenv.Color) {
	switch {
	case level >= slog.LevelError:
		return style.Cross, termenv.RGBColor(string(style.Red))
	case level >= slog.LevelWarn:
		return style.Warning, termenv.RGBColor(string(style.Yellow))
	case level < slog.LevelInfo:
		return style.Dot, termenv.RGBColor(string(style.Iris))
	default:
		return "", termenv.RGBColor(string(style.Slate))
	}
}

// WithAttrs returns a new Handler with the given attributes rendered once up front.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.preformatted = make([]string, len(h.preformatted), len(h.preformatted)+len(attrs))
	copy(clone.preformatted, h.preformatted)
	for _, attr := range attrs {
		clone.preformatted = append(clone.preformatted, formatAttr(h.group, attr))
	}
	return &clone
}

// WithGroup returns a new Handler that prefixes later attribute keys with name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if h.group != "" {
		clone.group = h.group + "." + name
	} else {
		clone.group = name
	}
	return &clone
}

func formatAttr(group string, attr slog.Attr) string {
	key := attr.Key
	if group != "" {
		key = group + "." + key
	}
	value := attr.Value.Resolve().String()
	if value == "" || strings.ContainsAny(value, " \t\n\"=") {
		value = strconv.Quote(value)
	}
	return key + "=" + value
}
