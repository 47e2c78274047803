package logger

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/getsentry/sentry-go"
)

// Attributes promoted to Sentry tags so events can be grouped by search and backend.
var sentryTagKeys = map[string]struct{}{
	"search_term":   {},
	"movie_id":      {},
	"counter_store": {},
	"query":         {},
	"component":     {},
}

// WrapWithSentry returns a logger that reports error logs to Sentry. Warnings
// become breadcrumbs, so a swallowed counter store failure shows up on the next
// reported error.
func WrapWithSentry(base *slog.Logger) *slog.Logger {
	if base == nil {
		return base
	}
	return slog.New(newSentryHandler(base.Handler(), sentry.CurrentHub()))
}

type sentryHandler struct {
	next  slog.Handler
	hub   *sentry.Hub
	attrs []slog.Attr
	group string
}

func newSentryHandler(next slog.Handler, hub *sentry.Hub) *sentryHandler {
	return &sentryHandler{next: next, hub: hub}
}

func (h *sentryHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *sentryHandler) Handle(ctx context.Context, record slog.Record) error {
	err := h.next.Handle(ctx, record)
	switch {
	case record.Level >= slog.LevelError:
		h.capture(record)
	case record.Level >= slog.LevelWarn:
		h.breadcrumb(record)
	}
	return err
}

func (h *sentryHandler) capture(record slog.Record) {
	ev := h.collect(record)
	if record.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{record.PC}).Next()
		if frame.PC != 0 {
			ev.extras["source.function"] = frame.Function
			ev.extras["source.location"] = fmt.Sprintf("%s:%d", frame.File, frame.Line)
		}
	}

	h.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelError)
		scope.SetTags(ev.tags)
		scope.SetExtras(ev.extras)
		if ev.err != nil {
			scope.SetExtra("message", record.Message)
			h.hub.CaptureException(ev.err)
			return
		}
		h.hub.CaptureMessage(record.Message)
	})
}

func (h *sentryHandler) breadcrumb(record slog.Record) {
	ev := h.collect(record)
	data := make(map[string]any, len(ev.extras)+len(ev.tags))
	for k, v := range ev.extras {
		data[k] = v
	}
	for k, v := range ev.tags {
		data[k] = v
	}
	h.hub.AddBreadcrumb(&sentry.Breadcrumb{
		Category:  "log",
		Level:     sentry.LevelWarning,
		Message:   record.Message,
		Data:      data,
		Timestamp: record.Time,
	}, nil)
}

type sentryEvent struct {
	tags   map[string]string
	extras map[string]any
	err    error
}

func (h *sentryHandler) collect(record slog.Record) sentryEvent {
	ev := sentryEvent{tags: map[string]string{}, extras: map[string]any{}}
	add := func(attr slog.Attr) {
		if attr.Key == "" {
			return
		}
		attr.Value = attr.Value.Resolve()
		if _, ok := sentryTagKeys[attr.Key]; ok && attr.Value.Kind() != slog.KindGroup {
			ev.tags[attr.Key] = attr.Value.String()
			return
		}
		ev.extras[attr.Key] = attrValue(attr.Value, &ev.err)
	}
	for _, attr := range h.attrs {
		add(attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		add(h.qualify(attr))
		return true
	})
	return ev
}

// qualify prefixes the key with the open groups.
func (h *sentryHandler) qualify(attr slog.Attr) slog.Attr {
	if h.group != "" && attr.Key != "" {
		attr.Key = h.group + "." + attr.Key
	}
	return attr
}

func (h *sentryHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	bound := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	bound = append(bound, h.attrs...)
	for _, attr := range attrs {
		bound = append(bound, h.qualify(attr))
	}
	return &sentryHandler{next: h.next.WithAttrs(attrs), hub: h.hub, attrs: bound, group: h.group}
}

func (h *sentryHandler) WithGroup(name string) slog.Handler {
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &sentryHandler{next: h.next.WithGroup(name), hub: h.hub, attrs: h.attrs, group: group}
}

func attrValue(value slog.Value, capturedErr *error) any {
	switch value.Kind() {
	case slog.KindAny:
		if err, ok := value.Any().(error); ok {
			if *capturedErr == nil {
				*capturedErr = err
			}
			return err.Error()
		}
		return value.Any()
	case slog.KindGroup:
		group := map[string]any{}
		for _, attr := range value.Group() {
			if attr.Key != "" {
				group[attr.Key] = attrValue(attr.Value.Resolve(), capturedErr)
			}
		}
		return group
	case slog.KindInt64:
		return value.Int64()
	case slog.KindFloat64:
		return value.Float64()
	case slog.KindBool:
		return value.Bool()
	default:
		return value.String()
	}
}
