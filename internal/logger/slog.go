package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/rs/zerolog"
)

// bridge lets packages log through slog while lines are written by zerolog
// with the request, session, feed and component ids taken from the context.
type bridge struct {
	zl     *zerolog.Logger
	attrs  []slog.Attr
	prefix string // open groups, joined with "."
}

func NewSlog(zl *zerolog.Logger) *slog.Logger {
	if zl == nil {
		nop := zerolog.Nop()
		zl = &nop
	}
	return slog.New(&bridge{zl: zl})
}

func zerologLevel(l slog.Level) zerolog.Level {
	switch {
	case l < slog.LevelInfo:
		return zerolog.DebugLevel
	case l < slog.LevelWarn:
		return zerolog.InfoLevel
	case l < slog.LevelError:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

func (b *bridge) Enabled(_ context.Context, l slog.Level) bool {
	zlv := zerologLevel(l)
	return zlv >= b.zl.GetLevel() && zlv >= zerolog.GlobalLevel()
}

func (b *bridge) Handle(ctx context.Context, r slog.Record) error {
	ev := FromContext(ctx, b.zl).WithLevel(zerologLevel(r.Level))
	if ev == nil {
		return nil
	}
	for _, a := range b.attrs {
		ev = addAttr(ev, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		ev = addAttr(ev, b.prefix, a)
		return true
	})
	ev.Msg(r.Message)
	return nil
}

func (b *bridge) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := *b
	cp.attrs = make([]slog.Attr, 0, len(b.attrs)+len(attrs))
	cp.attrs = append(cp.attrs, b.attrs...)
	for _, a := range attrs {
		a.Key = b.prefix + a.Key
		cp.attrs = append(cp.attrs, a)
	}
	return &cp
}

func (b *bridge) WithGroup(name string) slog.Handler {
	if name == "" {
		return b
	}
	cp := *b
	cp.prefix = b.prefix + name + "."
	return &cp
}

func addAttr(ev *zerolog.Event, prefix string, a slog.Attr) *zerolog.Event {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return ev
	}
	key := prefix + a.Key
	switch a.Value.Kind() {
	case slog.KindGroup:
		p := prefix
		if a.Key != "" {
			p = key + "."
		}
		for _, ga := range a.Value.Group() {
			ev = addAttr(ev, p, ga)
		}
		return ev
	case slog.KindString:
		return ev.Str(key, a.Value.String())
	case slog.KindInt64:
		return ev.Int64(key, a.Value.Int64())
	case slog.KindUint64:
		return ev.Uint64(key, a.Value.Uint64())
	case slog.KindFloat64:
		return ev.Float64(key, a.Value.Float64())
	case slog.KindBool:
		return ev.Bool(key, a.Value.Bool())
	case slog.KindDuration:
		return ev.Dur(key, a.Value.Duration())
	case slog.KindTime:
		return ev.Str(key, a.Value.Time().Format(time.RFC3339Nano))
	}
	if err, ok := a.Value.Any().(error); ok {
		return ev.AnErr(key, err)
	}
	return ev.Interface(key, a.Value.Any())
}
