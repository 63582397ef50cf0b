package logging

import (
	"context"
	"log/slog"
)

// LevelFilter drops records below a minimum level before they reach the
// wrapped handler.
type LevelFilter struct {
	inner slog.Handler
	min   slog.Level
}

func NewLevelFilter(inner slog.Handler, min slog.Level) *LevelFilter {
	return &LevelFilter{inner: inner, min: min}
}

func (f *LevelFilter) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= f.min && f.inner.Enabled(ctx, level)
}

func (f *LevelFilter) Handle(ctx context.Context, record slog.Record) error {
	if record.Level < f.min {
		return nil
	}
	return f.inner.Handle(ctx, record)
}

func (f *LevelFilter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewLevelFilter(f.inner.WithAttrs(attrs), f.min)
}

func (f *LevelFilter) WithGroup(name string) slog.Handler {
	return NewLevelFilter(f.inner.WithGroup(name), f.min)
}
