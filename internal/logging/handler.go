package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// SwappableHandler wraps a slog.Handler that can be atomically replaced at runtime.
// Handlers derived with WithAttrs or WithGroup share the root and follow its swaps,
// so loggers handed out before Upgrade write to the upgraded outputs.
type SwappableHandler struct {
	root    *atomic.Pointer[slog.Handler]
	derive  []func(slog.Handler) slog.Handler
	derived atomic.Pointer[derivedHandler]
}

type derivedHandler struct {
	base    slog.Handler
	handler slog.Handler
}

// NewSwappableHandler creates a handler with an initial handler.
func NewSwappableHandler(initial slog.Handler) *SwappableHandler {
	root := new(atomic.Pointer[slog.Handler])
	root.Store(&initial)
	return &SwappableHandler{root: root}
}

// Swap atomically replaces the underlying handler of the root and every
// handler derived from it.
func (sh *SwappableHandler) Swap(newHandler slog.Handler) {
	sh.root.Store(&newHandler)
}

func (sh *SwappableHandler) current() slog.Handler {
	base := *sh.root.Load()
	if len(sh.derive) == 0 {
		return base
	}

	if d := sh.derived.Load(); d != nil && d.base == base {
		return d.handler
	}

	h := base
	for _, fn := range sh.derive {
		h = fn(h)
	}
	sh.derived.Store(&derivedHandler{base: base, handler: h})
	return h
}

func (sh *SwappableHandler) child(fn func(slog.Handler) slog.Handler) *SwappableHandler {
	derive := make([]func(slog.Handler) slog.Handler, len(sh.derive), len(sh.derive)+1)
	copy(derive, sh.derive)
	return &SwappableHandler{
		root:   sh.root,
		derive: append(derive, fn),
	}
}

// Enabled reports whether the handler handles records at the given level.
func (sh *SwappableHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return sh.current().Enabled(ctx, level)
}

// Handle handles the Record.
func (sh *SwappableHandler) Handle(ctx context.Context, r slog.Record) error {
	return sh.current().Handle(ctx, r)
}

// WithAttrs returns a SwappableHandler that adds attrs to the current handler.
func (sh *SwappableHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return sh.child(func(h slog.Handler) slog.Handler {
		return h.WithAttrs(attrs)
	})
}

// WithGroup returns a SwappableHandler that opens group name on the current handler.
func (sh *SwappableHandler) WithGroup(name string) slog.Handler {
	return sh.child(func(h slog.Handler) slog.Handler {
		return h.WithGroup(name)
	})
}
