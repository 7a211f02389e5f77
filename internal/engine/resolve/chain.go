// Package resolve extracts normalized fields from raw upstream documents
// through ordered fallback chains.
//
// Each logical field has a chain of extractors, highest priority first. The
// first extractor that yields wins and the rest are never invoked, so values
// are never merged across sources. An extractor that panics while reading a
// deep optional path counts as declined.
package resolve

import (
	"log/slog"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

// DefaultStep is the step name reported when a chain falls back to its default.
const DefaultStep = "default"

// Step is one extractor in a chain.
type Step[S, T any] struct {
	Name string
	Fn   func(S) (T, bool)
}

// Chain is an ordered fallback sequence for one field.
type Chain[S, T any] struct {
	Field string
	Steps []Step[S, T]
	// Default produces the declared default; nil means the zero value.
	Default func(S) T
	// Quiet chains decline as a matter of course (boolean flags) and are not
	// reported as shape mismatches.
	Quiet bool
}

// Resolve evaluates steps in order and returns the first yielded value with
// the yielding step's name. When every step declines it returns the default
// and DefaultStep, or the zero value and "" when the chain has no default.
func (c Chain[S, T]) Resolve(src S) (T, string) {
	for _, st := range c.Steps {
		if v, ok := try(st, src); ok {
			return v, st.Name
		}
	}
	if c.Default != nil {
		return c.Default(src), DefaultStep
	}
	if !c.Quiet {
		engine.IncrShapeMismatches()
		slog.Debug("resolve: shape mismatch", slog.String("field", c.Field))
	}
	var zero T
	return zero, ""
}

// Value is Resolve without the step name.
func (c Chain[S, T]) Value(src S) T {
	v, _ := c.Resolve(src)
	return v
}

// Ptr returns a pointer to the resolved value, or nil when nothing yielded
// and the chain has no default. Used for nullable output fields.
func (c Chain[S, T]) Ptr(src S) *T {
	v, step := c.Resolve(src)
	if step == "" {
		return nil
	}
	return &v
}

func try[S, T any](st Step[S, T], src S) (v T, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("resolve: extractor panicked", slog.String("step", st.Name), slog.Any("panic", r))
			var zero T
			v, ok = zero, false
		}
	}()
	return st.Fn(src)
}
