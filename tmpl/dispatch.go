package tmpl

import (
	"context"
	"log/slog"
	"maps"
	"strconv"

	"github.com/ardnew/stamp/log"
)

// Binding is a directive bound to a value during expansion.
type Binding struct {
	Directive Directive
	// Path is the key the directive looks up in its data object.
	Path string
	// Namespace is the namespace path of the enclosing expansion.
	Namespace string
	// Body is the block body. It is empty for variable references.
	Body string
	// Value is the value found under Path.
	Value any
}

// Key returns the namespace path of the bound value.
func (b Binding) Key() string { return JoinPath(b.Namespace, b.Path) }

// LogValue implements slog.LogValuer.
func (b Binding) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("directive", b.Directive.String()),
		slog.String("key", b.Key()),
		slog.String("kind", Classify(b.Value).String()),
	)
}

// Renderer is the expansion state handed to a [Strategy].
type Renderer interface {
	// Expand expands a template body against data one level deeper, using
	// namespace as its namespace path.
	Expand(body string, data any, namespace string) (string, error)
	// Rebind renders b again as if its path held v.
	Rebind(b Binding, v any) (string, error)
	// Defer binds a placeholder to b and returns it. The placeholder settles
	// with the output of Rebind once d settles.
	Defer(b Binding, d Deferred) (string, error)
	// Context returns the context of the expansion.
	Context() context.Context
	// Logger returns the logger of the expansion.
	Logger() log.Logger
}

// Strategy renders an iteration block for one [Kind] of bound value.
type Strategy interface {
	Render(r Renderer, b Binding) (string, error)
}

// StrategyFunc adapts a function to a [Strategy].
type StrategyFunc func(r Renderer, b Binding) (string, error)

// Render calls f.
func (f StrategyFunc) Render(r Renderer, b Binding) (string, error) { return f(r, b) }

// SequenceStrategy expands the block body once per element, in index order,
// with the element's index appended to the namespace path.
var SequenceStrategy = StrategyFunc(func(r Renderer, b Binding) (string, error) {
	var out []byte

	for i, elem := range Elements(b.Value) {
		s, err := r.Expand(b.Body, elem, JoinPath(b.Key(), strconv.Itoa(i)))
		if err != nil {
			return "", err
		}

		out = append(out, s...)
	}

	return string(out), nil
})

// DeferredStrategy returns a placeholder for the block immediately and
// renders it again once its value settles.
var DeferredStrategy = StrategyFunc(func(r Renderer, b Binding) (string, error) {
	d, ok := b.Value.(Deferred)
	if !ok {
		return "", ErrUnhandledKind.With(slog.Any("binding", b))
	}

	return r.Defer(b, d)
})

// SkipStrategy renders nothing. Registering it for [KindAbsent] makes
// iteration over a missing key produce no output instead of failing.
var SkipStrategy = StrategyFunc(func(Renderer, Binding) (string, error) {
	return "", nil
})

// Dispatcher selects the [Strategy] used to render an iteration block by the
// [Kind] of its bound value.
type Dispatcher struct {
	handles map[Kind]Strategy
}

// NewDispatcher returns a Dispatcher with the built-in strategies for
// [KindSequence] and [KindDeferred].
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handles: map[Kind]Strategy{
			KindSequence: SequenceStrategy,
			KindDeferred: DeferredStrategy,
		},
	}
}

// Handle registers s for kind, replacing any previous strategy.
// A nil strategy removes the registration.
func (d *Dispatcher) Handle(kind Kind, s Strategy) {
	if s == nil {
		delete(d.handles, kind)

		return
	}

	d.handles[kind] = s
}

// Dispatch renders b with the strategy registered for kind.
func (d *Dispatcher) Dispatch(kind Kind, r Renderer, b Binding) (string, error) {
	s, ok := d.handles[kind]
	if !ok {
		return "", ErrUnhandledKind.With(
			slog.String("kind", kind.String()),
			slog.String("key", b.Key()),
		)
	}

	return s.Render(r, b)
}

// Clone returns a copy of d that can be changed independently.
func (d *Dispatcher) Clone() *Dispatcher {
	return &Dispatcher{handles: maps.Clone(d.handles)}
}
