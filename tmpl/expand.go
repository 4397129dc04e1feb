package tmpl

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ardnew/stamp/log"
)

// DefaultMaxDepth is the default maximum nesting depth of block expansion.
const DefaultMaxDepth = 100

// Expander expands templates. An Expander is safe for concurrent use; each
// call to [Expander.Expand] gets its own registry and dispatch table.
type Expander struct {
	logger   log.Logger
	maxDepth int
	dispatch *Dispatcher
}

// Option configures an [Expander].
type Option func(*Expander)

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(x *Expander) {
		x.logger = logger
	}
}

// WithMaxDepth sets the maximum nesting depth of block expansion.
func WithMaxDepth(depth int) Option {
	return func(x *Expander) {
		x.maxDepth = depth
	}
}

// WithStrategy registers s to render iteration blocks bound to values of the
// given kind. A nil strategy removes the registration.
func WithStrategy(kind Kind, s Strategy) Option {
	return func(x *Expander) {
		x.dispatch.Handle(kind, s)
	}
}

// New returns an Expander configured with opts.
func New(opts ...Option) *Expander {
	x := &Expander{
		maxDepth: DefaultMaxDepth,
		dispatch: NewDispatcher(),
	}

	for _, opt := range opts {
		opt(x)
	}

	return x
}

// defaultExpander serves the package-level functions.
//
//nolint:gochecknoglobals
var defaultExpander = New()

// Expand expands template against data with a default [Expander].
func Expand(ctx context.Context, template string, data any) (*Fragment, error) {
	return defaultExpander.Expand(ctx, template, data)
}

// Expand expands template against data and parses the result into a
// [Fragment].
//
// Expand does not wait for deferred values. Each one is represented by an
// empty region of the fragment that is filled in when the value settles;
// use [Fragment.Wait] to block until all have settled. Cancelling ctx stops
// every continuation that has not settled yet.
//
// Malformed directives and values with no registered strategy fail the whole
// expansion.
func (x *Expander) Expand(ctx context.Context, template string, data any) (*Fragment, error) {
	ctx, cancel := context.WithCancelCause(ctx)

	r := x.start(ctx)

	text, err := r.expand(template, data, "")
	if err != nil {
		cancel(err)

		return nil, err
	}

	x.logger.TraceContext(ctx, "expand complete",
		slog.Int("length", len(text)),
		slog.Int("bindings", r.registry.Len()),
	)

	frag, err := newFragment(r.run, text, cancel)
	if err != nil {
		cancel(err)

		return nil, err
	}

	return frag, nil
}

// Text expands template against data and returns the expanded markup without
// parsing it. Deferred values are represented by placeholder tokens that
// stand for the keys bound in the returned [Registry].
func (x *Expander) Text(ctx context.Context, template string, data any) (string, *Registry, error) {
	r := x.start(ctx)

	text, err := r.expand(template, data, "")
	if err != nil {
		return "", nil, err
	}

	return text, r.registry, nil
}

func (x *Expander) start(ctx context.Context) frame {
	return frame{
		run: &run{
			ctx:      ctx,
			logger:   x.logger,
			maxDepth: x.maxDepth,
			dispatch: x.dispatch.Clone(),
			registry: NewRegistry(x.logger),
			marker:   newMarker(),
		},
	}
}

// run is the state shared by every level of one top-level expansion and by
// the continuations it starts.
type run struct {
	ctx      context.Context
	logger   log.Logger
	maxDepth int
	dispatch *Dispatcher
	registry *Registry
	marker   marker
}

// frame is one nesting level of an expansion. It implements [Renderer].
type frame struct {
	*run
	depth     int
	namespace string
}

func (f frame) Context() context.Context { return f.ctx }

func (f frame) Logger() log.Logger { return f.logger }

func (f frame) Expand(body string, data any, namespace string) (string, error) {
	if f.depth+1 > f.maxDepth {
		return "", ErrMaxDepthExceeded.With(
			slog.Int("depth", f.depth+1),
			slog.Int("max_depth", f.maxDepth),
			slog.String("namespace", namespace),
		)
	}

	child := f
	child.depth++

	return child.expand(body, data, namespace)
}

func (f frame) Rebind(b Binding, v any) (string, error) {
	b.Value = v

	return f.render(b)
}

func (f frame) Defer(b Binding, d Deferred) (string, error) {
	chained := NewFuture[string]()
	key := f.registry.Bind(b.Key(), chained)

	f.logger.TraceContext(f.ctx, "deferred bound",
		slog.String("key", key),
		slog.String("directive", b.Directive.String()),
	)

	go func() {
		v, err := await(f.ctx, d)

		switch {
		case err != nil && f.ctx.Err() != nil:
			chained.Reject(err)

			return

		case err != nil:
			err = ErrDeferredRejected.Wrap(err).With(slog.String("key", key))
			f.logger.ErrorContext(f.ctx, "deferred rejected", slog.Any("error", err))
			chained.Reject(err)

			return
		}

		out, err := f.Rebind(b, v)
		if err != nil {
			chained.Reject(WrapError(err).With(slog.String("key", key)))

			return
		}

		f.logger.TraceContext(f.ctx, "deferred settled",
			slog.String("key", key),
			slog.Int("length", len(out)),
		)

		chained.Resolve(out)
	}()

	return f.marker.token(key), nil
}

// expand runs the iteration, scope, and variable passes over template. Each
// pass rewrites only the segments the scanner assigned to it, so output of
// an earlier pass is never matched again by a later one.
func (f frame) expand(template string, data any, namespace string) (string, error) {
	segs, err := Scan(template)
	if err != nil {
		return "", err
	}

	f.namespace = namespace
	out := make([]string, len(segs))

	for _, pass := range []Directive{Each, With, Literal} {
		for i, seg := range segs {
			if seg.Directive != pass {
				continue
			}

			if pass == Literal {
				out[i], err = f.vars(seg.Text, data)
			} else {
				out[i], err = f.block(seg, data)
			}

			if err != nil {
				return "", err
			}
		}
	}

	return strings.Join(out, ""), nil
}

func (f frame) block(seg Segment, data any) (string, error) {
	blk, err := Extract(seg.Directive, seg.Text)
	if err != nil {
		return "", err
	}

	return f.render(Binding{
		Directive: blk.Directive,
		Path:      blk.Path,
		Namespace: f.namespace,
		Body:      blk.Body,
		Value:     Lookup(data, blk.Path),
	})
}

func (f frame) vars(text string, data any) (string, error) {
	var sb strings.Builder

	last := 0
	err := refs(text, func(start, end int) error {
		path := text[start+1 : end]

		s, err := f.render(Binding{
			Directive: Ref,
			Path:      path,
			Namespace: f.namespace,
			Value:     Lookup(data, path),
		})
		if err != nil {
			return err
		}

		sb.WriteString(text[last:start])
		sb.WriteString(s)
		last = end

		return nil
	})
	if err != nil {
		return "", err
	}

	sb.WriteString(text[last:])

	return sb.String(), nil
}

// render produces the output of a bound directive.
func (f frame) render(b Binding) (string, error) {
	kind := Classify(b.Value)

	switch b.Directive {
	case Each:
		f.logger.TraceContext(f.ctx, "dispatch", slog.Any("binding", b))

		return f.dispatch.Dispatch(kind, f, b)

	case With:
		if kind == KindDeferred {
			return f.dispatch.Dispatch(kind, f, b)
		}

		return f.Expand(b.Body, b.Value, b.Key())

	case Ref:
		if kind == KindDeferred {
			return f.dispatch.Dispatch(kind, f, b)
		}

		if !Truthy(b.Value) {
			return "", nil
		}

		return Stringify(b.Value), nil

	default:
		return "", ErrUnhandledKind.With(slog.String("directive", b.Directive.String()))
	}
}
