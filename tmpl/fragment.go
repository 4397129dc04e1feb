package tmpl

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/sync/errgroup"

	"github.com/ardnew/stamp/log"
)

// Fragment is the parsed result of a top-level expansion. Its body keeps
// changing after [Expander.Expand] returns, as deferred values settle and
// their content is appended in place of their placeholders.
//
// All methods are safe for concurrent use.
type Fragment struct {
	mu   sync.Mutex
	doc  *html.Node
	body *html.Node

	ctx      context.Context
	cancel   context.CancelCauseFunc
	logger   log.Logger
	registry *Registry
	marker   marker

	group   errgroup.Group
	pending atomic.Int64
	changed chan struct{}
	done    chan struct{}
	err     error
}

func newFragment(r *run, text string, cancel context.CancelCauseFunc) (*Fragment, error) {
	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return nil, ErrParseMarkup.Wrap(err)
	}

	body := findElement(doc, atom.Body)
	if body == nil {
		return nil, ErrParseMarkup.With(slog.String("reason", "document has no body"))
	}

	f := &Fragment{
		doc:      doc,
		body:     body,
		ctx:      r.ctx,
		cancel:   cancel,
		logger:   r.logger,
		registry: r.registry,
		marker:   r.marker,
		changed:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}

	f.mu.Lock()
	err = f.reconcile(body)
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}

	go f.join()

	return f, nil
}

// findElement returns the first element of type a in depth-first order.
func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}

	return nil
}

func (f *Fragment) join() {
	err := f.group.Wait()

	f.mu.Lock()
	f.err = err
	f.mu.Unlock()

	close(f.done)
	f.cancel(err)

	f.logger.TraceContext(f.ctx, "fragment settled", slog.Any("error", err))
}

// Body returns the body element of the parsed document. The tree is mutated
// by settling placeholders; use [Fragment.Inspect] to read it safely while
// any are pending.
func (f *Fragment) Body() *html.Node { return f.body }

// Inspect calls fn with the body element while holding the fragment lock.
func (f *Fragment) Inspect(fn func(body *html.Node)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fn(f.body)
}

// Render writes the markup of the body's children to w.
func (f *Fragment) Render(w io.Writer) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for c := f.body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(w, c); err != nil {
			return err
		}
	}

	return nil
}

// String returns the markup of the body's children.
func (f *Fragment) String() string {
	var sb strings.Builder

	_ = f.Render(&sb)

	return sb.String()
}

// Pending returns the number of placeholders that have not settled.
func (f *Fragment) Pending() int { return int(f.pending.Load()) }

// Keys returns the binding keys of every deferred value in the expansion.
func (f *Fragment) Keys() []string { return f.registry.Keys() }

// Registry returns the registry of the expansion.
func (f *Fragment) Registry() *Registry { return f.registry }

// Changed returns a channel that receives after placeholders settle.
// Notifications are coalesced: one receive may stand for several changes.
func (f *Fragment) Changed() <-chan struct{} { return f.changed }

// Done returns a channel that is closed once every placeholder has settled
// or failed.
func (f *Fragment) Done() <-chan struct{} { return f.done }

// Err returns the first failure among settled placeholders, once Done is
// closed.
func (f *Fragment) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.err
}

// Wait blocks until every placeholder has settled or failed, or until ctx
// ends. It returns the first placeholder failure, or the cause of ctx.
func (f *Fragment) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.Err()
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

// Cancel stops every placeholder that has not settled yet.
func (f *Fragment) Cancel() { f.cancel(context.Canceled) }

func (f *Fragment) notify() {
	select {
	case f.changed <- struct{}{}:
	default:
	}
}
