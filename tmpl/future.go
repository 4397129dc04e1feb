package tmpl

import (
	"context"
	"sync"
)

// Deferred is a value that is not available yet. Done is closed once the
// value settles; Value then reports the settled value or the reason it was
// rejected.
type Deferred interface {
	Done() <-chan struct{}
	Value() (any, error)
}

// Future is a [Deferred] that settles exactly once, either with a value of
// type T or with an error. The zero Future is not usable; create one with
// [NewFuture].
type Future[T any] struct {
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

// NewFuture returns an unsettled Future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved returns a Future already settled with v.
func Resolved[T any](v T) *Future[T] {
	f := NewFuture[T]()
	f.Resolve(v)

	return f
}

// Rejected returns a Future already settled with err.
func Rejected[T any](err error) *Future[T] {
	f := NewFuture[T]()
	f.Reject(err)

	return f
}

// Go returns a Future settled by the result of fn, which runs on its own
// goroutine.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := NewFuture[T]()

	go func() {
		v, err := fn(ctx)
		if err != nil {
			f.Reject(err)

			return
		}

		f.Resolve(v)
	}()

	return f
}

// Resolve settles f with v. It reports false if f had already settled.
func (f *Future[T]) Resolve(v T) bool {
	return f.settle(v, nil)
}

// Reject settles f with err. It reports false if f had already settled.
func (f *Future[T]) Reject(err error) bool {
	var zero T

	return f.settle(zero, err)
}

func (f *Future[T]) settle(v T, err error) (ok bool) {
	f.once.Do(func() {
		f.val, f.err = v, err
		ok = true

		close(f.done)
	})

	return ok
}

// Done returns a channel that is closed when f settles.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Value waits for f to settle and returns its value as an any.
func (f *Future[T]) Value() (any, error) {
	<-f.done

	return f.val, f.err
}

// Result waits for f to settle and returns its value.
func (f *Future[T]) Result() (T, error) {
	<-f.done

	return f.val, f.err
}

// Await waits for f to settle or ctx to end, whichever happens first.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T

		return zero, context.Cause(ctx)
	}
}

// await waits for any Deferred to settle or ctx to end.
func await(ctx context.Context, d Deferred) (any, error) {
	select {
	case <-d.Done():
		return d.Value()
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	}
}
