package tmpl

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFuture_SettlesOnce(t *testing.T) {
	f := NewFuture[int]()

	select {
	case <-f.Done():
		t.Fatal("new future is already settled")
	default:
	}

	if !f.Resolve(1) {
		t.Fatal("first Resolve() = false")
	}

	if f.Resolve(2) || f.Reject(errors.New("late")) {
		t.Fatal("second settle reported success")
	}

	v, err := f.Result()
	if v != 1 || err != nil {
		t.Errorf("Result() = %v, %v, want 1, nil", v, err)
	}
}

func TestFuture_Rejected(t *testing.T) {
	boom := errors.New("boom")
	f := Rejected[string](boom)

	v, err := f.Value()
	if !errors.Is(err, boom) {
		t.Errorf("Value() error = %v, want %v", err, boom)
	}

	if v != "" {
		t.Errorf("Value() = %q, want zero value", v)
	}
}

func TestFuture_Await(t *testing.T) {
	t.Run("settled", func(t *testing.T) {
		v, err := Resolved("ok").Await(t.Context())
		if v != "ok" || err != nil {
			t.Errorf("Await() = %q, %v", v, err)
		}
	})

	t.Run("context ends first", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
		defer cancel()

		_, err := NewFuture[string]().Await(ctx)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Await() error = %v, want deadline exceeded", err)
		}
	})
}

func TestGo(t *testing.T) {
	ok := Go(t.Context(), func(context.Context) (int, error) { return 7, nil })
	if v, err := ok.Result(); v != 7 || err != nil {
		t.Errorf("Result() = %v, %v, want 7, nil", v, err)
	}

	boom := errors.New("boom")
	bad := Go(t.Context(), func(context.Context) (int, error) { return 0, boom })

	if _, err := bad.Result(); !errors.Is(err, boom) {
		t.Errorf("Result() error = %v, want %v", err, boom)
	}
}

func TestFuture_IsDeferred(t *testing.T) {
	var d Deferred = Resolved[any]("x")

	v, err := await(t.Context(), d)
	if v != "x" || err != nil {
		t.Errorf("await() = %v, %v", v, err)
	}
}
