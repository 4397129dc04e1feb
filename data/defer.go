package data

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/ardnew/stamp/log"
	"github.com/ardnew/stamp/tmpl"
)

// Marker keys of a deferred source.
const (
	KeyFile   = "$file"
	KeyValue  = "$value"
	KeyDelay  = "$delay"
	KeyReject = "$reject"
)

// Resolve returns a copy of v with every marker mapping replaced by a
// *tmpl.Future[any]. Relative $file paths are joined to base.
//
// The futures start immediately and run until they settle or ctx ends.
func Resolve(ctx context.Context, base string, v any) (any, error) {
	switch x := v.(type) {
	case map[string]any:
		if isMarker(x) {
			return deferred(ctx, base, x)
		}

		out := make(map[string]any, len(x))

		for k, e := range x {
			r, err := Resolve(ctx, base, e)
			if err != nil {
				return nil, err
			}

			out[k] = r
		}

		return out, nil

	case []any:
		out := make([]any, len(x))

		for i, e := range x {
			r, err := Resolve(ctx, base, e)
			if err != nil {
				return nil, err
			}

			out[i] = r
		}

		return out, nil

	default:
		return v, nil
	}
}

func isMarker(m map[string]any) bool {
	for _, k := range []string{KeyFile, KeyValue, KeyDelay, KeyReject} {
		if _, ok := m[k]; ok {
			return true
		}
	}

	return false
}

func deferred(ctx context.Context, base string, m map[string]any) (*tmpl.Future[any], error) {
	delay, err := parseDelay(m[KeyDelay])
	if err != nil {
		return nil, err
	}

	var settle func(context.Context) (any, error)

	switch {
	case m[KeyReject] != nil:
		reason := tmpl.Stringify(m[KeyReject])
		settle = func(context.Context) (any, error) {
			return nil, ErrRejected.Wrap(errors.New(reason))
		}

	case m[KeyFile] != nil:
		path, ok := m[KeyFile].(string)
		if !ok || path == "" {
			return nil, ErrInvalidMarker.Wrapf("%s must be a file path", KeyFile)
		}

		if !filepath.IsAbs(path) {
			path = filepath.Join(base, path)
		}

		settle = func(ctx context.Context) (any, error) {
			v, err := Load(ctx, path)
			if err != nil {
				return nil, err
			}

			return Resolve(ctx, filepath.Dir(path), v)
		}

	default:
		value := m[KeyValue]
		settle = func(ctx context.Context) (any, error) {
			return Resolve(ctx, base, value)
		}
	}

	log.TraceContext(ctx, "deferred source",
		slog.Any("marker", m),
		slog.Duration("delay", delay),
	)

	return tmpl.Go(ctx, func(ctx context.Context) (any, error) {
		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}

		return settle(ctx)
	}), nil
}

// parseDelay accepts a duration string or a number of milliseconds.
func parseDelay(v any) (time.Duration, error) {
	switch d := v.(type) {
	case nil:
		return 0, nil
	case string:
		dur, err := time.ParseDuration(d)
		if err != nil {
			return 0, ErrInvalidDelay.Wrap(err)
		}

		return dur, nil
	case float64:
		return time.Duration(d * float64(time.Millisecond)), nil
	case uint64:
		return time.Duration(d) * time.Millisecond, nil
	case int64:
		return time.Duration(d) * time.Millisecond, nil
	case int:
		return time.Duration(d) * time.Millisecond, nil
	default:
		return 0, ErrInvalidDelay.Wrapf("%v", v)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}
