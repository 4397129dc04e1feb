package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/stamp/data"
	"github.com/ardnew/stamp/log"
	"github.com/ardnew/stamp/pkg"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	searchPathKey struct{}
	stdioKey      struct{}
	stdio         struct {
		in  io.Reader
		out io.Writer
	}
)

// WithSearchPath returns a new context.Context containing the directories
// searched for templates named on the command line.
func WithSearchPath(ctx context.Context, dirs []string) context.Context {
	return context.WithValue(ctx, searchPathKey{}, dirs)
}

func searchPathFrom(ctx context.Context) []string {
	dirs, _ := ctx.Value(searchPathKey{}).([]string)

	return dirs
}

// WithStdio returns a new context.Context whose commands read standard input
// from in and write results to out. Without it, commands use [os.Stdin] and
// [os.Stdout].
func WithStdio(ctx context.Context, in io.Reader, out io.Writer) context.Context {
	return context.WithValue(ctx, stdioKey{}, stdio{in: in, out: out})
}

func stdioFrom(ctx context.Context) (io.Reader, io.Writer) {
	s, ok := ctx.Value(stdioKey{}).(stdio)
	if !ok {
		return os.Stdin, os.Stdout
	}

	return s.in, s.out
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// loadTemplate returns the text of the named template.
//
// A name that is an existing file is read directly. Otherwise each directory
// of the search path is tried in order. "-" reads standard input.
func loadTemplate(ctx context.Context, name string) (string, error) {
	if name == stdinSource || name == "" {
		in, _ := stdioFrom(ctx)

		b, err := io.ReadAll(in)
		if err != nil {
			return "", pkg.ErrReadInput.Wrapf("stdin").Wrap(err)
		}

		return string(b), nil
	}

	path, ok := findTemplate(name, searchPathFrom(ctx))
	if !ok {
		return "", pkg.ErrTemplateNotFound.Wrapf("%q", name)
	}

	log.DebugContext(ctx, "load template", slog.String("path", path))

	b, err := os.ReadFile(path)
	if err != nil {
		return "", pkg.ErrReadInput.Wrapf("file %q", path).Wrap(err)
	}

	return string(b), nil
}

// findTemplate returns the first regular file named by name, either directly
// or beneath one of dirs. Absolute names are never searched.
func findTemplate(name string, dirs []string) (string, bool) {
	if isFile(name) {
		return name, true
	}

	if filepath.IsAbs(name) {
		return "", false
	}

	for _, dir := range dirs {
		if path := filepath.Join(dir, name); isFile(path) {
			return path, true
		}
	}

	return "", false
}

func isFile(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}

// loadData loads, resolves, and merges the data files in order, then applies
// each KEY=EXPR assignment in sets. Deferred markers in a file resolve
// relative to that file's directory.
func loadData(ctx context.Context, files, sets []string) (map[string]any, error) {
	out := make(map[string]any)

	for _, path := range uniqueFiles(files) {
		v, err := data.Load(ctx, path)
		if err != nil {
			return nil, ErrLoadData.Wrap(err)
		}

		m, ok := v.(map[string]any)
		if !ok {
			return nil, ErrLoadData.
				With(slog.String("file", path)).
				Wrap(data.ErrDecode.Wrapf("file %q: not a mapping", path))
		}

		r, err := data.Resolve(ctx, filepath.Dir(path), m)
		if err != nil {
			return nil, ErrLoadData.With(slog.String("file", path)).Wrap(err)
		}

		// A file that is itself a marker resolves to a single deferred value.
		resolved, ok := r.(map[string]any)
		if !ok {
			return nil, ErrLoadData.
				With(slog.String("file", path)).
				Wrap(data.ErrInvalidMarker.Wrapf("file %q: top-level marker", path))
		}

		data.Merge(out, resolved)
	}

	for _, s := range sets {
		key, source, err := data.ParseAssignment(s)
		if err != nil {
			return nil, ErrLoadData.Wrap(err)
		}

		if err := data.Set(out, key, source); err != nil {
			return nil, ErrLoadData.With(slog.String("key", key)).Wrap(err)
		}
	}

	return out, nil
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// uniqueFiles returns paths with later references to an already listed file
// removed. Paths that cannot be identified are kept so that loading them
// reports the error.
func uniqueFiles(paths []string) []string {
	seen := make(map[fileKey]struct{}, len(paths))
	out := make([]string, 0, len(paths))

	for _, path := range paths {
		key, ok := identify(path)
		if ok {
			if _, dup := seen[key]; dup {
				continue
			}

			seen[key] = struct{}{}
		}

		out = append(out, path)
	}

	return out
}

// identify resolves symlinks in path and returns the key of its target.
func identify(path string) (fileKey, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fileKey{}, false
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return fileKey{}, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return fileKey{}, false
	}

	return makeFileKey(info)
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}
