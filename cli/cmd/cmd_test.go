package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/stamp/data"
	"github.com/ardnew/stamp/pkg"
	"github.com/ardnew/stamp/tmpl"
)

// writeFile creates a file named name in dir with the given content and
// returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestLoadTemplate(t *testing.T) {
	dir := t.TempDir()
	lib := t.TempDir()

	direct := writeFile(t, dir, "page.html", "<p>direct</p>")
	writeFile(t, lib, "card.html", "<p>searched</p>")
	writeFile(t, lib, "partials/row.html", "<tr></tr>")

	tests := []struct {
		name     string
		template string
		stdin    string
		want     string
		wantErr  error
	}{
		{
			name:     "existing_path",
			template: direct,
			want:     "<p>direct</p>",
		},
		{
			name:     "search_path",
			template: "card.html",
			want:     "<p>searched</p>",
		},
		{
			name:     "search_path_subdir",
			template: "partials/row.html",
			want:     "<tr></tr>",
		},
		{
			name:     "stdin",
			template: "-",
			stdin:    "<p>piped</p>",
			want:     "<p>piped</p>",
		},
		{
			name:     "not_found",
			template: "missing.html",
			wantErr:  pkg.ErrTemplateNotFound,
		},
		{
			name:     "absolute_not_searched",
			template: filepath.Join(string(filepath.Separator), "card.html"),
			wantErr:  pkg.ErrTemplateNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := WithSearchPath(t.Context(), []string{t.TempDir(), lib})
			ctx = WithStdio(ctx, strings.NewReader(tt.stdin), &bytes.Buffer{})

			got, err := loadTemplate(ctx, tt.template)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("loadTemplate() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("loadTemplate() error = %v", err)
			}

			if got != tt.want {
				t.Errorf("loadTemplate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUniqueFiles(t *testing.T) {
	dir := t.TempDir()

	a := writeFile(t, dir, "a.yaml", "a: 1")
	b := writeFile(t, dir, "b.yaml", "b: 2")

	link := filepath.Join(dir, "link.yaml")
	if err := os.Symlink(a, link); err != nil {
		t.Skipf("symlink: %v", err)
	}

	missing := filepath.Join(dir, "missing.yaml")

	got := uniqueFiles([]string{a, b, link, a, missing, missing})
	want := []string{a, b, missing, missing}

	if !slices.Equal(got, want) {
		t.Errorf("uniqueFiles() = %q, want %q", got, want)
	}
}

func TestLoadData(t *testing.T) {
	dir := t.TempDir()

	base := writeFile(t, dir, "base.yaml", "title: Base\nitems: [a, b]\n")
	over := writeFile(t, dir, "over.json", `{"title": "Over", "count": 2}`)
	writeFile(t, dir, "bio.txt", "hello")
	lazy := writeFile(t, dir, "lazy.yaml", "bio:\n  $file: bio.txt\n")
	list := writeFile(t, dir, "list.json", `[1, 2]`)

	t.Run("merge_in_order", func(t *testing.T) {
		got, err := loadData(t.Context(), []string{base, over}, nil)
		if err != nil {
			t.Fatalf("loadData() error = %v", err)
		}

		if got["title"] != "Over" || got["count"] != float64(2) {
			t.Errorf("loadData() = %v", got)
		}

		if items, ok := got["items"].([]any); !ok || len(items) != 2 {
			t.Errorf("items = %#v", got["items"])
		}
	})

	t.Run("set", func(t *testing.T) {
		got, err := loadData(t.Context(), []string{over},
			[]string{"total=count * 10", "meta.title=title + '!'"})
		if err != nil {
			t.Fatalf("loadData() error = %v", err)
		}

		if got["total"] != float64(20) {
			t.Errorf("total = %#v, want 20", got["total"])
		}

		meta, _ := got["meta"].(map[string]any)
		if meta["title"] != "Over!" {
			t.Errorf("meta = %#v", got["meta"])
		}
	})

	t.Run("deferred_file", func(t *testing.T) {
		got, err := loadData(t.Context(), []string{lazy}, nil)
		if err != nil {
			t.Fatalf("loadData() error = %v", err)
		}

		if k := tmpl.Classify(got["bio"]); k != tmpl.KindDeferred {
			t.Fatalf("Classify(bio) = %v, want deferred", k)
		}

		bio, ok := got["bio"].(*tmpl.Future[any])
		if !ok {
			t.Fatalf("bio = %T, want *tmpl.Future[any]", got["bio"])
		}

		v, err := bio.Await(t.Context())
		if err != nil {
			t.Fatalf("Await() error = %v", err)
		}

		if v != "hello" {
			t.Errorf("bio = %#v, want %q", v, "hello")
		}
	})

	t.Run("not_mapping", func(t *testing.T) {
		_, err := loadData(t.Context(), []string{list}, nil)
		if !errors.Is(err, ErrLoadData) || !errors.Is(err, data.ErrDecode) {
			t.Errorf("loadData() error = %v, want %v and %v", err, ErrLoadData, data.ErrDecode)
		}
	})

	t.Run("bad_assignment", func(t *testing.T) {
		_, err := loadData(t.Context(), []string{base}, []string{"novalue"})
		if !errors.Is(err, data.ErrInvalidAssignment) {
			t.Errorf("loadData() error = %v, want %v", err, data.ErrInvalidAssignment)
		}
	})
}
