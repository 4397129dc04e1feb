package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

type level string

// initCLI mirrors the shape of the application flags written by init.
type initCLI struct {
	Level   level         `default:"info"`
	Pretty  bool          `default:"true" negatable:""`
	Path    []string      `short:"I"`
	Timeout time.Duration `default:"30s"`
	Depth   int           `default:"100"`
	Empty   string
	Hidden  string        `default:"secret" hidden:""`

	Init Init `cmd:""`
}

func TestInitRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		force   bool
		exists  bool
		args    []string
		want    map[string]any
		wantErr error
	}{
		{
			name: "create_new_config",
			args: []string{"init"},
			want: map[string]any{
				"level":   "info",
				"pretty":  true,
				"timeout": "30s",
				"depth":   uint64(100),
			},
		},
		{
			name: "current_values",
			args: []string{"--level=debug", "--no-pretty", "-I", "a", "-I", "b", "--timeout=1m", "init"},
			want: map[string]any{
				"level":   "debug",
				"pretty":  false,
				"path":    []any{"a", "b"},
				"timeout": "1m0s",
				"depth":   uint64(100),
			},
		},
		{
			name:   "overwrite_existing_with_force",
			force:  true,
			exists: true,
			args:   []string{"init"},
			want: map[string]any{
				"level":   "info",
				"pretty":  true,
				"timeout": "30s",
				"depth":   uint64(100),
			},
		},
		{
			name:    "fail_without_force",
			exists:  true,
			args:    []string{"init"},
			wantErr: ErrFileExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			confPath := filepath.Join(t.TempDir(), "config.yaml")

			if tt.exists {
				if err := os.WriteFile(confPath, []byte("existing: true\n"), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			var cli initCLI

			parser, err := kong.New(&cli, kong.Vars{
				ConfigIdentifier: confPath,
			})
			if err != nil {
				t.Fatal(err)
			}

			ktx, err := parser.Parse(tt.args)
			if err != nil {
				t.Fatal(err)
			}

			ctx := WithContext(t.Context(), ktx)

			err = (&Init{Force: tt.force}).Run(ctx)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) || !errors.Is(err, ErrWriteConfig) {
					t.Fatalf("Init.Run() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Init.Run() error = %v", err)
			}

			content, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			var got map[string]any
			if err := yaml.Unmarshal(content, &got); err != nil {
				t.Fatalf("generated config is not valid YAML: %v\n%s", err, content)
			}

			if len(got) != len(tt.want) {
				t.Errorf("config keys = %v, want %v", got, tt.want)
			}

			for k, want := range tt.want {
				if !equalValue(got[k], want) {
					t.Errorf("config[%q] = %#v, want %#v", k, got[k], want)
				}
			}
		})
	}
}

func equalValue(a, b any) bool {
	as, aok := a.([]any)
	bs, bok := b.([]any)

	if aok != bok {
		return false
	}

	if !aok {
		return a == b
	}

	if len(as) != len(bs) {
		return false
	}

	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}

	return true
}

func TestConfigValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{name: "nil", in: nil, want: nil},
		{name: "empty_string", in: "", want: nil},
		{name: "named_string", in: level("warn"), want: "warn"},
		{name: "bool", in: false, want: false},
		{name: "int", in: 7, want: int64(7)},
		{name: "duration", in: 1500 * time.Millisecond, want: "1.5s"},
		{name: "empty_slice", in: []string{}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := configValue(tt.in); got != tt.want {
				t.Errorf("configValue(%#v) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}
