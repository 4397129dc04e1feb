package cli

import (
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func TestResolve(t *testing.T) {
	src := `
log-level: debug
log_format: json
log-pretty: false
max-depth: 12
path: [a, b]
`

	res, err := resolve(strings.NewReader(src))
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}

	tests := []struct {
		flag string
		want any
	}{
		{"log-level", "debug"},
		{"log-format", "json"},
		{"log-pretty", false},
		{"max-depth", "12"},
		{"path", "a,b"},
		{"missing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			flag := &kong.Flag{Value: &kong.Value{Name: tt.flag}}

			got, err := res.Resolve(nil, nil, flag)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}

			if got != tt.want {
				t.Errorf("Resolve(%s) = %#v, want %#v", tt.flag, got, tt.want)
			}
		})
	}
}

func TestResolve_Invalid(t *testing.T) {
	for name, src := range map[string]string{
		"sequence": "- a\n- b\n",
		"empty":    "",
		"garbage":  "a: [b\n",
	} {
		t.Run(name, func(t *testing.T) {
			res, err := resolve(strings.NewReader(src))
			if err != nil {
				t.Fatalf("resolve() error = %v", err)
			}

			flag := &kong.Flag{Value: &kong.Value{Name: "a"}}

			if got, _ := res.Resolve(nil, nil, flag); got != nil {
				t.Errorf("Resolve() = %#v, want nil", got)
			}
		})
	}
}

func TestResolve_Kong(t *testing.T) {
	var cli struct {
		Level string   `default:"info"`
		Depth int      `default:"1"`
		Path  []string ``
	}

	parser, err := kong.New(&cli,
		kong.Resolvers(config{"level": "warn", "depth": "7", "path": "x,y"}))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse([]string{"--depth=3"}); err != nil {
		t.Fatal(err)
	}

	if cli.Level != "warn" || cli.Depth != 3 || strings.Join(cli.Path, " ") != "x y" {
		t.Errorf("parsed %+v, want level=warn depth=3 path=[x y]", cli)
	}
}
