package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/stamp/tmpl"
)

const outlineTemplate = "<h1>@title</h1>\n#each items\n<li>@name</li>\n/each"

type outlineNode struct {
	Directive string        `json:"directive" yaml:"directive"`
	Path      string        `json:"path"      yaml:"path"`
	Position  outlinePos    `json:"position"  yaml:"position"`
	Children  []outlineNode `json:"children"  yaml:"children"`
}

type outlinePos struct {
	Line   int `json:"line"   yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

func TestOutlineRun(t *testing.T) {
	tests := []struct {
		format    string
		unmarshal func([]byte, any) error
	}{
		{format: "yaml", unmarshal: yaml.Unmarshal},
		{format: "json", unmarshal: json.Unmarshal},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer

			ctx := WithStdio(t.Context(), strings.NewReader(outlineTemplate), &out)

			o := Outline{Template: "-", Format: tt.format}
			if err := o.Run(ctx); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			var nodes []outlineNode
			if err := tt.unmarshal(out.Bytes(), &nodes); err != nil {
				t.Fatalf("unmarshal %s: %v\n%s", tt.format, err, out.String())
			}

			if len(nodes) != 2 {
				t.Fatalf("got %d nodes, want 2:\n%s", len(nodes), out.String())
			}

			if n := nodes[0]; n.Directive != "ref" || n.Path != "title" {
				t.Errorf("nodes[0] = %+v", n)
			}

			each := nodes[1]
			if each.Directive != "each" || each.Path != "items" || each.Position.Line != 2 {
				t.Errorf("nodes[1] = %+v", each)
			}

			if len(each.Children) != 1 || each.Children[0].Path != "name" ||
				each.Children[0].Position.Line != 3 {
				t.Errorf("nodes[1].children = %+v", each.Children)
			}
		})
	}
}

func TestOutlineRun_Malformed(t *testing.T) {
	ctx := WithStdio(t.Context(), strings.NewReader("#with user\n#each x\n/with\n/each"), &bytes.Buffer{})

	o := Outline{Template: "-", Format: "yaml"}

	err := o.Run(ctx)
	if !errors.Is(err, tmpl.ErrMalformedDirective) {
		t.Fatalf("Run() error = %v, want %v", err, tmpl.ErrMalformedDirective)
	}
}

func TestMarshal_UnknownFormat(t *testing.T) {
	_, err := marshal([]tmpl.Node{}, "toml")
	if !errors.Is(err, ErrOutputFormat) {
		t.Errorf("marshal() error = %v, want %v", err, ErrOutputFormat)
	}
}
