package cmd

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/stamp/pkg"
	"github.com/ardnew/stamp/tmpl"
)

// defaultIndent is the number of spaces used to indent generated YAML and
// JSON documents.
const defaultIndent = 2

// Outline prints the directive tree of a template.
type Outline struct {
	Template string `arg:"" default:"-" help:"Template file, name in the search path, or '-' for stdin" optional:""`
	Format   string `default:"yaml" enum:"yaml,json" help:"Output format" short:"f"`
}

// Run executes the outline command.
func (o *Outline) Run(ctx context.Context) error {
	text, err := loadTemplate(ctx, o.Template)
	if err != nil {
		return err
	}

	nodes, err := tmpl.Outline(text)
	if err != nil {
		return ErrExpand.With(slog.String("template", o.Template)).Wrap(err)
	}

	b, err := marshal(nodes, o.Format)
	if err != nil {
		return err
	}

	_, out := stdioFrom(ctx)

	if _, err := out.Write(b); err != nil {
		return pkg.ErrWriteOutput.Wrap(err)
	}

	return nil
}

// marshal encodes v in the named format, terminated by a newline.
func marshal(v any, format string) ([]byte, error) {
	switch format {
	case "yaml":
		b, err := yaml.MarshalWithOptions(v, yaml.Indent(defaultIndent))
		if err != nil {
			return nil, pkg.ErrYAMLMarshal.Wrap(err)
		}

		return b, nil

	case "json":
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, pkg.ErrJSONMarshal.Wrap(err)
		}

		return append(b, '\n'), nil

	default:
		return nil, ErrOutputFormat.With(slog.String("format", format))
	}
}
