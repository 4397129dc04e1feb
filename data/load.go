package data

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/ardnew/stamp/log"
	"github.com/ardnew/stamp/pkg"
)

// Format identifies the encoding of a data file.
type Format int

const (
	// FormatText is any file without a structured encoding; it loads as a
	// string.
	FormatText Format = iota
	FormatJSON
	FormatYAML
	FormatHCL
)

//nolint:gochecknoglobals
var formatName = map[Format]string{
	FormatText: "text",
	FormatJSON: "json",
	FormatYAML: "yaml",
	FormatHCL:  "hcl",
}

//nolint:gochecknoglobals
var formatExt = map[string]Format{
	".json": FormatJSON,
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".hcl":  FormatHCL,
}

// String returns the lowercase name of the format.
func (f Format) String() string {
	if s, ok := formatName[f]; ok {
		return s
	}

	return fmt.Sprintf("format(%d)", int(f))
}

// Formats returns the names of all formats in sorted order.
func Formats() []string {
	return slices.Sorted(maps.Values(formatName))
}

// ParseFormat returns the Format with the given name.
func ParseFormat(s string) (Format, error) {
	for f, name := range formatName {
		if strings.EqualFold(s, name) {
			return f, nil
		}
	}

	return FormatText, ErrUnsupportedFormat.Wrapf(
		"%q (valid: %s)", s, strings.Join(Formats(), ", "),
	)
}

// FormatOf returns the Format implied by the extension of path.
func FormatOf(path string) Format {
	return formatExt[strings.ToLower(filepath.Ext(path))]
}

// Load reads and decodes the file at path. Structured formats must decode to
// a mapping; text files load as a string.
func Load(ctx context.Context, path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkg.ErrReadInput.Wrapf("file %q", path).Wrap(err)
	}
	defer f.Close()

	format := FormatOf(path)

	log.TraceContext(ctx, "load data",
		slog.String("path", path),
		slog.String("format", format.String()),
	)

	if format == FormatText {
		b, err := io.ReadAll(f)
		if err != nil {
			return nil, pkg.ErrReadInput.Wrapf("file %q", path).Wrap(err)
		}

		return string(b), nil
	}

	return Decode(f, format, path)
}

// LoadAll loads each path in order and merges the results, later files
// overriding earlier ones. Every file must hold a mapping.
func LoadAll(ctx context.Context, paths ...string) (map[string]any, error) {
	out := make(map[string]any)

	for _, path := range paths {
		v, err := Load(ctx, path)
		if err != nil {
			return nil, err
		}

		m, ok := v.(map[string]any)
		if !ok {
			return nil, ErrDecode.Wrapf("file %q: not a mapping", path)
		}

		Merge(out, m)
	}

	return out, nil
}

// Decode decodes a mapping in the given format from r. The name identifies
// the source in errors and in HCL diagnostics.
func Decode(r io.Reader, format Format, name string) (map[string]any, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, pkg.ErrReadInput.Wrapf("file %q", name).Wrap(err)
	}

	var out map[string]any

	switch format {
	case FormatJSON:
		err = json.Unmarshal(src, &out)

	case FormatYAML:
		err = yaml.Unmarshal(src, &out)

	case FormatHCL:
		out, err = decodeHCL(src, name)

	default:
		return nil, ErrUnsupportedFormat.Wrapf("%s", format)
	}

	if err != nil {
		return nil, ErrDecode.Wrapf("file %q", name).Wrap(err)
	}

	if out == nil {
		out = make(map[string]any)
	}

	return out, nil
}

// decodeHCL evaluates the top-level attributes of an HCL body without any
// variables or functions in scope.
func decodeHCL(src []byte, name string) (map[string]any, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, name)
	if diags.HasErrors() {
		return nil, diags
	}

	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}

	out := make(map[string]any, len(attrs))

	for key, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}

		v, err := ctyToNative(val)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", key, err)
		}

		out[key] = v
	}

	return out, nil
}

// ctyToNative converts a cty value to plain Go values: strings, float64,
// bool, []any, and map[string]any.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()

	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, err
		}

		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())

		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()

			n, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}

			out = append(out, n)
		}

		return out, nil

	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, v.LengthInt())

		for it := v.ElementIterator(); it.Next(); {
			key, elem := it.Element()

			n, err := ctyToNative(elem)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key.AsString(), err)
			}

			out[key.AsString()] = n
		}

		return out, nil

	default:
		return nil, fmt.Errorf("unsupported type %s", ty.FriendlyName())
	}
}

// Merge copies the entries of each src into dst in order, so later sources
// override earlier ones, and returns dst. A nil dst is allocated.
func Merge(dst map[string]any, srcs ...map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any)
	}

	for _, src := range srcs {
		maps.Copy(dst, src)
	}

	return dst
}
