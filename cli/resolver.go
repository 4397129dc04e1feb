package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolve is a [kong.ConfigurationLoader] that reads a YAML config file.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve, "/path/to/config.yaml")
//
// Top-level keys name flags. Keys may use hyphens as on the command line or
// underscores:
//
//	log-level: debug
//	log_format: json
//	path: [~/templates, /usr/share/stamp]
//	timeout: 10s
//
// Command-line flags override config file values. A file that does not
// decode to a mapping is ignored.
func resolve(r io.Reader) (kong.Resolver, error) {
	var values map[string]any

	if err := yaml.NewDecoder(r).Decode(&values); err != nil {
		return config{}, nil //nolint:nilerr
	}

	return config(values), nil
}

// config implements [kong.Resolver] for YAML configs.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (r config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	for _, name := range []string{
		flag.Name,
		strings.ReplaceAll(flag.Name, "-", "_"),
	} {
		if value, ok := r[name]; ok {
			return flagValue(value), nil
		}
	}

	return nil, nil
}

// flagValue converts a decoded YAML value to the form Kong parses. Numbers
// are passed as strings and sequences as comma-separated lists.
func flagValue(v any) any {
	switch v := v.(type) {
	case nil, bool, string:
		return v

	case []any:
		part := make([]string, len(v))
		for i, e := range v {
			part[i] = fmt.Sprint(e)
		}

		return strings.Join(part, ",")

	default:
		return fmt.Sprint(v)
	}
}
