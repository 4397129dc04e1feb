package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/stamp/log"
	"github.com/ardnew/stamp/pkg"
	"github.com/ardnew/stamp/tmpl"
)

// Check validates a template and reports references to keys absent from the
// data.
type Check struct {
	Template string   `arg:"" default:"-" help:"Template file, name in the search path, or '-' for stdin" optional:""`
	Data     []string `help:"Data file(s) merged in order (JSON, YAML, HCL)"    placeholder:"FILE"     short:"d" type:"existingfile"`
	Set      []string `help:"Assign the value of EXPR to KEY after loading data" placeholder:"KEY=EXPR" sep:"none" short:"s"`
	Strict   bool     `help:"Fail if any reference is missing from the data"`
}

// Issue is a directive whose bound key cannot be satisfied by the data.
type Issue struct {
	Node    tmpl.Node
	Key     string
	Reason  string
	Suggest string
}

// String formats the issue as "line:column: directive key: reason".
func (i Issue) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%d:%d: %s %s: %s",
		i.Node.Pos.Line, i.Node.Pos.Column, i.Node.Directive, i.Key, i.Reason)

	if i.Suggest != "" {
		fmt.Fprintf(&sb, " (did you mean %q?)", i.Suggest)
	}

	return sb.String()
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	text, err := loadTemplate(ctx, c.Template)
	if err != nil {
		return err
	}

	nodes, err := tmpl.Outline(text)
	if err != nil {
		return ErrExpand.With(slog.String("template", c.Template)).Wrap(err)
	}

	values, err := loadData(ctx, c.Data, c.Set)
	if err != nil {
		return err
	}

	issues := Inspect(nodes, values)

	_, out := stdioFrom(ctx)

	for _, issue := range issues {
		log.WarnContext(ctx, "unresolved reference",
			slog.String("key", issue.Key),
			slog.String("reason", issue.Reason),
			slog.Int("line", issue.Node.Pos.Line),
			slog.Int("column", issue.Node.Pos.Column),
		)

		if _, err := fmt.Fprintln(out, issue); err != nil {
			return pkg.ErrWriteOutput.Wrap(err)
		}
	}

	if c.Strict && len(issues) > 0 {
		return ErrMissingKeys.With(slog.Int("count", len(issues)))
	}

	return nil
}

// Inspect walks the outline of a template against data and returns the
// directives that would expand to nothing or fail: references and blocks
// bound to absent keys, and iteration over values that are not sequences.
// Values beneath a deferred value are not known until it settles and are not
// inspected. Each problem is reported once even when an iteration block
// repeats it for several elements.
func Inspect(nodes []tmpl.Node, data any) []Issue {
	var c checker

	c.walk(nodes, data, "")

	return c.issues
}

type checker struct {
	issues []Issue
	seen   map[string]bool
}

func (c *checker) walk(nodes []tmpl.Node, scope any, namespace string) {
	for _, n := range nodes {
		v := tmpl.Lookup(scope, n.Path)
		key := tmpl.JoinPath(namespace, n.Path)
		kind := tmpl.Classify(v)

		switch {
		case kind == tmpl.KindDeferred:
			continue

		case kind == tmpl.KindAbsent:
			c.report(n, key, "missing key", suggest(n.Path, scope))

			continue
		}

		switch n.Directive {
		case tmpl.Each:
			if kind != tmpl.KindSequence {
				c.report(n, key, "cannot iterate over "+kind.String(), "")

				continue
			}

			for i, e := range tmpl.Elements(v) {
				c.walk(n.Children, e, tmpl.JoinPath(key, strconv.Itoa(i)))
			}

		case tmpl.With:
			c.walk(n.Children, v, key)
		}
	}
}

// report records an issue unless one was already recorded for the same
// directive. Elements of an iteration share directives, so the key of the
// first element reported stands for the rest.
func (c *checker) report(n tmpl.Node, key, reason, suggestion string) {
	id := fmt.Sprintf("%d:%d", n.Pos.Line, n.Pos.Column)
	if c.seen[id] {
		return
	}

	if c.seen == nil {
		c.seen = make(map[string]bool)
	}

	c.seen[id] = true
	c.issues = append(c.issues, Issue{
		Node:    n,
		Key:     key,
		Reason:  reason,
		Suggest: suggestion,
	})
}

// suggest returns the key of scope that best matches path, or the empty
// string if none match.
func suggest(path string, scope any) string {
	m, ok := scope.(map[string]any)
	if !ok || len(m) == 0 {
		return ""
	}

	matches := fuzzy.Find(path, slices.Sorted(maps.Keys(m)))
	if len(matches) == 0 {
		return ""
	}

	return matches[0].Str
}
