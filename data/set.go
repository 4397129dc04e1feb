package data

import (
	"strings"

	"github.com/expr-lang/expr"
)

// ParseAssignment splits an override of the form key=expression.
func ParseAssignment(s string) (key, source string, err error) {
	key, source, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)

	if !ok || key == "" {
		return "", "", ErrInvalidAssignment.Wrapf("%q", s)
	}

	return key, source, nil
}

// Eval evaluates an expr-lang expression with the entries of env in scope.
func Eval(source string, env map[string]any) (any, error) {
	program, err := expr.Compile(source, expr.Env(env))
	if err != nil {
		return nil, ErrExprCompile.Wrapf("%q", source).Wrap(err)
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return nil, ErrExprEvaluate.Wrapf("%q", source).Wrap(err)
	}

	return out, nil
}

// Set evaluates source against data and stores the result under the dotted
// key, creating intermediate mappings as needed.
func Set(data map[string]any, key, source string) error {
	v, err := Eval(source, data)
	if err != nil {
		return err
	}

	path := strings.Split(key, ".")
	m := data

	for _, k := range path[:len(path)-1] {
		next, ok := m[k].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[k] = next
		}

		m = next
	}

	m[path[len(path)-1]] = v

	return nil
}
