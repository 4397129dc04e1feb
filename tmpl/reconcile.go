package tmpl

import (
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// bindAttr records the binding keys of the placeholders an element held.
const bindAttr = "data-bind"

// reconcile walks n depth-first and schedules every placeholder it finds.
// Placeholders in text are removed immediately and their settled markup is
// later appended to the text's parent; placeholders in attribute values and
// comments are replaced in place. The caller holds f.mu.
func (f *Fragment) reconcile(n *html.Node) error {
	switch n.Type {
	case html.TextNode:
		if f.marker.contains(n.Data) {
			return f.splice(n)
		}

		return nil

	case html.CommentNode:
		if f.marker.contains(n.Data) {
			return f.annotate(n, n.Data)
		}

		return nil

	case html.ElementNode:
		for _, a := range n.Attr {
			if !f.marker.contains(a.Val) {
				continue
			}

			if err := f.inline(n, a.Namespace, a.Key, a.Val); err != nil {
				return err
			}
		}
	}

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling

		if err := f.reconcile(c); err != nil {
			return err
		}

		c = next
	}

	return nil
}

// splice replaces a text node holding placeholders with the literal text
// around them and schedules each placeholder's content.
func (f *Fragment) splice(n *html.Node) error {
	pieces := f.marker.split(n.Data)
	futs := make([]*Future[string], len(pieces))

	for i, p := range pieces {
		if p.key == "" {
			continue
		}

		fut, err := f.registry.Get(p.key)
		if err != nil {
			return err
		}

		futs[i] = fut
	}

	parent := n.Parent

	for i, p := range pieces {
		if p.key == "" {
			parent.InsertBefore(&html.Node{Type: html.TextNode, Data: p.text}, n)

			continue
		}

		addBinding(parent, p.key)
		f.settle(parent, p.key, futs[i])
	}

	parent.RemoveChild(n)

	return nil
}

// settle appends the markup fut resolves to as children of parent.
func (f *Fragment) settle(parent *html.Node, key string, fut *Future[string]) {
	f.schedule(key, func() error {
		out, err := fut.Await(f.ctx)
		if err != nil {
			return err
		}

		f.mu.Lock()
		defer f.mu.Unlock()

		nodes, err := html.ParseFragment(strings.NewReader(out), parent)
		if err != nil {
			return ErrParseMarkup.Wrap(err).With(slog.String("key", key))
		}

		for _, c := range nodes {
			parent.AppendChild(c)
		}

		for _, c := range nodes {
			if err := f.reconcile(c); err != nil {
				return err
			}
		}

		f.logger.TraceContext(f.ctx, "placeholder spliced",
			slog.String("key", key),
			slog.Int("nodes", len(nodes)),
		)

		return nil
	})
}

// inline schedules each placeholder in the value of an attribute.
func (f *Fragment) inline(el *html.Node, ns, name, val string) error {
	for _, p := range f.marker.split(val) {
		if p.key == "" {
			continue
		}

		fut, err := f.registry.Get(p.key)
		if err != nil {
			return err
		}

		f.substitute(el, ns, name, p.key, fut)
	}

	return nil
}

// substitute replaces the placeholder of key in an attribute value with the
// text fut resolves to, or with nothing if fut is rejected.
func (f *Fragment) substitute(el *html.Node, ns, name, key string, fut *Future[string]) {
	f.schedule(key, func() error {
		out, err := fut.Await(f.ctx)

		f.mu.Lock()
		defer f.mu.Unlock()

		i := slices.IndexFunc(el.Attr, func(a html.Attribute) bool {
			return a.Namespace == ns && a.Key == name
		})
		if i < 0 {
			return err
		}

		el.Attr[i].Val = f.marker.replace(el.Attr[i].Val, key, out)

		if err != nil {
			return err
		}

		return f.inline(el, ns, name, out)
	})
}

// annotate schedules each placeholder in the text of comment n.
func (f *Fragment) annotate(n *html.Node, text string) error {
	for _, p := range f.marker.split(text) {
		if p.key == "" {
			continue
		}

		fut, err := f.registry.Get(p.key)
		if err != nil {
			return err
		}

		f.schedule(p.key, func() error {
			out, err := fut.Await(f.ctx)

			f.mu.Lock()
			defer f.mu.Unlock()

			n.Data = f.marker.replace(n.Data, p.key, out)

			if err != nil {
				return err
			}

			return f.annotate(n, out)
		})
	}

	return nil
}

// schedule runs fn as a continuation of the fragment and signals a change
// when it finishes.
func (f *Fragment) schedule(key string, fn func() error) {
	f.pending.Add(1)

	f.logger.TraceContext(f.ctx, "placeholder scheduled", slog.String("key", key))

	f.group.Go(func() error {
		err := fn()
		if err != nil {
			err = WrapError(err).With(slog.String("placeholder", key))
			f.logger.DebugContext(f.ctx, "placeholder failed", slog.Any("error", err))
		}

		f.pending.Add(-1)
		f.notify()

		return err
	})
}

// addBinding appends key to the space-separated keys in el's bind attribute.
func addBinding(el *html.Node, key string) {
	for i, a := range el.Attr {
		if a.Namespace == "" && a.Key == bindAttr {
			if !slices.Contains(strings.Fields(a.Val), key) {
				el.Attr[i].Val = strings.TrimSpace(a.Val + " " + key)
			}

			return
		}
	}

	el.Attr = append(el.Attr, html.Attribute{Key: bindAttr, Val: key})
}
