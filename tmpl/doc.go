// Package tmpl expands markup templates against a data object, rendering
// values that are not available yet as placeholders that fill in later.
//
// # Grammar
//
// A template is literal markup with three kinds of directive:
//
//	#each path          iteration block: the body is expanded once per
//	body                element of the sequence under path
//	/each
//
//	#with path          scoped block: the body is expanded against the
//	body                value under path
//	/with
//
//	@path               variable reference: replaced by the value under path
//
// An opening tag may follow other text on its line and ends at the newline.
// A closing tag starts on a new line, optionally indented. A reference path
// runs up to whitespace or '<'. Paths are single keys; the dotted namespace
// paths used to name bindings are built internally.
//
// References render nothing when their value is absent or falsy (nil, false,
// zero, NaN, or the empty string).
//
// # Deferred Values
//
// A value implementing [Deferred], such as a [Future], may appear anywhere in
// the data. The block or reference bound to it renders as a placeholder and
// is expanded again once the value settles. [Expander.Expand] never waits:
// the returned [Fragment] keeps filling in placeholders on its own, and
// [Fragment.Wait] joins them.
//
//	bio := tmpl.NewFuture[any]()
//	frag, err := tmpl.Expand(ctx, "<p>#with user\n@bio\n/with</p>", map[string]any{
//		"user": map[string]any{"bio": bio},
//	})
//	// frag.String() == `<p data-bind="user.bio"></p>`
//	bio.Resolve("<span>X</span>")
//	err = frag.Wait(ctx)
//	// frag.String() == `<p data-bind="user.bio"><span>X</span></p>`
//
// # Strategies
//
// Iteration blocks are rendered by the [Strategy] registered for the [Kind]
// of their value. Sequences and deferred values are handled by default;
// other kinds fail with [ErrUnhandledKind] unless a strategy is added with
// [WithStrategy].
package tmpl
