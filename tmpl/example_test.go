package tmpl_test

import (
	"context"
	"fmt"

	"github.com/ardnew/stamp/tmpl"
)

func ExampleExpander_Text() {
	data := map[string]any{
		"items": []any{
			map[string]any{"name": "a"},
			map[string]any{"name": "b"},
		},
	}

	out, _, err := tmpl.New().Text(context.Background(),
		"<ul>#each items\n<li>@name</li>\n/each</ul>", data)
	if err != nil {
		fmt.Println(err)

		return
	}

	fmt.Println(out)
	// Output:
	// <ul><li>a</li><li>b</li></ul>
}

func ExampleExpand() {
	ctx := context.Background()
	bio := tmpl.NewFuture[any]()

	frag, err := tmpl.Expand(ctx, "<div>#with user\n<p>@bio</p>\n/with</div>",
		map[string]any{"user": map[string]any{"bio": bio}})
	if err != nil {
		fmt.Println(err)

		return
	}

	fmt.Println(frag.String())

	bio.Resolve("<span>X</span>")

	if err := frag.Wait(ctx); err != nil {
		fmt.Println(err)

		return
	}

	fmt.Println(frag.String())
	// Output:
	// <div><p data-bind="user.bio"></p></div>
	// <div><p data-bind="user.bio"><span>X</span></p></div>
}

func ExampleOutline() {
	nodes, err := tmpl.Outline("<h1>@title</h1>\n#each items\n<li>@name</li>\n/each")
	if err != nil {
		fmt.Println(err)

		return
	}

	for _, n := range nodes {
		fmt.Println(n.Directive, n.Path, n.Pos.Line)

		for _, c := range n.Children {
			fmt.Println(" ", c.Directive, c.Path, c.Pos.Line)
		}
	}
	// Output:
	// ref title 1
	// each items 2
	//   ref name 3
}
