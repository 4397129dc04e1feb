package tmpl

// Node is one directive in the outline of a template.
type Node struct {
	Directive Directive `json:"directive"          yaml:"directive"`
	Path      string    `json:"path"               yaml:"path"`
	Pos       Position  `json:"position"           yaml:"position"`
	Children  []Node    `json:"children,omitempty" yaml:"children,omitempty"`
}

// Outline returns the directive tree of template: its blocks, nested in the
// order they appear, and the variable references in each block's literal
// text. Positions are relative to template.
func Outline(template string) ([]Node, error) {
	return outline(template, template, 0)
}

// outline builds the tree of text, which starts at byte offset base of src.
func outline(src, text string, base int) ([]Node, error) {
	segs, err := Scan(text)
	if err != nil {
		return nil, err
	}

	var nodes []Node

	for _, seg := range segs {
		if seg.Directive == Literal {
			_ = refs(seg.Text, func(start, end int) error {
				nodes = append(nodes, Node{
					Directive: Ref,
					Path:      seg.Text[start+1 : end],
					Pos:       positionOf(src, base+seg.Pos.Offset+start),
				})

				return nil
			})

			continue
		}

		blk, err := Extract(seg.Directive, seg.Text)
		if err != nil {
			return nil, err
		}

		at := base + seg.Pos.Offset

		children, err := outline(src, blk.Body, at+blk.BodyOffset)
		if err != nil {
			return nil, err
		}

		nodes = append(nodes, Node{
			Directive: blk.Directive,
			Path:      blk.Path,
			Pos:       positionOf(src, at),
			Children:  children,
		})
	}

	return nodes, nil
}
