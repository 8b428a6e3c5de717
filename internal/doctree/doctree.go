// Package doctree nests a flat heading outline into a section tree.
package doctree

import "github.com/dgallion1/docoutline/internal/outline"

// DocTree is the root of an outlined document.
type DocTree struct {
	Title    string     `json:"title"`
	Children []*DocNode `json:"children"`
}

// DocNode is a heading and the headings nested under it.
type DocNode struct {
	Title    string     `json:"title"`
	Level    int        `json:"level"`
	Page     int        `json:"page"`
	Children []*DocNode `json:"children,omitempty"`
}

// Build nests entries in outline order: each heading becomes a child of
// the nearest preceding heading with a smaller level. Level jumps (H1
// followed by H3) nest directly without placeholder nodes.
func Build(doc outline.Document) *DocTree {
	tree := &DocTree{Title: doc.Title, Children: []*DocNode{}}

	type stackEntry struct {
		node  *DocNode
		level int
	}
	// Root is level 0, all headings nest under it.
	root := &DocNode{}
	stack := []stackEntry{{node: root, level: 0}}

	for _, e := range doc.Outline {
		node := &DocNode{Title: e.Text, Level: e.Level, Page: e.Page}
		for len(stack) > 1 && stack[len(stack)-1].level >= e.Level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1].node
		parent.Children = append(parent.Children, node)
		stack = append(stack, stackEntry{node: node, level: e.Level})
	}

	if root.Children != nil {
		tree.Children = root.Children
	}
	return tree
}

// Walk visits every node depth-first with its ancestry, outermost first.
func (t *DocTree) Walk(fn func(node *DocNode, breadcrumb []string)) {
	var walk func(nodes []*DocNode, bc []string)
	walk = func(nodes []*DocNode, bc []string) {
		for _, n := range nodes {
			fn(n, bc)
			walk(n.Children, append(append([]string(nil), bc...), n.Title))
		}
	}
	walk(t.Children, nil)
}
