package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/comp/internal/errors"
)

// HTML implements Adapter over golang.org/x/net/html nodes.
type HTML struct{}

var _ Adapter[*html.Node] = HTML{}

// Valid reports whether n is non-nil and not an error node.
func (HTML) Valid(n *html.Node) bool {
	return n != nil && n.Type != html.ErrorNode
}

// Category maps the x/net/html node type.
func (HTML) Category(n *html.Node) Category {
	switch n.Type {
	case html.ElementNode:
		return ElementNode
	case html.TextNode:
		return TextNode
	case html.CommentNode:
		return CommentNode
	case html.DocumentNode:
		return DocumentNode
	case html.DoctypeNode:
		return DoctypeNode
	default:
		return OtherNode
	}
}

// Name returns the namespace-qualified tag name for elements.
func (HTML) Name(n *html.Node) string {
	switch n.Type {
	case html.ElementNode:
		if n.Namespace != "" {
			return n.Namespace + ":" + n.Data
		}
		return n.Data
	case html.TextNode:
		return "#text"
	case html.CommentNode:
		return "#comment"
	case html.DocumentNode:
		return "#document"
	case html.DoctypeNode:
		return n.Data
	default:
		return "#other"
	}
}

func (HTML) Value(n *html.Node) string {
	return n.Data
}

func (HTML) SetValue(n *html.Node, value string) {
	n.Data = value
}

func (HTML) Attributes(n *html.Node) []Attribute {
	if len(n.Attr) == 0 {
		return nil
	}
	attrs := make([]Attribute, len(n.Attr))
	for i, a := range n.Attr {
		attrs[i] = Attribute{Namespace: a.Namespace, Name: a.Key, Value: a.Val}
	}
	return attrs
}

func (HTML) Attribute(n *html.Node, namespace, name string) (string, bool) {
	if i := attrIndex(n, namespace, name); i >= 0 {
		return n.Attr[i].Val, true
	}
	return "", false
}

func (HTML) SetAttribute(n *html.Node, namespace, name, value string) {
	if i := attrIndex(n, namespace, name); i >= 0 {
		n.Attr[i].Val = value
		return
	}
	n.Attr = append(n.Attr, html.Attribute{Namespace: namespace, Key: name, Val: value})
}

func (HTML) RemoveAttribute(n *html.Node, namespace, name string) {
	if i := attrIndex(n, namespace, name); i >= 0 {
		n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
	}
}

func attrIndex(n *html.Node, namespace, name string) int {
	for i, a := range n.Attr {
		if a.Namespace == namespace && a.Key == name {
			return i
		}
	}
	return -1
}

func (HTML) Parent(n *html.Node) *html.Node      { return n.Parent }
func (HTML) FirstChild(n *html.Node) *html.Node  { return n.FirstChild }
func (HTML) NextSibling(n *html.Node) *html.Node { return n.NextSibling }

// Children returns a snapshot of n's children.
func (HTML) Children(n *html.Node) []*html.Node {
	var children []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, c)
	}
	return children
}

func (HTML) AppendChild(parent, child *html.Node) {
	detach(child)
	parent.AppendChild(child)
}

// InsertBefore inserts child before ref, or appends when ref is nil.
func (h HTML) InsertBefore(parent, child, ref *html.Node) {
	if child == ref {
		return
	}
	detach(child)
	if ref == nil || ref.Parent != parent {
		parent.AppendChild(child)
		return
	}
	parent.InsertBefore(child, ref)
}

func (HTML) RemoveChild(parent, child *html.Node) {
	if child.Parent == parent {
		parent.RemoveChild(child)
	}
}

func (HTML) ReplaceChild(parent, newChild, oldChild *html.Node) {
	if newChild == oldChild {
		return
	}
	detach(newChild)
	parent.InsertBefore(newChild, oldChild)
	parent.RemoveChild(oldChild)
}

func (HTML) CloneShallow(n *html.Node) *html.Node {
	clone := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		clone.Attr = make([]html.Attribute, len(n.Attr))
		copy(clone.Attr, n.Attr)
	}
	return clone
}

func (h HTML) CloneDeep(n *html.Node) *html.Node {
	clone := h.CloneShallow(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(h.CloneDeep(c))
	}
	return clone
}

func (HTML) DocumentElement(doc *html.Node) *html.Node {
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

// Parse parses markup as a whole document when context is the <html> root and as a
// body fragment otherwise. For fragments, leading whitespace and comments are
// skipped when picking the target, as a browser drops them before <body>.
func (h HTML) Parse(markup string, context *html.Node) (*html.Node, error) {
	if context != nil && context.Type == html.ElementNode && context.DataAtom == atom.Html {
		doc, err := ParseDocument(markup)
		if err != nil {
			return nil, err
		}
		root := h.DocumentElement(doc)
		if root == nil {
			return nil, errors.New(errors.E202).WithDetail("document has no root element")
		}
		return root, nil
	}

	nodes, err := ParseFragment(strings.TrimLeft(markup, whitespace))
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, errors.New(errors.E202).WithDetailf("fragment %q produced no nodes", truncate(markup, 40))
	}
	for _, n := range nodes {
		if n.Type == html.CommentNode || (n.Type == html.TextNode && strings.Trim(n.Data, whitespace) == "") {
			continue
		}
		return n, nil
	}
	return nodes[0], nil
}

// whitespace is the set of HTML whitespace characters.
const whitespace = " \t\n\f\r"

// ParseDocument parses a complete HTML document.
func ParseDocument(markup string) (*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, errors.New(errors.E202).Wrap(err)
	}
	return doc, nil
}

// ParseFragment parses markup in a <body> context and returns the detached nodes.
func ParseFragment(markup string) ([]*html.Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return nil, errors.New(errors.E202).Wrap(err)
	}
	return nodes, nil
}

func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
