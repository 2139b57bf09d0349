package dom

import (
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Attr is a single attribute argument for element builders.
type Attr struct {
	Key   string
	Value string
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// El creates an element with the given tag and arguments.
// Arguments can be: nil, Attr, []Attr, *html.Node, []*html.Node, string.
func El(tag string, args ...any) *html.Node {
	node := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional attributes)
			continue

		case Attr:
			setAttr(node, v)

		case []Attr:
			for _, a := range v {
				setAttr(node, a)
			}

		case *html.Node:
			if v != nil {
				node.AppendChild(v)
			}

		case []*html.Node:
			for _, child := range v {
				if child != nil {
					node.AppendChild(child)
				}
			}

		case string:
			node.AppendChild(Text(v))

		default:
			panic(fmt.Sprintf("dom: unsupported element argument %T", arg))
		}
	}

	return node
}

func setAttr(node *html.Node, a Attr) {
	if a.IsEmpty() {
		return
	}
	HTML{}.SetAttribute(node, "", a.Key, a.Value)
}

// Text creates a text node.
func Text(content string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: content}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *html.Node {
	return Text(fmt.Sprintf(format, args...))
}

// Comment creates a comment node.
func Comment(content string) *html.Node {
	return &html.Node{Type: html.CommentNode, Data: content}
}

// Document wraps root in a document node.
func Document(root *html.Node) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	if root != nil {
		doc.AppendChild(root)
	}
	return doc
}

// If returns the node if condition is true, nil otherwise.
func If(condition bool, node *html.Node) *html.Node {
	if condition {
		return node
	}
	return nil
}

// Range maps items to nodes, skipping nil results.
func Range[T any](items []T, fn func(int, T) *html.Node) []*html.Node {
	nodes := make([]*html.Node, 0, len(items))
	for i, item := range items {
		if n := fn(i, item); n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Attributes

func A(key, value string) Attr   { return Attr{Key: key, Value: value} }
func Key(value string) Attr      { return Attr{Key: DefaultKeyAttr, Value: value} }
func ID(value string) Attr       { return Attr{Key: "id", Value: value} }
func Class(value string) Attr    { return Attr{Key: "class", Value: value} }
func Checksum(value string) Attr { return Attr{Key: DefaultChecksumAttr, Value: value} }
func Ignore() Attr               { return Attr{Key: DefaultIgnoreAttr, Value: ""} }
func Data(name, value string) Attr {
	return Attr{Key: "data-" + name, Value: value}
}

// Elements

func Html(args ...any) *html.Node    { return El("html", args...) }
func Head(args ...any) *html.Node    { return El("head", args...) }
func Body(args ...any) *html.Node    { return El("body", args...) }
func Div(args ...any) *html.Node     { return El("div", args...) }
func Span(args ...any) *html.Node    { return El("span", args...) }
func P(args ...any) *html.Node       { return El("p", args...) }
func Ul(args ...any) *html.Node      { return El("ul", args...) }
func Ol(args ...any) *html.Node      { return El("ol", args...) }
func Li(args ...any) *html.Node      { return El("li", args...) }
func Section(args ...any) *html.Node { return El("section", args...) }
func Button(args ...any) *html.Node  { return El("button", args...) }
func Input(args ...any) *html.Node   { return El("input", args...) }
func Label(args ...any) *html.Node   { return El("label", args...) }
func Strong(args ...any) *html.Node  { return El("strong", args...) }
