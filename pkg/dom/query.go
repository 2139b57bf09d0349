package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// FindByAttr returns the first element in document order under root (inclusive)
// whose attribute name equals value.
func FindByAttr(root *html.Node, name, value string) *html.Node {
	if root == nil {
		return nil
	}
	if root.Type == html.ElementNode {
		if v, ok := (HTML{}).Attribute(root, "", name); ok && v == value {
			return root
		}
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if found := FindByAttr(c, name, value); found != nil {
			return found
		}
	}
	return nil
}

// FirstElementChild returns n's first element child.
func FirstElementChild(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

// Walk calls fn for n and every descendant in document order.
func Walk(n *html.Node, fn func(*html.Node)) {
	if n == nil {
		return
	}
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, fn)
	}
}

// Render serializes n (and its subtree) to markup.
func Render(n *html.Node) string {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return ""
	}
	return b.String()
}

// InnerHTML serializes n's children.
func InnerHTML(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return ""
		}
	}
	return b.String()
}
