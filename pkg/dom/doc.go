// Package dom is the host-tree layer the reconciler is written against.
//
// Adapter is the capability set the reconciler needs: node categories and names,
// attribute get/set/remove, child insertion and removal, traversal, shallow cloning
// and markup parsing. HTML implements Adapter over golang.org/x/net/html nodes, which
// stand in for a browser document.
//
// # Element API
//
// Target trees can be built directly instead of parsed from markup:
//
//	Ul(
//	    Li(Key("1"), "a"),
//	    Li(Key("2"), "b"),
//	)
//
// Arguments may be nil, Attr, []Attr, *html.Node, []*html.Node or string (a text child).
package dom
