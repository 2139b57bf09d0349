package dom

// Default attribute names used for reconciliation bookkeeping.
const (
	DefaultKeyAttr       = "data-key"
	DefaultIgnoreAttr    = "data-ignore"
	DefaultChecksumAttr  = "data-checksum"
	DefaultIdentityAttr  = "id"
	DefaultComponentAttr = "data-component"
)

// Category is the structural node type.
type Category uint8

const (
	OtherNode Category = iota
	ElementNode
	TextNode
	CommentNode
	DocumentNode
	DoctypeNode
)

// String returns the string representation of the Category.
func (c Category) String() string {
	switch c {
	case ElementNode:
		return "Element"
	case TextNode:
		return "Text"
	case CommentNode:
		return "Comment"
	case DocumentNode:
		return "Document"
	case DoctypeNode:
		return "Doctype"
	default:
		return "Other"
	}
}

// Attribute is a namespace-qualified attribute.
type Attribute struct {
	Namespace string
	Name      string
	Value     string
}

// Adapter exposes the host tree primitives the reconciler needs.
//
// The zero value of N means "no node": traversal methods return it when there is no
// parent, child or sibling, and InsertBefore appends when ref is the zero value.
// Mutating methods detach a child from its current parent before attaching it.
type Adapter[N comparable] interface {
	// Valid reports whether n is a usable node.
	Valid(n N) bool
	Category(n N) Category
	// Name is the tag name for elements and a "#"-prefixed name otherwise.
	Name(n N) string

	// Value and SetValue access the content of text and comment nodes.
	Value(n N) string
	SetValue(n N, value string)

	Attributes(n N) []Attribute
	Attribute(n N, namespace, name string) (string, bool)
	SetAttribute(n N, namespace, name, value string)
	RemoveAttribute(n N, namespace, name string)

	Parent(n N) N
	FirstChild(n N) N
	NextSibling(n N) N
	Children(n N) []N

	AppendChild(parent, child N)
	InsertBefore(parent, child, ref N)
	RemoveChild(parent, child N)
	ReplaceChild(parent, newChild, oldChild N)

	// CloneShallow copies n's identity (category, name, attributes) without children.
	CloneShallow(n N) N
	// CloneDeep copies n and its whole subtree. The copy is detached.
	CloneDeep(n N) N

	// DocumentElement returns the root element of a document node.
	DocumentElement(doc N) N

	// Parse turns markup into a target tree. When context is a document root element
	// the markup is parsed as a whole document, otherwise as a fragment and the first
	// parsed node is returned.
	Parse(markup string, context N) (N, error)
}
