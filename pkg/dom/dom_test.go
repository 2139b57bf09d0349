package dom

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/vango-dev/comp/internal/errors"
)

func TestElementBuilders(t *testing.T) {
	node := Ul(Class("list"), nil, Li(Key("1"), "a"), []*html.Node{Li(Key("2"), "b")})

	if got := Render(node); got != `<ul class="list"><li data-key="1">a</li><li data-key="2">b</li></ul>` {
		t.Errorf("Render() = %q", got)
	}
}

func TestElementBuildersPanicOnUnknownArg(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unsupported argument")
		}
	}()
	Div(42)
}

func TestCategoryAndName(t *testing.T) {
	a := HTML{}
	tests := []struct {
		node     *html.Node
		category Category
		name     string
	}{
		{Div(), ElementNode, "div"},
		{Text("x"), TextNode, "#text"},
		{Comment("x"), CommentNode, "#comment"},
		{Document(nil), DocumentNode, "#document"},
		{&html.Node{Type: html.ElementNode, Data: "circle", Namespace: "svg"}, ElementNode, "svg:circle"},
	}
	for _, tt := range tests {
		if got := a.Category(tt.node); got != tt.category {
			t.Errorf("Category(%s) = %v, want %v", tt.name, got, tt.category)
		}
		if got := a.Name(tt.node); got != tt.name {
			t.Errorf("Name() = %q, want %q", got, tt.name)
		}
	}
}

func TestValid(t *testing.T) {
	a := HTML{}
	if a.Valid(nil) {
		t.Error("nil should not be valid")
	}
	if a.Valid(&html.Node{Type: html.ErrorNode}) {
		t.Error("error node should not be valid")
	}
	if !a.Valid(Div()) {
		t.Error("element should be valid")
	}
}

func TestAttributes(t *testing.T) {
	a := HTML{}
	n := Div(ID("main"))

	a.SetAttribute(n, "", "class", "card")
	a.SetAttribute(n, "", "id", "other")
	a.SetAttribute(n, "xlink", "href", "#x")

	want := []Attribute{
		{Name: "id", Value: "other"},
		{Name: "class", Value: "card"},
		{Namespace: "xlink", Name: "href", Value: "#x"},
	}
	if diff := cmp.Diff(want, a.Attributes(n)); diff != "" {
		t.Errorf("Attributes() mismatch (-want +got):\n%s", diff)
	}

	if _, ok := a.Attribute(n, "", "href"); ok {
		t.Error("href without namespace should not match")
	}

	a.RemoveAttribute(n, "", "id")
	if _, ok := a.Attribute(n, "", "id"); ok {
		t.Error("id should be removed")
	}
	if len(a.Attributes(n)) != 2 {
		t.Errorf("Attributes len = %d, want 2", len(a.Attributes(n)))
	}
}

func TestInsertBeforeDetaches(t *testing.T) {
	a := HTML{}
	first, second := Li(Key("1")), Li(Key("2"))
	src := Ul(first)
	dst := Ul(second)

	a.InsertBefore(dst, first, second)

	if first.Parent != dst {
		t.Fatal("first should be re-parented")
	}
	if src.FirstChild != nil {
		t.Error("source list should be empty")
	}
	if got := Render(dst); got != `<ul><li data-key="1"></li><li data-key="2"></li></ul>` {
		t.Errorf("Render() = %q", got)
	}

	// Moving to the end.
	a.InsertBefore(dst, first, nil)
	if dst.LastChild != first {
		t.Error("nil ref should append")
	}
}

func TestReplaceChild(t *testing.T) {
	a := HTML{}
	old := Span("x")
	parent := Div(Text("a"), old, Text("b"))

	a.ReplaceChild(parent, Strong("y"), old)

	if got := Render(parent); got != "<div>a<strong>y</strong>b</div>" {
		t.Errorf("Render() = %q", got)
	}
	if old.Parent != nil {
		t.Error("old node should be detached")
	}
}

func TestCloneShallow(t *testing.T) {
	a := HTML{}
	src := Div(Class("c"), Span("child"))
	clone := a.CloneShallow(src)

	if clone.FirstChild != nil {
		t.Error("clone should have no children")
	}
	a.SetAttribute(clone, "", "class", "changed")
	if v, _ := a.Attribute(src, "", "class"); v != "c" {
		t.Error("clone must not share attribute storage")
	}
}

func TestCloneDeep(t *testing.T) {
	a := HTML{}
	src := Body(Div(Class("c"), Span("child"), Comment("note")))
	div := src.FirstChild
	clone := a.CloneDeep(div)

	if clone.Parent != nil || clone == div {
		t.Error("clone should be a detached copy")
	}
	if got, want := Render(clone), Render(div); got != want {
		t.Errorf("clone = %s, want %s", got, want)
	}
	clone.FirstChild.FirstChild.Data = "changed"
	if div.FirstChild.FirstChild.Data != "child" {
		t.Error("clone must not share descendants")
	}
}

func TestParseFragmentSkipsLeadingNoise(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{"whitespace", "\n  <ul></ul>\n", "<ul></ul>"},
		{"comment", "<!-- list --><ul></ul>", "<ul></ul>"},
		{"text", "  hello <b>x</b>", "hello "},
		{"only comment", "<!-- c -->", "<!-- c -->"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := HTML{}.Parse(tt.markup, Div())
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := Render(n); got != tt.want {
				t.Errorf("Parse() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseFragment(t *testing.T) {
	a := HTML{}
	n, err := a.Parse(`<ul><li data-key="1">a</li></ul>`, Div())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if n.Data != "ul" || n.Parent != nil {
		t.Errorf("Parse() = %q (parent %v), want detached ul", n.Data, n.Parent)
	}
}

func TestParseEmptyFragment(t *testing.T) {
	_, err := HTML{}.Parse("", Div())
	if !errors.HasCode(err, errors.E202) {
		t.Errorf("Parse(\"\") error = %v, want E202", err)
	}
}

func TestParseDocumentForRoot(t *testing.T) {
	a := HTML{}
	doc, err := ParseDocument("<html><body><p>x</p></body></html>")
	if err != nil {
		t.Fatal(err)
	}
	root := a.DocumentElement(doc)

	n, err := a.Parse("<html><head></head><body><p>y</p></body></html>", root)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if n.Data != "html" {
		t.Errorf("Parse() root = %q, want html", n.Data)
	}
}

func TestFindByAttr(t *testing.T) {
	target := Div(Data("component", "cart"))
	root := Body(Div(Data("component", "menu")), Section(target))

	if got := FindByAttr(root, DefaultComponentAttr, "cart"); got != target {
		t.Errorf("FindByAttr() = %v, want cart container", got)
	}
	if FindByAttr(root, DefaultComponentAttr, "missing") != nil {
		t.Error("FindByAttr() should return nil for no match")
	}
}

func TestWalkAndInnerHTML(t *testing.T) {
	root := Div(Span("a"), Comment("c"), P("b"))
	count := 0
	Walk(root, func(*html.Node) { count++ })
	if count != 6 {
		t.Errorf("Walk visited %d nodes, want 6", count)
	}
	if got := InnerHTML(root); got != "<span>a</span><!--c--><p>b</p>" {
		t.Errorf("InnerHTML() = %q", got)
	}
	if FirstElementChild(Div(Text(" "), Span())).Data != "span" {
		t.Error("FirstElementChild should skip text")
	}
}

func TestRange(t *testing.T) {
	items := []string{"a", "", "c"}
	nodes := Range(items, func(i int, s string) *html.Node {
		if s == "" {
			return nil
		}
		return Li(s)
	})
	if len(nodes) != 2 {
		t.Errorf("Range() len = %d, want 2", len(nodes))
	}
}
