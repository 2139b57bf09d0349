package reconcile

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/vango-dev/comp/internal/errors"
	"github.com/vango-dev/comp/pkg/dom"
)

func newTestReconciler(opts ...Option) *Reconciler[*html.Node] {
	return New[*html.Node](dom.HTML{}, opts...)
}

// attach places n under a body element so it has a parent, as a live root would.
func attach(n *html.Node) *html.Node {
	dom.Body(n)
	return n
}

// recordEvents collects "type:key" for every lifecycle event.
func recordEvents(r *Reconciler[*html.Node]) *[]string {
	var got []string
	r.Listen(func(e Event[*html.Node]) {
		got = append(got, e.Type+":"+r.key(e.Target))
	})
	return &got
}

func mustSync(t *testing.T, r *Reconciler[*html.Node], live, target *html.Node) Result[*html.Node] {
	t.Helper()
	res, err := r.Synchronize(live, target)
	if err != nil {
		t.Fatalf("Synchronize() error = %v", err)
	}
	return res
}

func TestSynchronizeTextInPlace(t *testing.T) {
	r := newTestReconciler()
	live := attach(dom.Div("x"))
	text := live.FirstChild

	res := mustSync(t, r, live, dom.Div("y"))

	if live.FirstChild != text {
		t.Error("text node should be updated in place, not replaced")
	}
	if text.Data != "y" {
		t.Errorf("text = %q, want y", text.Data)
	}
	if res.TextWrites != 1 || res.Replaced != 0 || res.Mutations() != 1 {
		t.Errorf("stats = %v, want a single text write", res.Stats)
	}
	if res.Root != live {
		t.Error("root should be unchanged")
	}
}

func buildPage() *html.Node {
	return dom.Div(dom.Class("page"), dom.A("title", "home"),
		dom.Comment("header"),
		dom.Ul(dom.ID("items"),
			dom.Li(dom.Key("1"), dom.Class("done"), "one"),
			dom.Li(dom.Key("2"), "two"),
			dom.Li(dom.Key("3"), dom.Strong("three")),
		),
		dom.P("footer ", dom.Span("text")),
	)
}

func TestSynchronizeIdempotent(t *testing.T) {
	r := newTestReconciler()
	live := attach(dom.Div(dom.Class("old"),
		dom.Ul(dom.Li(dom.Key("3"), "3"), dom.Li(dom.Key("9"), "gone")),
		dom.Span("replace me"),
	))

	first := mustSync(t, r, live, buildPage())
	if first.Mutations() == 0 {
		t.Fatal("first pass should mutate")
	}
	want := dom.Render(buildPage())
	if got := dom.Render(live); got != want {
		t.Fatalf("after first pass:\n got %s\nwant %s", got, want)
	}

	second := mustSync(t, r, live, buildPage())
	if second.Mutations() != 0 {
		t.Errorf("second pass mutations = %d (%v), want 0", second.Mutations(), second.Stats)
	}
	if second.Mounted != 0 || second.Dismounted != 0 {
		t.Errorf("second pass lifecycle = %v, want none", second.Stats)
	}
}

func TestSynchronizeSameTargetTwice(t *testing.T) {
	r := newTestReconciler()
	live := attach(dom.Div())
	target := dom.Div(dom.P("x"), dom.Li(dom.Key("a"), "a"))
	want := `<div><p>x</p><li data-key="a">a</li></div>`

	first := mustSync(t, r, live, target)
	if first.Inserted != 2 || first.Mounted != 1 {
		t.Errorf("first pass = %v, want 2 inserted and 1 mounted", first.Stats)
	}
	if got := dom.Render(target); got != want {
		t.Errorf("target changed by the pass: %s", got)
	}

	second := mustSync(t, r, live, target)
	if second.Mutations() != 0 || second.Dismounted != 0 || second.Mounted != 0 {
		t.Errorf("second pass = %v, want no work", second.Stats)
	}
	if got := dom.Render(live); got != want {
		t.Errorf("live = %s, want %s", got, want)
	}
}

func TestReplacedRootIsACopy(t *testing.T) {
	r := newTestReconciler()
	live := dom.Text("loose")
	target := dom.Div(dom.Key("k"), "x")

	res := mustSync(t, r, live, target)

	if res.Root == target || dom.Render(res.Root) != `<div data-key="k">x</div>` {
		t.Errorf("Root = %s, want a copy of the target", dom.Render(res.Root))
	}
	again := mustSync(t, r, res.Root, target)
	if again.Mutations() != 0 {
		t.Errorf("second pass = %v, want no mutations", again.Stats)
	}
}

func TestSynchronizeAttributes(t *testing.T) {
	r := newTestReconciler()
	live := attach(dom.Div(dom.Class("a"), dom.A("title", "keep"), dom.A("hidden", "")))

	res := mustSync(t, r, live, dom.Div(dom.Class("b"), dom.A("title", "keep"), dom.A("role", "main")))

	if res.AttrsRemoved != 1 || res.AttrsSet != 2 {
		t.Errorf("stats = %v, want 1 removed and 2 set", res.Stats)
	}
	want := map[string]string{"class": "b", "title": "keep", "role": "main"}
	got := map[string]string{}
	for _, a := range live.Attr {
		got[a.Key] = a.Val
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("attributes mismatch (-want +got):\n%s", diff)
	}
}

func TestSynchronizeNamespacedAttributes(t *testing.T) {
	r := newTestReconciler()
	live := attach(dom.Div())
	live.Attr = []html.Attribute{{Namespace: "xlink", Key: "href", Val: "#a"}}
	target := dom.Div()
	target.Attr = []html.Attribute{{Key: "href", Val: "#a"}}

	res := mustSync(t, r, live, target)

	if res.AttrsRemoved != 1 || res.AttrsSet != 1 {
		t.Errorf("stats = %v, want namespace-qualified replace", res.Stats)
	}
	if len(live.Attr) != 1 || live.Attr[0].Namespace != "" {
		t.Errorf("attrs = %+v", live.Attr)
	}
}

func TestChecksumShortCircuit(t *testing.T) {
	r := newTestReconciler()
	live := attach(dom.Div(dom.Checksum("abc"), dom.Class("old"), dom.Span("old")))

	res := mustSync(t, r, live, dom.Div(dom.Checksum("abc"), dom.Class("new"), dom.Span("new")))

	if res.Mutations() != 0 {
		t.Errorf("mutations = %d, want 0", res.Mutations())
	}
	if got := dom.Render(live); got != `<div data-checksum="abc" class="old"><span>old</span></div>` {
		t.Errorf("live = %s", got)
	}
}

func TestChecksumMismatchDiffs(t *testing.T) {
	r := newTestReconciler()
	live := attach(dom.Div(dom.Checksum("abc"), dom.Span("old")))

	mustSync(t, r, live, dom.Div(dom.Checksum("abd"), dom.Span("new")))

	if got := dom.Render(live); got != `<div data-checksum="abd"><span>new</span></div>` {
		t.Errorf("live = %s", got)
	}
}

func TestEmptyChecksumDoesNotSkip(t *testing.T) {
	r := newTestReconciler()
	live := attach(dom.Div(dom.Checksum(""), "old"))

	mustSync(t, r, live, dom.Div(dom.Checksum(""), "new"))

	if live.FirstChild.Data != "new" {
		t.Error("empty checksums must not short-circuit")
	}
}

func TestIgnoreShortCircuit(t *testing.T) {
	r := newTestReconciler()
	live := attach(dom.Div(dom.Ignore(), dom.Class("a"), "old"))

	res := mustSync(t, r, live, dom.Div(dom.Ignore(), dom.Class("b"), "new", dom.Span()))

	if res.Mutations() != 0 {
		t.Errorf("mutations = %d, want 0", res.Mutations())
	}
	if got := dom.Render(live); got != `<div data-ignore="" class="a">old</div>` {
		t.Errorf("live = %s", got)
	}
}

func TestIgnoreOnOneSideDiffs(t *testing.T) {
	r := newTestReconciler()
	live := attach(dom.Div(dom.Ignore(), "old"))

	mustSync(t, r, live, dom.Div("new"))

	if got := dom.Render(live); got != `<div>new</div>` {
		t.Errorf("live = %s", got)
	}
}

func TestTagReplacePreservesChildren(t *testing.T) {
	r := newTestReconciler()
	span, p := dom.Span(dom.Key("s"), "a"), dom.P("b")
	live := attach(dom.Div(dom.Class("x"), span, p))
	body := live.Parent
	mustSync(t, r, live, dom.Div(dom.Class("x"), dom.Span(dom.Key("s"), "a"), dom.P("b")))
	events := recordEvents(r)

	res := mustSync(t, r, live, dom.Section(dom.Class("y"), dom.Span(dom.Key("s"), "a"), dom.P("b")))

	root := res.Root
	if root == live || root.Data != "section" {
		t.Fatalf("root = %v, want new section element", root.Data)
	}
	if body.FirstChild != root {
		t.Error("replacement should take the old node's place")
	}
	if root.FirstChild != span || span.NextSibling != p || p.NextSibling != nil {
		t.Error("children should be the same nodes in the same order")
	}
	if v, _ := (dom.HTML{}).Attribute(root, "", "class"); v != "y" {
		t.Errorf("class = %q, want y", v)
	}
	if res.Replaced != 1 {
		t.Errorf("Replaced = %d, want 1", res.Replaced)
	}
	if len(*events) != 0 {
		t.Errorf("events = %v, want none", *events)
	}

	again := mustSync(t, r, root, dom.Section(dom.Class("y"), dom.Span(dom.Key("s"), "a"), dom.P("b")))
	if again.Mutations() != 0 || again.Mounted != 0 {
		t.Errorf("after replace: %v, want no work", again.Stats)
	}
}

func TestCategoryReplace(t *testing.T) {
	r := newTestReconciler()
	live := attach(dom.Div("x"))
	mustSync(t, r, live, dom.Div("x"))
	events := recordEvents(r)

	// An unkeyed span lines up positionally with the text node.
	target := dom.Span(dom.Strong(dom.Key("s"), "x"))
	res := mustSync(t, r, live, dom.Div(target))

	if got := dom.Render(live.FirstChild); got != `<span><strong data-key="s">x</strong></span>` {
		t.Errorf("replacement = %s, want the target span", got)
	}
	if live.FirstChild == target || target.Parent == nil {
		t.Error("target node should be copied, not moved into the live tree")
	}
	if res.Replaced != 1 {
		t.Errorf("Replaced = %d, want 1", res.Replaced)
	}
	if diff := cmp.Diff([]string{"mount:s"}, *events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestSynchronizeInvalidRoot(t *testing.T) {
	r := newTestReconciler()

	_, err := r.Synchronize(nil, dom.Div())
	if !errors.HasCode(err, errors.E201) {
		t.Errorf("error = %v, want E201", err)
	}

	_, err = r.Synchronize(attach(dom.Div()), nil)
	if !errors.HasCode(err, errors.E201) {
		t.Errorf("error = %v, want E201 for invalid target", err)
	}

	_, err = r.SynchronizeMarkup(nil, "<div></div>")
	if !errors.HasCode(err, errors.E201) {
		t.Errorf("error = %v, want E201", err)
	}
}

func TestSynchronizeMarkupFragment(t *testing.T) {
	r := newTestReconciler()
	li := dom.Li(dom.Key("1"), "a")
	live := attach(dom.Ul(li))

	res, err := r.SynchronizeMarkup(live, `<ul><li data-key="0">z</li><li data-key="1">a</li></ul>`)
	if err != nil {
		t.Fatalf("SynchronizeMarkup() error = %v", err)
	}

	if live.LastChild != li {
		t.Error("keyed li should be reused")
	}
	if res.Inserted != 1 {
		t.Errorf("Inserted = %d, want 1", res.Inserted)
	}
	if got := dom.Render(live); got != `<ul><li data-key="0">z</li><li data-key="1">a</li></ul>` {
		t.Errorf("live = %s", got)
	}
}

func TestSynchronizeMarkupDocument(t *testing.T) {
	r := newTestReconciler()
	doc, err := dom.ParseDocument(`<html><head></head><body><p id="msg">old</p></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	p := dom.FindByAttr(doc, "id", "msg")

	if _, err := r.SynchronizeMarkup(doc, `<html><head></head><body class="on"><p id="msg">new</p></body></html>`); err != nil {
		t.Fatalf("SynchronizeMarkup() error = %v", err)
	}

	if dom.FindByAttr(doc, "id", "msg") != p {
		t.Error("paragraph should be reused")
	}
	if got := dom.Render(doc); got != `<html><head></head><body class="on"><p id="msg">new</p></body></html>` {
		t.Errorf("document = %s", got)
	}
}

func TestSynchronizeMarkupSkipsLeadingNoise(t *testing.T) {
	tests := []struct {
		name   string
		markup string
	}{
		{"whitespace", "\n  <div data-key=\"k\">y</div>\n"},
		{"comment", "<!-- k --><div data-key=\"k\">y</div>"},
		{"comment and whitespace", "\n<!-- k -->\n\t<div data-key=\"k\">y</div>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestReconciler()
			live := attach(dom.Div(dom.Key("k"), "x"))
			body := live.Parent
			mustSync(t, r, live, dom.Div(dom.Key("k"), "x"))

			res, err := r.SynchronizeMarkup(live, tt.markup)
			if err != nil {
				t.Fatalf("SynchronizeMarkup() error = %v", err)
			}
			if res.Root != live || res.Replaced != 0 || res.Dismounted != 0 {
				t.Errorf("stats = %v, want live div kept", res.Stats)
			}
			if got := dom.Render(body); got != `<body><div data-key="k">y</div></body>` {
				t.Errorf("body = %s", got)
			}
		})
	}
}

func TestTagReplaceKeepsListeners(t *testing.T) {
	r := newTestReconciler()
	live := attach(dom.Ul(dom.Li(dom.Key("a"), "a")))
	mustSync(t, r, live, dom.Ul(dom.Li(dom.Key("a"), "a")))

	var got []string
	r.On(live.FirstChild, EventDismount, func(e Event[*html.Node]) {
		got = append(got, e.Type+":"+e.Target.Data)
	})

	mustSync(t, r, live, dom.Ul(dom.P(dom.Key("a"), "a")))
	mustSync(t, r, live, dom.Ul())

	if diff := cmp.Diff([]string{"dismount:p"}, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestDeferredEvents(t *testing.T) {
	r := newTestReconciler(WithDeferredEvents())
	live := attach(dom.Ul())
	events := recordEvents(r)

	res := mustSync(t, r, live, dom.Ul(dom.Li(dom.Key("a")), dom.Li(dom.Key("b"))))
	if res.Mounted != 2 {
		t.Errorf("Mounted = %d, want 2", res.Mounted)
	}
	if len(*events) != 0 {
		t.Fatalf("events delivered during the pass: %v", *events)
	}

	r.Flush()
	if diff := cmp.Diff([]string{"mount:a", "mount:b"}, *events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	r.Flush()
	if len(*events) != 2 {
		t.Errorf("Flush delivered events twice: %v", *events)
	}
}

func TestSynchronizeDocumentTarget(t *testing.T) {
	r := newTestReconciler()
	doc := dom.Document(dom.Html(dom.Body(dom.P("a"))))
	target := dom.Document(dom.Html(dom.Body(dom.P("b"))))

	res := mustSync(t, r, doc, target)

	if res.Root != doc.FirstChild {
		t.Error("document should alias to its root element")
	}
	if got := dom.Render(doc); got != `<html><head></head><body><p>b</p></body></html>` && got != `<html><body><p>b</p></body></html>` {
		t.Errorf("document = %s", got)
	}
}

type countingObserver struct {
	passes []Stats
}

func (o *countingObserver) ObserveSync(s Stats) {
	o.passes = append(o.passes, s)
}

func TestObserverAndCustomAttributes(t *testing.T) {
	obs := &countingObserver{}
	r := newTestReconciler(WithKeyAttr("key"), WithChecksumAttr("sum"), WithIgnoreAttr("skip"), WithIdentityAttr(""), WithObserver(obs))

	a := dom.Li(dom.A("key", "a"), dom.ID("x"))
	b := dom.Li(dom.A("key", "b"), dom.ID("y"))
	live := attach(dom.Ul(a, b))

	res := mustSync(t, r, live, dom.Ul(dom.Li(dom.A("key", "b"), dom.ID("y")), dom.Li(dom.A("key", "a"), dom.ID("x"))))

	if live.FirstChild != b || live.LastChild != a {
		t.Error("custom key attribute should drive matching")
	}
	if res.Moved != 1 {
		t.Errorf("Moved = %d, want 1", res.Moved)
	}
	if len(obs.passes) != 1 || obs.passes[0].Moved != 1 {
		t.Errorf("observer passes = %+v", obs.passes)
	}

	skip := attach(dom.Div(dom.A("skip", ""), "old"))
	mustSync(t, r, skip, dom.Div(dom.A("skip", ""), "new"))
	if skip.FirstChild.Data != "old" {
		t.Error("custom ignore attribute should skip")
	}
}

func TestForget(t *testing.T) {
	r := newTestReconciler()
	live := attach(dom.Ul(dom.Li(dom.Key("1"))))
	r.On(live.FirstChild, EventDismount, func(Event[*html.Node]) {})
	mustSync(t, r, live, dom.Ul(dom.Li(dom.Key("1"))))

	if len(r.nodes) == 0 {
		t.Fatal("side-table should have entries")
	}
	r.Forget(live)
	if len(r.nodes) != 0 || len(r.listeners) != 0 {
		t.Errorf("Forget left %d entries and %d listeners", len(r.nodes), len(r.listeners))
	}
}
