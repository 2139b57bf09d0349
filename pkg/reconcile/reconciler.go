package reconcile

import (
	"sync"
	"time"

	"github.com/vango-dev/comp/internal/errors"
	"github.com/vango-dev/comp/pkg/dom"
)

// Result is the outcome of a Synchronize call.
type Result[N comparable] struct {
	// Root is the live root after the pass. It differs from the node passed in only
	// when the root itself had to be replaced.
	Root N
	Stats
}

// state is the side-table entry kept per live node.
type state struct {
	index   int
	mounted bool
}

// Reconciler mutates live trees in place to match target trees.
type Reconciler[N comparable] struct {
	adapter   dom.Adapter[N]
	opts      options
	nodes map[N]*state

	// lmu guards listeners, global and queue.
	lmu       sync.Mutex
	listeners map[N]map[string][]Listener[N]
	global    []Listener[N]
	queue     []Event[N]

	// stats of the pass in progress
	stats *Stats
}

// New creates a Reconciler for the given host tree adapter.
func New[N comparable](adapter dom.Adapter[N], opts ...Option) *Reconciler[N] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Reconciler[N]{
		adapter:   adapter,
		opts:      o,
		nodes:     make(map[N]*state),
		listeners: make(map[N]map[string][]Listener[N]),
	}
}

// Adapter returns the host tree adapter.
func (r *Reconciler[N]) Adapter() dom.Adapter[N] {
	return r.adapter
}

// Synchronize updates live so its structure, attributes and text match target.
// live must be a valid node attached to a document or container; a document node is
// aliased to its root element. target is only read: nodes missing from live are
// inserted as deep copies, so the same target can be passed again and the second
// pass makes no mutations.
func (r *Reconciler[N]) Synchronize(live, target N) (Result[N], error) {
	a := r.adapter
	if !a.Valid(live) {
		return Result[N]{}, errors.New(errors.E201)
	}
	if !a.Valid(target) {
		return Result[N]{}, errors.New(errors.E201).WithDetail("target tree is not a valid node")
	}
	if a.Category(live) == dom.DocumentNode {
		live = a.DocumentElement(live)
		if !a.Valid(live) {
			return Result[N]{}, errors.New(errors.E201).WithDetail("document has no root element")
		}
	}
	if a.Category(target) == dom.DocumentNode {
		target = a.DocumentElement(target)
		if !a.Valid(target) {
			return Result[N]{}, errors.New(errors.E201).WithDetail("target document has no root element")
		}
	}

	start := time.Now()
	var stats Stats
	r.stats = &stats
	defer func() { r.stats = nil }()

	root := r.syncNode(live, target)

	// Initial display: mount the whole resulting tree once per root.
	if !r.entry(root).mounted {
		r.mount(root)
	}

	stats.Duration = time.Since(start)
	r.opts.logger.Debug("synchronized", "root", a.Name(root), "mutations", stats.Mutations(), "stats", stats.String())
	if r.opts.observer != nil {
		r.opts.observer.ObserveSync(stats)
	}
	return Result[N]{Root: root, Stats: stats}, nil
}

// SynchronizeMarkup parses markup with the adapter and synchronizes live with it.
// Markup for a document root element is parsed as a whole document, anything else as
// a fragment whose first node becomes the target.
func (r *Reconciler[N]) SynchronizeMarkup(live N, markup string) (Result[N], error) {
	a := r.adapter
	if !a.Valid(live) {
		return Result[N]{}, errors.New(errors.E201)
	}
	if a.Category(live) == dom.DocumentNode {
		live = a.DocumentElement(live)
		if !a.Valid(live) {
			return Result[N]{}, errors.New(errors.E201).WithDetail("document has no root element")
		}
	}
	target, err := a.Parse(markup, live)
	if err != nil {
		return Result[N]{}, err
	}
	return r.Synchronize(live, target)
}

// Forget drops all side-table entries and listeners for root and its descendants.
func (r *Reconciler[N]) Forget(root N) {
	r.lmu.Lock()
	defer r.lmu.Unlock()
	r.walk(root, func(n N) {
		delete(r.nodes, n)
		delete(r.listeners, n)
	})
}

// syncNode converts live into target and returns the node now occupying live's place.
func (r *Reconciler[N]) syncNode(live, target N) N {
	a := r.adapter
	category := a.Category(live)

	if category != a.Category(target) {
		r.dismount(live)
		replacement := a.CloneDeep(target)
		if parent := a.Parent(live); a.Valid(parent) {
			a.ReplaceChild(parent, replacement, live)
		}
		r.stats.Replaced++
		r.mount(replacement)
		return replacement
	}

	if category != dom.ElementNode {
		if v := a.Value(target); a.Value(live) != v {
			a.SetValue(live, v)
			r.stats.TextWrites++
		}
		return live
	}

	if r.checksumsMatch(live, target) {
		return live
	}
	if r.ignored(live) && r.ignored(target) {
		return live
	}

	r.syncChildren(live, a.Children(live), a.Children(target))

	if a.Name(live) == a.Name(target) {
		r.syncAttributes(live, target)
		return live
	}

	// The tag changed: take target's shallow identity but keep the live children so
	// their mount state survives.
	replacement := a.CloneShallow(target)
	for c := a.FirstChild(live); a.Valid(c); c = a.FirstChild(live) {
		a.AppendChild(replacement, c)
	}
	if parent := a.Parent(live); a.Valid(parent) {
		a.ReplaceChild(parent, replacement, live)
	}
	if st, ok := r.nodes[live]; ok {
		r.nodes[replacement] = st
		delete(r.nodes, live)
	}
	r.moveListeners(live, replacement)
	r.stats.Replaced++
	return replacement
}

// syncAttributes removes attributes missing from target and writes those that differ.
func (r *Reconciler[N]) syncAttributes(live, target N) {
	a := r.adapter
	for _, attr := range a.Attributes(live) {
		if _, ok := a.Attribute(target, attr.Namespace, attr.Name); !ok {
			a.RemoveAttribute(live, attr.Namespace, attr.Name)
			r.stats.AttrsRemoved++
		}
	}
	for _, attr := range a.Attributes(target) {
		if v, ok := a.Attribute(live, attr.Namespace, attr.Name); !ok || v != attr.Value {
			a.SetAttribute(live, attr.Namespace, attr.Name, attr.Value)
			r.stats.AttrsSet++
		}
	}
}

func (r *Reconciler[N]) checksumsMatch(live, target N) bool {
	lv, _ := r.adapter.Attribute(live, "", r.opts.checksumAttr)
	tv, _ := r.adapter.Attribute(target, "", r.opts.checksumAttr)
	return lv != "" && lv == tv
}

func (r *Reconciler[N]) ignored(n N) bool {
	_, ok := r.adapter.Attribute(n, "", r.opts.ignoreAttr)
	return ok
}

// key returns the explicit key, falling back to the identity attribute.
// Non-elements never have a key.
func (r *Reconciler[N]) key(n N) string {
	a := r.adapter
	if a.Category(n) != dom.ElementNode {
		return ""
	}
	if k, _ := a.Attribute(n, "", r.opts.keyAttr); k != "" {
		return k
	}
	if r.opts.identityAttr != "" {
		if id, _ := a.Attribute(n, "", r.opts.identityAttr); id != "" {
			return id
		}
	}
	return ""
}

func (r *Reconciler[N]) entry(n N) *state {
	st, ok := r.nodes[n]
	if !ok {
		st = &state{index: -1}
		r.nodes[n] = st
	}
	return st
}

func (r *Reconciler[N]) walk(n N, fn func(N)) {
	a := r.adapter
	if !a.Valid(n) {
		return
	}
	fn(n)
	for c := a.FirstChild(n); a.Valid(c); c = a.NextSibling(c) {
		r.walk(c, fn)
	}
}
