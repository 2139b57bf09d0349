package reconcile

import "strconv"

// keyed is an insertion-ordered map from effective key to node.
type keyed[N comparable] struct {
	order []string
	nodes map[string]keyedNode[N]
	// shadowed holds nodes that lost a duplicate-key collision.
	shadowed []N
}

type keyedNode[N comparable] struct {
	node  N
	index int
}

// keyNodes indexes children by effective key. Later duplicates win.
func (r *Reconciler[N]) keyNodes(children []N, live bool) *keyed[N] {
	k := &keyed[N]{
		order: make([]string, 0, len(children)),
		nodes: make(map[string]keyedNode[N], len(children)),
	}
	for i, child := range children {
		if live {
			r.entry(child).index = i
		}
		key := r.key(child)
		if key == "" {
			key = "#" + strconv.Itoa(i)
		} else {
			key = "k:" + key
		}
		if prev, ok := k.nodes[key]; ok {
			k.shadowed = append(k.shadowed, prev.node)
		} else {
			k.order = append(k.order, key)
		}
		k.nodes[key] = keyedNode[N]{node: child, index: i}
	}
	return k
}

// syncChildren reconciles parent's live children against the target list.
func (r *Reconciler[N]) syncChildren(parent N, live, target []N) {
	a := r.adapter
	prev := r.keyNodes(live, true)
	next := r.keyNodes(target, false)

	// Remove old nodes, including live duplicates that can never be matched.
	for _, key := range prev.order {
		if _, ok := next.nodes[key]; ok {
			continue
		}
		r.removeChild(parent, prev.nodes[key].node)
	}
	for _, n := range prev.shadowed {
		r.removeChild(parent, n)
	}

	// Insert, move and update in target order.
	for _, key := range next.order {
		b := next.nodes[key]

		m, ok := prev.nodes[key]
		if !ok {
			node := a.CloneDeep(b.node)
			a.InsertBefore(parent, node, r.childAt(parent, b.index))
			r.entry(node).index = b.index
			r.stats.Inserted++
			r.mount(node)
			continue
		}

		node := r.syncNode(m.node, b.node)
		r.entry(node).index = b.index

		ref := r.childAt(parent, b.index)
		if node == ref || (!a.Valid(ref) && !a.Valid(a.NextSibling(node))) {
			continue
		}
		// A move is structurally transparent: no dismount or mount.
		a.InsertBefore(parent, node, ref)
		r.stats.Moved++
	}
}

func (r *Reconciler[N]) removeChild(parent, child N) {
	r.dismount(child)
	r.adapter.RemoveChild(parent, child)
	r.stats.Removed++
}

// childAt returns parent's current child at index i, or the zero node.
func (r *Reconciler[N]) childAt(parent N, i int) N {
	a := r.adapter
	c := a.FirstChild(parent)
	for ; i > 0 && a.Valid(c); i-- {
		c = a.NextSibling(c)
	}
	return c
}
