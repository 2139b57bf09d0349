package reconcile

import "slices"

// Lifecycle event names.
const (
	EventMount    = "mount"
	EventDismount = "dismount"
)

// Event is a non-bubbling lifecycle notification.
type Event[N comparable] struct {
	Type   string
	Target N
}

// Listener handles lifecycle events.
type Listener[N comparable] func(Event[N])

// On registers fn for events of the given type on node. Events are delivered only
// to listeners of the node they concern.
func (r *Reconciler[N]) On(node N, event string, fn Listener[N]) {
	r.lmu.Lock()
	defer r.lmu.Unlock()
	byType, ok := r.listeners[node]
	if !ok {
		byType = make(map[string][]Listener[N])
		r.listeners[node] = byType
	}
	byType[event] = append(byType[event], fn)
}

// Off removes all listeners registered on node.
func (r *Reconciler[N]) Off(node N) {
	r.lmu.Lock()
	defer r.lmu.Unlock()
	delete(r.listeners, node)
}

// Listen registers fn for every lifecycle event of every node.
func (r *Reconciler[N]) Listen(fn Listener[N]) {
	r.lmu.Lock()
	defer r.lmu.Unlock()
	r.global = append(r.global, fn)
}

// Flush delivers the events queued by a reconciler created with
// WithDeferredEvents. Listeners run on the calling goroutine and may start new
// passes. Without deferral it does nothing.
func (r *Reconciler[N]) Flush() {
	r.lmu.Lock()
	queue := r.queue
	r.queue = nil
	r.lmu.Unlock()

	for _, e := range queue {
		r.deliver(e)
	}
}

// mount notifies node and then its descendants, depth-first. Nodes already
// mounted are not notified twice.
func (r *Reconciler[N]) mount(node N) {
	st := r.entry(node)
	if !st.mounted {
		st.mounted = true
		if r.key(node) != "" {
			r.dispatch(node, EventMount)
		}
	}

	a := r.adapter
	for c := a.FirstChild(node); a.Valid(c); c = a.NextSibling(c) {
		r.mount(c)
	}
}

// dismount notifies descendants first and then node, and drops their side-table
// entries.
func (r *Reconciler[N]) dismount(node N) {
	a := r.adapter
	for c := a.FirstChild(node); a.Valid(c); c = a.NextSibling(c) {
		r.dismount(c)
	}

	delete(r.nodes, node)
	if r.key(node) != "" {
		r.dispatch(node, EventDismount)
	}
}

func (r *Reconciler[N]) dispatch(node N, event string) {
	switch event {
	case EventMount:
		r.stats.Mounted++
	case EventDismount:
		r.stats.Dismounted++
	}

	e := Event[N]{Type: event, Target: node}
	if r.opts.deferEvents {
		r.lmu.Lock()
		r.queue = append(r.queue, e)
		r.lmu.Unlock()
		return
	}
	r.deliver(e)
}

func (r *Reconciler[N]) deliver(e Event[N]) {
	r.lmu.Lock()
	fns := slices.Clone(r.listeners[e.Target][e.Type])
	fns = append(fns, r.global...)
	r.lmu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}

// moveListeners hands the listeners of from over to to.
func (r *Reconciler[N]) moveListeners(from, to N) {
	r.lmu.Lock()
	defer r.lmu.Unlock()
	if byType, ok := r.listeners[from]; ok {
		r.listeners[to] = byType
		delete(r.listeners, from)
	}
}
