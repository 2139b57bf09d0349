package comp

import (
	"encoding/json"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"

	"github.com/vango-dev/comp/pkg/dom"
	"github.com/vango-dev/comp/pkg/reconcile"
)

const tracerName = "github.com/vango-dev/comp"

// Handle is the type-erased surface of a component, used for lookups by name.
type Handle interface {
	Name() string
	Invoke(action string, args ...any) *Call
	Get(prop string) (any, bool)
	ActionNames() []string
	Snapshot() (json.RawMessage, error)
}

// ActionEvent describes an action that has just run.
type ActionEvent struct {
	Component string
	Action    string
	Args      []any
	// Model is the JSON encoding of the model after the action ran.
	Model json.RawMessage
	Time  time.Time
}

// Observer is notified after every action of an observed component.
type Observer interface {
	ObserveAction(ActionEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ActionEvent)

// ObserveAction calls f(e).
func (f ObserverFunc) ObserveAction(e ActionEvent) { f(e) }

// Metrics receives runtime measurements. *metrics.Collector implements it.
type Metrics interface {
	ObserveAction(component, action string)
	ObserveRender(component string, d time.Duration, err error)
}

type noopMetrics struct{}

func (noopMetrics) ObserveAction(string, string)                 {}
func (noopMetrics) ObserveRender(string, time.Duration, error) {}

type registryOptions struct {
	logger        *slog.Logger
	metrics       Metrics
	tracer        trace.Tracer
	componentAttr string
	reconcileOpts []reconcile.Option
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryOptions)

// WithLogger sets the logger used for render failures and lifecycle messages.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(o *registryOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) RegistryOption {
	return func(o *registryOptions) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithTracer sets the tracer used for render spans.
func WithTracer(t trace.Tracer) RegistryOption {
	return func(o *registryOptions) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithComponentAttr sets the attribute that marks a component's container
// (default "data-component").
func WithComponentAttr(name string) RegistryOption {
	return func(o *registryOptions) {
		if name != "" {
			o.componentAttr = name
		}
	}
}

// WithReconcileOptions passes options to the registry's Reconciler.
func WithReconcileOptions(opts ...reconcile.Option) RegistryOption {
	return func(o *registryOptions) {
		o.reconcileOpts = append(o.reconcileOpts, opts...)
	}
}

// Registry owns a set of components and the host document they render into.
//
// All renders and reconciliation passes of the registry's components run under one
// mutex. Actions themselves are not serialized. Lifecycle events are delivered after
// that mutex is released, so listeners may invoke actions. Views run while it is held
// and must not invoke actions synchronously.
type Registry struct {
	opts       registryOptions
	reconciler *reconcile.Reconciler[*html.Node]

	// render lock
	mu      sync.Mutex
	host    *html.Node
	outputs map[string]string

	cmu        sync.RWMutex
	components map[string]Handle
	observers  []Observer
	unobserved mapset.Set[string]
}

// NewRegistry creates an empty registry with no host document.
func NewRegistry(opts ...RegistryOption) *Registry {
	o := registryOptions{
		logger:        slog.Default().With("component", "comp"),
		metrics:       noopMetrics{},
		tracer:        otel.Tracer(tracerName),
		componentAttr: dom.DefaultComponentAttr,
	}
	for _, opt := range opts {
		opt(&o)
	}
	reconcileOpts := append([]reconcile.Option{reconcile.WithLogger(o.logger)}, o.reconcileOpts...)
	reconcileOpts = append(reconcileOpts, reconcile.WithDeferredEvents())
	return &Registry{
		opts:       o,
		reconciler: reconcile.New[*html.Node](dom.HTML{}, reconcileOpts...),
		outputs:    make(map[string]string),
		components: make(map[string]Handle),
		unobserved: mapset.NewSet[string](),
	}
}

// Reconciler returns the reconciler used to apply render output. Lifecycle listeners
// can be attached to it.
func (r *Registry) Reconciler() *reconcile.Reconciler[*html.Node] {
	return r.reconciler
}

// Lookup returns the component registered under name.
func (r *Registry) Lookup(name string) (Handle, bool) {
	r.cmu.RLock()
	defer r.cmu.RUnlock()
	h, ok := r.components[name]
	return h, ok
}

// Names returns the registered component names in sorted order.
func (r *Registry) Names() []string {
	r.cmu.RLock()
	defer r.cmu.RUnlock()
	return slices.Sorted(maps.Keys(r.components))
}

// Observe adds an observer for the actions of all observed components.
func (r *Registry) Observe(o Observer) {
	r.cmu.Lock()
	defer r.cmu.Unlock()
	r.observers = append(r.observers, o)
}

// Mount sets the host document and applies every component's latest render output
// to it. A nil doc makes the registry headless again.
func (r *Registry) Mount(doc *html.Node) error {
	defer r.reconciler.Flush()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.host = doc
	if doc == nil {
		return nil
	}
	for _, name := range slices.Sorted(maps.Keys(r.outputs)) {
		if err := r.apply(name, r.outputs[name]); err != nil {
			return err
		}
	}
	return nil
}

// Exclusive runs fn under the registry's render lock. Pending continuations use it
// to mutate a model without racing a render.
func (r *Registry) Exclusive(fn func()) {
	defer r.reconciler.Flush()
	r.mu.Lock()
	defer r.mu.Unlock()
	fn()
}

// Host returns the mounted host document, if any.
func (r *Registry) Host() *html.Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.host
}

func (r *Registry) register(h Handle, observed bool) {
	r.cmu.Lock()
	defer r.cmu.Unlock()
	if _, exists := r.components[h.Name()]; exists {
		r.opts.logger.Warn("replacing registered component", "name", h.Name())
	}
	r.components[h.Name()] = h
	if observed {
		r.unobserved.Remove(h.Name())
	} else {
		r.unobserved.Add(h.Name())
	}
}

func (r *Registry) notify(e ActionEvent) {
	if r.unobserved.Contains(e.Component) {
		return
	}
	r.cmu.RLock()
	observers := slices.Clone(r.observers)
	r.cmu.RUnlock()
	for _, o := range observers {
		o.ObserveAction(e)
	}
}

// apply writes render output into the component's container. Must be called with
// r.mu held.
func (r *Registry) apply(name, out string) error {
	r.outputs[name] = out
	out = strings.TrimSpace(out)
	if r.host == nil || out == "" {
		return nil
	}
	container := dom.FindByAttr(r.host, r.opts.componentAttr, name)
	if container == nil {
		return nil
	}

	first := dom.FirstElementChild(container)
	if first == nil {
		nodes, err := dom.ParseFragment(out)
		if err != nil {
			return err
		}
		for c := container.FirstChild; c != nil; c = container.FirstChild {
			container.RemoveChild(c)
		}
		for _, n := range nodes {
			container.AppendChild(n)
		}
		return nil
	}

	_, err := r.reconciler.SynchronizeMarkup(first, out)
	return err
}
