package comp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/comp/internal/errors"
	"github.com/vango-dev/comp/pkg/markup"
)

// ActionFunc is a single named action. The model is reached through the closure
// built by the ActionsFactory.
type ActionFunc[M any] func(args ...any) Result[M]

// Actions maps action names to functions.
type Actions[M any] map[string]ActionFunc[M]

// ActionsFactory builds a component's actions around its model.
type ActionsFactory[M any] func(model *M) Actions[M]

// View renders a model to markup. Render must not mutate the model.
type View[M any] interface {
	Render(model *M, h *markup.Builder) (string, error)
}

// Initializer is implemented by views that need the component once it exists.
type Initializer[M any] interface {
	Init(c *Component[M], model *M)
}

// ViewFactory creates a component's view.
type ViewFactory[M any] func() View[M]

// ViewFunc adapts a function to View.
type ViewFunc[M any] func(model *M, h *markup.Builder) (string, error)

// Render calls f(model, h).
func (f ViewFunc[M]) Render(model *M, h *markup.Builder) (string, error) { return f(model, h) }

// Getter lets a model answer Get without reflection.
type Getter interface {
	Get(prop string) (any, bool)
}

type componentOptions struct {
	observed bool
	logger   *slog.Logger
}

// Option configures a component.
type Option func(*componentOptions)

// Unobserved hides the component's actions from registry observers.
func Unobserved() Option {
	return func(o *componentOptions) {
		o.observed = false
	}
}

// WithComponentLogger sets the component's logger. It defaults to the registry's.
func WithComponentLogger(logger *slog.Logger) Option {
	return func(o *componentOptions) {
		o.logger = logger
	}
}

// Component is a model with named actions and a view.
type Component[M any] struct {
	name     string
	registry *Registry
	actions  Actions[M]
	view     View[M]
	model    *M
	logger   *slog.Logger
}

var _ Handle = (*Component[struct{}])(nil)

// Create builds a component, registers it in reg, renders it once and then calls the
// view's Init, if it has one. A nil reg gets a fresh headless registry and a nil
// model a zero value. A nil view factory makes rendering a no-op.
func Create[M any](reg *Registry, name string, actions ActionsFactory[M], view ViewFactory[M], model *M, opts ...Option) (*Component[M], error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New(errors.E101)
	}
	if actions == nil {
		return nil, errors.New(errors.E102).WithDetailf("component %q", name)
	}
	if reg == nil {
		reg = NewRegistry()
	}
	if model == nil {
		model = new(M)
	}

	o := componentOptions{observed: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = reg.opts.logger
	}

	c := &Component[M]{
		name:     name,
		registry: reg,
		actions:  maps.Clone(actions(model)),
		logger:   o.logger.With("name", name),
	}
	if c.actions == nil {
		c.actions = Actions[M]{}
	}
	if view != nil {
		c.view = view()
	}
	c.model = model

	reg.register(c, o.observed)
	// Failures are logged by render.
	_ = c.render(nil)
	if initializer, ok := c.view.(Initializer[M]); ok {
		initializer.Init(c, model)
	}
	return c, nil
}

// Name returns the component's registered name.
func (c *Component[M]) Name() string {
	return c.name
}

// Model returns the model. The pointer never changes; Pending outcomes are copied
// into it.
func (c *Component[M]) Model() *M {
	return c.model
}

// Registry returns the registry the component belongs to.
func (c *Component[M]) Registry() *Registry {
	return c.registry
}

// ActionNames returns the component's action names in sorted order.
func (c *Component[M]) ActionNames() []string {
	return slices.Sorted(maps.Keys(c.actions))
}

// Invoke runs the named action and renders. The returned Call completes after the
// synchronous render for Immediate results and after the deferred render for Pending
// ones. An unknown action fails the Call with E103 without rendering.
func (c *Component[M]) Invoke(action string, args ...any) *Call {
	call := newCall(c.name, action)
	fn, ok := c.actions[action]
	if !ok {
		call.finish(errors.New(errors.E103).WithDetailf("%s.%s (available: %s)",
			c.name, action, strings.Join(c.ActionNames(), ", ")))
		return call
	}

	result := fn(args...)
	c.registry.opts.metrics.ObserveAction(c.name, action)
	c.registry.notify(c.event(action, args))

	err := c.render(nil)
	if !result.IsPending() {
		call.finish(err)
		return call
	}

	call.pending = true
	go c.await(call, result.pending)
	return call
}

func (c *Component[M]) await(call *Call, ch <-chan Outcome[M]) {
	outcome, ok := <-ch
	if !ok || (outcome.Err == nil && outcome.Model == nil) {
		err := errors.New(errors.E302).WithDetailf("%s.%s", c.name, call.Action)
		c.fail(err)
		call.finish(err)
		return
	}
	if outcome.Err != nil {
		err := errors.New(errors.E302).WithDetailf("%s.%s", c.name, call.Action).Wrap(outcome.Err).
			WithSuggestion("Handle the error inside your action and resolve with a model")
		c.fail(err)
		call.finish(err)
		return
	}

	call.finish(c.render(outcome.Model))
}

// Get reads a model property. Models implementing Getter answer directly; otherwise
// prop is looked up as a map key or an exported struct field (or its json name).
func (c *Component[M]) Get(prop string) (any, bool) {
	model := c.Model()
	if g, ok := any(model).(Getter); ok {
		return g.Get(prop)
	}
	return lookup(reflect.ValueOf(model), prop)
}

// Snapshot returns the JSON encoding of the current model.
func (c *Component[M]) Snapshot() (json.RawMessage, error) {
	return json.Marshal(c.Model())
}

// Output returns the markup of the latest render.
func (c *Component[M]) Output() string {
	c.registry.mu.Lock()
	defer c.registry.mu.Unlock()
	return c.registry.outputs[c.name]
}

func (c *Component[M]) event(action string, args []any) ActionEvent {
	snapshot, err := c.Snapshot()
	if err != nil {
		c.logger.Debug("model snapshot failed", "error", err)
	}
	return ActionEvent{
		Component: c.name,
		Action:    action,
		Args:      args,
		Model:     snapshot,
		Time:      time.Now(),
	}
}

// render runs the view and applies its output under the registry lock. A non-nil
// next replaces the model's value first. Lifecycle events of the pass are delivered
// once the lock is released.
func (c *Component[M]) render(next *M) error {
	r := c.registry
	defer r.reconciler.Flush()
	r.mu.Lock()
	defer r.mu.Unlock()

	if next != nil && next != c.model {
		*c.model = *next
	}
	if c.view == nil {
		return nil
	}

	_, span := r.opts.tracer.Start(context.Background(), "comp.render",
		trace.WithAttributes(attribute.String("comp.component", c.name)))
	defer span.End()

	start := time.Now()
	err := c.renderLocked(c.model)
	r.opts.metrics.ObserveRender(c.name, time.Since(start), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error("render failed", "error", err)
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

func (c *Component[M]) renderLocked(model *M) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.New(errors.E301).WithDetailf("%s: panic: %v", c.name, p)
		}
	}()

	h := markup.NewBuilder()
	defer h.Release()
	out, err := c.view.Render(model, h)
	if err != nil {
		return errors.New(errors.E301).WithDetail(c.name).Wrap(err)
	}
	if err := c.registry.apply(c.name, out); err != nil {
		return errors.New(errors.E301).WithDetailf("%s: applying output", c.name).Wrap(err)
	}
	return nil
}

// fail reports a failure that happened outside a render.
func (c *Component[M]) fail(err error) {
	c.registry.opts.metrics.ObserveRender(c.name, 0, err)
	c.logger.Error("render failed", "error", err)
}

func lookup(v reflect.Value, prop string) (any, bool) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		value := v.MapIndex(reflect.ValueOf(prop).Convert(v.Type().Key()))
		if !value.IsValid() {
			return nil, false
		}
		return value.Interface(), true

	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			tag, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if field.Name == prop || tag == prop {
				return v.Field(i).Interface(), true
			}
		}
	}
	return nil, false
}

func (c *Component[M]) String() string {
	return fmt.Sprintf("Component(%s)", c.name)
}
