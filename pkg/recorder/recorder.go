package recorder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vango-dev/comp/pkg/comp"
	"github.com/vango-dev/comp/pkg/markup"
)

// Name is the recorder's component name.
const Name = "recorder"

// idLayout is ddmmyyhhmmss.
const idLayout = "020106150405"

// Default confirmation delays.
const (
	DefaultSaveDelay = 10 * time.Second
	DefaultLoadDelay = 3 * time.Second
)

type options struct {
	store        Store
	sessionName  string
	saveDelay    time.Duration
	loadDelay    time.Duration
	storeTimeout time.Duration
	now          func() time.Time
	view         comp.ViewFactory[Session]
	logger       *slog.Logger
}

// Option configures a Recorder.
type Option func(*options)

// WithStore sets where recordings are saved. Default: a MemoryStore.
func WithStore(s Store) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithSessionName sets the session name used as the recording id prefix.
// Default: a random UUID.
func WithSessionName(name string) Option {
	return func(o *options) {
		o.sessionName = name
	}
}

// WithConfirmationDelays sets how long the save and load confirmation messages stay.
func WithConfirmationDelays(save, load time.Duration) Option {
	return func(o *options) {
		o.saveDelay = save
		o.loadDelay = load
	}
}

// WithStoreTimeout bounds each store operation. Default: 5 seconds.
func WithStoreTimeout(d time.Duration) Option {
	return func(o *options) {
		o.storeTimeout = d
	}
}

// WithClock sets the time source for step timestamps and recording ids.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithView replaces the recorder's view.
func WithView(view comp.ViewFactory[Session]) Option {
	return func(o *options) {
		o.view = view
	}
}

// WithLogger sets the recorder's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Recorder is the recorder component.
type Recorder struct {
	*comp.Component[Session]

	registry  *comp.Registry
	opts      options
	replaying atomic.Bool
}

var _ comp.Observer = (*Recorder)(nil)

// New creates the recorder component in reg and starts observing it. Recording is on
// from the start.
func New(reg *comp.Registry, opts ...Option) (*Recorder, error) {
	o := options{
		saveDelay:    DefaultSaveDelay,
		loadDelay:    DefaultLoadDelay,
		storeTimeout: 5 * time.Second,
		now:          time.Now,
		view:         func() comp.View[Session] { return view{} },
		logger:       slog.Default().With("component", "recorder"),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.store == nil {
		o.store = NewMemoryStore()
	}
	if o.sessionName == "" {
		o.sessionName = uuid.NewString()
	}
	if reg == nil {
		reg = comp.NewRegistry()
	}

	r := &Recorder{registry: reg, opts: o}
	session := &Session{
		Name:       o.sessionName,
		Recording:  true,
		Components: make(map[string]*ComponentState),
	}
	c, err := comp.Create(reg, Name, r.actions, o.view, session, comp.Unobserved())
	if err != nil {
		return nil, err
	}
	r.Component = c
	reg.Observe(r)
	return r, nil
}

// Store returns the recorder's store.
func (r *Recorder) Store() Store {
	return r.opts.store
}

// ObserveAction records an action of another component while recording is on.
func (r *Recorder) ObserveAction(e comp.ActionEvent) {
	if r.Component == nil || r.replaying.Load() || !r.Model().Recording {
		return
	}
	r.Invoke("recordStep", e.Component, e.Model, e.Action, e.Args)
}

// Track stores the current model of each component as its initial state.
func (r *Recorder) Track(handles ...comp.Handle) error {
	for _, h := range handles {
		snapshot, err := h.Snapshot()
		if err != nil {
			return fmt.Errorf("snapshot %s: %w", h.Name(), err)
		}
		if err := r.Invoke("storeComponent", h.Name(), snapshot).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (r *Recorder) actions(m *Session) comp.Actions[Session] {
	return comp.Actions[Session]{
		"replay": func(args ...any) comp.Result[Session] {
			r.replay(m.Steps)
			return comp.Immediate[Session]()
		},

		"pause": func(args ...any) comp.Result[Session] {
			m.Recording = false
			return comp.Immediate[Session]()
		},

		"resume": func(args ...any) comp.Result[Session] {
			m.Recording = true
			return comp.Immediate[Session]()
		},

		// recordStep(component string, model json.RawMessage, action string, args []any)
		"recordStep": func(args ...any) comp.Result[Session] {
			name, _ := arg[string](args, 0)
			state, _ := arg[json.RawMessage](args, 1)
			action, _ := arg[string](args, 2)
			stepArgs, _ := arg[[]any](args, 3)
			if name == "" || action == "" {
				r.opts.logger.Warn("recordStep needs a component and an action", "args", args)
				return comp.Immediate[Session]()
			}

			m.component(name).CurrentState = state
			m.Steps = append(m.Steps, Step{
				Timestamp: r.opts.now(),
				Component: name,
				Action:    action,
				Args:      stepArgs,
			})
			return comp.Immediate[Session]()
		},

		"save": func(args ...any) comp.Result[Session] {
			id := m.Name + "-" + r.opts.now().Format(idLayout)
			data, err := json.Marshal(m)
			if err == nil {
				err = r.withStore(func(ctx context.Context) error {
					return r.opts.store.Save(ctx, id, data)
				})
			}
			if err != nil {
				r.opts.logger.Error("failed to save recording", "id", id, "error", err)
				return comp.Immediate[Session]()
			}

			r.opts.logger.Info("saved recording", "id", id, "steps", len(m.Steps))
			m.RecordingID = id
			m.ConfirmationMessage = "Saved recording with recording id: " + id
			return r.clearAfter(m, r.opts.saveDelay)
		},

		"load": func(args ...any) comp.Result[Session] {
			id, ok := arg[string](args, 0)
			if !ok || id == "" {
				id = m.RecordingID
			}

			var data []byte
			err := r.withStore(func(ctx context.Context) (err error) {
				data, err = r.opts.store.Load(ctx, id)
				return err
			})
			if err != nil || data == nil {
				r.opts.logger.Warn("Failed to load recording. Please check your recording id and try again.",
					"id", id, "error", err)
				return comp.Immediate[Session]()
			}
			loaded, err := Decode(data)
			if err != nil {
				r.opts.logger.Warn("recording is not valid JSON", "id", id, "error", err)
				return comp.Immediate[Session]()
			}

			m.Steps = loaded.Steps
			for name, st := range loaded.Components {
				m.component(name).InitialState = st.InitialState
			}
			m.RecordingID = id
			m.ConfirmationMessage = "Recording " + id + " loaded"
			return r.clearAfter(m, r.opts.loadDelay)
		},

		// storeComponent(component string, model json.RawMessage)
		"storeComponent": func(args ...any) comp.Result[Session] {
			name, _ := arg[string](args, 0)
			state, _ := arg[json.RawMessage](args, 1)
			if name == "" {
				r.opts.logger.Warn("storeComponent needs a component name", "args", args)
				return comp.Immediate[Session]()
			}
			m.component(name).InitialState = state
			return comp.Immediate[Session]()
		},

		"setRecordingId": func(args ...any) comp.Result[Session] {
			id, _ := arg[string](args, 0)
			m.RecordingID = id
			return comp.Immediate[Session]()
		},
	}
}

// replay re-invokes steps by component name. Replayed actions are not recorded.
func (r *Recorder) replay(steps []Step) {
	r.replaying.Store(true)
	defer r.replaying.Store(false)

	for _, step := range steps {
		h, ok := r.registry.Lookup(step.Component)
		if !ok {
			r.opts.logger.Warn("replay: unknown component", "component", step.Component, "action", step.Action)
			continue
		}
		if err := h.Invoke(step.Action, step.Args...).Err(); err != nil {
			r.opts.logger.Warn("replay step failed", "component", step.Component, "action", step.Action, "error", err)
		}
	}
}

func (r *Recorder) clearAfter(m *Session, delay time.Duration) comp.Result[Session] {
	return comp.Async(func() (*Session, error) {
		<-time.After(delay)
		r.registry.Exclusive(func() { m.ConfirmationMessage = "" })
		return m, nil
	})
}

func (r *Recorder) withStore(fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.opts.storeTimeout)
	defer cancel()
	return fn(ctx)
}

func arg[T any](args []any, i int) (T, bool) {
	var zero T
	if i >= len(args) {
		return zero, false
	}
	v, ok := args[i].(T)
	return v, ok
}

// view is the default recorder view.
type view struct{}

func (view) Render(s *Session, h *markup.Builder) (string, error) {
	h.Raw(`<div class="recorder"`).Attr("data-recording", strconv.FormatBool(s.Recording)).Raw(">")
	h.Raw(`<span data-selector="recorder-steps">`).Value(len(s.Steps)).Raw(`</span>`)
	if s.RecordingID != "" {
		h.Raw(`<code data-selector="recorder-recording-id">`).Text(s.RecordingID).Raw(`</code>`)
	}
	if s.ConfirmationMessage != "" {
		h.Raw(`<p data-selector="recorder-confirmation-message">`).Text(s.ConfirmationMessage).Raw(`</p>`)
	}
	h.Raw(`</div>`)
	return h.String(), nil
}
