package comptest

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/net/html"

	"github.com/vango-dev/comp/pkg/comp"
	"github.com/vango-dev/comp/pkg/dom"
	"github.com/vango-dev/comp/pkg/reconcile"
)

// WaitTimeout bounds Wait.
var WaitTimeout = 5 * time.Second

// HostBuilder provides a fluent API for building test hosts.
type HostBuilder struct {
	containers []string
	markup     string
	opts       []comp.RegistryOption
	level      slog.Level
	headless   bool
}

// NewHost creates a new host builder.
func NewHost() *HostBuilder {
	return &HostBuilder{level: slog.LevelDebug}
}

// WithContainer adds an empty container for the named component to the body.
func (b *HostBuilder) WithContainer(name string) *HostBuilder {
	b.containers = append(b.containers, name)
	return b
}

// WithMarkup adds raw markup to the body, after the containers.
func (b *HostBuilder) WithMarkup(markup string) *HostBuilder {
	b.markup += markup
	return b
}

// WithOptions adds registry options.
func (b *HostBuilder) WithOptions(opts ...comp.RegistryOption) *HostBuilder {
	b.opts = append(b.opts, opts...)
	return b
}

// WithLogLevel sets the minimum level captured in Logs (default: debug).
func (b *HostBuilder) WithLogLevel(level slog.Level) *HostBuilder {
	b.level = level
	return b
}

// Headless builds a registry with no host document.
func (b *HostBuilder) Headless() *HostBuilder {
	b.headless = true
	return b
}

// Build creates the registry and mounts it on the host document.
func (b *HostBuilder) Build(tb testing.TB) *Host {
	tb.Helper()

	h := &Host{Logs: &Logs{}}
	logger := slog.New(slog.NewTextHandler(h.Logs, &slog.HandlerOptions{Level: b.level}))
	h.Registry = comp.NewRegistry(append([]comp.RegistryOption{comp.WithLogger(logger)}, b.opts...)...)
	h.Registry.Reconciler().Listen(h.record)

	if b.headless {
		return h
	}

	var body strings.Builder
	for _, name := range b.containers {
		body.WriteString(`<div ` + dom.DefaultComponentAttr + `="` + html.EscapeString(name) + `"></div>`)
	}
	body.WriteString(b.markup)

	doc, err := dom.ParseDocument("<html><head></head><body>" + body.String() + "</body></html>")
	if err != nil {
		tb.Fatalf("comptest: parse host: %v", err)
	}
	if err := h.Registry.Mount(doc); err != nil {
		tb.Fatalf("comptest: mount host: %v", err)
	}
	h.Doc = doc
	return h
}

// Host is a registry mounted on a parsed host document.
type Host struct {
	Registry *comp.Registry
	Doc      *html.Node
	Logs     *Logs

	mu     sync.Mutex
	events []string
}

func (h *Host) record(e reconcile.Event[*html.Node]) {
	key, _ := (dom.HTML{}).Attribute(e.Target, "", dom.DefaultKeyAttr)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e.Type+":"+key)
}

// Events returns the recorded lifecycle events.
func (h *Host) Events() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.events...)
}

// ResetEvents clears the recorded lifecycle events.
func (h *Host) ResetEvents() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = nil
}

// Container returns the named component's container, or nil.
func (h *Host) Container(name string) *html.Node {
	if h.Doc == nil {
		return nil
	}
	return dom.FindByAttr(h.Doc, dom.DefaultComponentAttr, name)
}

// HTML returns the markup inside the named component's container.
func (h *Host) HTML(name string) string {
	var out string
	h.Registry.Exclusive(func() {
		if c := h.Container(name); c != nil {
			out = dom.InnerHTML(c)
		}
	})
	return out
}

// Logs is a concurrency-safe log sink.
type Logs struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write implements io.Writer.
func (l *Logs) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(p)
}

// String returns everything logged so far.
func (l *Logs) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.String()
}

// Contains reports whether s was logged.
func (l *Logs) Contains(s string) bool {
	return strings.Contains(l.String(), s)
}

// Wait waits for call to complete and returns its error. It fails the test if the
// call does not complete within WaitTimeout.
func Wait(tb testing.TB, call *comp.Call) error {
	tb.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), WaitTimeout)
	defer cancel()
	err := call.Wait(ctx)
	if err == context.DeadlineExceeded {
		tb.Fatalf("comptest: %s.%s did not complete within %s", call.Component, call.Action, WaitTimeout)
	}
	return err
}

// MustWait is Wait that fails the test on a call error.
func MustWait(tb testing.TB, call *comp.Call) {
	tb.Helper()
	if err := Wait(tb, call); err != nil {
		tb.Fatalf("comptest: %s.%s: %v", call.Component, call.Action, err)
	}
}

// ExpectContains asserts that the named container's markup contains expected.
//
// Example:
//
//	comptest.ExpectContains(t, host, "counter", "<p>1</p>")
func ExpectContains(t *testing.T, h *Host, name, expected string) {
	t.Helper()
	markup := h.HTML(name)
	if !strings.Contains(markup, expected) {
		t.Errorf("expected %s to contain %q, got:\n%s", name, expected, truncate(markup, 500))
	}
}

// ExpectNotContains asserts that the named container's markup does not contain
// unexpected.
func ExpectNotContains(t *testing.T, h *Host, name, unexpected string) {
	t.Helper()
	markup := h.HTML(name)
	if strings.Contains(markup, unexpected) {
		t.Errorf("expected %s to NOT contain %q, got:\n%s", name, unexpected, truncate(markup, 500))
	}
}

// ExpectAttribute asserts that n has attr set to value.
func ExpectAttribute(t *testing.T, n *html.Node, attr, value string) {
	t.Helper()
	got, ok := (dom.HTML{}).Attribute(n, "", attr)
	if !ok {
		t.Errorf("expected <%s> to have attribute %q", (dom.HTML{}).Name(n), attr)
		return
	}
	if got != value {
		t.Errorf("expected %s=%q, got %q", attr, value, got)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
