// Package comptest provides testing helpers for comp components.
//
// The comptest package reduces boilerplate when testing components by providing a
// fluent host builder and render assertions.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    host := comptest.NewHost().WithContainer("counter").Build(t)
//	    c, err := comp.Create(host.Registry, "counter", counterActions, counterView, &Counter{})
//	    if err != nil {
//	        t.Fatalf("unexpected error: %v", err)
//	    }
//	    comptest.Wait(t, c.Invoke("inc"))
//	    comptest.ExpectContains(t, host, "counter", "1")
//	}
//
// # Fluent Host Builder
//
// The host builder allows chaining multiple setup operations:
//
//	host := comptest.NewHost().
//	    WithContainer("cart").
//	    WithContainer("recorder").
//	    WithOptions(comp.WithMetrics(m)).
//	    Build(t)
//
// The registry logs into host.Logs and the host records every mount and dismount
// as "type:key" in host.Events().
package comptest
