// Package comp is a small component runtime built on the reconcile package.
//
// A component wraps a mutable model with a fixed set of named actions and a view.
// Every action invocation renders the view once, synchronously. An action may also
// return a Pending result; when its Outcome arrives the resolved model replaces the
// current one and the view renders again.
//
//	type Counter struct{ Count int }
//
//	actions := func(m *Counter) comp.Actions[Counter] {
//	    return comp.Actions[Counter]{
//	        "inc": func(args ...any) comp.Result[Counter] {
//	            m.Count++
//	            return comp.Immediate[Counter]()
//	        },
//	    }
//	}
//
//	reg := comp.NewRegistry()
//	counter, err := comp.Create(reg, "counter", actions, counterView, &Counter{})
//	counter.Invoke("inc")
//
// Render output is applied to the registry's host document, if one is mounted, by
// synchronizing the element carrying data-component="<name>". Render failures are
// logged and returned as errors; they never stop further actions from running.
package comp
