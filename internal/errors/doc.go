// Package errors provides structured, actionable error values for comp.
//
// Every error carries a stable code (e.g. "E101"), a category, a short message and,
// where useful, a hint and a code example showing the expected usage:
//
//	err := errors.New(errors.E102).
//	    WithDetail(`component "cart" was created without an actions factory`)
//
//	fmt.Println(err.Format())
//
// # Categories
//
//   - usage: caller bugs detected while creating or invoking components
//   - contract: reconciliation called with input that would corrupt the live tree
//   - render: failures caught at the render boundary (never fatal to dispatch)
//   - config: invalid configuration files
package errors
