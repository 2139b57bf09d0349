// Package recorder records the actions of a registry's components so they can be
// saved, loaded and replayed.
//
// The recorder is itself a component named "recorder". It observes every other
// component in its registry and, while recording, appends each action as a Step.
// Its own actions are never recorded.
//
//	reg := comp.NewRegistry()
//	rec, _ := recorder.New(reg, recorder.WithStore(store))
//	cart.Invoke("add", "apple")
//	rec.Invoke("save")
//	rec.Invoke("load", id)
//	rec.Invoke("replay")
package recorder
