// Package reconcile synchronizes a live mutable tree with a freshly produced target
// tree, performing the minimum edits necessary.
//
// A Reconciler is written against dom.Adapter, so any host tree can be driven. For
// each node pair it either skips the subtree (equal checksum markers, or the ignore
// marker on both sides), updates it in place (children first, then attributes or text),
// swaps the tag while keeping the existing children, or replaces the node outright when
// the categories differ.
//
// # Keyed children
//
// Children are matched by effective key: the key attribute, else the identity
// attribute, else the position in the list. Matched nodes are reused and moved
// without lifecycle events; unmatched live nodes are dismounted and removed; new
// target nodes are inserted and mounted. Duplicate keys resolve last-wins.
//
// # Lifecycle
//
// Only keyed nodes receive notifications. Mount runs parent first, dismount runs
// children first. Events do not bubble: a listener registered with On sees only the
// events of that node. The first Synchronize for a root mounts the whole tree once.
//
// A Reconciler is not safe for concurrent use; callers must not synchronize
// overlapping subtrees reentrantly.
package reconcile
