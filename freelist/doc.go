// Package freelist provides a generic slot table with free slot reuse.
//
// Values are addressed by handles instead of pointers so that a table can
// outlive any single frame. A [Handle] owns its slot and is given back with
// [List.Free]; a [WeakHandle] can be kept anywhere and is detectably stale
// once the slot has been freed, even after the slot holds a new value.
//
//	l := freelist.New[string]()
//	h := l.Insert("shadow")
//	weak := h.Weak()
//	l.Free(h)
//	_, ok := l.GetOpt(weak) // ok == false
//
// # Thread Safety
//
// List is not safe for concurrent use.
package freelist
