// Package onchain models the read-only collaborator contracts the engine
// depends on: token metadata and supply reads, and the USD price oracle.
// Every read can revert; CallResult makes the caller choose between a safe
// default and failing the whole event, instead of hiding that decision.
package onchain

// CallResult is the outcome of a synchronous contract read: a value, or a
// revert. In the deterministic replay environment a revert resolves
// immediately, so there is no timeout or retry dimension.
type CallResult[T any] struct {
	value    T
	reverted bool
}

// Value wraps a successful read.
func Value[T any](v T) CallResult[T] {
	return CallResult[T]{value: v}
}

// Revert marks a failed read.
func Revert[T any]() CallResult[T] {
	return CallResult[T]{reverted: true}
}

// Reverted reports whether the read failed.
func (r CallResult[T]) Reverted() bool { return r.reverted }

// UnwrapOr substitutes a caller-chosen default for a revert. Use it at call
// sites where a default is safe, e.g. a zero balance.
func (r CallResult[T]) UnwrapOr(def T) T {
	if r.reverted {
		return def
	}
	return r.value
}

// OrFatal promotes a revert to a handler-fatal error. Use it where no
// trustworthy substitute exists and the event must be dropped whole.
func (r CallResult[T]) OrFatal(err error) (T, error) {
	if r.reverted {
		var zero T
		return zero, err
	}
	return r.value, nil
}
