// Package behavior builds the shared method table of a composed type.
//
// Every callable is installed through a Binder, which applies the conflict
// policy and wraps the callable so that a call folds its arguments through
// the before-call hooks, validates them, runs the callable, folds the
// result through the after-call hooks and captures it on the receiver.
// The wrapper itself never returns the callable's result: composed
// instances return themselves so calls can be chained, and the captured
// result is read back separately.
package behavior
