// Package contract enforces per-name type contracts on method arguments
// and property writes.
//
// A contract names a primitive kind (string, number, bool, object,
// function or any), optionally requires every argument to be a sequence of
// that kind, and may carry a custom predicate. Contracts can be declared in
// Go or read from HCL:
//
//	contract "greet" {
//	  type  = string
//	  check = length(value) > 0
//	}
package contract
