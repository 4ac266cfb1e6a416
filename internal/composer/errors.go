package composer

import (
	"errors"
	"strconv"
)

// ErrMissingCapability is matched by every *MissingCapabilityError.
var ErrMissingCapability = errors.New("composer: missing capability")

// MissingCapabilityError is returned when a required capability names a
// member the assembled type does not have.
type MissingCapabilityError struct {
	Type       string
	Capability string
	Member     string
}

// Error implements the error interface.
func (e *MissingCapabilityError) Error() string {
	// Example: composer: type "Custom" does not implement "log" from "Loggable"
	return "composer: type " + strconv.Quote(e.Type) + " does not implement " +
		strconv.Quote(e.Member) + " from " + strconv.Quote(e.Capability)
}

// Is reports whether target is ErrMissingCapability.
func (e *MissingCapabilityError) Is(target error) bool { return target == ErrMissingCapability }

// ErrUnknownMember is matched by every *UnknownMemberError.
var ErrUnknownMember = errors.New("composer: unknown member")

// UnknownMemberError is returned when an instance is asked for a method,
// property or dependency its type does not declare.
type UnknownMemberError struct {
	Type string
	Name string
}

// Error implements the error interface.
func (e *UnknownMemberError) Error() string {
	return "composer: type " + strconv.Quote(e.Type) + " has no member " + strconv.Quote(e.Name)
}

// Is reports whether target is ErrUnknownMember.
func (e *UnknownMemberError) Is(target error) bool { return target == ErrUnknownMember }
