package behavior

import (
	"errors"
	"strconv"
)

// ErrFrozen is returned when binding into a table that has been attached
// to a type.
var ErrFrozen = errors.New("behavior: table is frozen")

// ErrDuplicateName is matched by every *DuplicateNameError.
var ErrDuplicateName = errors.New("behavior: duplicate name")

// DuplicateNameError is returned under the Fail policy when a name is
// bound twice.
type DuplicateNameError struct{ Name string }

// Error implements the error interface.
func (e *DuplicateNameError) Error() string {
	// Example: behavior: method "greet" already exists
	return "behavior: method " + strconv.Quote(e.Name) + " already exists"
}

// Is reports whether target is ErrDuplicateName.
func (e *DuplicateNameError) Is(target error) bool { return target == ErrDuplicateName }

// Bound is an installed, wrapped callable.
type Bound func(recv Receiver, args []any) error

// Entry is one row of a Table.
type Entry struct {
	// Name is the name the entry is installed under.
	Name string
	// Requested is the name the caller asked for; it differs from Name
	// only when the Rename policy picked an alternate.
	Requested string
	Call      Bound
}

// Table is an ordered name -> entry mapping. It is append-only while a
// type is being assembled and read-only once frozen.
type Table struct {
	order   []string
	entries map[string]*Entry
	frozen  bool
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{entries: make(map[string]*Entry)}
}

// Has reports whether name is installed.
func (t *Table) Has(name string) bool {
	_, ok := t.entries[name]
	return ok
}

// Lookup returns the entry installed under name.
func (t *Table) Lookup(name string) (*Entry, bool) {
	e, ok := t.entries[name]
	return e, ok
}

// Names returns the installed names in installation order. Overriding a
// name keeps its original position.
func (t *Table) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of installed names.
func (t *Table) Len() int { return len(t.order) }

// Put installs call under name without any wrapping or conflict policy,
// replacing an existing entry in place.
func (t *Table) Put(name string, call Bound) error {
	return t.put(&Entry{Name: name, Requested: name, Call: call})
}

func (t *Table) put(e *Entry) error {
	if t.frozen {
		return ErrFrozen
	}
	if _, exists := t.entries[e.Name]; !exists {
		t.order = append(t.order, e.Name)
	}
	t.entries[e.Name] = e
	return nil
}

// Freeze makes the table read-only.
func (t *Table) Freeze() { t.frozen = true }

// Frozen reports whether Freeze has been called.
func (t *Table) Frozen() bool { return t.frozen }
