// Package entity defines the read-only record resolved from the ledger.
//
// An Entity is only ever produced from a successful gateway response. Callers
// that need to express "no entity" use a nil *Entity rather than a zero value.
package entity

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

// ErrInvalid is wrapped by every error returned from Validate.
var ErrInvalid = errors.New("entity: invalid record")

// Entity is an immutable ledger record.
type Entity struct {
	ID         int64  `json:"id" yaml:"id"`
	Genes      string `json:"genes" yaml:"genes"`
	Generation int64  `json:"generation" yaml:"generation"`
	BirthTime  int64  `json:"birthTime" yaml:"birthTime"`
	ParentA    int64  `json:"parentA" yaml:"parentA"`
	ParentB    int64  `json:"parentB" yaml:"parentB"`
}

// ParentSlot names one of the two ancestor references of an Entity.
type ParentSlot uint8

const (
	SlotA ParentSlot = iota + 1
	SlotB
)

func (s ParentSlot) String() string {
	switch s {
	case SlotA:
		return "a"
	case SlotB:
		return "b"
	default:
		return fmt.Sprintf("slot(%d)", uint8(s))
	}
}

// ParseSlot accepts "a" or "b".
func ParseSlot(s string) (ParentSlot, error) {
	switch s {
	case "a", "A":
		return SlotA, nil
	case "b", "B":
		return SlotB, nil
	default:
		return 0, fmt.Errorf("entity: unknown parent slot %q", s)
	}
}

// Validate checks the structural invariants of a record.
func (e Entity) Validate() error {
	switch {
	case e.ID < 1:
		return fmt.Errorf("%w: id %d < 1", ErrInvalid, e.ID)
	case e.Generation < 0:
		return fmt.Errorf("%w: negative generation %d", ErrInvalid, e.Generation)
	case e.BirthTime < 0:
		return fmt.Errorf("%w: negative birth time %d", ErrInvalid, e.BirthTime)
	case e.ParentA < 0 || e.ParentB < 0:
		return fmt.Errorf("%w: negative parent id", ErrInvalid)
	case !utf8.ValidString(e.Genes):
		return fmt.Errorf("%w: genes is not valid UTF-8", ErrInvalid)
	}
	return nil
}

// Parent returns the ancestor id held in slot, 0 when there is none.
func (e Entity) Parent(slot ParentSlot) int64 {
	switch slot {
	case SlotA:
		return e.ParentA
	case SlotB:
		return e.ParentB
	default:
		return 0
	}
}

// Genesis reports whether the record has no ancestors.
func (e Entity) Genesis() bool { return e.ParentA == 0 && e.ParentB == 0 }

// Born returns the birth time, or the zero time when unset.
func (e Entity) Born() time.Time {
	if e.BirthTime == 0 {
		return time.Time{}
	}
	return time.Unix(e.BirthTime, 0).UTC()
}
