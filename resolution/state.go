package resolution

import (
	"fmt"

	"xdao.co/ledgerview/entity"
)

type Status uint8

const (
	StatusIdle Status = iota
	StatusPending
	StatusResolved
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusPending:
		return "Pending"
	case StatusResolved:
		return "Resolved"
	case StatusFailed:
		return "Failed"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// NoID is the RequestedID of states that have no identifier: a random
// request whose id is not chosen yet, or a request rejected before an id
// could be established.
const NoID int64 = 0

// State is one published resolution snapshot. Values are immutable once
// published; Entity is non-nil only for StatusResolved and Err only for
// StatusFailed.
type State struct {
	Status      Status
	RequestedID int64
	Entity      *entity.Entity
	Err         *Error
}

func Idle() State { return State{Status: StatusIdle} }

func Pending(id int64) State { return State{Status: StatusPending, RequestedID: id} }

func Resolved(id int64, e entity.Entity) State {
	return State{Status: StatusResolved, RequestedID: id, Entity: &e}
}

func Failed(id int64, err *Error) State {
	return State{Status: StatusFailed, RequestedID: id, Err: err}
}

// Terminal reports whether the state ends a request.
func (s State) Terminal() bool { return s.Status == StatusResolved || s.Status == StatusFailed }

// Kind returns the error kind of a Failed state, "" otherwise.
func (s State) Kind() Kind {
	if s.Err == nil {
		return ""
	}
	return s.Err.Kind
}

func (s State) String() string {
	switch s.Status {
	case StatusIdle:
		return "Idle"
	case StatusPending:
		return fmt.Sprintf("Pending(%d)", s.RequestedID)
	case StatusResolved:
		return fmt.Sprintf("Resolved(%d)", s.RequestedID)
	case StatusFailed:
		return fmt.Sprintf("Failed(%d, %s)", s.RequestedID, s.Kind())
	default:
		return s.Status.String()
	}
}
