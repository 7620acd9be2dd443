package model

import (
	"xdao.co/ledgerview/entity"
	"xdao.co/ledgerview/resolution"
)

// EntityView is the wire form of entity.Entity.
//
// CID is the record fingerprint, computed locally. It is omitted only if the
// fingerprint cannot be computed.
type EntityView struct {
	ID         int64  `json:"id" yaml:"id"`
	Genes      string `json:"genes" yaml:"genes"`
	Generation int64  `json:"generation" yaml:"generation"`
	BirthTime  int64  `json:"birthTime" yaml:"birthTime"`
	ParentA    int64  `json:"parentA" yaml:"parentA"`
	ParentB    int64  `json:"parentB" yaml:"parentB"`
	CID        string `json:"cid,omitempty" yaml:"cid,omitempty"`
}

// StateView is the wire form of a published resolution state plus the
// current draft input.
//
// RequestedID is 0 for Idle states and for requests that have no id yet.
type StateView struct {
	Status      string      `json:"status" yaml:"status"`
	RequestedID int64       `json:"requestedId" yaml:"requestedId"`
	Entity      *EntityView `json:"entity,omitempty" yaml:"entity,omitempty"`
	Error       *CodedError `json:"error,omitempty" yaml:"error,omitempty"`
	Draft       string      `json:"draft" yaml:"draft"`
}

func FromEntity(e entity.Entity) *EntityView {
	v := &EntityView{
		ID:         e.ID,
		Genes:      e.Genes,
		Generation: e.Generation,
		BirthTime:  e.BirthTime,
		ParentA:    e.ParentA,
		ParentB:    e.ParentB,
	}
	if id, err := e.CID(); err == nil {
		v.CID = id.String()
	}
	return v
}

func FromState(s resolution.State, draft string) StateView {
	v := StateView{
		Status:      s.Status.String(),
		RequestedID: s.RequestedID,
		Error:       FromResolutionError(s.Err),
		Draft:       draft,
	}
	if s.Entity != nil {
		v.Entity = FromEntity(*s.Entity)
	}
	return v
}
