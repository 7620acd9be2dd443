package entity

import (
	"encoding/json"
	"errors"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// ErrCIDMismatch is returned by VerifyCID when a record does not hash to the
// fingerprint it was shipped with.
var ErrCIDMismatch = errors.New("entity: cid mismatch")

// Canonical returns the canonical byte encoding used for fingerprinting.
//
// Field order is fixed by the struct definition, so the encoding is stable.
func (e Entity) Canonical() []byte {
	b, err := json.Marshal(e)
	if err != nil {
		// Entity holds only strings and integers.
		panic(err)
	}
	return b
}

// CID returns a CIDv1 (raw + sha2-256) over the canonical encoding.
func (e Entity) CID() (cid.Cid, error) {
	sum, err := multihash.Sum(e.Canonical(), multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// VerifyCID checks that e hashes to want. An empty want is accepted: not every
// source ships a fingerprint.
func (e Entity) VerifyCID(want string) error {
	if want == "" {
		return nil
	}
	wantID, err := cid.Decode(want)
	if err != nil {
		return ErrCIDMismatch
	}
	got, err := e.CID()
	if err != nil {
		return err
	}
	if !got.Equals(wantID) {
		return ErrCIDMismatch
	}
	return nil
}
