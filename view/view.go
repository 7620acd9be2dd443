// Package view projects a resolution state into the fields an entity card
// displays: portrait, identifiers, birth date, parent buttons and an error
// banner.
package view

import (
	"strconv"
	"strings"

	"xdao.co/ledgerview/entity"
	"xdao.co/ledgerview/resolution"
)

// DefaultAlbum is the public image bucket that hosts entity portraits.
const DefaultAlbum = "https://storage.googleapis.com/ck-kitty-image/0x06012c8cf97bead5deae237070f9587f8e7a266d"

// BornLayout formats birth times, always in UTC.
const BornLayout = "01-02-2006 15:04"

const errorPrefix = "Problem encountered while fetching entity: "

type Options struct {
	// Album is the portrait base URL. Empty selects DefaultAlbum.
	Album string
}

// ParentButton describes one ancestor navigation control.
type ParentButton struct {
	ID      int64 `json:"id"`
	Enabled bool  `json:"enabled"`
}

// Card is everything a presentation layer needs to draw the current state.
type Card struct {
	Status      string       `json:"status"`
	Loading     bool         `json:"loading"`
	Draft       string       `json:"draft"`
	PortraitURL string       `json:"portraitUrl,omitempty"`
	ID          int64        `json:"id,omitempty"`
	Genes       string       `json:"genes,omitempty"`
	Generation  int64        `json:"generation"`
	Born        string       `json:"born,omitempty"`
	ParentA     ParentButton `json:"parentA"`
	ParentB     ParentButton `json:"parentB"`
	Error       string       `json:"error,omitempty"`
}

// Render builds the card for s. draft is the current draft input.
func Render(s resolution.State, draft string, opts Options) Card {
	c := Card{
		Status:  s.Status.String(),
		Loading: s.Status == resolution.StatusPending,
		Draft:   draft,
	}
	if id := s.RequestedID; id > 0 {
		c.PortraitURL = PortraitURL(opts.Album, id)
	}
	if e := s.Entity; e != nil {
		c.ID = e.ID
		c.Genes = e.Genes
		c.Generation = e.Generation
		c.Born = FormatBorn(*e)
		c.ParentA = button(e.Parent(entity.SlotA))
		c.ParentB = button(e.Parent(entity.SlotB))
	}
	if s.Err != nil {
		c.Error = errorPrefix + s.Err.Message
	}
	return c
}

// PortraitURL returns the portrait location of id inside album.
func PortraitURL(album string, id int64) string {
	if album == "" {
		album = DefaultAlbum
	}
	return strings.TrimRight(album, "/") + "/" + strconv.FormatInt(id, 10) + ".png"
}

// FormatBorn renders the birth time, or "" when it is unset.
func FormatBorn(e entity.Entity) string {
	t := e.Born()
	if t.IsZero() {
		return ""
	}
	return t.Format(BornLayout)
}

func button(id int64) ParentButton { return ParentButton{ID: id, Enabled: id > 0} }
