package view

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"xdao.co/ledgerview/entity"
	"xdao.co/ledgerview/resolution"
)

func TestRender_Idle(t *testing.T) {
	c := Render(resolution.Idle(), "", Options{})
	assert.Equal(t, Card{Status: "Idle"}, c)
}

func TestRender_PendingShowsPortraitAndSpinner(t *testing.T) {
	c := Render(resolution.Pending(12), "12", Options{Album: "https://img.example/album/"})
	assert.True(t, c.Loading)
	assert.Equal(t, "https://img.example/album/12.png", c.PortraitURL)
	assert.Zero(t, c.ID)
	assert.Empty(t, c.Error)

	c = Render(resolution.Pending(resolution.NoID), "", Options{})
	assert.True(t, c.Loading)
	assert.Empty(t, c.PortraitURL)
}

func TestRender_Resolved(t *testing.T) {
	e := entity.Entity{ID: 3, Genes: "abc", Generation: 2, BirthTime: 1512000000 + 3600 + 5*60, ParentA: 1}
	c := Render(resolution.Resolved(3, e), "3", Options{})

	assert.False(t, c.Loading)
	assert.Equal(t, DefaultAlbum+"/3.png", c.PortraitURL)
	assert.Equal(t, int64(3), c.ID)
	assert.Equal(t, "abc", c.Genes)
	assert.Equal(t, int64(2), c.Generation)
	assert.Equal(t, "11-30-2017 01:05", c.Born)
	assert.Equal(t, ParentButton{ID: 1, Enabled: true}, c.ParentA)
	assert.Equal(t, ParentButton{}, c.ParentB)
}

func TestRender_UnsetBirthTime(t *testing.T) {
	c := Render(resolution.Resolved(5, entity.Entity{ID: 5}), "5", Options{})
	assert.Empty(t, c.Born)
	assert.False(t, c.ParentA.Enabled)
	assert.False(t, c.ParentB.Enabled)
}

func TestRender_FailedBanner(t *testing.T) {
	s := resolution.Failed(4, &resolution.Error{Kind: resolution.KindNotFound, Message: "no record with id 4 on the ledger"})
	c := Render(s, "4", Options{})
	assert.Equal(t, "Problem encountered while fetching entity: no record with id 4 on the ledger", c.Error)
	assert.Equal(t, DefaultAlbum+"/4.png", c.PortraitURL)
	assert.Zero(t, c.ID)
	assert.False(t, c.Loading)
}
