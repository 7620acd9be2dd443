package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xdao.co/ledgerview/entity"
	"xdao.co/ledgerview/resolution"
)

func TestSnapshot_StateView_Resolved_JSONShape(t *testing.T) {
	e := entity.Entity{ID: 3, Genes: "g3", Generation: 1, BirthTime: 1511419000, ParentA: 1, ParentB: 2}
	id, err := e.CID()
	require.NoError(t, err)

	b, err := json.MarshalIndent(FromState(resolution.Resolved(3, e), "3"), "", "  ")
	require.NoError(t, err)

	want := "{\n" +
		"  \"status\": \"Resolved\",\n" +
		"  \"requestedId\": 3,\n" +
		"  \"entity\": {\n" +
		"    \"id\": 3,\n" +
		"    \"genes\": \"g3\",\n" +
		"    \"generation\": 1,\n" +
		"    \"birthTime\": 1511419000,\n" +
		"    \"parentA\": 1,\n" +
		"    \"parentB\": 2,\n" +
		"    \"cid\": \"" + id.String() + "\"\n" +
		"  },\n" +
		"  \"draft\": \"3\"\n" +
		"}"

	if string(b) != want {
		t.Fatalf("snapshot mismatch:\n%s", string(b))
	}
}

func TestSnapshot_StateView_Failed_JSONShape(t *testing.T) {
	s := resolution.Failed(resolution.NoID, &resolution.Error{Kind: resolution.KindInvalidIdentifier, Message: "an identifier is required"})

	b, err := json.MarshalIndent(FromState(s, ""), "", "  ")
	require.NoError(t, err)

	const want = "{\n" +
		"  \"status\": \"Failed\",\n" +
		"  \"requestedId\": 0,\n" +
		"  \"error\": {\n" +
		"    \"code\": \"INVALID_IDENTIFIER\",\n" +
		"    \"message\": \"an identifier is required\"\n" +
		"  },\n" +
		"  \"draft\": \"\"\n" +
		"}"

	if string(b) != want {
		t.Fatalf("snapshot mismatch:\n%s", string(b))
	}
}

func TestFromResolutionError_Codes(t *testing.T) {
	cases := map[resolution.Kind]ErrorCode{
		resolution.KindInvalidIdentifier:  ErrInvalidIdentifier,
		resolution.KindInvalidBound:       ErrInvalidBound,
		resolution.KindNotFound:           ErrNotFound,
		resolution.KindGatewayUnavailable: ErrGatewayUnavailable,
		resolution.KindBoundLookupFailed:  ErrBoundLookupFailed,
		resolution.Kind("other"):          ErrInternal,
	}
	for kind, code := range cases {
		got := FromResolutionError(&resolution.Error{Kind: kind, Message: "m"})
		assert.Equal(t, code, got.Code, string(kind))
	}
	assert.Nil(t, FromResolutionError(nil))

	var nilErr *CodedError
	assert.Equal(t, "", nilErr.Error())
	assert.Equal(t, "NOT_FOUND: gone", NewError(ErrNotFound, "gone").Error())
}

func TestFromState_PendingHasNoEntityOrError(t *testing.T) {
	v := FromState(resolution.Pending(9), "9")
	assert.Equal(t, "Pending", v.Status)
	assert.Equal(t, int64(9), v.RequestedID)
	assert.Nil(t, v.Entity)
	assert.Nil(t, v.Error)
}
