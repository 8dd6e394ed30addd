package paging

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-guardianship/internal/platform/apperr"
)

func idCursor(id int) string { return Encode(int64(id), TagPet) }

func TestBuild_EmptyInput(t *testing.T) {
	c := Build([]int{}, 10, idCursor)
	assert.Empty(t, c.Edges)
	assert.NotNil(t, c.Edges)
	assert.Equal(t, PageInfo{HasNextPage: false, EndCursor: ""}, c.PageInfo)

	c = BuildLookahead([]int(nil), 10, idCursor)
	assert.Equal(t, PageInfo{}, c.PageInfo)
}

func TestBuild_CountHeuristic(t *testing.T) {
	full := Build([]int{1, 2}, 2, idCursor)
	assert.True(t, full.PageInfo.HasNextPage, "a full page reports more, even on the exact boundary")
	assert.Equal(t, idCursor(2), full.PageInfo.EndCursor)

	short := Build([]int{3}, 2, idCursor)
	assert.False(t, short.PageInfo.HasNextPage)
	assert.Equal(t, idCursor(3), short.PageInfo.EndCursor)
}

func TestBuild_BoundaryPageDiffersByMode(t *testing.T) {
	// 4 filas, pageSize 2: la página 2 es la última.
	heuristic := Build([]int{3, 4}, 2, idCursor)
	assert.True(t, heuristic.PageInfo.HasNextPage)

	lookahead := BuildLookahead([]int{3, 4}, 2, idCursor)
	assert.False(t, lookahead.PageInfo.HasNextPage)
	assert.Len(t, lookahead.Edges, 2)
}

func TestBuildLookahead_TrimsExtraRow(t *testing.T) {
	c := BuildLookahead([]int{1, 2, 3}, 2, idCursor)
	require.Len(t, c.Edges, 2)
	assert.True(t, c.PageInfo.HasNextPage)
	assert.Equal(t, idCursor(2), c.PageInfo.EndCursor)

	exact := BuildLookahead([]int{1, 2}, 2, idCursor)
	assert.False(t, exact.PageInfo.HasNextPage)
}

func TestMap_KeepsCursors(t *testing.T) {
	c := Build([]int{1, 2}, 5, idCursor)
	m := Map(c, func(v int) string { return strconv.Itoa(v * 10) })
	require.Len(t, m.Edges, 2)
	assert.Equal(t, "20", m.Edges[1].Node)
	assert.Equal(t, c.Edges[1].Cursor, m.Edges[1].Cursor)
	assert.Equal(t, c.PageInfo, m.PageInfo)
}

func intPtr(v int) *int { return &v }

func TestNormalize(t *testing.T) {
	opts := Options{DefaultSize: 20, Lookahead: true}

	w, err := Normalize(Request{}, TagPet, opts)
	require.NoError(t, err)
	assert.Equal(t, Window{Limit: 20, Lookahead: true}, w)
	assert.Equal(t, 21, w.Fetch())

	w, err = Normalize(Request{First: 500}, TagPet, opts)
	require.NoError(t, err)
	assert.Equal(t, 100, w.Limit)

	w, err = Normalize(Request{Page: intPtr(3), PageSize: 10}, TagPet, opts)
	require.NoError(t, err)
	assert.Equal(t, 10, w.Limit)
	assert.Equal(t, 20, w.Offset)

	w, err = Normalize(Request{Page: intPtr(1), PageSize: 1000}, TagPet, Options{DefaultSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 100, w.Limit)
	assert.Equal(t, 100, w.Fetch())

	w, err = Normalize(Request{First: 2, After: Encode(9, TagPet)}, TagPet, opts)
	require.NoError(t, err)
	assert.True(t, w.HasAfter)
	assert.Equal(t, int64(9), w.After)
}

func TestNormalize_LargestPageThatFits(t *testing.T) {
	page := math.MaxInt/100 + 1
	w, err := Normalize(Request{Page: &page, PageSize: 100}, TagPet, Options{DefaultSize: 20})
	require.NoError(t, err)
	assert.Equal(t, (page-1)*100, w.Offset)
	assert.Positive(t, w.Offset)
}

func TestNormalize_Rejects(t *testing.T) {
	opts := Options{DefaultSize: 20}

	_, err := Normalize(Request{Page: intPtr(0)}, TagPet, opts)
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = Normalize(Request{Page: intPtr(-1)}, TagPet, opts)
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	// (page-1)*pageSize no entra en un int: ni negativo ni envuelto a otra página.
	_, err = Normalize(Request{Page: intPtr(math.MaxInt/100 + 2), PageSize: 100}, TagPet, opts)
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = Normalize(Request{Page: intPtr(math.MaxInt/50 + 7), PageSize: 50}, TagPet, opts)
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = Normalize(Request{Page: intPtr(math.MaxInt)}, TagPet, opts)
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = Normalize(Request{Page: intPtr(1), After: Encode(1, TagPet)}, TagPet, opts)
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = Normalize(Request{After: "not-base64!!"}, TagPet, opts)
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = Normalize(Request{After: Encode(1, TagUser)}, TagPet, opts)
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
}
