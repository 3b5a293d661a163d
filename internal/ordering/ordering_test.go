package ordering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type line struct {
	ID     int
	Order  int
	Parent int
	Text   string
}

func (l line) EntityID() int { return l.ID }
func (l line) EntityOrder() int { return l.Order }
func (l *line) SetEntityID(id int) { l.ID = id }
func (l *line) Place(order, parent int) { l.Order, l.Parent = order, parent }

type group struct {
	ID     int
	Order  int
	Parent int
	Lines  []line
}

func (g group) EntityID() int { return g.ID }
func (g group) EntityOrder() int { return g.Order }
func (g *group) SetEntityID(id int) { g.ID = id }
func (g *group) Place(order, parent int) { g.Order, g.Parent = order, parent }
func (g *group) NormalizeChildren() { g.Lines = Normalize(g.Lines, g.ID) }

func ids(items []line) []int {
	out := make([]int, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func requireDense(t *testing.T, items []line, parent int) {
	t.Helper()
	for i, item := range items {
		require.Equal(t, Base+i, item.Order, "order of entry %d", item.ID)
		require.Equal(t, parent, item.Parent, "parent of entry %d", item.ID)
	}
}

func TestNormalizeSortsStablyAndRenumbers(t *testing.T) {
	input := []line{
		{ID: 1, Order: 7},
		{ID: 2, Order: 3},
		{ID: 3, Order: 7},
		{ID: 4, Order: -1},
	}

	out := Normalize(input, 42)

	assert.Equal(t, []int{4, 2, 1, 3}, ids(out))
	requireDense(t, out, 42)
	assert.Equal(t, 7, input[0].Order, "input must not be modified")
}

func TestNormalizeIsIdempotent(t *testing.T) {
	input := []line{{ID: 5, Order: 9}, {ID: 2, Order: 1}, {ID: 8, Order: 4}}

	once := Normalize(input, 3)
	twice := Normalize(once, 3)

	assert.Equal(t, once, twice)
}

func TestNormalizeNestedChildren(t *testing.T) {
	groups := []group{
		{ID: 10, Order: 1, Lines: []line{{ID: 1, Order: 4}, {ID: 2, Order: 0}}},
		{ID: 11, Order: 0},
	}

	out := Normalize(groups, 1)

	require.Len(t, out, 2)
	assert.Equal(t, 11, out[0].ID)
	assert.NotNil(t, out[0].Lines)
	assert.Equal(t, []int{2, 1}, ids(out[1].Lines))
	requireDense(t, out[1].Lines, 10)
}

func TestNextID(t *testing.T) {
	assert.Equal(t, 1, NextID([]line(nil)))
	assert.Equal(t, 8, NextID([]line{{ID: 3}, {ID: 7}, {ID: 1}}))
}

func TestAppendAssignsFreshIDAtEnd(t *testing.T) {
	items := []line{{ID: 4, Order: 0}, {ID: 9, Order: 1}}

	out, id := Append(items, line{ID: 4, Text: "new"}, 2)

	assert.Equal(t, 10, id)
	assert.Equal(t, []int{4, 9, 10}, ids(out))
	assert.Equal(t, "new", out[2].Text)
	requireDense(t, out, 2)
	assert.Len(t, items, 2)
}

func TestMoveSwapsNeighbours(t *testing.T) {
	items := Normalize([]line{{ID: 1}, {ID: 2}, {ID: 3}}, 1)

	down, ok := Move(items, 0, Down, 1)
	require.True(t, ok)
	assert.Equal(t, []int{2, 1, 3}, ids(down))
	requireDense(t, down, 1)

	up, ok := Move(down, 2, Up, 1)
	require.True(t, ok)
	assert.Equal(t, []int{2, 3, 1}, ids(up))
	requireDense(t, up, 1)
}

func TestMoveAtBoundaryIsNoOp(t *testing.T) {
	items := Normalize([]line{{ID: 1}, {ID: 2}, {ID: 3}}, 1)

	first, ok := Move(items, 0, Up, 1)
	assert.False(t, ok)
	assert.Equal(t, items, first)

	last, ok := Move(items, 2, Down, 1)
	assert.False(t, ok)
	assert.Equal(t, items, last)

	_, ok = Move(items, 5, Up, 1)
	assert.False(t, ok)
}

func TestDuplicateTwiceYieldsDistinctIDs(t *testing.T) {
	items := Normalize([]line{{ID: 3, Text: "a"}}, 1)

	once, firstID, ok := Duplicate(items, 3, 1)
	require.True(t, ok)
	twice, secondID, ok := Duplicate(once, 3, 1)
	require.True(t, ok)

	require.Len(t, twice, 3)
	assert.Equal(t, []int{3, 4, 5}, ids(twice))
	assert.Greater(t, firstID, 3)
	assert.Greater(t, secondID, firstID)
	assert.Equal(t, "a", twice[2].Text)
	requireDense(t, twice, 1)

	_, _, ok = Duplicate(items, 99, 1)
	assert.False(t, ok)
}

func TestDuplicateNestedDoesNotAliasChildren(t *testing.T) {
	groups := Normalize([]group{{ID: 1, Lines: []line{{ID: 1, Text: "x"}}}}, 1)

	out, newID, ok := Duplicate(groups, 1, 1)
	require.True(t, ok)

	out[1].Lines[0].Text = "changed"
	assert.Equal(t, "x", out[0].Lines[0].Text)
	assert.Equal(t, newID, out[1].Lines[0].Parent)
}

func TestDeleteClosesGaps(t *testing.T) {
	items := Normalize([]line{{ID: 1}, {ID: 2}, {ID: 3}}, 1)

	out := Delete(items, 2, 1)
	assert.Equal(t, []int{1, 3}, ids(out))
	requireDense(t, out, 1)

	empty := Delete([]line{{ID: 1}}, 1, 1)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestReplaceKeepsPosition(t *testing.T) {
	items := Normalize([]line{{ID: 1}, {ID: 2}}, 1)

	out, ok := Replace(items, line{ID: 2, Order: 99, Text: "edited"}, 1)
	require.True(t, ok)
	assert.Equal(t, "edited", out[1].Text)
	requireDense(t, out, 1)

	_, ok = Replace(items, line{ID: 7}, 1)
	assert.False(t, ok)
}

func TestParseDirection(t *testing.T) {
	d, ok := ParseDirection("up")
	assert.True(t, ok)
	assert.Equal(t, Up, d)
	assert.Equal(t, "down", Down.String())

	_, ok = ParseDirection("sideways")
	assert.False(t, ok)
}
