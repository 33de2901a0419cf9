package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(name string) Document {
	return Document{Source: name + ".txt", LocationStart: 0, Content: "content " + name}
}

func keys(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Source
	}
	return out
}

func TestFuse_ThreeLists(t *testing.T) {
	a, b, c, d := doc("A"), doc("B"), doc("C"), doc("D")
	lists := [][]Document{
		{a, b, c},
		{b, a, d},
		{a, c},
	}

	results := New(DefaultK).Fuse(lists, 0)
	require.Len(t, results, 4)

	assert.Equal(t, "A.txt", results[0].Source)
	assert.InDelta(t, 1.0/61+1.0/62+1.0/61, results[0].Score, 1e-12)
	assert.InDelta(t, 0.0489, results[0].Score, 1e-4)
	assert.Equal(t, 3, results[0].Hits)

	assert.Equal(t, []string{"A.txt", "B.txt", "C.txt", "D.txt"}, keys(results))
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestFuse_MoreListsScoreHigher(t *testing.T) {
	x, y := doc("X"), doc("Y")
	filler := doc("F")

	// X and Y both sit at rank 1 wherever they appear; X appears in two lists.
	lists := [][]Document{
		{filler, x},
		{filler, x},
		{filler, y},
	}
	results := New(DefaultK).Fuse(lists, 0)

	scores := make(map[string]float64)
	for _, r := range results {
		scores[r.Source] = r.Score
	}
	assert.Greater(t, scores["X.txt"], scores["Y.txt"])
}

func TestFuse_BetterRankScoresHigher(t *testing.T) {
	lists := [][]Document{{doc("first"), doc("second"), doc("third")}}
	results := New(DefaultK).Fuse(lists, 0)

	require.Len(t, results, 3)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.Greater(t, results[1].Score, results[2].Score)
	assert.Equal(t, []string{"first.txt", "second.txt", "third.txt"}, keys(results))
}

func TestFuse_Idempotent(t *testing.T) {
	lists := [][]Document{
		{doc("A"), doc("B"), doc("C"), doc("D"), doc("E")},
		{doc("E"), doc("D"), doc("C"), doc("B"), doc("A")},
		{doc("C"), doc("F")},
	}
	f := New(DefaultK)
	first := f.Fuse(lists, 6)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, f.Fuse(lists, 6))
	}
}

func TestFuse_TopK(t *testing.T) {
	lists := [][]Document{
		{doc("A"), doc("B"), doc("C"), doc("D"), doc("E")},
		{doc("F"), doc("G"), doc("H"), doc("A"), doc("B")},
	}

	tests := []struct {
		name string
		topK int
		want int
	}{
		{name: "truncates", topK: 6, want: 6},
		{name: "fewer distinct than k", topK: 20, want: 8},
		{name: "zero means all", topK: 0, want: 8},
		{name: "one", topK: 1, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, New(DefaultK).Fuse(lists, tt.topK), tt.want)
		})
	}
}

func TestFuse_DeduplicatesByLocation(t *testing.T) {
	same1 := Document{PointID: "p1", Source: "guide.pdf", LocationStart: 800, Content: "chunk"}
	same2 := Document{PointID: "p2", Source: "guide.pdf", LocationStart: 800, Content: "chunk"}
	other := Document{PointID: "p3", Source: "guide.pdf", LocationStart: 1600, Content: "next"}

	lists := [][]Document{
		{same1, other},
		{same2},
	}
	results := New(DefaultK).Fuse(lists, 0)

	require.Len(t, results, 2)
	assert.Equal(t, "p1", results[0].PointID, "first occurrence keeps its payload")
	assert.Equal(t, 2, results[0].Hits)
}

func TestFuse_RepeatWithinListCountsOnce(t *testing.T) {
	a := doc("A")
	results := New(DefaultK).Fuse([][]Document{{a, a, a}}, 0)

	require.Len(t, results, 1)
	assert.InDelta(t, 1.0/61, results[0].Score, 1e-12)
	assert.Equal(t, 1, results[0].Hits)
}

func TestFuse_TieBreakByFirstAppearance(t *testing.T) {
	// P and Q tie on score and hits; P appears first.
	p, q := doc("P"), doc("Q")
	lists := [][]Document{
		{p, q},
		{q, p},
	}
	results := New(DefaultK).Fuse(lists, 0)

	require.Len(t, results, 2)
	assert.Equal(t, results[0].Score, results[1].Score)
	assert.Equal(t, []string{"P.txt", "Q.txt"}, keys(results))
}

func TestFuse_EmptyInput(t *testing.T) {
	f := New(DefaultK)
	assert.Empty(t, f.Fuse(nil, 6))
	assert.Empty(t, f.Fuse([][]Document{{}, {}}, 6))
}

func TestNew_NegativeK(t *testing.T) {
	assert.Equal(t, DefaultK, New(-5).K())
	assert.Equal(t, 0, New(0).K())
}

func TestDocument_Key(t *testing.T) {
	assert.Equal(t, "notes.md_200", Document{Source: "notes.md", LocationStart: 200}.Key())
}
