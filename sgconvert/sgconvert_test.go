package sgconvert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glennhickey/sg2vg/sgbase"
	"github.com/glennhickey/sg2vg/sidegraph"
)

// seqLengths returns the length of every output sequence in order, the
// shape every scenario test below checks first.
func seqLengths(g *sidegraph.SideGraph) []int {
	out := make([]int, g.GetNumSequences())
	for i := range out {
		seq, err := g.GetSequence(i)
		if err != nil {
			panic(err)
		}
		out[i] = seq.Length
	}
	return out
}

// TestSimpleSNP: seq0 len 10 all A, seq1
// len 1 "G" wired in as a SNP, with two paths, one that ignores the SNP
// and one that takes it.
func TestSimpleSNP(t *testing.T) {
	in := sidegraph.NewSideGraph()
	_, err := in.AddSequence(sidegraph.Sequence{Name: "seq0", Length: 10})
	require.NoError(t, err)
	_, err = in.AddSequence(sidegraph.Sequence{Name: "seq1", Length: 1})
	require.NoError(t, err)

	_, err = in.AddJoin(sgbase.NewSide(0, 3, false), sgbase.NewSide(1, 0, true))
	require.NoError(t, err)
	_, err = in.AddJoin(sgbase.NewSide(1, 0, false), sgbase.NewSide(0, 5, true))
	require.NoError(t, err)

	path1 := NamedPath{Name: "path1", Segments: []sgbase.Segment{
		sgbase.NewSegment(sgbase.NewSide(0, 0, true), 10),
	}}
	path2 := NamedPath{Name: "path2", Segments: []sgbase.Segment{
		sgbase.NewSegment(sgbase.NewSide(0, 0, true), 4),
		sgbase.NewSegment(sgbase.NewSide(1, 0, true), 1),
		sgbase.NewSegment(sgbase.NewSide(0, 5, true), 5),
	}}

	c := NewConverter()
	c.Init(in, []string{"AAAAAAAAAA", "G"}, []NamedPath{path1, path2}, Options{})
	require.NoError(t, c.Convert())

	assert.Equal(t, []int{4, 1, 5, 1}, seqLengths(c.OutGraph()))
	assert.Equal(t, 4, c.OutGraph().NumJoins())

	require.Len(t, c.OutPaths(), 2)
	outPath1 := c.OutPaths()[0]
	require.Len(t, outPath1.Segments, 3)
	assert.Equal(t, []int{4, 1, 5}, segLengths(outPath1.Segments))
	assert.Equal(t, []int{0, 1, 2}, segOutSeqIDs(outPath1.Segments))

	outPath2 := c.OutPaths()[1]
	require.Len(t, outPath2.Segments, 3)
	assert.Equal(t, []int{4, 1, 5}, segLengths(outPath2.Segments))
	assert.Equal(t, []int{0, 3, 2}, segOutSeqIDs(outPath2.Segments))
}

// TestDoubleCutAtAdjacentSides: two joins whose cut sides
// collapse a redundant pair at adjacent bases, leaving 4 fragments.
func TestDoubleCutAtAdjacentSides(t *testing.T) {
	in := sidegraph.NewSideGraph()
	_, err := in.AddSequence(sidegraph.Sequence{Name: "seq0", Length: 20})
	require.NoError(t, err)

	_, err = in.AddJoin(sgbase.NewSide(0, 5, false), sgbase.NewSide(0, 10, true))
	require.NoError(t, err)
	_, err = in.AddJoin(sgbase.NewSide(0, 6, true), sgbase.NewSide(0, 10, false))
	require.NoError(t, err)

	bases := make([]byte, 20)
	for i := range bases {
		bases[i] = 'A'
	}

	c := NewConverter()
	c.Init(in, []string{string(bases)}, nil, Options{})
	require.NoError(t, c.Convert())

	assert.Equal(t, []int{6, 4, 1, 9}, seqLengths(c.OutGraph()))
}

// TestTwoBaseReverseSNP: a single join wiring a 2-base
// reverse-strand SNP sequence into the middle of seq0.
func TestTwoBaseReverseSNP(t *testing.T) {
	in := sidegraph.NewSideGraph()
	_, err := in.AddSequence(sidegraph.Sequence{Name: "seq0", Length: 20})
	require.NoError(t, err)
	_, err = in.AddSequence(sidegraph.Sequence{Name: "seq1", Length: 2})
	require.NoError(t, err)

	_, err = in.AddJoin(sgbase.NewSide(0, 5, true), sgbase.NewSide(1, 0, false))
	require.NoError(t, err)

	bases0 := make([]byte, 20)
	for i := range bases0 {
		bases0[i] = 'A'
	}

	c := NewConverter()
	c.Init(in, []string{string(bases0), "TA"}, nil, Options{})
	require.NoError(t, c.Convert())

	assert.Equal(t, []int{5, 15, 1, 1}, seqLengths(c.OutGraph()))
	assert.Equal(t, 3, c.OutGraph().NumJoins())
}

// TestChopMode: a joinless 100-base sequence chopped every
// 25 bases, with a synthetic whole-sequence path requested.
func TestChopMode(t *testing.T) {
	in := sidegraph.NewSideGraph()
	_, err := in.AddSequence(sidegraph.Sequence{Name: "seq0", Length: 100})
	require.NoError(t, err)

	bases := make([]byte, 100)
	for i := range bases {
		bases[i] = 'A'
	}

	c := NewConverter()
	c.Init(in, []string{string(bases)}, nil, Options{Chop: 25, MakeSequencePaths: true})
	require.NoError(t, c.Convert())

	assert.Equal(t, []int{25, 25, 25, 25}, seqLengths(c.OutGraph()))
	assert.Equal(t, 3, c.OutGraph().NumJoins())

	require.Len(t, c.OutPaths(), 1)
	assert.Equal(t, DefaultSeqPathPrefix+"seq0", c.OutPaths()[0].Name)
	assert.Equal(t, []int{25, 25, 25, 25}, segLengths(c.OutPaths()[0].Segments))
}

// TestEmptyGraph: converting the empty graph must succeed
// and produce an empty output.
func TestEmptyGraph(t *testing.T) {
	in := sidegraph.NewSideGraph()
	c := NewConverter()
	c.Init(in, nil, nil, Options{})
	require.NoError(t, c.Convert())

	assert.Equal(t, 0, c.OutGraph().GetNumSequences())
	assert.Equal(t, 0, c.OutGraph().NumJoins())
	assert.Empty(t, c.OutPaths())
}

// TestConvertBeforeInitIsUsageError checks that Convert without a prior
// Init fails cleanly instead of panicking.
func TestConvertBeforeInitIsUsageError(t *testing.T) {
	c := NewConverter()
	err := c.Convert()
	require.Error(t, err)
}

// TestIdempotenceOnAlreadySequenceGraph: converting a graph whose only
// joins are already endpoint-incident must add no chain joins and leave
// every sequence unfragmented.
func TestIdempotenceOnAlreadySequenceGraph(t *testing.T) {
	in := sidegraph.NewSideGraph()
	_, err := in.AddSequence(sidegraph.Sequence{Name: "seq0", Length: 5})
	require.NoError(t, err)
	_, err = in.AddSequence(sidegraph.Sequence{Name: "seq1", Length: 7})
	require.NoError(t, err)
	_, err = in.AddJoin(sgbase.NewSide(0, 4, false), sgbase.NewSide(1, 0, true))
	require.NoError(t, err)

	c := NewConverter()
	c.Init(in, []string{"AAAAA", "CCCCCCC"}, nil, Options{})
	require.NoError(t, c.Convert())

	assert.Equal(t, []int{5, 7}, seqLengths(c.OutGraph()))
	assert.Equal(t, 1, c.OutGraph().NumJoins())
}

func segLengths(segs []sgbase.Segment) []int {
	out := make([]int, len(segs))
	for i, s := range segs {
		out[i] = s.Length
	}
	return out
}

func segOutSeqIDs(segs []sgbase.Segment) []int {
	out := make([]int, len(segs))
	for i, s := range segs {
		out[i] = s.Side.SeqID()
	}
	return out
}
