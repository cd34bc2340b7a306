package cutplanner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/glennhickey/sg2vg/sgbase"
)

func lengths(frags []Fragment) []int {
	out := make([]int, len(frags))
	for i, f := range frags {
		out[i] = f.End - f.Start + 1
	}
	return out
}

// TestComputeCutSidesExteriorSidesAreIgnored confirms a join side landing
// exactly on a sequence's true start/end is never treated as an interior
// cut.
func TestComputeCutSidesExteriorSidesAreIgnored(t *testing.T) {
	side1 := []sgbase.Side{sgbase.NewSide(0, 0, true)} // true start, L@0
	cuts := ComputeCutSides(0, 10, side1, nil, nil, 0)
	assert.Empty(t, cuts)
}

// TestDoubleCutAtAdjacentSides: two joins at
// sides (0,5,R) and (0,6,L) collapse the redundant boundary, leaving cut
// sides that induce fragments of length {6,4,1,9}.
func TestDoubleCutAtAdjacentSides(t *testing.T) {
	side1 := []sgbase.Side{
		sgbase.NewSide(0, 5, false),
		sgbase.NewSide(0, 6, true),
	}
	side2 := []sgbase.Side{
		sgbase.NewSide(0, 10, true),
		sgbase.NewSide(0, 10, false),
	}
	cuts := ComputeCutSides(0, 20, side1, side2, nil, 0)
	assert.Equal(t,
		[]sgbase.Side{
			sgbase.NewSide(0, 6, true),
			sgbase.NewSide(0, 10, true),
			sgbase.NewSide(0, 10, false),
		},
		cuts)

	frags := Fragments(20, cuts)
	assert.Equal(t, []int{6, 4, 1, 9}, lengths(frags))
}

// TestTwoBaseReverseSNP: a single
// interior cut at (0,5,L) splits a 20-base sequence into {5,15}.
func TestTwoBaseReverseSNP(t *testing.T) {
	side1 := []sgbase.Side{sgbase.NewSide(0, 5, true)}
	cuts := ComputeCutSides(0, 20, side1, nil, nil, 0)
	frags := Fragments(20, cuts)
	assert.Equal(t, []int{5, 15}, lengths(frags))
}

// TestTwoBaseReverseSNPOtherSequence is S4's seq1 half: a join landing on
// the right flank of base 0 of a length-2 sequence still yields two
// single-base fragments, since R@0 is a legitimate interior cut distinct
// from the true start L@0.
func TestTwoBaseReverseSNPOtherSequence(t *testing.T) {
	side2 := []sgbase.Side{sgbase.NewSide(1, 0, false)}
	cuts := ComputeCutSides(1, 2, nil, side2, nil, 0)
	frags := Fragments(2, cuts)
	assert.Equal(t, []int{1, 1}, lengths(frags))
}

// TestChopModeEvenlySpacedCuts: a joinless, pathless
// 100-base sequence chopped every 25 bases yields four 25-base fragments.
func TestChopModeEvenlySpacedCuts(t *testing.T) {
	cuts := ComputeCutSides(0, 100, nil, nil, nil, 25)
	frags := Fragments(100, cuts)
	assert.Equal(t, []int{25, 25, 25, 25}, lengths(frags))
}

// TestChopModeDoesNotDuplicateExistingCut confirms a chop boundary that
// coincides with a join-induced cut isn't inserted twice.
func TestChopModeDoesNotDuplicateExistingCut(t *testing.T) {
	side1 := []sgbase.Side{sgbase.NewSide(0, 25, true)}
	cuts := ComputeCutSides(0, 100, side1, nil, nil, 25)
	frags := Fragments(100, cuts)
	assert.Equal(t, []int{25, 25, 25, 25}, lengths(frags))
}

// TestSingleBaseSequenceSkipsPlanning confirms a length-1 sequence is
// never fragmented, matching the converter's unfragmented
// handling of single-base SNP alleles.
func TestSingleBaseSequenceSkipsPlanning(t *testing.T) {
	side1 := []sgbase.Side{sgbase.NewSide(0, 0, true)}
	cuts := ComputeCutSides(0, 1, side1, nil, nil, 0)
	assert.Empty(t, cuts)
	frags := Fragments(1, cuts)
	assert.Equal(t, []Fragment{{Start: 0, End: 0}}, frags)
}

// TestFragmentsNoCuts confirms an uncut sequence yields exactly one
// fragment spanning its whole length.
func TestFragmentsNoCuts(t *testing.T) {
	frags := Fragments(10, nil)
	assert.Equal(t, []Fragment{{Start: 0, End: 9}}, frags)
}

// TestPathEndpointInteriorIsACut confirms a path endpoint landing in a
// sequence's interior is planned as a cut side exactly like a join side.
func TestPathEndpointInteriorIsACut(t *testing.T) {
	pathEndpoints := []sgbase.Side{sgbase.NewSide(0, 4, true)}
	cuts := ComputeCutSides(0, 10, nil, nil, pathEndpoints, 0)
	frags := Fragments(10, cuts)
	assert.Equal(t, []int{4, 6}, lengths(frags))
}
