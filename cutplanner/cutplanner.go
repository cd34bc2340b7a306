// Package cutplanner computes, for a single input sequence, the sorted set
// of cut sides where it must be fragmented so that no join and no named
// path endpoint ever lands in a fragment's interior.
//
// Collecting the candidate cut sides is a sorted-set-of-positions problem
// of exactly the shape github.com/grailbio/bio/interval.BEDUnion solves
// when it builds a sorted endpoint array from scattered BED records; the
// same "collect into a set, sort, dedup adjacent entries" shape is used
// here, keyed on sgbase.Side instead of bare PosType.
package cutplanner

import (
	"sort"

	"github.com/glennhickey/sg2vg/sgbase"
)

// Fragment is a contiguous, forward-read base range of an input sequence,
// inclusive of both endpoints.
type Fragment struct {
	Start int
	End   int
}

// ComputeCutSides returns the sorted, deduplicated set of cut sides for
// sequence seqID (of length seqLen): every join side interior to the
// sequence, every path-endpoint side interior to the sequence, and
// (if chop > 0) synthetic cuts spaced chop bases apart between whatever
// cuts that collection already produced.
//
// joinSides1 and joinSides2 are every join's Side1 and Side2 respectively
// that lie within [start, end] of this sequence — callers get these from
// SideGraph.LowerBoundSide1/LowerBoundSide2 seeded with a minimal
// complementary side, per the "lower_bound seed side" design note, so that
// no incident join is excluded by an off-by-one at the boundary.
func ComputeCutSides(seqID, seqLen int, joinSides1, joinSides2, pathEndpoints []sgbase.Side, chop int) []sgbase.Side {
	if seqLen <= 1 {
		// Single-base sequences are emitted unfragmented; the planner is
		// skipped entirely.
		return nil
	}
	start := sgbase.NewSide(seqID, 0, false)
	end := sgbase.NewSide(seqID, seqLen-1, true)

	set := make(map[sgbase.Side]struct{})
	add := func(s sgbase.Side) {
		if !s.Less(start) && !end.Less(s) {
			set[s] = struct{}{}
		}
	}
	for _, s := range joinSides1 {
		add(s)
	}
	for _, s := range joinSides2 {
		add(s)
	}
	for _, s := range pathEndpoints {
		add(s)
	}

	if chop > 0 {
		insertChopCuts(set, seqID, seqLen, chop)
	}

	return cleanAdjacent(sortedSides(set))
}

func sortedSides(set map[sgbase.Side]struct{}) []sgbase.Side {
	out := make([]sgbase.Side, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// afterCut returns the base position of the first base of the fragment
// that begins immediately after a break at side.
func afterCut(side sgbase.Side) int {
	if side.Forward {
		return side.Pos()
	}
	return side.Pos() + 1
}

// insertChopCuts adds a synthetic left-side cut every chop bases between
// each pair of adjacent sides already in set, bracketing the iteration
// with the sequence's two true (non-cuttable) exterior endpoints.
func insertChopCuts(set map[sgbase.Side]struct{}, seqID, seqLen, chop int) {
	trueStart := sgbase.NewSide(seqID, 0, true)
	trueEnd := sgbase.NewSide(seqID, seqLen-1, false)

	bracket := make([]sgbase.Side, 0, len(set)+2)
	bracket = append(bracket, trueStart)
	for s := range set {
		bracket = append(bracket, s)
	}
	bracket = append(bracket, trueEnd)
	sort.Slice(bracket, func(i, j int) bool { return bracket[i].Less(bracket[j]) })

	interiorLo := sgbase.NewSide(seqID, 0, false)
	interiorHi := sgbase.NewSide(seqID, seqLen-1, true)
	for k := 0; k+1 < len(bracket); k++ {
		from := afterCut(bracket[k])
		to := afterCut(bracket[k+1])
		for p := from + chop; p < to; p += chop {
			s := sgbase.NewSide(seqID, p, true)
			if !s.Less(interiorLo) && !interiorHi.Less(s) {
				set[s] = struct{}{}
			}
		}
	}
}

// cleanAdjacent drops the right-side member of any pair of adjacent sorted
// sides that represent the same fragment boundary (the right side of base
// p immediately followed by the left side of base p+1): keeping both would
// induce a zero-length fragment between them.
func cleanAdjacent(sides []sgbase.Side) []sgbase.Side {
	if len(sides) < 2 {
		return sides
	}
	out := make([]sgbase.Side, 0, len(sides))
	for i := 0; i < len(sides); i++ {
		if i+1 < len(sides) &&
			!sides[i].Forward && sides[i+1].Forward &&
			sides[i].SeqID() == sides[i+1].SeqID() &&
			sides[i+1].Pos() == sides[i].Pos()+1 {
			// Drop this right-side cut; the left-side cut at i+1 covers
			// the identical boundary.
			continue
		}
		out = append(out, sides[i])
	}
	return out
}

// Fragments converts a sorted cut-side set into the ordered list of
// forward-read base ranges it induces over [0, seqLen). The first fragment
// always starts at 0; the last fragment is always emitted, even when cuts
// is empty.
func Fragments(seqLen int, cuts []sgbase.Side) []Fragment {
	if seqLen <= 1 {
		return []Fragment{{Start: 0, End: seqLen - 1}}
	}
	var frags []Fragment
	cur := 0
	for _, cut := range cuts {
		if cut.Forward {
			// Break before base p: previous fragment ends at p-1.
			if cut.Pos()-1 >= cur {
				frags = append(frags, Fragment{Start: cur, End: cut.Pos() - 1})
			}
			cur = cut.Pos()
		} else {
			// Break after base p: next fragment starts at p+1.
			frags = append(frags, Fragment{Start: cur, End: cut.Pos()})
			cur = cut.Pos() + 1
		}
	}
	frags = append(frags, Fragment{Start: cur, End: seqLen - 1})
	return frags
}
