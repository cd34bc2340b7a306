// Package sglookup implements SGLookup, the per-input-sequence ordered
// interval map that rewrites an arbitrary Side-Graph position or segment as
// a concatenation of whole output-sequence-graph nodes.
//
// The interval arrays are sorted []struct slices searched with sort.Search,
// the same binary-search-over-sorted-endpoints technique as
// github.com/grailbio/bio/interval's EndpointIndex/SearchPosTypes, adapted
// from bare endpoint arrays to (start,length) records because each interval
// here carries a payload (which output sequence it maps to, and on which
// strand).
package sglookup

import (
	"sort"

	"github.com/glennhickey/sg2vg/sgbase"
	"github.com/glennhickey/sg2vg/sgerror"
)

// interval is one contiguous run of an input sequence mapped onto exactly
// one output sequence, starting at output offset 0 (since output sequences
// are themselves the cut-induced fragments).
type interval struct {
	start      int // input position where this interval begins
	length     int
	outSeqID   int
	outForward bool // true if the output sequence's position increases with the input position
}

// SGLookup is the interval map from input coordinates to output
// (sequence, offset, strand). One ordered, gap-free interval list is kept
// per input sequence.
type SGLookup struct {
	intervals [][]interval
}

// New returns an SGLookup with one empty interval list per name in names,
// in input-sequence order.
func New(names []string) *SGLookup {
	return &SGLookup{intervals: make([][]interval, len(names))}
}

// AddInterval records that the run of length bases of input sequence
// inPos.SeqID starting at inPos.Pos maps onto the whole output sequence
// outPosStart.SeqID, starting at its offset 0. Every interval the converter
// adds has reversed=false and outPosStart.Pos=0; reversed=true is accepted
// for completeness (so a future non-forward fragment emission path has
// somewhere to plug in) but unused by sgconvert today.
func (l *SGLookup) AddInterval(inPos sgbase.Position, outPosStart sgbase.Position, length int, reversed bool) error {
	if inPos.SeqID < 0 || inPos.SeqID >= len(l.intervals) {
		return sgerror.New(sgerror.KindInternalInvariant, "SGLookup.AddInterval: input sequence id %d out of range", inPos.SeqID)
	}
	if outPosStart.Pos != 0 {
		return sgerror.New(sgerror.KindInternalInvariant, "SGLookup.AddInterval: outPosStart.Pos must be 0, got %d", outPosStart.Pos)
	}
	if length < 1 {
		return sgerror.New(sgerror.KindInternalInvariant, "SGLookup.AddInterval: length must be >= 1, got %d", length)
	}
	iv := interval{start: inPos.Pos, length: length, outSeqID: outPosStart.SeqID, outForward: !reversed}
	list := l.intervals[inPos.SeqID]
	pos := sort.Search(len(list), func(i int) bool { return list[i].start >= iv.start })
	list = append(list, interval{})
	copy(list[pos+1:], list[pos:])
	list[pos] = iv
	l.intervals[inPos.SeqID] = list
	return nil
}

// findInterval returns the index of the interval covering inPos within the
// interval list for inPos's sequence, or an error if none does.
func (l *SGLookup) findInterval(inPos sgbase.Position) (int, error) {
	if inPos.SeqID < 0 || inPos.SeqID >= len(l.intervals) {
		return 0, sgerror.New(sgerror.KindInternalInvariant, "SGLookup: input sequence id %d out of range", inPos.SeqID)
	}
	list := l.intervals[inPos.SeqID]
	i := sort.Search(len(list), func(i int) bool { return list[i].start+list[i].length > inPos.Pos })
	if i >= len(list) || list[i].start > inPos.Pos {
		return 0, sgerror.New(sgerror.KindInternalInvariant, "SGLookup: position %v is not covered by any interval (interval map incomplete)", inPos)
	}
	return i, nil
}

// MapPosition returns the output Side corresponding to inPos: the output
// sequence and offset the position falls in, and the strand that position
// lives on in the output.
func (l *SGLookup) MapPosition(inPos sgbase.Position) (sgbase.Side, error) {
	idx, err := l.findInterval(inPos)
	if err != nil {
		return sgbase.Side{}, err
	}
	iv := l.intervals[inPos.SeqID][idx]
	offset := inPos.Pos - iv.start
	if iv.outForward {
		return sgbase.NewSide(iv.outSeqID, offset, true), nil
	}
	return sgbase.NewSide(iv.outSeqID, iv.length-1-offset, false), nil
}

// GetPath returns the ordered list of output Segments that together cover
// length input bases of sequence startPos.SeqID, starting at startPos.Pos
// and traversing forward (increasing position) or backward (decreasing
// position) according to forward. Consecutive emitted segments always
// belong to output sequences adjacent in the chain the converter built, so
// the bridge join required between them is exactly the chain join the
// converter emitted for that pair of fragments.
func (l *SGLookup) GetPath(startPos sgbase.Position, length int, forward bool) ([]sgbase.Segment, error) {
	if length < 1 {
		return nil, sgerror.New(sgerror.KindInternalInvariant, "SGLookup.GetPath: length must be >= 1, got %d", length)
	}
	idx, err := l.findInterval(startPos)
	if err != nil {
		return nil, err
	}
	list := l.intervals[startPos.SeqID]

	var segments []sgbase.Segment
	remaining := length
	pos := startPos.Pos
	i := idx
	for remaining > 0 {
		if i < 0 || i >= len(list) {
			return nil, sgerror.New(sgerror.KindInternalInvariant,
				"SGLookup.GetPath: ran out of intervals covering sequence %d with %d bases remaining", startPos.SeqID, remaining)
		}
		iv := list[i]
		offset := pos - iv.start

		var take int
		var side sgbase.Side
		if forward {
			avail := iv.length - offset
			take = remaining
			if take > avail {
				take = avail
			}
			if iv.outForward {
				side = sgbase.NewSide(iv.outSeqID, offset, true)
			} else {
				side = sgbase.NewSide(iv.outSeqID, iv.length-1-offset, false)
			}
			pos += take
			i++
		} else {
			avail := offset + 1
			take = remaining
			if take > avail {
				take = avail
			}
			if iv.outForward {
				side = sgbase.NewSide(iv.outSeqID, offset, false)
			} else {
				side = sgbase.NewSide(iv.outSeqID, iv.length-1-offset, true)
			}
			pos -= take
			i--
		}
		segments = append(segments, sgbase.NewSegment(side, take))
		remaining -= take
	}
	return segments, nil
}

// Coverage returns the total number of input bases of sequence seqID
// currently mapped by recorded intervals. The converter uses this to
// confirm the interval map is complete (covers all of [0, len)) once every
// fragment of a sequence has been registered.
func (l *SGLookup) Coverage(seqID int) int {
	total := 0
	for _, iv := range l.intervals[seqID] {
		total += iv.length
	}
	return total
}
