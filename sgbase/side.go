// Package sgbase implements the position algebra shared by every other
// package in sg2vg: Positions, Sides, Segments, and the strand arithmetic
// (including reverse-complement of gapped sequence) that the cut planner,
// the lookup, and the converter all build on.
package sgbase

import "fmt"

// Position is a 0-based, forward-strand-measured coordinate within one
// sequence.
type Position struct {
	SeqID int
	Pos   int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.SeqID, p.Pos)
}

// Side is one of the two half-base flanks of a base: Forward=true is the
// left (5' on the forward strand) side, Forward=false is the right side.
type Side struct {
	Position Position
	Forward  bool
}

// NewSide constructs a Side at (seqID, pos) on the given flank.
func NewSide(seqID, pos int, forward bool) Side {
	return Side{Position: Position{SeqID: seqID, Pos: pos}, Forward: forward}
}

// SeqID returns the sequence the side belongs to.
func (s Side) SeqID() int { return s.Position.SeqID }

// Pos returns the forward-strand base position of the side.
func (s Side) Pos() int { return s.Position.Pos }

// Less reports whether s sorts strictly before other under the total order
// lexicographic on (SeqID, Pos, Forward), where Forward=true (the left side)
// sorts before Forward=false (the right side) at the same base. This is the
// order the cut planner relies on to collapse the right side of base p and
// the left side of base p+1 into a single cut.
func (s Side) Less(other Side) bool {
	if s.Position.SeqID != other.Position.SeqID {
		return s.Position.SeqID < other.Position.SeqID
	}
	if s.Position.Pos != other.Position.Pos {
		return s.Position.Pos < other.Position.Pos
	}
	return s.Forward && !other.Forward
}

// Compare returns -1, 0, or 1 as s sorts before, equal to, or after other.
func (s Side) Compare(other Side) int {
	switch {
	case s == other:
		return 0
	case s.Less(other):
		return -1
	default:
		return 1
	}
}

func (s Side) String() string {
	flank := "L"
	if !s.Forward {
		flank = "R"
	}
	return fmt.Sprintf("%s%s", s.Position, flank)
}

// Segment is a contiguous traversal of Length bases starting at Side, read
// on the side's strand.
type Segment struct {
	Side   Side
	Length int
}

// NewSegment constructs a Segment, panicking if Length < 1 (callers never
// have a legitimate reason to build a zero-length segment; see CutPlanner's
// adjacent-same-cut cleanup, which exists precisely to avoid producing one).
func NewSegment(side Side, length int) Segment {
	if length < 1 {
		panic(fmt.Sprintf("sgbase: segment length must be >= 1, got %d", length))
	}
	return Segment{Side: side, Length: length}
}

// InSide is the side the segment starts from.
func (s Segment) InSide() Side { return s.Side }

// OutSide is the side on the far end of the segment: same strand, opposite
// Forward flag.
func (s Segment) OutSide() Side {
	if s.Side.Forward {
		return NewSide(s.Side.SeqID(), s.Side.Pos()+s.Length-1, false)
	}
	return NewSide(s.Side.SeqID(), s.Side.Pos()-s.Length+1, true)
}

// MinPos is the lowest forward-strand position the segment covers.
func (s Segment) MinPos() int {
	if s.Side.Forward {
		return s.Side.Pos()
	}
	return s.Side.Pos() - s.Length + 1
}

// MaxPos is the highest forward-strand position the segment covers.
func (s Segment) MaxPos() int {
	if s.Side.Forward {
		return s.Side.Pos() + s.Length - 1
	}
	return s.Side.Pos()
}

// complementTable maps a base to its Watson-Crick complement, preserving
// case. Gap ('-') and unrecognized bytes are left as their own complement so
// that ReverseComplementByte is always total.
var complementTable = func() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = byte(i)
	}
	pairs := map[byte]byte{
		'A': 'T', 'T': 'A', 'C': 'G', 'G': 'C',
		'a': 't', 't': 'a', 'c': 'g', 'g': 'c',
	}
	for a, b := range pairs {
		t[a] = b
	}
	return t
}()

// ReverseComplementByte returns the Watson-Crick complement of b, preserving
// case. The gap character '-' and any byte outside A/C/G/T (upper or lower
// case) pass through unchanged.
func ReverseComplementByte(b byte) byte {
	return complementTable[b]
}

// ReverseComplementString returns the reverse complement of s. Gap
// characters ('-') are held stationary: the algorithm walks inward from
// both ends, skipping over gaps without moving them, and complements the
// pairs of bases it does swap. This must be preserved for correctness on
// gap-containing (aligned) input even though most callers never see a gap.
func ReverseComplementString(s string) string {
	b := []byte(s)
	i, j := 0, len(b)-1
	for i < j {
		if b[i] == '-' {
			i++
			continue
		}
		if b[j] == '-' {
			j--
			continue
		}
		b[i], b[j] = ReverseComplementByte(b[j]), ReverseComplementByte(b[i])
		i++
		j--
	}
	if i == j && b[i] != '-' {
		b[i] = ReverseComplementByte(b[i])
	}
	return string(b)
}

// SegmentBases returns the DNA spelled out by traversing seg over bases
// (the full forward-strand sequence seg.Side belongs to), honoring seg's
// strand: read forward if seg.Side.Forward, reverse-complemented
// otherwise.
func SegmentBases(bases string, seg Segment) string {
	sub := bases[seg.MinPos() : seg.MaxPos()+1]
	if seg.Side.Forward {
		return sub
	}
	return ReverseComplementString(sub)
}
