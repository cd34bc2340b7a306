// Package sidegraph implements the bidirected Side Graph data model: a
// dense, append-only sequence vector plus a deduplicated join set indexed
// both by each join's first side and its second side, so callers can query
// "every join incident to a range of sides" from either direction.
//
// The dedup/exact-match structure is a github.com/biogo/store/llrb.Tree
// keyed on the join's canonical (Side1, Side2) pair, the same
// ordered-tree-plus-slice shape github.com/grailbio/bio/encoding/bampair
// uses for its ShardInfo lookup. The two range-query orders are plain
// sorted index slices, in the style of the sorted endpoint arrays built by
// github.com/grailbio/bio/interval.
package sidegraph

import (
	"sort"

	"github.com/biogo/store/llrb"
	"github.com/dgryski/go-farm"
	"github.com/pkg/errors"

	"github.com/glennhickey/sg2vg/sgbase"
	"github.com/glennhickey/sg2vg/sgerror"
)

// Sequence is a single node of the graph: a named, positive-length run of
// DNA. IDs are assigned densely by SideGraph.AddSequence and always match
// the sequence's index in the graph.
type Sequence struct {
	ID     int
	Length int
	Name   string
}

// Join is an unordered edge between two Sides, canonically stored with
// Side1 <= Side2 under sgbase.Side's total order.
type Join struct {
	Side1 sgbase.Side
	Side2 sgbase.Side
}

// NewJoin builds the canonical form of the join between a and b, swapping
// them if necessary so Side1 <= Side2.
func NewJoin(a, b sgbase.Side) Join {
	if b.Less(a) {
		a, b = b, a
	}
	return Join{Side1: a, Side2: b}
}

// joinNode is the llrb.Comparable key used for the dedup tree: joins compare
// first by Side1, then by Side2.
type joinNode struct {
	join Join
	idx  int
}

func (n joinNode) Compare(c llrb.Comparable) int {
	o := c.(joinNode)
	if d := n.join.Side1.Compare(o.join.Side1); d != 0 {
		return d
	}
	return n.join.Side2.Compare(o.join.Side2)
}

// sidePrehashBucket lets AddJoin find an already-present join by its
// farm hash before paying for the llrb lookup, the same role a fast
// content hash plays ahead of an authoritative store lookup. A join not
// found in its bucket is still checked against the llrb tree.
type sidePrehashBucket = []int

// SideGraph owns a dense sequence vector and the join set incident to it.
// Sequences are append-only; joins may be added but never removed. A
// SideGraph is destroyed as a whole (simply dropped) rather than mutated
// piecemeal once a Converter is done with it.
type SideGraph struct {
	sequences []Sequence
	joins     []Join

	dedup  *llrb.Tree
	prehash map[uint64]sidePrehashBucket

	// index1/index2 hold join indices sorted by Side1 and Side2
	// respectively, giving the two directional range-query orders the cut
	// planner needs: primary order by side1 (tie-break side2), and the
	// reverse index by side2 (tie-break side1).
	index1 []int
	index2 []int
}

// NewSideGraph returns an empty SideGraph.
func NewSideGraph() *SideGraph {
	return &SideGraph{
		dedup:   &llrb.Tree{},
		prehash: make(map[uint64]sidePrehashBucket),
	}
}

// AddSequence appends seq to the graph, assigning it a fresh dense ID. If
// seq.ID is non-zero it must equal the ID that would be assigned (the next
// index); any other value is an InputShape error, since IDs must form
// [0, N) densely and match array index.
func (g *SideGraph) AddSequence(seq Sequence) (Sequence, error) {
	wantID := len(g.sequences)
	if seq.ID != 0 && seq.ID != wantID {
		return Sequence{}, sgerror.New(sgerror.KindInputShape,
			"sequence %q declares id %d but the next dense id is %d", seq.Name, seq.ID, wantID)
	}
	if seq.Length < 1 {
		return Sequence{}, sgerror.New(sgerror.KindInputShape,
			"sequence %q has non-positive length %d", seq.Name, seq.Length)
	}
	seq.ID = wantID
	g.sequences = append(g.sequences, seq)
	return seq, nil
}

// GetSequence returns the sequence with the given id.
func (g *SideGraph) GetSequence(id int) (Sequence, error) {
	if id < 0 || id >= len(g.sequences) {
		return Sequence{}, sgerror.New(sgerror.KindInputShape, "sequence id %d out of range [0,%d)", id, len(g.sequences))
	}
	return g.sequences[id], nil
}

// GetNumSequences returns the number of sequences in the graph.
func (g *SideGraph) GetNumSequences() int { return len(g.sequences) }

// validateSide checks that side references a known sequence and a position
// within that sequence's bounds.
func (g *SideGraph) validateSide(side sgbase.Side) error {
	seq, err := g.GetSequence(side.SeqID())
	if err != nil {
		return err
	}
	if side.Pos() < 0 || side.Pos() >= seq.Length {
		return sgerror.New(sgerror.KindInputShape, "side %v position out of range for sequence %q (length %d)", side, seq.Name, seq.Length)
	}
	return nil
}

func prehashKey(j Join) uint64 {
	b := make([]byte, 0, 48)
	appendSide := func(b []byte, s sgbase.Side) []byte {
		b = appendInt(b, s.SeqID())
		b = appendInt(b, s.Pos())
		if s.Forward {
			b = append(b, 1)
		} else {
			b = append(b, 0)
		}
		return b
	}
	b = appendSide(b, j.Side1)
	b = appendSide(b, j.Side2)
	return farm.Hash64(b)
}

func appendInt(b []byte, v int) []byte {
	for i := 0; i < 8; i++ {
		b = append(b, byte(v>>(8*i)))
	}
	return b
}

// AddJoin adds join to the graph in canonical form, deduplicating: if a
// join with the same canonical (Side1, Side2) pair already exists, its
// existing index is returned instead of creating a duplicate. Joining two
// sides that reference unknown sequences, or positions out of range, is a
// fatal InputShape error.
func (g *SideGraph) AddJoin(side1, side2 sgbase.Side) (int, error) {
	if err := g.validateSide(side1); err != nil {
		return -1, errors.Wrap(err, "AddJoin")
	}
	if err := g.validateSide(side2); err != nil {
		return -1, errors.Wrap(err, "AddJoin")
	}
	join := NewJoin(side1, side2)

	key := prehashKey(join)
	for _, idx := range g.prehash[key] {
		if g.joins[idx] == join {
			return idx, nil
		}
	}
	if existing := g.dedup.Get(joinNode{join: join}); existing != nil {
		return existing.(joinNode).idx, nil
	}

	idx := len(g.joins)
	g.joins = append(g.joins, join)
	g.dedup.Insert(joinNode{join: join, idx: idx})
	g.prehash[key] = append(g.prehash[key], idx)

	g.insertIndex(&g.index1, idx, func(i, j int) bool {
		return g.joins[i].Side1.Less(g.joins[j].Side1) ||
			(g.joins[i].Side1 == g.joins[j].Side1 && g.joins[i].Side2.Less(g.joins[j].Side2))
	})
	g.insertIndex(&g.index2, idx, func(i, j int) bool {
		return g.joins[i].Side2.Less(g.joins[j].Side2) ||
			(g.joins[i].Side2 == g.joins[j].Side2 && g.joins[i].Side1.Less(g.joins[j].Side1))
	})
	return idx, nil
}

// insertIndex inserts joinIdx into *index, keeping it sorted according to
// less (which compares two join indices).
func (g *SideGraph) insertIndex(index *[]int, joinIdx int, less func(i, j int) bool) {
	pos := sort.Search(len(*index), func(k int) bool {
		return !less((*index)[k], joinIdx)
	})
	*index = append(*index, 0)
	copy((*index)[pos+1:], (*index)[pos:])
	(*index)[pos] = joinIdx
}

// GetJoin looks up the join with canonical form (side1, side2) and reports
// whether it exists.
func (g *SideGraph) GetJoin(side1, side2 sgbase.Side) (Join, bool) {
	join := NewJoin(side1, side2)
	existing := g.dedup.Get(joinNode{join: join})
	if existing == nil {
		return Join{}, false
	}
	return join, true
}

// Joins returns all joins in Side1 order (primary-index iteration order).
func (g *SideGraph) Joins() []Join {
	out := make([]Join, len(g.index1))
	for i, idx := range g.index1 {
		out[i] = g.joins[idx]
	}
	return out
}

// NumJoins returns the number of distinct joins in the graph.
func (g *SideGraph) NumJoins() int { return len(g.joins) }

// LowerBoundSide1 returns every join whose Side1 lies in [lo, hi],
// scanning the primary (Side1-ordered) index. Per the "lower_bound seed
// side" design note, callers that want "every join incident to a range"
// should seed lo with the minimal side of the range they care about so
// joins aren't excluded by accident.
func (g *SideGraph) LowerBoundSide1(lo, hi sgbase.Side) []Join {
	return g.rangeBySide(g.index1, lo, hi, func(j Join) sgbase.Side { return j.Side1 })
}

// LowerBoundSide2 is LowerBoundSide1's mirror over the Side2-ordered
// (reverse) index.
func (g *SideGraph) LowerBoundSide2(lo, hi sgbase.Side) []Join {
	return g.rangeBySide(g.index2, lo, hi, func(j Join) sgbase.Side { return j.Side2 })
}

func (g *SideGraph) rangeBySide(index []int, lo, hi sgbase.Side, key func(Join) sgbase.Side) []Join {
	start := sort.Search(len(index), func(i int) bool {
		return !key(g.joins[index[i]]).Less(lo)
	})
	var out []Join
	for i := start; i < len(index); i++ {
		j := g.joins[index[i]]
		k := key(j)
		if hi.Less(k) {
			break
		}
		out = append(out, j)
	}
	return out
}

// CheckEndpoint reports whether side satisfies the Sequence-Graph endpoint
// predicate: (pos == 0 and forward) or (pos == len-1 and !forward).
func (g *SideGraph) CheckEndpoint(side sgbase.Side) bool {
	seq, err := g.GetSequence(side.SeqID())
	if err != nil {
		return false
	}
	if side.Forward {
		return side.Pos() == 0
	}
	return side.Pos() == seq.Length-1
}
