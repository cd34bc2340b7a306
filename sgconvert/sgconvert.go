// Package sgconvert implements Converter, the orchestration that turns a
// Side Graph into a Sequence Graph: it fragments every input sequence at
// its cut sides, records the fragments in an SGLookup, emits chain joins
// restoring each sequence's spine, re-expresses every input join and named
// path through the lookup, and checks every conversion invariant
// along the way.
//
// The Options struct plus a single-shot, configure-then-Run object shape
// follows github.com/grailbio/bio/markduplicates' Opts/Marker pattern;
// diagnostics use github.com/grailbio/base/log the same way markduplicates
// and pileup/snp do, and every returned failure is a *sgerror.Error rather
// than a log.Fatalf, since a library must never exit its caller's process.
package sgconvert

import (
	"encoding/binary"
	"fmt"
	"hash"
	"strings"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/base/log"

	"github.com/glennhickey/sg2vg/cutplanner"
	"github.com/glennhickey/sg2vg/sgbase"
	"github.com/glennhickey/sg2vg/sgerror"
	"github.com/glennhickey/sg2vg/sglookup"
	"github.com/glennhickey/sg2vg/sidegraph"
)

// DefaultSeqPathPrefix is the name prefix given to synthetic per-sequence
// paths when Options.SeqPathPrefix is left empty.
const DefaultSeqPathPrefix = "&SG_"

// Options configures a single Convert call.
type Options struct {
	// ForceUpperCase upper-cases DNA extracted from input bases before
	// it's used.
	ForceUpperCase bool
	// MakeSequencePaths adds one synthetic whole-sequence path per input
	// sequence, after all user paths are converted.
	MakeSequencePaths bool
	// SeqPathPrefix names synthetic per-sequence paths; defaults to
	// DefaultSeqPathPrefix when empty.
	SeqPathPrefix string
	// Chop, if positive, inserts a synthetic cut every Chop bases.
	Chop int
}

// NamedPath is an ordered sequence of Segments; consecutive segments must
// be bridged by a join present in whichever graph the path belongs to.
type NamedPath struct {
	Name     string
	Segments []sgbase.Segment
}

// Converter is single-shot: Init configures it, Convert runs the
// conversion exactly once, and Reset returns it to an initialized-empty
// state. It owns nothing of the caller's input graph/bases/paths (those
// are borrowed for the duration of Convert) and exclusively owns the
// output graph/bases/paths it produces.
type Converter struct {
	initialized bool

	inGraph *sidegraph.SideGraph
	inBases []string
	inPaths []NamedPath
	opts    Options

	outGraph *sidegraph.SideGraph
	outBases []string
	outPaths []NamedPath

	lookup *sglookup.SGLookup
}

// NewConverter returns an uninitialized Converter.
func NewConverter() *Converter {
	return &Converter{}
}

// Init configures the converter for one Convert call. Calling Init again
// discards any previous output, the same as calling Reset first.
func (c *Converter) Init(inGraph *sidegraph.SideGraph, inBases []string, inPaths []NamedPath, opts Options) {
	if opts.SeqPathPrefix == "" {
		opts.SeqPathPrefix = DefaultSeqPathPrefix
	}
	c.initialized = true
	c.inGraph = inGraph
	c.inBases = inBases
	c.inPaths = inPaths
	c.opts = opts
	c.outGraph = nil
	c.outBases = nil
	c.outPaths = nil
	c.lookup = nil
}

// Reset returns the converter to an initialized-empty state: the output
// graph, bases, paths and lookup are cleared, while the inputs and Options
// given to Init are kept.
func (c *Converter) Reset() {
	c.outGraph = nil
	c.outBases = nil
	c.outPaths = nil
	c.lookup = nil
}

// OutGraph returns the converted output graph. Valid after a successful
// Convert.
func (c *Converter) OutGraph() *sidegraph.SideGraph { return c.outGraph }

// OutBases returns the output bases vector, indexed by output sequence id.
func (c *Converter) OutBases() []string { return c.outBases }

// OutPaths returns the converted (plus any synthetic) output paths.
func (c *Converter) OutPaths() []NamedPath { return c.outPaths }

// Digest returns a cheap fingerprint of the output graph's structure
// (sequence lengths and canonical join set). Each sequence length and each
// join is hashed on its own and the hashes are summed, so two output graphs
// with the same sequence lengths and the same joins (same output ids)
// produce the same digest regardless of iteration order. The
// sg2vg-convert CLI prints it.
func (c *Converter) Digest() uint64 {
	return graphDigest(c.outGraph)
}

// Convert runs the full Side Graph -> Sequence Graph conversion. It is
// atomic: either it fully succeeds, or it returns the first invariant
// violation encountered and leaves no usable output.
func (c *Converter) Convert() error {
	if !c.initialized {
		return sgerror.New(sgerror.KindUsageError, "Convert called before Init")
	}

	numSeqs := c.inGraph.GetNumSequences()
	names := make([]string, numSeqs)
	for i := 0; i < numSeqs; i++ {
		seq, err := c.inGraph.GetSequence(i)
		if err != nil {
			return err
		}
		names[i] = seq.Name
	}

	c.outGraph = sidegraph.NewSideGraph()
	c.outBases = nil
	c.outPaths = nil
	c.lookup = sglookup.New(names)

	fragOutIDs := make([][]int, numSeqs)
	pathEndpoints := c.collectPathEndpointSides(numSeqs)

	for seqID := 0; seqID < numSeqs; seqID++ {
		outIDs, err := c.convertSequence(seqID, pathEndpoints[seqID])
		if err != nil {
			return err
		}
		fragOutIDs[seqID] = outIDs
	}

	if err := c.convertJoins(); err != nil {
		return err
	}

	for _, p := range c.inPaths {
		outPath, err := c.convertPath(p)
		if err != nil {
			return err
		}
		c.outPaths = append(c.outPaths, outPath)
	}

	if c.opts.MakeSequencePaths {
		for seqID := 0; seqID < numSeqs; seqID++ {
			seq, err := c.inGraph.GetSequence(seqID)
			if err != nil {
				return err
			}
			synth := NamedPath{
				Name:     c.opts.SeqPathPrefix + seq.Name,
				Segments: []sgbase.Segment{sgbase.NewSegment(sgbase.NewSide(seqID, 0, true), seq.Length)},
			}
			outPath, err := c.convertPath(synth)
			if err != nil {
				return err
			}
			c.outPaths = append(c.outPaths, outPath)
		}
	}

	log.Debug.Printf("sgconvert: converted %d sequences into %d fragments, %d joins, %d paths",
		numSeqs, c.outGraph.GetNumSequences(), c.outGraph.NumJoins(), len(c.outPaths))

	return nil
}

// collectPathEndpointSides buckets every path's first-segment InSide and
// last-segment OutSide by the sequence they belong to, for the cut
// planner.
func (c *Converter) collectPathEndpointSides(numSeqs int) [][]sgbase.Side {
	out := make([][]sgbase.Side, numSeqs)
	for _, p := range c.inPaths {
		if len(p.Segments) == 0 {
			continue
		}
		first := p.Segments[0]
		last := p.Segments[len(p.Segments)-1]
		in := first.InSide()
		o := last.OutSide()
		out[in.SeqID()] = append(out[in.SeqID()], in)
		out[o.SeqID()] = append(out[o.SeqID()], o)
	}
	return out
}

// convertSequence fragments input sequence seqID at its cut sides, emits
// one output sequence per fragment, registers each fragment's range in the
// lookup, and chains the fragments back together. It returns the output
// sequence ids of the fragments, in input order.
func (c *Converter) convertSequence(seqID int, pathEndpoints []sgbase.Side) ([]int, error) {
	seq, err := c.inGraph.GetSequence(seqID)
	if err != nil {
		return nil, err
	}

	var cuts []sgbase.Side
	if seq.Length > 1 {
		start := sgbase.NewSide(seqID, 0, false)
		end := sgbase.NewSide(seqID, seq.Length-1, true)
		seedLo := sgbase.NewSide(seqID, 0, true)

		joins1 := c.inGraph.LowerBoundSide1(seedLo, end)
		joins2 := c.inGraph.LowerBoundSide2(seedLo, end)
		sides1 := make([]sgbase.Side, len(joins1))
		for i, j := range joins1 {
			sides1[i] = j.Side1
		}
		sides2 := make([]sgbase.Side, len(joins2))
		for i, j := range joins2 {
			sides2[i] = j.Side2
		}
		cuts = cutplanner.ComputeCutSides(seqID, seq.Length, sides1, sides2, pathEndpoints, c.opts.Chop)
	}
	frags := cutplanner.Fragments(seq.Length, cuts)

	bases := c.inBases[seqID]
	if c.opts.ForceUpperCase {
		bases = strings.ToUpper(bases)
	}

	outIDs := make([]int, len(frags))
	for i, f := range frags {
		length := f.End - f.Start + 1
		name := fmt.Sprintf("%s_%d", seq.Name, f.Start)
		outSeq, err := c.outGraph.AddSequence(sidegraph.Sequence{Name: name, Length: length})
		if err != nil {
			return nil, err
		}
		c.outBases = append(c.outBases, bases[f.Start:f.End+1])
		if err := c.lookup.AddInterval(
			sgbase.Position{SeqID: seqID, Pos: f.Start},
			sgbase.Position{SeqID: outSeq.ID, Pos: 0},
			length, false,
		); err != nil {
			return nil, err
		}
		outIDs[i] = outSeq.ID
	}
	if covered := c.lookup.Coverage(seqID); covered != seq.Length {
		return nil, sgerror.New(sgerror.KindInternalInvariant,
			"sequence %q (id %d): interval map covers %d of %d bases", seq.Name, seqID, covered, seq.Length)
	}

	for i := 0; i+1 < len(outIDs); i++ {
		leftLen := frags[i].End - frags[i].Start + 1
		left := sgbase.NewSide(outIDs[i], leftLen-1, false)
		right := sgbase.NewSide(outIDs[i+1], 0, true)
		if _, err := c.outGraph.AddJoin(left, right); err != nil {
			return nil, err
		}
	}
	return outIDs, nil
}

// convertJoins re-expresses every input join as an output join, mapping
// both sides through the lookup while preserving the original strand
// flags (the lookup's own returned strand is the
// image strand of the *position*, not authoritative for the join).
func (c *Converter) convertJoins() error {
	for _, j := range c.inGraph.Joins() {
		out1, err := c.lookup.MapPosition(j.Side1.Position)
		if err != nil {
			return err
		}
		out2, err := c.lookup.MapPosition(j.Side2.Position)
		if err != nil {
			return err
		}
		side1 := sgbase.NewSide(out1.SeqID(), out1.Pos(), j.Side1.Forward)
		side2 := sgbase.NewSide(out2.SeqID(), out2.Pos(), j.Side2.Forward)

		if !c.outGraph.CheckEndpoint(side1) {
			return sgerror.New(sgerror.KindInternalInvariant,
				"converted join side %v (from input side %v) does not land on an output sequence endpoint", side1, j.Side1)
		}
		if !c.outGraph.CheckEndpoint(side2) {
			return sgerror.New(sgerror.KindInternalInvariant,
				"converted join side %v (from input side %v) does not land on an output sequence endpoint", side2, j.Side2)
		}
		if _, err := c.outGraph.AddJoin(side1, side2); err != nil {
			return err
		}
	}
	return nil
}

// convertPath re-expresses one input path as an output path, verifying the
// bridge join between every pair of adjacent output fragments and
// checking that the converted DNA matches the input segment it came from.
func (c *Converter) convertPath(p NamedPath) (NamedPath, error) {
	var outSegs []sgbase.Segment
	segStart := make([]int, 0, len(p.Segments)+1)
	segStart = append(segStart, 0)

	for _, seg := range p.Segments {
		segs, err := c.lookup.GetPath(seg.Side.Position, seg.Length, seg.Side.Forward)
		if err != nil {
			return NamedPath{}, err
		}
		outSegs = append(outSegs, segs...)
		segStart = append(segStart, len(outSegs))
	}

	for i := 0; i+1 < len(outSegs); i++ {
		if _, ok := c.outGraph.GetJoin(outSegs[i].OutSide(), outSegs[i+1].InSide()); !ok {
			return NamedPath{}, sgerror.New(sgerror.KindInternalInvariant,
				"path %q: missing bridge join between converted fragments %v and %v", p.Name, outSegs[i], outSegs[i+1])
		}
	}

	for i, seg := range p.Segments {
		frag := outSegs[segStart[i]:segStart[i+1]]
		if err := c.checkSegmentDNA(p.Name, i, seg, frag); err != nil {
			return NamedPath{}, err
		}
	}

	return NamedPath{Name: p.Name, Segments: outSegs}, nil
}

// checkSegmentDNA verifies that the concatenated, upper-folded DNA of the
// output fragments a segment expanded into equals the upper-folded DNA of
// the input segment itself. It always compares want against got, never a
// value against itself.
func (c *Converter) checkSegmentDNA(pathName string, segIdx int, seg sgbase.Segment, outFrags []sgbase.Segment) error {
	want := strings.ToUpper(sgbase.SegmentBases(c.inBases[seg.Side.SeqID()], seg))

	var sb strings.Builder
	for _, f := range outFrags {
		sb.WriteString(sgbase.SegmentBases(c.outBases[f.Side.SeqID()], f))
	}
	got := strings.ToUpper(sb.String())

	if want != got {
		return sgerror.New(sgerror.KindInternalInvariant,
			"path %q segment %d: converted DNA %q does not match input DNA %q", pathName, segIdx, got, want)
	}
	return nil
}

// graphDigest hashes g's sequence lengths and canonical join set with
// seahash, the same rolling-checksum-over-a-stream shape
// cmd/bio-pamtool's checksumBAMShard uses to fingerprint a BAM file: reset
// the hash, feed it a fixed-width encoding of each field of one record,
// and add that record's Sum64 into a running total. Because the per-record
// hashes are summed, the digest depends on the set of records, not on
// their order.
func graphDigest(g *sidegraph.SideGraph) uint64 {
	h := seahash.New()
	var buf [8]byte
	var total uint64

	writeUint := func(h hash.Hash64, v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	writeSide := func(h hash.Hash64, s sgbase.Side) {
		writeUint(h, uint64(s.SeqID()))
		writeUint(h, uint64(s.Pos()))
		if s.Forward {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	}

	for i := 0; i < g.GetNumSequences(); i++ {
		seq, err := g.GetSequence(i)
		if err != nil {
			panic(err)
		}
		h.Reset()
		writeUint(h, uint64(seq.Length))
		total += h.Sum64()
	}
	for _, j := range g.Joins() {
		h.Reset()
		writeSide(h, j.Side1)
		writeSide(h, j.Side2)
		total += h.Sum64()
	}
	return total
}
