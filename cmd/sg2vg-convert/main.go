/*
sg2vg-convert is a small local-exercise CLI around the sgconvert Side-Graph
to Sequence-Graph converter. It reads a self-contained JSON fixture
(sequences, bases, joins, and paths), runs the conversion, and prints
summary statistics. It is not the network loader or the downstream
emitter's wire dialect described as external to the core; those remain
unimplemented.
*/
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"

	"github.com/glennhickey/sg2vg/sgbase"
	"github.com/glennhickey/sg2vg/sgconvert"
	"github.com/glennhickey/sg2vg/sidegraph"
)

var (
	chop              = flag.Int("chop", 0, "Insert a synthetic cut every N bases; 0 disables chopping")
	forceUpperCase    = flag.Bool("force-upper-case", false, "Upper-case input bases before extracting output fragments")
	makeSequencePaths = flag.Bool("make-sequence-paths", false, "Emit one synthetic whole-sequence path per input sequence")
	seqPathPrefix     = flag.String("seq-path-prefix", "", "Name prefix for synthetic per-sequence paths; defaults to sgconvert.DefaultSeqPathPrefix")
)

func sg2vgConvertUsage() {
	fmt.Printf("Usage: %s [OPTIONS] fixture.json\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

// fixture is the JSON input format: a minimal, self-contained side graph
// plus the named paths to convert alongside it. It is the one piece of
// this tool with no teacher or pack library behind it (see DESIGN.md);
// everything else routes through sgconvert, sidegraph, and sgbase.
type fixture struct {
	Sequences []fixtureSequence `json:"sequences"`
	Joins     []fixtureJoin     `json:"joins"`
	Paths     []fixturePath     `json:"paths"`
}

type fixtureSequence struct {
	Name  string `json:"name"`
	Bases string `json:"bases"`
}

type fixtureSide struct {
	SeqID   int  `json:"seqId"`
	Pos     int  `json:"pos"`
	Forward bool `json:"forward"`
}

type fixtureJoin struct {
	Side1 fixtureSide `json:"side1"`
	Side2 fixtureSide `json:"side2"`
}

type fixtureSegment struct {
	Side   fixtureSide `json:"side"`
	Length int         `json:"length"`
}

type fixturePath struct {
	Name     string           `json:"name"`
	Segments []fixtureSegment `json:"segments"`
}

func toSide(s fixtureSide) sgbase.Side {
	return sgbase.NewSide(s.SeqID, s.Pos, s.Forward)
}

func loadFixture(path string) (*sidegraph.SideGraph, []string, []sgconvert.NamedPath, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close()

	var fx fixture
	if err := json.NewDecoder(f).Decode(&fx); err != nil {
		return nil, nil, nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	g := sidegraph.NewSideGraph()
	bases := make([]string, 0, len(fx.Sequences))
	for _, s := range fx.Sequences {
		if _, err := g.AddSequence(sidegraph.Sequence{Name: s.Name, Length: len(s.Bases)}); err != nil {
			return nil, nil, nil, err
		}
		bases = append(bases, s.Bases)
	}
	for _, j := range fx.Joins {
		if _, err := g.AddJoin(toSide(j.Side1), toSide(j.Side2)); err != nil {
			return nil, nil, nil, err
		}
	}
	paths := make([]sgconvert.NamedPath, 0, len(fx.Paths))
	for _, p := range fx.Paths {
		segs := make([]sgbase.Segment, 0, len(p.Segments))
		for _, s := range p.Segments {
			segs = append(segs, sgbase.NewSegment(toSide(s.Side), s.Length))
		}
		paths = append(paths, sgconvert.NamedPath{Name: p.Name, Segments: segs})
	}
	return g, bases, paths, nil
}

func main() {
	flag.Usage = sg2vgConvertUsage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() != 1 {
		log.Fatalf("exactly one positional argument (fixture.json) required, got %d", flag.NArg())
	}

	inGraph, bases, paths, err := loadFixture(flag.Arg(0))
	if err != nil {
		log.Fatalf("%v", err)
	}

	opts := sgconvert.Options{
		Chop:              *chop,
		ForceUpperCase:    *forceUpperCase,
		MakeSequencePaths: *makeSequencePaths,
		SeqPathPrefix:     *seqPathPrefix,
	}

	c := sgconvert.NewConverter()
	c.Init(inGraph, bases, paths, opts)
	if err := c.Convert(); err != nil {
		log.Fatalf("conversion failed: %v", err)
	}

	fmt.Printf("input sequences:  %d\n", inGraph.GetNumSequences())
	fmt.Printf("input joins:      %d\n", inGraph.NumJoins())
	fmt.Printf("output sequences: %d\n", c.OutGraph().GetNumSequences())
	fmt.Printf("output joins:     %d\n", c.OutGraph().NumJoins())
	fmt.Printf("output paths:     %d\n", len(c.OutPaths()))
	fmt.Printf("output digest:    %x\n", c.Digest())

	log.Debug.Printf("exiting")
}
