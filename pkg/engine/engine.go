package engine

import (
	"fmt"

	"github.com/yourusername/tetribot/internal/attacktable"
	"github.com/yourusername/tetribot/internal/geometry"
)

// EngineOptions configures an Engine. Mirrors bgengine's EngineOptions:
// file paths for the data tables that can be swapped without a rebuild,
// plus the search parameters.
type EngineOptions struct {
	AttackTableFile string // path to an XML attack table; "" uses attacktable.Default()

	Weights        [NumFeatures]float64 // zero value selects DefaultWeights()
	HalfWellColumn [5]float64           // used as given when Weights is set; a zero Weights selects DefaultWeights() for both
	OnlyTSpinAttack bool

	Depth int // beam search depth; 0 selects DefaultDepth
	Width int // beam search width; 0 selects DefaultWidth

	CacheSize    uint64 // evaluation cache entries; 0 selects EvalCacheSize
	DisableCache bool
}

// DefaultDepth and DefaultWidth are the canonical beam search parameters
// (spec.md section 4.6 names these as search inputs without fixing a
// default; these match the repository's own main.rs driver loop).
const (
	DefaultDepth = 10
	DefaultWidth = 3000
)

// DefaultEngineOptions returns an EngineOptions with every field at its
// zero-value default.
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{}
}

// DefaultWeights returns a hand-tuned starting weight vector: holes and
// coveredness heavily penalized, height mildly penalized, T-spin doubles
// and triples rewarded, and a shallow well preference at the board edges.
// The repository's own driver embeds a literal weight array, but it
// predates this Eval's 15-weight/half-well-column signature and cannot
// be replayed verbatim.
func DefaultWeights() ([NumFeatures]float64, [5]float64) {
	weights := [NumFeatures]float64{
		-1.0,  // max_height
		-2.0,  // max_height_half
		-4.0,  // max_height_quarter
		-8.0,  // total_holes
		-2.0,  // coveredness
		-1.5,  // row_transitions
		1.0,   // depth4
		-2.0,  // dependencies
		-4.0,  // i_dependencies
		-6.0,  // spikes
		-1.0,  // concavity
		-1.0,  // waste_t
		80.0,  // tst
		40.0,  // tsd
		20.0,  // garbage_efficiency
	}
	halfWellColumn := [5]float64{3.0, 0.5, 0.0, 0.0, 0.0}
	return weights, halfWellColumn
}

// Engine bundles an Eval, an attack table, and search parameters behind
// one configuration object, the way bgengine's Engine bundles its neural
// nets, bearoff databases, and match equity table.
type Engine struct {
	Eval         *Eval
	AttackTable  *attacktable.Table
	Depth, Width int
	Cache        *EvalCache
}

// NewEngine builds an Engine from opts, loading the attack table from
// AttackTableFile if set and falling back to attacktable.Default().
func NewEngine(opts EngineOptions) (*Engine, error) {
	at := attacktable.Default()
	if opts.AttackTableFile != "" {
		loaded, err := attacktable.LoadXML(opts.AttackTableFile)
		if err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
		at = loaded
	}

	weights, half := opts.Weights, opts.HalfWellColumn
	if weights == ([NumFeatures]float64{}) {
		weights, half = DefaultWeights()
	}

	depth, width := opts.Depth, opts.Width
	if depth == 0 {
		depth = DefaultDepth
	}
	if width == 0 {
		width = DefaultWidth
	}

	e := &Engine{
		Eval: &Eval{
			Weights:         weights,
			WellColumn:      NewWellColumn(half),
			OnlyTSpinAttack: opts.OnlyTSpinAttack,
		},
		AttackTable: at,
		Depth:       depth,
		Width:       width,
	}
	if !opts.DisableCache {
		e.Cache = NewEvalCache(opts.CacheSize)
	}
	return e, nil
}

// Search runs a beam search from root over queue and returns the best
// placement for queue[0] (or the held piece).
func (e *Engine) Search(root *Game, queue []geometry.Piece) PieceLocation {
	return BeamSearch(root, queue, e.Eval, e.AttackTable, e.Depth, e.Width, e.Cache)
}

// Advance is a convenience wrapper around Game.Advance using the engine's
// configured attack table.
func (e *Engine) Advance(g *Game, next geometry.Piece, loc PieceLocation) PlacementInfo {
	return g.Advance(next, loc, e.AttackTable)
}
