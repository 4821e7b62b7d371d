package engine

import (
	"math/bits"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/yourusername/tetribot/internal/geometry"
)

// NumFeatures is the number of scalar board features Eval.Score weighs,
// not counting the well-column term (which is keyed by well column rather
// than summed directly — see WellColumn).
const NumFeatures = 15

// Eval is a stateless, thread-safe linear evaluator: a weighted sum of
// board features plus a well-column preference term, with multiplicative
// noise added to encourage search exploration. Mirrors bgengine's
// internal/neuralnet weighted-feature evaluator, generalized from a
// position-win-probability net to tetris board features; the weighted dot
// product is computed with gonum/floats exactly as bgengine's
// EvaluateSIMD does for its feature vector.
type Eval struct {
	// Weights holds, in order: max_height, max_height_half,
	// max_height_quarter, total_holes, coveredness, row_transitions,
	// depth4, dependencies, i_dependencies, spikes, concavity, waste_t,
	// tst, tsd, garbage_efficiency.
	Weights [NumFeatures]float64

	// WellColumn[x] is the preference weight for the well sitting in
	// column x, multiplied by depth4. Built with left/right mirror
	// symmetry from a 5-entry half vector — see NewWellColumn.
	WellColumn [Width]float64

	// OnlyTSpinAttack selects the stricter evaluator variant that
	// returns a hard -1e5 penalty on any line clear that is not a
	// T-spin clear (DESIGN.md's Open Question: default false, the
	// simpler variant, matching garbage_efficiency's standalone use).
	OnlyTSpinAttack bool

	// NoiseFraction is the magnitude of the multiplicative exploration
	// noise applied to the final score, as a fraction of its absolute
	// value (spec.md section 4.5: ±3%, i.e. 0.03). Zero selects 0.03.
	NoiseFraction float64

	// Rand supplies the noise. Nil defaults to the package-level
	// source; tests should set this for determinism.
	Rand *rand.Rand
}

// NewWellColumn mirrors a 5-entry half weight vector into the full
// 10-entry, left/right-symmetric well-column array, using gonum/floats to
// reverse the mirrored half the way bgengine's feature-vector helpers do.
func NewWellColumn(half [5]float64) [Width]float64 {
	var full [Width]float64
	copy(full[:5], half[:])
	rev := half
	floats.Reverse(rev[:])
	copy(full[5:], rev[:])
	return full
}

const tSpinPenalty = -1e5

// Score computes the post-placement evaluation of game for the piece that
// was just placed, given the PlacementInfo that placement produced. Higher
// is better.
func (e *Eval) Score(game *Game, piece geometry.Piece, info PlacementInfo) float64 {
	heights := make([]int, Width)
	for x, c := range game.Board.Cols {
		heights[x] = c.Height()
	}

	maxHeight := game.Board.MaxHeightCol()
	maxHeightHalf := max(maxHeight, 10) - 10
	maxHeightQuarter := max(maxHeight, 15) - 15

	totalHoles := 0
	coveredness := 0
	for _, c := range game.Board.Cols {
		h := c.Height()
		under := uint64(1)<<uint(h) - 1
		holes := ^uint64(c) & under
		totalHoles += bits.OnesCount64(holes)
		for holes != 0 {
			y := bits.TrailingZeros64(holes)
			coveredness += h - y
			holes &^= 1 << uint(y)
		}
	}

	rowTransitions := 0
	for x := 0; x < Width-1; x++ {
		rowTransitions += bits.OnesCount64(uint64(game.Board.Cols[x]) ^ uint64(game.Board.Cols[x+1]))
	}

	wellCol := 0
	for x := 1; x < Width; x++ {
		if heights[x] < heights[wellCol] {
			wellCol = x
		}
	}
	wellHeight := heights[wellCol]
	almostFullLines := ^uint64(0)
	for x := 0; x < wellCol; x++ {
		almostFullLines &= uint64(game.Board.Cols[x])
	}
	for x := wellCol + 1; x < Width; x++ {
		almostFullLines &= uint64(game.Board.Cols[x])
	}
	depth4 := bits.TrailingZeros64(^(almostFullLines >> uint(wellHeight)))

	dependencies, iDependencies, spikes, concavity := 0, 0, 0, 0
	for x := 0; x < Width; x++ {
		if x == wellCol {
			continue
		}
		a := heightOr(heights, x-1, 99)
		b := heights[x]
		c := heightOr(heights, x+1, 99)

		if a-1 > b && c-1 > b {
			dependencies++
		}
		if a-2 > b && c-2 > b {
			iDependencies++
		}
		if a+1 < b && c+1 < b {
			spikes++
		}
		concavity += a - 2*b + c
	}

	var tsd, tst, wasteT bool
	if piece == geometry.T {
		if info.Spin {
			switch info.LinesCleared {
			case 2:
				tsd = true
			case 3:
				tst = true
			}
		}
		if !(tsd || tst) {
			wasteT = true
		}
	}

	garbageEfficiency := 0.0
	if info.LinesCleared > 0 {
		if e.OnlyTSpinAttack && !(info.Spin && piece == geometry.T) {
			return tSpinPenalty
		}
		if info.Spin && piece == geometry.T {
			garbageEfficiency = float64(info.GarbageSent) / float64(info.LinesCleared)
		}
	}

	features := []float64{
		float64(maxHeight),
		float64(maxHeightHalf),
		float64(maxHeightQuarter),
		float64(totalHoles),
		float64(coveredness),
		float64(rowTransitions),
		float64(depth4),
		float64(dependencies),
		float64(iDependencies),
		float64(spikes),
		float64(concavity),
		boolF(wasteT),
		boolF(tst),
		boolF(tsd),
		garbageEfficiency,
	}

	res := floats.Dot(e.Weights[:], features) + e.WellColumn[wellCol]*float64(depth4)
	return res + e.noise(res)
}

func (e *Eval) noise(res float64) float64 {
	frac := e.NoiseFraction
	if frac == 0 {
		frac = 0.03
	}
	var u float64
	if e.Rand != nil {
		u = e.Rand.Float64()
	} else {
		u = rand.Float64()
	}
	bound := frac * abs(res)
	return u*2*bound - bound
}

func heightOr(heights []int, x, def int) int {
	if x < 0 || x >= len(heights) {
		return def
	}
	return heights[x]
}

func boolF(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
