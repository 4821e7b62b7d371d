package engine

import (
	"math"

	"github.com/yourusername/tetribot/internal/attacktable"
	"github.com/yourusername/tetribot/internal/geometry"
)

// Game represents the player's state across placements: the board, the
// held piece, and the back-to-back/combo counters. Created by NewGame and
// mutated only through Advance.
type Game struct {
	Board      Board
	Hold       geometry.Piece
	B2B        uint64
	Combo      uint64
	B2BDeficit uint32
}

// NewGame constructs a starting state with an empty board and the given
// hold piece. If no hold is specified the driver is responsible for
// picking one (the core has no opinion — see spec.md section 6).
func NewGame(hold geometry.Piece) *Game {
	return &Game{Hold: hold}
}

// Clone returns an independent copy of g, suitable for a search node to
// own while branching away from its parent.
func (g *Game) Clone() *Game {
	clone := *g
	return &clone
}

// Advance applies loc — the placement chosen for `next`, the piece just
// drawn from the queue — to the game, updating the hold slot, the board,
// and the back-to-back/combo/garbage bookkeeping described in spec.md
// section 4.2. When loc.Piece differs from next, the placed piece came
// from the hold slot, and Advance stores next in the hold slot itself.
func (g *Game) Advance(next geometry.Piece, loc PieceLocation, at *attacktable.Table) PlacementInfo {
	if loc.Piece != next {
		g.Hold = next
	}

	info := g.Board.Place(loc, at)
	allClear := g.Board.IsEmpty()
	g.B2BDeficit++

	if info.LinesCleared == 0 {
		g.Combo = 0
		return info
	}

	preB2B := g.B2B
	difficult := info.Spin || info.LinesCleared == 4 || allClear

	var surge int32
	if difficult {
		g.B2B++
		g.B2BDeficit = 0
	} else {
		if preB2B > 4 {
			surge = int32(preB2B)
		}
		g.B2B = 0
	}
	g.Combo++

	result := info.GarbageSent
	if preB2B > 0 {
		result++
	}
	// Combo scaling (spec.md section 4.2 step 7) only multiplies up the
	// ordinary clears; a difficult clear's raw attack-table value plus
	// its back-to-back bonus is sent as-is (see spec.md section 8
	// boundary scenarios 4 and 5 and DESIGN.md's Open Question note).
	if !difficult {
		result = comboScale(result, g.Combo)
	}
	if allClear {
		result += 5
	}
	result += surge

	info.GarbageSent = result
	return info
}

// comboScale applies spec.md section 4.2 step 7's combo-scaling formula to
// an ordinary (non-difficult) clear's garbage value.
func comboScale(base int32, combo uint64) int32 {
	if base == 0 {
		return int32(math.Floor(math.Log(1 + 1.25*float64(combo))))
	}
	return int32(math.Floor(float64(base) * (1 + 0.25*float64(combo))))
}
