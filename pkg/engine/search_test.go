package engine

import (
	"testing"

	"github.com/yourusername/tetribot/internal/attacktable"
	"github.com/yourusername/tetribot/internal/geometry"
)

func TestBeamSearchEmptyBoardReturnsQueueOrHoldPiece(t *testing.T) {
	g := NewGame(geometry.T)
	weights, half := DefaultWeights()
	eval := &Eval{Weights: weights, WellColumn: NewWellColumn(half)}
	queue := []geometry.Piece{geometry.I, geometry.O, geometry.S}

	loc := BeamSearch(g, queue, eval, attacktable.Default(), 3, 8, nil)

	if loc.Piece != queue[0] && loc.Piece != g.Hold {
		t.Fatalf("BeamSearch returned piece %v, want queue[0] (%v) or hold (%v)", loc.Piece, queue[0], g.Hold)
	}
}

func TestInsertIfBetterKeepsTopWScores(t *testing.T) {
	var h nodeHeap
	for i, score := range []float64{3, 1, 4, 1, 5, 9, 2, 6} {
		insertIfBetter(&h, Node{Score: score, ID: i}, 3)
	}
	if h.Len() != 3 {
		t.Fatalf("heap has %d entries, want 3", h.Len())
	}
	min := h[0].Score
	for _, n := range h {
		if n.Score < min {
			min = n.Score
		}
	}
	if min < 5 {
		t.Fatalf("heap's worst kept score is %v, want >= 5 (only the top 3 of [3,1,4,1,5,9,2,6] survive)", min)
	}
}
