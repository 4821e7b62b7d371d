package engine

import (
	"math/rand"
	"testing"

	"github.com/yourusername/tetribot/internal/geometry"
)

func deterministicEval() *Eval {
	weights, half := DefaultWeights()
	return &Eval{
		Weights:    weights,
		WellColumn: NewWellColumn(half),
		Rand:       rand.New(rand.NewSource(42)),
	}
}

func TestScorePenalizesHolesMoreThanAFlatBoard(t *testing.T) {
	e := deterministicEval()
	e.NoiseFraction = 0 // selects the default 3% noise; the seeded Rand keeps it deterministic

	flat := &Game{Board: boardFromColumns([Width]uint64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1})}
	holed := &Game{Board: boardFromColumns([Width]uint64{1, 1, 1, 1, 0b101, 1, 1, 1, 1, 1})}

	flatScore := e.Score(flat, geometry.I, PlacementInfo{})
	holedScore := e.Score(holed, geometry.I, PlacementInfo{})

	if holedScore >= flatScore {
		t.Fatalf("holed board scored %v, want lower than flat board's %v", holedScore, flatScore)
	}
}

func TestScoreRewardsTSpinTriple(t *testing.T) {
	e := deterministicEval()
	e.NoiseFraction = 0

	g := &Game{}
	waste := e.Score(g, geometry.T, PlacementInfo{})
	tst := e.Score(g, geometry.T, PlacementInfo{Spin: true, LinesCleared: 3, GarbageSent: 6})

	if tst <= waste {
		t.Fatalf("T-spin triple scored %v, want higher than a wasted T's %v", tst, waste)
	}
}

func TestScoreOnlyTSpinAttackPenalizesOrdinaryClears(t *testing.T) {
	e := deterministicEval()
	e.NoiseFraction = 0
	e.OnlyTSpinAttack = true

	g := &Game{}
	score := e.Score(g, geometry.I, PlacementInfo{LinesCleared: 1, GarbageSent: 0})

	if score != tSpinPenalty {
		t.Fatalf("score = %v, want the hard penalty sentinel %v", score, tSpinPenalty)
	}
}
