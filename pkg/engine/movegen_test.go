package engine

import (
	"testing"

	"github.com/yourusername/tetribot/internal/geometry"
)

func TestMoveGenEmptyBoardIPieceCountsSeventeen(t *testing.T) {
	var b Board
	locs := movegenPiece(&b, geometry.I)

	if len(locs) != 17 {
		t.Fatalf("got %d placements for I on an empty board, want 17", len(locs))
	}
	for _, loc := range locs {
		if loc.Spun {
			t.Errorf("placement %+v marked spun on an empty board", loc)
		}
	}
}

func TestMoveGenTSpinInWell(t *testing.T) {
	// Mirrors the repository's own regression fixture: a well in column 6
	// deep enough that a T piece can only reach some of its resting spots
	// via a kick.
	cols := [Width]uint64{7, 127, 31, 31, 31, 1, 0, 15, 15, 15}
	b := boardFromColumns(cols)

	locs := movegenPiece(&b, geometry.T)

	found := false
	for _, loc := range locs {
		if loc.Spun && loc.X == 6 {
			found = true
			break
		}
	}
	if !found {
		t.Fatal("expected at least one spun T placement in the column-6 well")
	}
}

func TestMoveGenEmptyBoardOPieceCollapsesToOneRotation(t *testing.T) {
	var b Board
	locs := movegenPiece(&b, geometry.O)

	for _, loc := range locs {
		if loc.Rotation != geometry.Up {
			t.Errorf("O placement with rotation %v, want only Up", loc.Rotation)
		}
	}
}

func TestMoveGenFinalPositionsRestOnTheFloor(t *testing.T) {
	// On an empty board the only support is the floor, so every final
	// position must have some cell at y == 0.
	var b Board
	locs := movegenPiece(&b, geometry.T)

	if len(locs) == 0 {
		t.Fatal("expected at least one T placement on an empty board")
	}
	for _, loc := range locs {
		resting := false
		for _, cell := range loc.Blocks() {
			if cell[1] == 0 {
				resting = true
				break
			}
		}
		if !resting {
			t.Errorf("placement %+v has no cell at y == 0", loc)
		}
	}
}
