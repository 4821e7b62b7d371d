// Package engine provides the public API for the falling-block playfield
// engine: the bitboard rules kernel, the move generator, the static
// evaluator, and the beam search. Mirrors the layout of bgengine's
// pkg/engine (Board/Move/evaluation types and operations all live in one
// package, with low-level precomputed tables factored out to internal/).
package engine

import (
	"math/bits"

	"github.com/yourusername/tetribot/internal/attacktable"
	"github.com/yourusername/tetribot/internal/geometry"
)

// Width is the number of columns on the playfield.
const Width = 10

// Column is a single 64-bit occupancy word; bit y set means the cell at
// height y is filled. Only the lower 40 bits (visible playfield plus a
// small buffer above it) may ever be set.
type Column uint64

// Height returns one more than the highest filled row in the column — the
// row a new block resting on top of it would occupy.
func (c Column) Height() int {
	return 64 - bits.LeadingZeros64(uint64(c))
}

// clearRows removes every row in `rows` from the column, low to high,
// shifting the bits above each removed row down by one. The remaining rows
// in `rows` are shifted down along with the column so they keep pointing at
// the same cells. Mirrors tetrizz's Column::clear.
func (c Column) clearRows(rows uint64) Column {
	v := uint64(c)
	for rows != 0 {
		i := bits.TrailingZeros64(rows)
		mask := uint64(1)<<uint(i) - 1
		v = v&mask | v>>1&^mask
		rows = rows&mask | rows>>1&^mask
	}
	return Column(v)
}

// Board is the 10-column bitboard playfield, x indexed left to right.
type Board struct {
	Cols [Width]Column
}

// PieceLocation describes one final resting position of a piece: its
// rotation, the (x, y) of its rotation center, whether it was reached via
// a squeeze-kick ("spun"), and whether it is plausibly completing a line
// (an overestimate — see spec.md section 9 / DESIGN.md).
type PieceLocation struct {
	Piece             geometry.Piece
	Rotation          geometry.Rotation
	X, Y              int8
	Spun              bool
	PossibleLineClear bool
}

// Blocks returns the four absolute (x, y) cells this placement occupies.
func (loc PieceLocation) Blocks() [4][2]int8 {
	offsets := geometry.Blocks(loc.Piece, loc.Rotation)
	var cells [4][2]int8
	for i, o := range offsets {
		cells[i] = [2]int8{loc.X + o.DX, loc.Y + o.DY}
	}
	return cells
}

// PlacementInfo is the outcome of applying a placement to a board.
type PlacementInfo struct {
	Spin         bool
	LinesCleared uint32
	GarbageSent  int32
}

// Place sets the cells of loc on the board, then — if loc.PossibleLineClear
// says a cleared row is plausible — removes every fully-occupied row. It is
// a programming error (undefined behavior) to place a piece over an
// already-occupied cell; the move generator guarantees this never happens.
func (b *Board) Place(loc PieceLocation, at *attacktable.Table) PlacementInfo {
	for _, cell := range loc.Blocks() {
		b.Cols[cell[0]] |= 1 << uint(cell[1])
	}

	var lineMask uint64
	if loc.PossibleLineClear {
		lineMask = b.RemoveLines()
	}

	cleared := bits.OnesCount64(lineMask)
	return PlacementInfo{
		Spin:         loc.Spun,
		LinesCleared: uint32(cleared),
		GarbageSent:  at.Garbage(cleared, loc.Spun, loc.Piece),
	}
}

// RemoveLines computes the mask of fully-occupied rows (the bitwise AND of
// all ten columns) and collapses them out of every column. It is
// idempotent: a board with no full rows left returns a zero mask and is
// unchanged by a second call.
func (b *Board) RemoveLines() uint64 {
	lines := uint64(^Column(0))
	for _, c := range b.Cols {
		lines &= uint64(c)
	}
	for i := range b.Cols {
		b.Cols[i] = b.Cols[i].clearRows(lines)
	}
	return lines
}

// MaxHeightCol returns the height of the OR of all ten columns: the
// highest occupied row anywhere on the board.
func (b *Board) MaxHeightCol() int {
	var all Column
	for _, c := range b.Cols {
		all |= c
	}
	return all.Height()
}

// IsEmpty reports whether the board has no occupied cells (an all-clear).
func (b *Board) IsEmpty() bool {
	for _, c := range b.Cols {
		if c != 0 {
			return false
		}
	}
	return true
}
