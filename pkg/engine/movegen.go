package engine

import "github.com/yourusername/tetribot/internal/geometry"

// fullHeight is a column reading of all-ones, used as the "out of bounds"
// value for columns beyond the playfield's ten (treating off-board space as
// solid wall rather than open air).
const fullHeight = uint64(1)<<40 - 1

var allRotations = [4]geometry.Rotation{geometry.Up, geometry.Right, geometry.Down, geometry.Left}

// kickSources[t] lists, in priority order, the rotations tried as a source
// when propagating reachability into rotation t. Order matches tetrizz's
// movegen.rs PAIRS table: every other rotation, in ascending index order.
var kickSources = [4][3]geometry.Rotation{
	geometry.Up:    {geometry.Right, geometry.Down, geometry.Left},
	geometry.Right: {geometry.Up, geometry.Down, geometry.Left},
	geometry.Down:  {geometry.Up, geometry.Right, geometry.Left},
	geometry.Left:  {geometry.Up, geometry.Right, geometry.Down},
}

// CollisionMap holds the four 10-column bitboards the move generator
// reasons about for one (piece, rotation) pair: see spec.md section 4.3.
type CollisionMap struct {
	Obstructed [Width]uint64
	AllValid   [Width]uint64
	Explored   [Width]uint64
	SpinLoc    [Width]uint64
}

func colOr(b *Board, x int, def uint64) uint64 {
	if x < 0 || x >= Width {
		return def
	}
	return uint64(b.Cols[x])
}

func arrOr(a [Width]uint64, x int, def uint64) uint64 {
	if x < 0 || x >= Width {
		return def
	}
	return a[x]
}

// newCollisionMap computes obstructed by OR-shifting each of the piece's
// four cells across the board, seeds explored at the top of the search
// region, and runs an initial floodfill.
func newCollisionMap(b *Board, piece geometry.Piece, rot geometry.Rotation) *CollisionMap {
	var obstructed [Width]uint64
	for _, o := range geometry.Blocks(piece, rot) {
		dx, dy := int(o.DX), int(o.DY)
		for x := 0; x < Width; x++ {
			c := colOr(b, x+dx, fullHeight)
			var shifted uint64
			if dy < 0 {
				shifted = ^(^c << uint(-dy))
			} else {
				shifted = c >> uint(dy)
			}
			obstructed[x] |= shifted
		}
	}

	maxHeight := 0
	for _, c := range b.Cols {
		if h := c.Height(); h > maxHeight {
			maxHeight = h
		}
	}

	var allValid, explored [Width]uint64
	for x := 0; x < Width; x++ {
		allValid[x] = uint64(1)<<uint(maxHeight+3) - 1
		explored[x] = uint64(1) << uint(maxHeight+2)
		allValid[x] &^= obstructed[x]
		explored[x] &^= obstructed[x]
	}

	cm := &CollisionMap{Obstructed: obstructed, AllValid: allValid, Explored: explored}
	cm.floodfill()
	return cm
}

// floodfill propagates explored positions by down-moves within a column and
// left/right moves between columns, masked by obstructed, to a fixed point.
func (cm *CollisionMap) floodfill() {
	var last [Width]uint64
	res := cm.Explored
	for last != res {
		last = res
		for x := 0; x < Width; x++ {
			lastCol := uint64(0)
			for lastCol != res[x] {
				lastCol = res[x]
				res[x] |= (res[x] >> 1) &^ cm.Obstructed[x]
			}
			neighbours := arrOr(res, x-1, 0) | arrOr(res, x+1, 0)
			res[x] |= neighbours &^ cm.Obstructed[x]
		}
	}
	cm.Explored = res
}

// MoveGen enumerates every legal final resting position for `next`, the
// piece about to drop, plus every legal final resting position for the
// currently held piece (a hold swap). See spec.md section 4.3.
func MoveGen(g *Game, next geometry.Piece) []PieceLocation {
	positions := movegenPiece(&g.Board, next)
	positions = append(positions, movegenPiece(&g.Board, g.Hold)...)
	return positions
}

// movegenPiece runs the full reachability pipeline for one piece against
// one board: per-rotation collision maps, kick propagation to a fixed
// point, floor restriction, 180°-symmetry rotation dedup, and spin
// classification.
func movegenPiece(b *Board, piece geometry.Piece) []PieceLocation {
	var maps [4]*CollisionMap
	for i, r := range allRotations {
		maps[i] = newCollisionMap(b, piece, r)
	}

	if piece != geometry.O {
		propagateKicks(b, piece, &maps)
	}

	for _, m := range maps {
		for x := 0; x < Width; x++ {
			m.Explored[x] &= m.Obstructed[x]<<1 | 1
			m.SpinLoc[x] &= m.Obstructed[x]<<1 | 1
		}
	}

	newMaps := maps[:]
	switch piece {
	case geometry.S, geometry.Z:
		foldDownIntoUp(newMaps)
		foldLeftIntoRight(newMaps, true)
		newMaps = newMaps[:2]
	case geometry.I:
		foldDownIntoUpShiftedColumn(newMaps)
		foldLeftIntoRight(newMaps, false)
		newMaps = newMaps[:2]
	case geometry.O:
		newMaps = newMaps[:1]
	}

	actualSpin := classifySpins(b, piece, newMaps)
	return enumerate(piece, newMaps, actualSpin)
}

// propagateKicks runs the fixed-point kick-between-rotations pass (spec.md
// section 4.3 step 2): for each target rotation, try each source rotation's
// kick sequence in priority order, consuming matched source positions so
// later kicks only claim what earlier ones left.
func propagateKicks(b *Board, piece geometry.Piece, maps *[4]*CollisionMap) {
	completed := [4]bool{}
	for completed != [4]bool{true, true, true, true} {
		for i2 := 0; i2 < 4; i2++ {
			target := maps[i2]
			last := target.Explored
			if last == target.AllValid {
				completed[i2] = true
				continue
			}

			for _, src := range kickSources[i2] {
				source := maps[src]
				ks := geometry.Kicks(piece, src, allRotations[i2])
				p1f := source.Explored
				for _, k := range ks {
					kx, ky := int(k.DX), int(k.DY)
					mask := target.AllValid
					for x := 0; x < Width; x++ {
						c := arrOr(p1f, x-kx, 0)
						var shifted uint64
						if ky < 0 {
							shifted = c >> uint(-ky)
						} else {
							shifted = c << uint(ky)
						}
						mask[x] &= shifted
						target.Explored[x] |= mask[x]
						target.SpinLoc[x] |= mask[x]
					}
					for x := 0; x < Width; x++ {
						c := arrOr(mask, x+kx, 0)
						var shifted uint64
						if ky < 0 {
							shifted = c << uint(-ky)
						} else {
							shifted = c >> uint(ky)
						}
						p1f[x] &^= shifted
					}
				}
			}

			target.floodfill()
			if target.Explored == last {
				completed[i2] = true
			}
		}
	}
}

// foldDownIntoUp merges Down's explored/spin_loc (shifted down one row, an
// S/Z piece's Down rotation occupying the row above its Up rotation) into Up.
func foldDownIntoUp(maps []*CollisionMap) {
	up, down := maps[geometry.Up], maps[geometry.Down]
	for x := 0; x < Width; x++ {
		up.Explored[x] |= down.Explored[x] >> 1
		up.SpinLoc[x] |= down.SpinLoc[x] >> 1
	}
}

// foldDownIntoUpShiftedColumn is foldDownIntoUp's I-piece variant: the
// column shift is horizontal (from column x+1) rather than vertical.
func foldDownIntoUpShiftedColumn(maps []*CollisionMap) {
	up, down := maps[geometry.Up], maps[geometry.Down]
	for x := 0; x < Width; x++ {
		up.Explored[x] |= arrOr(down.Explored, x+1, 0)
		up.SpinLoc[x] |= arrOr(down.SpinLoc, x+1, 0)
	}
}

// foldLeftIntoRight merges Left's explored/spin_loc into Right. S/Z fold
// from column x+1 (byColumn=true); I folds by a one-bit vertical shift
// within the same column (byColumn=false).
func foldLeftIntoRight(maps []*CollisionMap, byColumn bool) {
	right, left := maps[geometry.Right], maps[geometry.Left]
	for x := 0; x < Width; x++ {
		if byColumn {
			right.Explored[x] |= arrOr(left.Explored, x+1, 0)
			right.SpinLoc[x] |= arrOr(left.SpinLoc, x+1, 0)
		} else {
			right.Explored[x] |= left.Explored[x] << 1
			right.SpinLoc[x] |= left.SpinLoc[x] << 1
		}
	}
}

// classifySpins computes, per kept rotation and column, which spin_loc
// positions also satisfy the piece's "true spin" geometry (spec.md section
// 4.3 step 5): the T-piece 3-corner rule, or (for every other piece) both
// horizontal neighbours and the cell above obstructed.
func classifySpins(b *Board, piece geometry.Piece, maps []*CollisionMap) [][Width]uint64 {
	result := make([][Width]uint64, len(maps))

	if piece == geometry.T {
		var corner [Width]uint64
		for x := 0; x < Width; x++ {
			left := colOr(b, x-1, fullHeight)
			right := colOr(b, x+1, fullHeight)
			c1 := left<<1 | 1
			c2 := right<<1 | 1
			c3 := right >> 1
			c4 := left >> 1
			corner[x] = (c1 & c2 & (c3 | c4)) | (c3 & c4 & (c1 | c2))
		}
		for ri, m := range maps {
			for x := 0; x < Width; x++ {
				left := arrOr(m.Obstructed, x-1, fullHeight)
				right := arrOr(m.Obstructed, x+1, fullHeight)
				result[ri][x] = (corner[x] | (left & right & (m.Obstructed[x] >> 1))) & m.SpinLoc[x]
			}
		}
		return result
	}

	for ri, m := range maps {
		for x := 0; x < Width; x++ {
			left := arrOr(m.Obstructed, x-1, fullHeight)
			right := arrOr(m.Obstructed, x+1, fullHeight)
			result[ri][x] = left & right & (m.Obstructed[x] >> 1) & m.SpinLoc[x]
		}
	}
	return result
}

// enumerate walks each kept rotation's explored bitboard and emits one
// PieceLocation per set bit, tagging spin and possible-line-clear flags.
func enumerate(piece geometry.Piece, maps []*CollisionMap, actualSpin [][Width]uint64) []PieceLocation {
	var positions []PieceLocation
	for ri, m := range maps {
		rot := allRotations[ri]
		for x := 0; x < Width; x++ {
			remaining := m.Explored[x]
			spinRemaining := actualSpin[ri][x]
			plc := remaining & arrOr(m.Obstructed, x-1, fullHeight) & arrOr(m.Obstructed, x+1, fullHeight)

			for y := int8(0); remaining != 0; y++ {
				if remaining&1 == 1 {
					positions = append(positions, PieceLocation{
						Piece:             piece,
						Rotation:          rot,
						Spun:              spinRemaining&1 == 1,
						PossibleLineClear: plc&1 == 1,
						X:                 int8(x),
						Y:                 y,
					})
				}
				remaining >>= 1
				spinRemaining >>= 1
				plc >>= 1
			}
		}
	}
	return positions
}
