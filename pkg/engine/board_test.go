package engine

import (
	"testing"

	"github.com/yourusername/tetribot/internal/attacktable"
	"github.com/yourusername/tetribot/internal/geometry"
)

func TestColumnHeight(t *testing.T) {
	cases := []struct {
		col  Column
		want int
	}{
		{0, 0},
		{1, 1},
		{0b101, 3},
		{1 << 39, 40},
	}
	for _, c := range cases {
		if got := c.col.Height(); got != c.want {
			t.Errorf("Column(%b).Height() = %d, want %d", uint64(c.col), got, c.want)
		}
	}
}

func TestRemoveLinesIsIdempotent(t *testing.T) {
	b := boardFromColumns([Width]uint64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1})

	first := b.RemoveLines()
	if first == 0 {
		t.Fatal("expected a full bottom row to clear")
	}
	second := b.RemoveLines()
	if second != 0 {
		t.Fatalf("second RemoveLines call cleared %b, want 0 (idempotent)", second)
	}
	if !b.IsEmpty() {
		t.Fatal("expected an empty board after clearing its only row")
	}
}

func TestPlaceComputesGarbageFromAttackTable(t *testing.T) {
	b := boardFromColumns([Width]uint64{1, 1, 1, 1, 1, 1, 1, 1, 1, 0})
	loc := verticalI(9, 0)

	info := b.Place(loc, attacktable.Default())

	if info.LinesCleared != 1 {
		t.Fatalf("LinesCleared = %d, want 1", info.LinesCleared)
	}
	if info.GarbageSent != 0 {
		t.Fatalf("GarbageSent = %d, want 0 for a non-spin single", info.GarbageSent)
	}
}

func TestRotationFullCycleIsIdentity(t *testing.T) {
	want := []geometry.Rotation{geometry.Right, geometry.Down, geometry.Left, geometry.Up}
	r := geometry.Up
	for i, w := range want {
		r = r.RotateRight()
		if r != w {
			t.Fatalf("step %d: RotateRight produced %v, want %v", i, r, w)
		}
	}
	for _, p := range geometry.All {
		if got := geometry.Blocks(p, r); got != geometry.Blocks(p, geometry.Up) {
			t.Errorf("piece %v: rotation state Up after a full cycle has different blocks: %v != %v", p, got, geometry.Blocks(p, geometry.Up))
		}
	}
}
