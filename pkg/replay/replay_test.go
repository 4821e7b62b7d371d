package replay

import (
	"bytes"
	"strings"
	"testing"

	"github.com/yourusername/tetribot/internal/attacktable"
	"github.com/yourusername/tetribot/internal/geometry"
	"github.com/yourusername/tetribot/pkg/engine"
)

func TestImport(t *testing.T) {
	content := "; [Event \"boundary scenario 2\"]\n; [Seed \"1\"]\nQueue: I O T L J S Z\n\n  1) I 4,0 Up\n  2) T 6,1 Left spin clear=1 garbage=2\n  3) O 0,0 Up hold\n"

	tr, err := Import(strings.NewReader(content))
	if err != nil {
		t.Fatalf("Import error: %v", err)
	}

	if tr.Event != "boundary scenario 2" {
		t.Errorf("Event = %q, want %q", tr.Event, "boundary scenario 2")
	}
	if tr.Seed != "1" {
		t.Errorf("Seed = %q, want %q", tr.Seed, "1")
	}
	if len(tr.Queue) != 7 || tr.Queue[0] != geometry.I || tr.Queue[6] != geometry.Z {
		t.Fatalf("Queue = %v, want the full 7-bag starting with I and ending with Z", tr.Queue)
	}
	if len(tr.Placements) != 3 {
		t.Fatalf("Placements = %d, want 3", len(tr.Placements))
	}

	spinPlacement := tr.Placements[1]
	if !spinPlacement.Loc.Spun {
		t.Error("second placement should be marked spun")
	}
	if spinPlacement.Loc.Rotation != geometry.Left {
		t.Errorf("second placement rotation = %v, want Left", spinPlacement.Loc.Rotation)
	}
	if !spinPlacement.HasInfo || spinPlacement.Info.LinesCleared != 1 || spinPlacement.Info.GarbageSent != 2 {
		t.Errorf("second placement info = %+v, want LinesCleared=1 GarbageSent=2", spinPlacement.Info)
	}

	if !tr.Placements[2].Held {
		t.Error("third placement should be marked held")
	}
}

func TestExportRoundTrip(t *testing.T) {
	tr := &Transcript{
		Event: "regression",
		Queue: []geometry.Piece{geometry.T, geometry.I},
	}
	tr.Append(engine.PieceLocation{Piece: geometry.T, Rotation: geometry.Up, X: 4, Y: 0}, false, engine.PlacementInfo{})
	tr.Append(engine.PieceLocation{Piece: geometry.I, Rotation: geometry.Right, X: 9, Y: 2, Spun: true}, true, engine.PlacementInfo{LinesCleared: 2, GarbageSent: 1, Spin: true})

	var buf bytes.Buffer
	if err := Export(&buf, tr); err != nil {
		t.Fatalf("Export error: %v", err)
	}

	got, err := Import(&buf)
	if err != nil {
		t.Fatalf("re-Import of exported transcript failed: %v", err)
	}

	if got.Event != tr.Event {
		t.Errorf("Event = %q, want %q", got.Event, tr.Event)
	}
	if len(got.Placements) != 2 {
		t.Fatalf("Placements = %d, want 2", len(got.Placements))
	}
	if got.Placements[1].Loc.X != 9 || got.Placements[1].Loc.Y != 2 || !got.Placements[1].Loc.Spun {
		t.Errorf("second placement round-tripped as %+v", got.Placements[1].Loc)
	}
	if !got.Placements[1].Held {
		t.Error("second placement should round-trip as held")
	}
}

func TestReplayAppliesRecordedPlacements(t *testing.T) {
	tr := &Transcript{Queue: []geometry.Piece{geometry.T, geometry.I}}
	tr.Append(engine.PieceLocation{Piece: geometry.I, Rotation: geometry.Up, X: 4, Y: 0}, false, engine.PlacementInfo{})

	g := tr.Replay(attacktable.Default())
	if g.Board.IsEmpty() {
		t.Fatal("expected the replayed game to have placed a piece")
	}
}
