package protocol

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/yourusername/tetribot/internal/geometry"
	"github.com/yourusername/tetribot/pkg/engine"
)

func testEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng, err := engine.NewEngine(engine.EngineOptions{Depth: 2, Width: 16})
	if err != nil {
		t.Fatalf("NewEngine error: %v", err)
	}
	return eng
}

func TestServeVersion(t *testing.T) {
	s := NewServer(testEngine(t), DefaultServerOptions())

	var out bytes.Buffer
	in := strings.NewReader(`{"type":"version"}` + "\n")
	if err := s.Serve(in, &out); err != nil {
		t.Fatalf("Serve error: %v", err)
	}

	var resp Response
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Type != "version" || resp.Version == "" {
		t.Fatalf("response = %+v, want a non-empty version string", resp)
	}
}

func TestServeMoveReturnsAPlacement(t *testing.T) {
	s := NewServer(testEngine(t), DefaultServerOptions())

	req := Request{
		Type: "move",
		State: &State{
			Hold:  "T",
			Queue: []string{"I", "O", "S"},
		},
	}
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}

	var out bytes.Buffer
	if err := s.Serve(bytes.NewReader(append(body, '\n')), &out); err != nil {
		t.Fatalf("Serve error: %v", err)
	}

	var resp Response
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Type != "move" || resp.Move == nil {
		t.Fatalf("response = %+v, want a move", resp)
	}
	if _, ok := parsePiece(resp.Move.Piece); !ok {
		t.Errorf("returned piece %q does not parse", resp.Move.Piece)
	}
}

func TestServeAdvanceAppliesPlacement(t *testing.T) {
	s := NewServer(testEngine(t), DefaultServerOptions())

	req := Request{
		Type: "advance",
		State: &State{
			Hold:  "I",
			Queue: []string{"T"},
		},
		Next: "I",
		Loc: &Move{
			Piece:    "I",
			Rotation: "Right",
			X:        0,
			Y:        0,
		},
	}
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}

	var out bytes.Buffer
	if err := s.Serve(bytes.NewReader(append(body, '\n')), &out); err != nil {
		t.Fatalf("Serve error: %v", err)
	}

	var resp Response
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Type != "advance" {
		t.Fatalf("response = %+v, want type advance", resp)
	}
}

func TestServeStopsOnQuit(t *testing.T) {
	s := NewServer(testEngine(t), DefaultServerOptions())

	var out bytes.Buffer
	in := strings.NewReader(`{"type":"quit"}` + "\n" + `{"type":"version"}` + "\n")
	if err := s.Serve(in, &out); err != nil {
		t.Fatalf("Serve error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d response lines, want 1 (quit should stop before the second request)", len(lines))
	}
}

func TestServeRejectsUnknownPiece(t *testing.T) {
	s := NewServer(testEngine(t), DefaultServerOptions())

	var out bytes.Buffer
	in := strings.NewReader(`{"type":"move","state":{"hold":"Q","queue":["I"]}}` + "\n")
	if err := s.Serve(in, &out); err != nil {
		t.Fatalf("Serve error: %v", err)
	}

	var resp Response
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Type != "error" {
		t.Fatalf("response type = %q, want error", resp.Type)
	}
}

func TestLocToMoveRoundTrips(t *testing.T) {
	loc := engine.PieceLocation{Piece: geometry.L, Rotation: geometry.Down, X: 2, Y: 5, Spun: true}
	m := locToMove(loc)
	back, err := moveToLoc(*m)
	if err != nil {
		t.Fatalf("moveToLoc error: %v", err)
	}
	if back.Piece != loc.Piece || back.Rotation != loc.Rotation || back.X != loc.X || back.Y != loc.Y || back.Spun != loc.Spun {
		t.Errorf("round trip produced %+v, want %+v", back, loc)
	}
}
