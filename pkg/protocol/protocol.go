// Package protocol implements a line-delimited JSON bot protocol over
// stdio: a client process writes one JSON request per line to the
// engine's stdin and reads one JSON response per line from its stdout.
// Adapted from bgengine's pkg/external FIBS external-player protocol —
// same request/dispatch/response shape, but JSON frames over stdio in
// place of a textual FIBS board over a TCP listener, matching how real
// Tetris bot frameworks talk to an external engine process.
package protocol

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/yourusername/tetribot/internal/geometry"
	"github.com/yourusername/tetribot/pkg/engine"
)

// Request is one line of client input.
type Request struct {
	Type  string `json:"type"`            // "move", "advance", "version", "quit"
	State *State `json:"state,omitempty"` // required for "move" and "advance"
	Next  string `json:"next,omitempty"`  // required for "advance": the piece drawn from the head of the queue
	Loc   *Move  `json:"loc,omitempty"`   // required for "advance": the placement made
}

// State is the board position a "move" or "advance" request is made against.
type State struct {
	Board [engine.Width]uint64 `json:"board"`
	Hold  string               `json:"hold"`
	Queue []string             `json:"queue"`
	B2B   uint64               `json:"b2b"`
	Combo uint64               `json:"combo"`
}

// Move is a placement, in both directions of the protocol: the engine's
// chosen move in a "move" response, and the caller-supplied move actually
// played in an "advance" request.
type Move struct {
	Piece    string `json:"piece"`
	Rotation string `json:"rotation"`
	X        int8   `json:"x"`
	Y        int8   `json:"y"`
	Spin     bool   `json:"spin"`
}

// Response is one line of engine output.
type Response struct {
	Type         string `json:"type"` // "move", "advance", "version", "bye", "error"
	Move         *Move  `json:"move,omitempty"`
	LinesCleared uint32 `json:"linesCleared,omitempty"`
	GarbageSent  int32  `json:"garbageSent,omitempty"`
	Version      string `json:"version,omitempty"`
	Error        string `json:"error,omitempty"`
}

// ServerOptions configures the protocol server.
type ServerOptions struct {
	Version string // reported by a "version" request; defaults to "tetribot-protocol 1.0"
}

// DefaultServerOptions returns sensible defaults.
func DefaultServerOptions() ServerOptions {
	return ServerOptions{Version: "tetribot-protocol 1.0"}
}

// Server dispatches line-delimited JSON requests against an Engine.
type Server struct {
	engine  *engine.Engine
	options ServerOptions
	mu      sync.Mutex
}

// NewServer creates a protocol server bound to eng.
func NewServer(eng *engine.Engine, opts ServerOptions) *Server {
	return &Server{engine: eng, options: opts}
}

// Serve reads newline-delimited JSON requests from r and writes one JSON
// response per line to w until r is exhausted, an unrecoverable read
// error occurs, or a "quit" request is received.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		resp := s.handleLine(line)
		if err := writeResponse(w, resp); err != nil {
			return fmt.Errorf("writing response: %w", err)
		}
		if resp.Type == "bye" {
			return nil
		}
	}
	return scanner.Err()
}

func writeResponse(w io.Writer, resp Response) error {
	enc := json.NewEncoder(w)
	return enc.Encode(resp)
}

func (s *Server) handleLine(line string) Response {
	var req Request
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		return Response{Type: "error", Error: fmt.Sprintf("malformed request: %v", err)}
	}

	switch strings.ToLower(req.Type) {
	case "version":
		return Response{Type: "version", Version: s.options.Version}
	case "quit":
		return Response{Type: "bye"}
	case "move":
		return s.handleMove(req)
	case "advance":
		return s.handleAdvance(req)
	default:
		return Response{Type: "error", Error: fmt.Sprintf("unknown request type %q", req.Type)}
	}
}

// handleMove runs a search from the supplied state and returns the best
// placement for the head of the queue (or the held piece).
func (s *Server) handleMove(req Request) Response {
	if req.State == nil {
		return Response{Type: "error", Error: "move request requires a state"}
	}
	g, queue, err := stateToGame(*req.State)
	if err != nil {
		return Response{Type: "error", Error: err.Error()}
	}
	if len(queue) == 0 {
		return Response{Type: "error", Error: "move request requires a non-empty queue"}
	}

	s.mu.Lock()
	loc := s.engine.Search(g, queue)
	s.mu.Unlock()

	return Response{Type: "move", Move: locToMove(loc)}
}

// handleAdvance applies a placement the caller actually made and reports
// its outcome, keeping the protocol symmetric with a local driver calling
// Game.Advance directly.
func (s *Server) handleAdvance(req Request) Response {
	if req.State == nil || req.Loc == nil || req.Next == "" {
		return Response{Type: "error", Error: "advance request requires state, next, and loc"}
	}
	g, _, err := stateToGame(*req.State)
	if err != nil {
		return Response{Type: "error", Error: err.Error()}
	}
	next, ok := parsePiece(req.Next)
	if !ok {
		return Response{Type: "error", Error: fmt.Sprintf("unrecognized piece %q", req.Next)}
	}
	loc, err := moveToLoc(*req.Loc)
	if err != nil {
		return Response{Type: "error", Error: err.Error()}
	}

	s.mu.Lock()
	info := s.engine.Advance(g, next, loc)
	s.mu.Unlock()

	return Response{Type: "advance", LinesCleared: info.LinesCleared, GarbageSent: info.GarbageSent}
}

func stateToGame(st State) (*engine.Game, []geometry.Piece, error) {
	hold, ok := parsePiece(st.Hold)
	if !ok {
		return nil, nil, fmt.Errorf("unrecognized hold piece %q", st.Hold)
	}
	g := engine.NewGame(hold)
	g.Board = boardFromColumns(st.Board)
	g.B2B = st.B2B
	g.Combo = st.Combo

	queue := make([]geometry.Piece, 0, len(st.Queue))
	for _, name := range st.Queue {
		p, ok := parsePiece(name)
		if !ok {
			return nil, nil, fmt.Errorf("unrecognized queue piece %q", name)
		}
		queue = append(queue, p)
	}
	return g, queue, nil
}

func boardFromColumns(cols [engine.Width]uint64) engine.Board {
	var b engine.Board
	for i, c := range cols {
		b.Cols[i] = engine.Column(c)
	}
	return b
}

func locToMove(loc engine.PieceLocation) *Move {
	return &Move{
		Piece:    loc.Piece.String(),
		Rotation: loc.Rotation.String(),
		X:        loc.X,
		Y:        loc.Y,
		Spin:     loc.Spun,
	}
}

func moveToLoc(m Move) (engine.PieceLocation, error) {
	piece, ok := parsePiece(m.Piece)
	if !ok {
		return engine.PieceLocation{}, fmt.Errorf("unrecognized piece %q", m.Piece)
	}
	rot, ok := parseRotation(m.Rotation)
	if !ok {
		return engine.PieceLocation{}, fmt.Errorf("unrecognized rotation %q", m.Rotation)
	}
	return engine.PieceLocation{
		Piece:             piece,
		Rotation:          rot,
		X:                 m.X,
		Y:                 m.Y,
		Spun:              m.Spin,
		PossibleLineClear: true,
	}, nil
}

func parsePiece(s string) (geometry.Piece, bool) {
	for _, p := range geometry.All {
		if p.String() == s {
			return p, true
		}
	}
	return 0, false
}

func parseRotation(s string) (geometry.Rotation, bool) {
	for _, r := range []geometry.Rotation{geometry.Up, geometry.Right, geometry.Down, geometry.Left} {
		if r.String() == s {
			return r, true
		}
	}
	return 0, false
}
