// Package api provides an HTTP/JSON and WebSocket surface over an Engine.
package api

import "github.com/yourusername/tetribot/pkg/engine"

// ============================================================================
// Request Types
// ============================================================================

// StateRequest is the board position a request is made against: ten column
// words, the held piece, the upcoming queue, and the two streak counters
// that feed garbage scaling.
type StateRequest struct {
	Board [engine.Width]uint64 `json:"board"`
	Hold  string               `json:"hold"`
	Queue []string             `json:"queue"`
	B2B   uint64               `json:"b2b,omitempty"`
	Combo uint64               `json:"combo,omitempty"`
}

// MoveRequest is the request body for a best-move search.
type MoveRequest struct {
	State StateRequest `json:"state"`
}

// MovegenRequest is the request body for full legal-move enumeration.
type MovegenRequest struct {
	State StateRequest `json:"state"`
	Next  string       `json:"next"` // piece about to drop; hold swap is always included
}

// AdvanceRequest is the request body for applying a chosen placement to a
// state and reporting the placement outcome and updated streak counters.
type AdvanceRequest struct {
	State StateRequest `json:"state"`
	Next  string       `json:"next"` // the piece drawn from the head of the queue
	Loc   MoveResponse `json:"loc"`  // the placement made
}

// BenchRequest is the request body for a batch of self-play playouts.
type BenchRequest struct {
	Trials     int   `json:"trials,omitempty"`      // default 16
	PieceLimit int   `json:"piece_limit,omitempty"` // 0 = unbounded
	Seed       int64 `json:"seed,omitempty"`        // 0 = random
	Workers    int   `json:"workers,omitempty"`      // 0 = GOMAXPROCS
}

// ============================================================================
// Response Types
// ============================================================================

// MoveResponse is a single placement, in both directions of the API: the
// engine's chosen move in a move/movegen response, and the caller-supplied
// move actually played in an advance request.
type MoveResponse struct {
	Piece    string `json:"piece"`
	Rotation string `json:"rotation"`
	X        int8   `json:"x"`
	Y        int8   `json:"y"`
	Spin     bool   `json:"spin"`
}

// ScoredMove pairs a candidate placement with the static evaluator's score
// for the board it produces, the way a rollout-free move list still ranks
// candidates by equity.
type ScoredMove struct {
	Move  MoveResponse `json:"move"`
	Score float64      `json:"score"`
}

// MovesResponse is the response for a best-move search: the chosen
// placement plus the number of legal placements for the queue head and
// hold piece. The candidate list itself is not included.
type MovesResponse struct {
	Best     MoveResponse `json:"best"`
	NumLegal int          `json:"num_legal"`
}

// MovegenResponse is the response for full legal-move enumeration.
type MovegenResponse struct {
	Moves    []ScoredMove `json:"moves"`
	NumLegal int          `json:"num_legal"`
}

// AdvanceResponse is the response for applying a placement.
type AdvanceResponse struct {
	LinesCleared uint32 `json:"lines_cleared"`
	GarbageSent  int32  `json:"garbage_sent"`
	Spin         bool   `json:"spin"`
	B2B          uint64 `json:"b2b"`
	Combo        uint64 `json:"combo"`
}

// BenchResponse is the response for a batch of self-play playouts.
type BenchResponse struct {
	Trials         int     `json:"trials"`
	TotalPieces    int64   `json:"total_pieces"`
	TotalLines     int64   `json:"total_lines"`
	TotalGarbage   int64   `json:"total_garbage"`
	TotalToppedOut int     `json:"total_topped_out"`
	MaxB2B         uint64  `json:"max_b2b"`
	PiecesPerSec   float64 `json:"pieces_per_sec,omitempty"`
}

// ErrorResponse is returned when an error occurs.
type ErrorResponse struct {
	Error   string `json:"error"`             // Error message
	Code    string `json:"code,omitempty"`    // Error code
	Details string `json:"details,omitempty"` // Additional details
}

// HealthResponse is the response for a health check.
type HealthResponse struct {
	Status  string     `json:"status"`         // "ok" or "error"
	Version string     `json:"version"`        // Engine version
	Ready   bool       `json:"ready"`           // Whether an engine is attached
	Pool    *PoolStats `json:"pool,omitempty"` // Worker pool stats, if a pool is configured
}

// ============================================================================
// Helper Functions
// ============================================================================

// locToMoveResponse converts an engine PieceLocation to its wire shape.
func locToMoveResponse(loc engine.PieceLocation) MoveResponse {
	return MoveResponse{
		Piece:    loc.Piece.String(),
		Rotation: loc.Rotation.String(),
		X:        loc.X,
		Y:        loc.Y,
		Spin:     loc.Spun,
	}
}
