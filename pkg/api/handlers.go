package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/yourusername/tetribot/internal/geometry"
	"github.com/yourusername/tetribot/pkg/engine"
)

// Handlers bundles an Engine with the state needed to serve HTTP requests,
// the way bgengine's Handlers bundles its evaluation engine with a worker pool.
type Handlers struct {
	engine  *engine.Engine
	version string
	pool    *WorkerPool
}

// NewHandlers creates a Handlers with a default-sized worker pool.
func NewHandlers(e *engine.Engine, version string) *Handlers {
	return NewHandlersWithPool(e, version, NewWorkerPool(DefaultPoolConfig()))
}

// NewHandlersWithPool creates a Handlers using a caller-supplied pool, so a
// Server can share one pool across every handler it registers.
func NewHandlersWithPool(e *engine.Engine, version string, pool *WorkerPool) *Handlers {
	return &Handlers{engine: e, version: version, pool: pool}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// Health reports whether an engine is attached and ready to serve requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Version: h.version,
		Ready:   h.engine != nil,
	}

	if h.pool != nil {
		stats := h.pool.Stats()
		resp.Pool = &stats
	}

	writeJSON(w, http.StatusOK, resp)
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

// stateToGame converts the wire representation of a board into a Game and
// its upcoming queue, the way protocol.stateToGame does for the stdio bot
// protocol this package mirrors over HTTP.
func stateToGame(st StateRequest) (*engine.Game, []geometry.Piece, error) {
	hold, ok := parsePiece(st.Hold)
	if !ok {
		return nil, nil, fmt.Errorf("unrecognized hold piece %q", st.Hold)
	}
	g := engine.NewGame(hold)
	for i, c := range st.Board {
		g.Board.Cols[i] = engine.Column(c)
	}
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

func moveResponseToLoc(m MoveResponse) (engine.PieceLocation, error) {
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

// Move runs a beam search from the posted state and returns the best
// placement for the head of the queue (or the held piece).
func (h *Handlers) Move(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	g, queue, err := stateToGame(req.State)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(queue) == 0 {
		writeError(w, http.StatusBadRequest, "state requires a non-empty queue")
		return
	}

	if err := h.pool.AcquireFast(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "engine busy: "+err.Error())
		return
	}
	defer h.pool.ReleaseFast()

	loc := h.engine.Search(g, queue)
	legal := engine.MoveGen(g, queue[0])

	writeJSON(w, http.StatusOK, MovesResponse{
		Best:     locToMoveResponse(loc),
		NumLegal: len(legal),
	})
}

// Movegen enumerates every legal placement for the posted state's next
// piece (and its hold swap), scoring each with the static evaluator so a
// caller can rank candidates without running a full search.
func (h *Handlers) Movegen(w http.ResponseWriter, r *http.Request) {
	var req MovegenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	g, _, err := stateToGame(req.State)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	next, ok := parsePiece(req.Next)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unrecognized piece %q", req.Next))
		return
	}

	if err := h.pool.AcquireFast(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "engine busy: "+err.Error())
		return
	}
	defer h.pool.ReleaseFast()

	positions := engine.MoveGen(g, next)
	moves := make([]ScoredMove, len(positions))
	for i, loc := range positions {
		trial := g.Clone()
		info := trial.Advance(next, loc, h.engine.AttackTable)
		score := h.engine.Eval.Score(trial, next, info)
		moves[i] = ScoredMove{Move: locToMoveResponse(loc), Score: score}
	}

	writeJSON(w, http.StatusOK, MovegenResponse{Moves: moves, NumLegal: len(moves)})
}

// Advance applies a placement the caller actually made and reports its
// outcome: lines cleared, garbage sent, and the updated streak counters.
func (h *Handlers) Advance(w http.ResponseWriter, r *http.Request) {
	var req AdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	g, _, err := stateToGame(req.State)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	next, ok := parsePiece(req.Next)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unrecognized piece %q", req.Next))
		return
	}
	loc, err := moveResponseToLoc(req.Loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.pool.AcquireFast(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "engine busy: "+err.Error())
		return
	}
	defer h.pool.ReleaseFast()

	info := h.engine.Advance(g, next, loc)
	writeJSON(w, http.StatusOK, AdvanceResponse{
		LinesCleared: info.LinesCleared,
		GarbageSent:  info.GarbageSent,
		Spin:         info.Spin,
		B2B:          g.B2B,
		Combo:        g.Combo,
	})
}

// Bench runs a batch of self-play playouts on the slow worker pool, the
// way bgengine's Rollout spreads Monte Carlo trials across goroutines.
func (h *Handlers) Bench(w http.ResponseWriter, r *http.Request) {
	var req BenchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if err := h.pool.AcquireSlow(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "engine busy: "+err.Error())
		return
	}
	defer h.pool.ReleaseSlow()

	opts := engine.BenchOptions{
		Trials:     req.Trials,
		PieceLimit: req.PieceLimit,
		Seed:       req.Seed,
		Workers:    req.Workers,
	}
	start := time.Now()
	result := h.engine.Bench(opts)
	elapsed := time.Since(start).Seconds()

	resp := BenchResponse{
		Trials:         result.Trials,
		TotalPieces:    result.TotalPieces,
		TotalLines:     result.TotalLines,
		TotalGarbage:   result.TotalGarbage,
		TotalToppedOut: result.TotalToppedOut,
		MaxB2B:         result.MaxB2B,
	}
	if elapsed > 0 {
		resp.PiecesPerSec = float64(result.TotalPieces) / elapsed
	}
	writeJSON(w, http.StatusOK, resp)
}
