// Package main provides C-compatible functions for building a shared library.
// Build with: go build -buildmode=c-shared -o libtetribot.so ./pkg/capi
package main

/*
#include <stdlib.h>
#include <stdint.h>
*/
import "C"
import (
	"encoding/json"
	"fmt"
	"sync"
	"unsafe"

	"github.com/yourusername/tetribot/internal/geometry"
	"github.com/yourusername/tetribot/pkg/engine"
)

var (
	globalEngine *engine.Engine
	engineMutex  sync.RWMutex
	lastError    string
	errorMutex   sync.Mutex
)

// setError stores an error message for later retrieval.
func setError(err error) {
	errorMutex.Lock()
	defer errorMutex.Unlock()
	if err != nil {
		lastError = err.Error()
	} else {
		lastError = ""
	}
}

// stateJSON is the wire shape of a board position passed across the C
// boundary: ten column words, the held piece, and the upcoming queue.
type stateJSON struct {
	Board [engine.Width]uint64 `json:"board"`
	Hold  string               `json:"hold"`
	Queue []string             `json:"queue"`
	B2B   uint64               `json:"b2b"`
	Combo uint64               `json:"combo"`
}

// moveJSON is the wire shape of a placement.
type moveJSON struct {
	Piece    string `json:"piece"`
	Rotation string `json:"rotation"`
	X        int8   `json:"x"`
	Y        int8   `json:"y"`
	Spin     bool   `json:"spin"`
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

// parseState converts a JSON-encoded stateJSON into a Game and its queue.
func parseState(stateStr string) (*engine.Game, []geometry.Piece, error) {
	var st stateJSON
	if err := json.Unmarshal([]byte(stateStr), &st); err != nil {
		return nil, nil, fmt.Errorf("decoding state: %w", err)
	}

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

func locToMoveJSON(loc engine.PieceLocation) moveJSON {
	return moveJSON{
		Piece:    loc.Piece.String(),
		Rotation: loc.Rotation.String(),
		X:        loc.X,
		Y:        loc.Y,
		Spin:     loc.Spun,
	}
}

func moveJSONToLoc(m moveJSON) (engine.PieceLocation, error) {
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

//export tetribot_version
func tetribot_version() *C.char {
	return C.CString("0.1.0")
}

//export tetribot_last_error
func tetribot_last_error() *C.char {
	errorMutex.Lock()
	defer errorMutex.Unlock()
	if lastError == "" {
		return nil
	}
	return C.CString(lastError)
}

//export tetribot_init
func tetribot_init(attackTableFile *C.char, depth, width C.int) C.int {
	engineMutex.Lock()
	defer engineMutex.Unlock()

	opts := engine.EngineOptions{}
	if attackTableFile != nil {
		opts.AttackTableFile = C.GoString(attackTableFile)
	}
	if depth > 0 {
		opts.Depth = int(depth)
	}
	if width > 0 {
		opts.Width = int(width)
	}

	eng, err := engine.NewEngine(opts)
	if err != nil {
		setError(err)
		return -1
	}

	globalEngine = eng
	setError(nil)
	return 0
}

//export tetribot_shutdown
func tetribot_shutdown() {
	engineMutex.Lock()
	defer engineMutex.Unlock()
	globalEngine = nil
}

//export tetribot_best_move
func tetribot_best_move(stateStr *C.char, resultJSON **C.char) C.int {
	engineMutex.RLock()
	eng := globalEngine
	engineMutex.RUnlock()

	if eng == nil {
		setError(nil)
		*resultJSON = C.CString(`{"error": "engine not initialized"}`)
		return -1
	}

	g, queue, err := parseState(C.GoString(stateStr))
	if err != nil {
		setError(err)
		*resultJSON = C.CString(`{"error": "invalid state"}`)
		return -1
	}
	if len(queue) == 0 {
		setError(fmt.Errorf("empty queue"))
		*resultJSON = C.CString(`{"error": "empty queue"}`)
		return -1
	}

	loc := eng.Search(g, queue)

	jsonBytes, err := json.Marshal(locToMoveJSON(loc))
	if err != nil {
		setError(err)
		*resultJSON = C.CString(`{"error": "encoding result"}`)
		return -1
	}
	*resultJSON = C.CString(string(jsonBytes))
	setError(nil)
	return 0
}

//export tetribot_advance
func tetribot_advance(stateStr, nextPiece, locStr *C.char, resultJSON **C.char) C.int {
	engineMutex.RLock()
	eng := globalEngine
	engineMutex.RUnlock()

	if eng == nil {
		*resultJSON = C.CString(`{"error": "engine not initialized"}`)
		return -1
	}

	g, _, err := parseState(C.GoString(stateStr))
	if err != nil {
		setError(err)
		*resultJSON = C.CString(`{"error": "invalid state"}`)
		return -1
	}

	next, ok := parsePiece(C.GoString(nextPiece))
	if !ok {
		setError(fmt.Errorf("unrecognized piece %q", C.GoString(nextPiece)))
		*resultJSON = C.CString(`{"error": "invalid piece"}`)
		return -1
	}

	var m moveJSON
	if err := json.Unmarshal([]byte(C.GoString(locStr)), &m); err != nil {
		setError(err)
		*resultJSON = C.CString(`{"error": "invalid move"}`)
		return -1
	}
	loc, err := moveJSONToLoc(m)
	if err != nil {
		setError(err)
		*resultJSON = C.CString(`{"error": "invalid move"}`)
		return -1
	}

	info := eng.Advance(g, next, loc)

	result := map[string]interface{}{
		"linesCleared": info.LinesCleared,
		"garbageSent":  info.GarbageSent,
		"spin":         info.Spin,
	}
	jsonBytes, _ := json.Marshal(result)
	*resultJSON = C.CString(string(jsonBytes))
	setError(nil)
	return 0
}

//export tetribot_free_string
func tetribot_free_string(s *C.char) {
	if s != nil {
		C.free(unsafe.Pointer(s))
	}
}

func main() {}
