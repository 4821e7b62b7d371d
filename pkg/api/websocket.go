package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/yourusername/tetribot/pkg/engine"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins - configure properly in production
	},
}

// WSMessage is a generic WebSocket message.
type WSMessage struct {
	Type    string          `json:"type"`    // Message type: "move", "movegen", "advance", "ping"
	ID      string          `json:"id"`      // Request ID for correlating responses
	Payload json.RawMessage `json:"payload"` // Type-specific payload
}

// WSResponse is a generic WebSocket response.
type WSResponse struct {
	Type    string      `json:"type"`              // Response type: "result", "error", "pong"
	ID      string      `json:"id,omitempty"`      // Request ID
	Payload interface{} `json:"payload,omitempty"` // Response data
	Error   string      `json:"error,omitempty"`   // Error message if any
}

// WSClient represents a connected WebSocket client.
type WSClient struct {
	conn     *websocket.Conn
	handlers *Handlers
	sendChan chan WSResponse
	mu       sync.Mutex
}

// WebSocket handles WebSocket connections for live placement suggestions.
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	client := &WSClient{conn: conn, handlers: h, sendChan: make(chan WSResponse, 256)}
	go client.writePump()
	client.readPump()
}

func (c *WSClient) writePump() {
	defer c.conn.Close()
	for msg := range c.sendChan {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (c *WSClient) readPump() {
	defer func() { close(c.sendChan); c.conn.Close() }()
	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		c.handleMessage(msg)
	}
}

func (c *WSClient) handleMessage(msg WSMessage) {
	switch msg.Type {
	case "move":
		c.handleMove(msg)
	case "movegen":
		c.handleMovegen(msg)
	case "advance":
		c.handleAdvance(msg)
	case "ping":
		c.sendChan <- WSResponse{Type: "pong", ID: msg.ID}
	default:
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "unknown message type"}
	}
}

func (c *WSClient) handleMove(msg WSMessage) {
	var req MoveRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "invalid payload"}
		return
	}
	g, queue, err := stateToGame(req.State)
	if err != nil {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: err.Error()}
		return
	}
	if len(queue) == 0 {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "state requires a non-empty queue"}
		return
	}

	loc := c.handlers.engine.Search(g, queue)
	legal := len(engine.MoveGen(g, queue[0]))
	c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: MovesResponse{
		Best:     locToMoveResponse(loc),
		NumLegal: legal,
	}}
}

func (c *WSClient) handleMovegen(msg WSMessage) {
	var req MovegenRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "invalid payload"}
		return
	}
	g, _, err := stateToGame(req.State)
	if err != nil {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: err.Error()}
		return
	}
	next, ok := parsePiece(req.Next)
	if !ok {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: fmt.Sprintf("unrecognized piece %q", req.Next)}
		return
	}

	positions := engine.MoveGen(g, next)
	moves := make([]ScoredMove, len(positions))
	for i, loc := range positions {
		trial := g.Clone()
		info := trial.Advance(next, loc, c.handlers.engine.AttackTable)
		score := c.handlers.engine.Eval.Score(trial, next, info)
		moves[i] = ScoredMove{Move: locToMoveResponse(loc), Score: score}
	}
	c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: MovegenResponse{Moves: moves, NumLegal: len(moves)}}
}

func (c *WSClient) handleAdvance(msg WSMessage) {
	var req AdvanceRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "invalid payload"}
		return
	}
	g, _, err := stateToGame(req.State)
	if err != nil {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: err.Error()}
		return
	}
	next, ok := parsePiece(req.Next)
	if !ok {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: fmt.Sprintf("unrecognized piece %q", req.Next)}
		return
	}
	loc, err := moveResponseToLoc(req.Loc)
	if err != nil {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: err.Error()}
		return
	}

	info := c.handlers.engine.Advance(g, next, loc)
	c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: AdvanceResponse{
		LinesCleared: info.LinesCleared,
		GarbageSent:  info.GarbageSent,
		Spin:         info.Spin,
		B2B:          g.B2B,
		Combo:        g.Combo,
	}}
}
