package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yourusername/tetribot/pkg/engine"
)

// getTestEngine returns a shallow, fast-searching engine suitable for tests.
func getTestEngine() *engine.Engine {
	eng, _ := engine.NewEngine(engine.EngineOptions{Depth: 2, Width: 64})
	return eng
}

func startingState() StateRequest {
	return StateRequest{Hold: "T", Queue: []string{"I", "O", "S", "Z", "L", "J"}}
}

func TestHealthHandler(t *testing.T) {
	h := NewHandlers(nil, "test-version")

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()

	h.Health(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Health status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("Status = %q, want %q", health.Status, "ok")
	}
	if health.Version != "test-version" {
		t.Errorf("Version = %q, want %q", health.Version, "test-version")
	}
	if health.Ready {
		t.Error("Expected ready = false with a nil engine")
	}
}

func TestHealthHandlerReady(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	h.Health(w, req)

	var health HealthResponse
	json.NewDecoder(w.Result().Body).Decode(&health)
	if !health.Ready {
		t.Error("Expected ready = true when engine is set")
	}
	if health.Pool == nil {
		t.Error("Expected Pool to be populated when NewHandlers configures a default pool")
	}
}

func TestMoveHandler(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
	}{
		{
			name:       "valid state",
			body:       MoveRequest{State: startingState()},
			wantStatus: http.StatusOK,
		},
		{
			name:       "empty queue",
			body:       MoveRequest{State: StateRequest{Hold: "T"}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unrecognized hold",
			body:       MoveRequest{State: StateRequest{Hold: "Q", Queue: []string{"I"}}},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(tc.body)
			req := httptest.NewRequest("POST", "/api/move", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			h.Move(w, req)

			resp := w.Result()
			if resp.StatusCode != tc.wantStatus {
				t.Errorf("Status = %d, want %d", resp.StatusCode, tc.wantStatus)
			}
			if tc.wantStatus == http.StatusOK {
				var moveResp MovesResponse
				if err := json.NewDecoder(resp.Body).Decode(&moveResp); err != nil {
					t.Fatalf("Decode error: %v", err)
				}
				if moveResp.NumLegal <= 0 {
					t.Error("Expected a positive NumLegal")
				}
				if _, ok := parsePiece(moveResp.Best.Piece); !ok {
					t.Errorf("returned piece %q does not parse", moveResp.Best.Piece)
				}
			}
		})
	}
}

func TestMovegenHandler(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
	}{
		{
			name:       "valid request",
			body:       MovegenRequest{State: startingState(), Next: "I"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unrecognized next piece",
			body:       MovegenRequest{State: startingState(), Next: "Q"},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(tc.body)
			req := httptest.NewRequest("POST", "/api/movegen", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			h.Movegen(w, req)

			resp := w.Result()
			if resp.StatusCode != tc.wantStatus {
				t.Errorf("Status = %d, want %d", resp.StatusCode, tc.wantStatus)
			}
			if tc.wantStatus == http.StatusOK {
				var movegenResp MovegenResponse
				if err := json.NewDecoder(resp.Body).Decode(&movegenResp); err != nil {
					t.Fatalf("Decode error: %v", err)
				}
				if movegenResp.NumLegal != len(movegenResp.Moves) {
					t.Errorf("NumLegal = %d, want len(Moves) = %d", movegenResp.NumLegal, len(movegenResp.Moves))
				}
				if movegenResp.NumLegal == 0 {
					t.Error("Expected at least one legal placement on an empty board")
				}
			}
		})
	}
}

func TestAdvanceHandler(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")

	req := AdvanceRequest{
		State: startingState(),
		Next:  "I",
		Loc:   MoveResponse{Piece: "I", Rotation: "Up", X: 3, Y: 0},
	}
	body, _ := json.Marshal(req)
	httpReq := httptest.NewRequest("POST", "/api/advance", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.Advance(w, httpReq)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var advResp AdvanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&advResp); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
}

func TestBenchHandler(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")

	req := BenchRequest{Trials: 2, PieceLimit: 10, Seed: 42, Workers: 1}
	body, _ := json.Marshal(req)
	httpReq := httptest.NewRequest("POST", "/api/bench", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.Bench(w, httpReq)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var benchResp BenchResponse
	if err := json.NewDecoder(resp.Body).Decode(&benchResp); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if benchResp.Trials != 2 {
		t.Errorf("Trials = %d, want 2", benchResp.Trials)
	}
}

// ============================================================================
// WebSocket Tests
// ============================================================================

func TestWebSocketUpgrade(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")

	server := httptest.NewServer(http.HandlerFunc(h.WebSocket))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	ws, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("WebSocket dial failed: %v", err)
	}
	defer ws.Close()

	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Errorf("Status = %d, want %d", resp.StatusCode, http.StatusSwitchingProtocols)
	}
}

func TestWebSocketPing(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")

	server := httptest.NewServer(http.HandlerFunc(h.WebSocket))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("WebSocket dial failed: %v", err)
	}
	defer ws.Close()

	msg := WSMessage{Type: "ping", ID: "test-ping-1"}
	if err := ws.WriteJSON(msg); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var resp WSResponse
	if err := ws.ReadJSON(&resp); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if resp.Type != "pong" {
		t.Errorf("Response type = %q, want %q", resp.Type, "pong")
	}
	if resp.ID != "test-ping-1" {
		t.Errorf("Response ID = %q, want %q", resp.ID, "test-ping-1")
	}
}

func TestWebSocketMove(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")

	server := httptest.NewServer(http.HandlerFunc(h.WebSocket))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("WebSocket dial failed: %v", err)
	}
	defer ws.Close()

	payload, _ := json.Marshal(MoveRequest{State: startingState()})
	msg := WSMessage{Type: "move", ID: "move-1", Payload: payload}
	if err := ws.WriteJSON(msg); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var resp WSResponse
	if err := ws.ReadJSON(&resp); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if resp.Type != "result" {
		t.Errorf("Response type = %q, want %q", resp.Type, "result")
	}
	if resp.ID != "move-1" {
		t.Errorf("Response ID = %q, want %q", resp.ID, "move-1")
	}
}

func TestWebSocketMovegen(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")

	server := httptest.NewServer(http.HandlerFunc(h.WebSocket))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("WebSocket dial failed: %v", err)
	}
	defer ws.Close()

	payload, _ := json.Marshal(MovegenRequest{State: startingState(), Next: "I"})
	msg := WSMessage{Type: "movegen", ID: "movegen-1", Payload: payload}
	if err := ws.WriteJSON(msg); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var resp WSResponse
	if err := ws.ReadJSON(&resp); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if resp.Type != "result" {
		t.Errorf("Response type = %q, want %q", resp.Type, "result")
	}
}

func TestWebSocketAdvance(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")

	server := httptest.NewServer(http.HandlerFunc(h.WebSocket))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("WebSocket dial failed: %v", err)
	}
	defer ws.Close()

	payload, _ := json.Marshal(AdvanceRequest{
		State: startingState(),
		Next:  "I",
		Loc:   MoveResponse{Piece: "I", Rotation: "Up", X: 3, Y: 0},
	})
	msg := WSMessage{Type: "advance", ID: "advance-1", Payload: payload}
	if err := ws.WriteJSON(msg); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var resp WSResponse
	if err := ws.ReadJSON(&resp); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if resp.Type != "result" {
		t.Errorf("Response type = %q, want %q", resp.Type, "result")
	}
}

func TestWebSocketErrors(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")

	server := httptest.NewServer(http.HandlerFunc(h.WebSocket))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("WebSocket dial failed: %v", err)
	}
	defer ws.Close()

	tests := []struct {
		name    string
		msgType string
		payload interface{}
		wantErr string
	}{
		{"unknown type", "unknown", nil, "unknown message type"},
		{"unrecognized hold", "move", MoveRequest{State: StateRequest{Hold: "Q", Queue: []string{"I"}}}, "unrecognized hold piece"},
		{"unrecognized next", "movegen", MovegenRequest{State: startingState(), Next: "Q"}, "unrecognized piece"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var payload json.RawMessage
			if tc.payload != nil {
				payload, _ = json.Marshal(tc.payload)
			}
			msg := WSMessage{Type: tc.msgType, ID: tc.name, Payload: payload}
			if err := ws.WriteJSON(msg); err != nil {
				t.Fatalf("Write failed: %v", err)
			}

			ws.SetReadDeadline(time.Now().Add(2 * time.Second))
			var resp WSResponse
			if err := ws.ReadJSON(&resp); err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			if resp.Type != "error" {
				t.Errorf("Response type = %q, want %q", resp.Type, "error")
			}
			if !strings.Contains(resp.Error, tc.wantErr) {
				t.Errorf("Error = %q, want containing %q", resp.Error, tc.wantErr)
			}
		})
	}
}
