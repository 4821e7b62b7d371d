// Package replay provides transcript import/export for recorded tetris
// games: a piece queue plus the sequence of placements made against it.
// Grounded in bgengine's pkg/match MAT format (metadata comment lines, a
// numbered move list, regex-driven line parsing) adapted from backgammon's
// roll/move/cube vocabulary to a queue of pieces and board placements.
package replay

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/yourusername/tetribot/internal/attacktable"
	"github.com/yourusername/tetribot/internal/geometry"
	"github.com/yourusername/tetribot/pkg/engine"
)

// Transcript is a complete recorded game: metadata, the piece queue it was
// played against, and the sequence of placements made.
type Transcript struct {
	Event      string
	Seed       string
	Comment    string
	Queue      []geometry.Piece
	Placements []Placement
}

// Placement is one recorded move: the resting position chosen, and whether
// it was played from hold rather than the head of the queue.
type Placement struct {
	Loc     engine.PieceLocation
	Held    bool
	Info    engine.PlacementInfo
	HasInfo bool
}

var (
	tagRE      = regexp.MustCompile(`\[(\w+)\s+"([^"]*)"\]`)
	queueRE    = regexp.MustCompile(`^Queue:\s*(.+)$`)
	moveLineRE = regexp.MustCompile(`^\s*(\d+)\)\s*(.+)$`)
)

// Import reads a transcript from its text format:
//
//	; [Event "boundary scenario 2"]
//	; [Seed "42"]
//	Queue: I O T L J S Z
//	  1) I 4,0 Up
//	  2) T 3,2 Left spin clear=3 garbage=6
//	  3) O 0,0 Up hold
func Import(r io.Reader) (*Transcript, error) {
	scanner := bufio.NewScanner(r)
	t := &Transcript{}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ";") {
			if m := tagRE.FindStringSubmatch(line); m != nil {
				switch strings.ToLower(m[1]) {
				case "event":
					t.Event = m[2]
				case "seed":
					t.Seed = m[2]
				case "comment":
					t.Comment = m[2]
				}
			}
			continue
		}

		if m := queueRE.FindStringSubmatch(line); m != nil {
			pieces, err := parsePieceList(m[1])
			if err != nil {
				return nil, fmt.Errorf("parsing queue: %w", err)
			}
			t.Queue = pieces
			continue
		}

		if m := moveLineRE.FindStringSubmatch(line); m != nil {
			p, err := parsePlacementLine(m[2])
			if err != nil {
				return nil, fmt.Errorf("parsing move %s: %w", m[1], err)
			}
			t.Placements = append(t.Placements, p)
			continue
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}
	return t, nil
}

func parsePieceList(s string) ([]geometry.Piece, error) {
	fields := strings.Fields(s)
	pieces := make([]geometry.Piece, 0, len(fields))
	for _, f := range fields {
		p, ok := parsePieceName(f)
		if !ok {
			return nil, fmt.Errorf("unrecognized piece %q", f)
		}
		pieces = append(pieces, p)
	}
	return pieces, nil
}

func parsePieceName(s string) (geometry.Piece, bool) {
	for _, p := range geometry.All {
		if p.String() == s {
			return p, true
		}
	}
	return 0, false
}

func parseRotationName(s string) (geometry.Rotation, bool) {
	for _, r := range []geometry.Rotation{geometry.Up, geometry.Right, geometry.Down, geometry.Left} {
		if r.String() == s {
			return r, true
		}
	}
	return 0, false
}

// parsePlacementLine parses "T 3,2 Left spin clear=3 garbage=6 hold".
func parsePlacementLine(s string) (Placement, error) {
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return Placement{}, fmt.Errorf("too few fields in %q", s)
	}

	piece, ok := parsePieceName(fields[0])
	if !ok {
		return Placement{}, fmt.Errorf("unrecognized piece %q", fields[0])
	}

	xy := strings.SplitN(fields[1], ",", 2)
	if len(xy) != 2 {
		return Placement{}, fmt.Errorf("bad coordinate %q", fields[1])
	}
	x, err := strconv.Atoi(xy[0])
	if err != nil {
		return Placement{}, fmt.Errorf("bad x coordinate %q: %w", xy[0], err)
	}
	y, err := strconv.Atoi(xy[1])
	if err != nil {
		return Placement{}, fmt.Errorf("bad y coordinate %q: %w", xy[1], err)
	}

	rot, ok := parseRotationName(fields[2])
	if !ok {
		return Placement{}, fmt.Errorf("unrecognized rotation %q", fields[2])
	}

	p := Placement{
		Loc: engine.PieceLocation{
			Piece:    piece,
			Rotation: rot,
			X:        int8(x),
			Y:        int8(y),
		},
	}

	for _, tok := range fields[3:] {
		switch {
		case tok == "spin":
			p.Loc.Spun = true
		case tok == "hold":
			p.Held = true
		case strings.HasPrefix(tok, "clear="):
			n, err := strconv.Atoi(strings.TrimPrefix(tok, "clear="))
			if err != nil {
				return Placement{}, fmt.Errorf("bad clear count %q: %w", tok, err)
			}
			p.Info.LinesCleared = uint32(n)
			p.HasInfo = true
		case strings.HasPrefix(tok, "garbage="):
			n, err := strconv.Atoi(strings.TrimPrefix(tok, "garbage="))
			if err != nil {
				return Placement{}, fmt.Errorf("bad garbage count %q: %w", tok, err)
			}
			p.Info.GarbageSent = int32(n)
			p.HasInfo = true
		}
	}
	if p.HasInfo {
		p.Info.Spin = p.Loc.Spun
	}

	return p, nil
}

// Export writes a transcript in the format Import reads back.
func Export(w io.Writer, t *Transcript) error {
	if t.Event != "" {
		if _, err := fmt.Fprintf(w, "; [Event %q]\n", t.Event); err != nil {
			return err
		}
	}
	if t.Seed != "" {
		if _, err := fmt.Fprintf(w, "; [Seed %q]\n", t.Seed); err != nil {
			return err
		}
	}
	if t.Comment != "" {
		if _, err := fmt.Fprintf(w, "; [Comment %q]\n", t.Comment); err != nil {
			return err
		}
	}

	if len(t.Queue) > 0 {
		names := make([]string, len(t.Queue))
		for i, p := range t.Queue {
			names[i] = p.String()
		}
		if _, err := fmt.Fprintf(w, "Queue: %s\n", strings.Join(names, " ")); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	for i, p := range t.Placements {
		line := fmt.Sprintf("%3d) %s %d,%d %s", i+1, p.Loc.Piece, p.Loc.X, p.Loc.Y, p.Loc.Rotation)
		if p.Loc.Spun {
			line += " spin"
		}
		if p.Held {
			line += " hold"
		}
		if p.HasInfo {
			line += fmt.Sprintf(" clear=%d garbage=%d", p.Info.LinesCleared, p.Info.GarbageSent)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Append records one placement onto the transcript, capturing the outcome
// of applying it so the move can be replayed and checked without
// re-running the engine.
func (t *Transcript) Append(loc engine.PieceLocation, held bool, info engine.PlacementInfo) {
	t.Placements = append(t.Placements, Placement{
		Loc:     loc,
		Held:    held,
		Info:    info,
		HasInfo: true,
	})
}

// Replay applies every recorded placement in order to a fresh game seeded
// with the transcript's queue's first piece as hold, returning the final
// game state. It does not call the move generator or search: it trusts
// the recorded placements, the same way a MAT file trusts its recorded
// moves rather than re-deriving them.
func (t *Transcript) Replay(at *attacktable.Table) *engine.Game {
	var hold geometry.Piece
	if len(t.Queue) > 0 {
		hold = t.Queue[0]
	}
	g := engine.NewGame(hold)
	queue := t.Queue
	if len(queue) > 0 {
		queue = queue[1:]
	}

	qi := 0
	for _, p := range t.Placements {
		var next geometry.Piece
		if p.Held {
			next = g.Hold
		} else if qi < len(queue) {
			next = queue[qi]
			qi++
		} else {
			next = p.Loc.Piece
		}
		g.Advance(next, p.Loc, at)
	}
	return g
}
