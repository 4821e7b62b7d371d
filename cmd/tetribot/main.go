// tetribot - a search-based autonomous player for a falling-block puzzle game
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/yourusername/tetribot/internal/geometry"
	"github.com/yourusername/tetribot/pkg/engine"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "move":
		cmdMove(args)
	case "movegen":
		cmdMovegen(args)
	case "advance":
		cmdAdvance(args)
	case "bench":
		cmdBench(args)
	case "play":
		cmdPlay(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tetribot - search-based autonomous player

Usage: tetribot <command> [options]

Commands:
  move      Search for the best placement from a queue
  movegen   Enumerate and score every legal placement
  advance   Apply a chosen placement and report its outcome
  bench     Run a batch of self-play playouts
  play      Run an interactive self-play loop, printing the board each turn

Use "tetribot <command> -h" for command-specific help.`)
}

func parsePieces(s string) ([]geometry.Piece, error) {
	var out []geometry.Piece
	for _, tok := range strings.Fields(s) {
		p, ok := parsePiece(tok)
		if !ok {
			return nil, fmt.Errorf("unrecognized piece %q", tok)
		}
		out = append(out, p)
	}
	return out, nil
}

func parsePiece(s string) (geometry.Piece, bool) {
	for _, p := range geometry.All {
		if p.String() == strings.ToUpper(s) {
			return p, true
		}
	}
	return 0, false
}

func createEngine(depth, width int) (*engine.Engine, error) {
	opts := engine.EngineOptions{Depth: depth, Width: width}
	e, err := engine.NewEngine(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return e, nil
}

func cmdMove(args []string) {
	fs := flag.NewFlagSet("move", flag.ExitOnError)
	hold := fs.String("hold", "T", "held piece")
	queue := fs.String("queue", "", "space-separated upcoming pieces, e.g. \"I O T\"")
	depth := fs.Int("depth", 0, "beam search depth (0 = engine default)")
	width := fs.Int("width", 0, "beam search width (0 = engine default)")
	fs.Parse(args)

	if *queue == "" {
		fmt.Fprintln(os.Stderr, "Error: -queue required")
		os.Exit(1)
	}

	holdPiece, ok := parsePiece(*hold)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unrecognized hold piece %q\n", *hold)
		os.Exit(1)
	}
	pieces, err := parsePieces(*queue)
	if err != nil || len(pieces) == 0 {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	e, err := createEngine(*depth, *width)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	g := engine.NewGame(holdPiece)
	loc := e.Search(g, pieces)
	fmt.Printf("Best placement: %s %s x=%d y=%d spin=%v\n", loc.Piece, loc.Rotation, loc.X, loc.Y, loc.Spun)
}

func cmdMovegen(args []string) {
	fs := flag.NewFlagSet("movegen", flag.ExitOnError)
	hold := fs.String("hold", "T", "held piece")
	next := fs.String("next", "", "piece about to drop")
	fs.Parse(args)

	holdPiece, ok := parsePiece(*hold)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unrecognized hold piece %q\n", *hold)
		os.Exit(1)
	}
	nextPiece, ok := parsePiece(*next)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: -next required and must be a valid piece\n")
		os.Exit(1)
	}

	e, err := createEngine(0, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	g := engine.NewGame(holdPiece)
	positions := engine.MoveGen(g, nextPiece)
	fmt.Printf("%d legal placements:\n", len(positions))
	for _, loc := range positions {
		trial := g.Clone()
		info := trial.Advance(nextPiece, loc, e.AttackTable)
		score := e.Eval.Score(trial, nextPiece, info)
		fmt.Printf("  %s %s x=%d y=%d spin=%v  score=%+.2f\n", loc.Piece, loc.Rotation, loc.X, loc.Y, loc.Spun, score)
	}
}

func cmdAdvance(args []string) {
	fs := flag.NewFlagSet("advance", flag.ExitOnError)
	hold := fs.String("hold", "T", "held piece")
	next := fs.String("next", "", "piece drawn from the head of the queue")
	piece := fs.String("piece", "", "placed piece")
	rotation := fs.String("rotation", "Up", "placed rotation")
	x := fs.Int("x", 0, "placed column")
	y := fs.Int("y", 0, "placed row")
	fs.Parse(args)

	holdPiece, ok := parsePiece(*hold)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unrecognized hold piece %q\n", *hold)
		os.Exit(1)
	}
	nextPiece, ok := parsePiece(*next)
	if !ok {
		fmt.Fprintln(os.Stderr, "Error: -next required")
		os.Exit(1)
	}
	placed, ok := parsePiece(*piece)
	if !ok {
		fmt.Fprintln(os.Stderr, "Error: -piece required")
		os.Exit(1)
	}
	rot, ok := parseRotationFlag(*rotation)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unrecognized rotation %q\n", *rotation)
		os.Exit(1)
	}

	e, err := createEngine(0, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	g := engine.NewGame(holdPiece)
	loc := engine.PieceLocation{Piece: placed, Rotation: rot, X: int8(*x), Y: int8(*y), PossibleLineClear: true}
	info := e.Advance(g, nextPiece, loc)
	fmt.Printf("Lines cleared: %d, garbage sent: %d, spin: %v\n", info.LinesCleared, info.GarbageSent, info.Spin)
	fmt.Printf("b2b: %d, combo: %d\n", g.B2B, g.Combo)
}

func parseRotationFlag(s string) (geometry.Rotation, bool) {
	for _, r := range []geometry.Rotation{geometry.Up, geometry.Right, geometry.Down, geometry.Left} {
		if r.String() == s {
			return r, true
		}
	}
	return 0, false
}

func cmdBench(args []string) {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	trials := fs.Int("trials", 16, "number of games to simulate")
	pieceLimit := fs.Int("piece-limit", 2000, "pieces placed before a trial is cut off (0 = unbounded)")
	workers := fs.Int("workers", 0, "number of worker goroutines (0 = auto)")
	seed := fs.Int64("seed", 0, "random seed (0 = random)")
	fs.Parse(args)

	e, err := createEngine(0, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts := engine.BenchOptions{Trials: *trials, PieceLimit: *pieceLimit, Workers: *workers, Seed: *seed}

	start := time.Now()
	result := e.Bench(opts)
	elapsed := time.Since(start)

	fmt.Printf("Bench (%d trials, %.1fs):\n", result.Trials, elapsed.Seconds())
	fmt.Printf("  Pieces placed: %d (%.0f/s)\n", result.TotalPieces, float64(result.TotalPieces)/elapsed.Seconds())
	fmt.Printf("  Lines cleared: %d\n", result.TotalLines)
	fmt.Printf("  Garbage sent:  %d\n", result.TotalGarbage)
	fmt.Printf("  Topped out:    %d/%d\n", result.TotalToppedOut, result.Trials)
	fmt.Printf("  Max b2b:       %d\n", result.MaxB2B)
}

func cmdPlay(args []string) {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	pieces := fs.Int("pieces", 50, "number of pieces to place before stopping")
	seed := fs.Int64("seed", 0, "random seed (0 = random)")
	depth := fs.Int("depth", 0, "beam search depth (0 = engine default)")
	width := fs.Int("width", 0, "beam search width (0 = engine default)")
	fs.Parse(args)

	e, err := createEngine(*depth, *width)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	s := *seed
	if s == 0 {
		s = rand.Int63()
	}
	bag := newBag(rand.New(rand.NewSource(s)))

	g := engine.NewGame(bag.next())
	placed := 0
	for placed < *pieces {
		queue := bag.peek(e.Depth)
		if len(queue) == 0 {
			break
		}
		loc := e.Search(g, queue)
		info := e.Advance(g, queue[0], loc)
		bag.consume(queue[0])
		placed++

		fmt.Printf("#%-4d %s %s x=%d y=%d spin=%v  lines=%d garbage=%d b2b=%d combo=%d\n",
			placed, loc.Piece, loc.Rotation, loc.X, loc.Y, loc.Spun,
			info.LinesCleared, info.GarbageSent, g.B2B, g.Combo)
		renderBoard(&g.Board)

		if g.Board.MaxHeightCol() > engine.MaxSurvivableHeight {
			fmt.Println("topped out")
			break
		}
	}
}

// bag generates pieces using the standard random-bag-of-seven distribution,
// the way a real driver loop feeds BeamSearch's lookahead queue.
type bag struct {
	rng     *rand.Rand
	pending []geometry.Piece
}

func newBag(rng *rand.Rand) *bag {
	b := &bag{rng: rng}
	b.refill()
	return b
}

func (b *bag) refill() {
	shuffled := geometry.All
	b.rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	b.pending = append(b.pending, shuffled[:]...)
}

func (b *bag) peek(n int) []geometry.Piece {
	if n <= 0 {
		n = 1
	}
	for len(b.pending) < n {
		b.refill()
	}
	out := make([]geometry.Piece, n)
	copy(out, b.pending[:n])
	return out
}

func (b *bag) next() geometry.Piece {
	if len(b.pending) == 0 {
		b.refill()
	}
	p := b.pending[0]
	b.pending = b.pending[1:]
	return p
}

func (b *bag) consume(p geometry.Piece) {
	if len(b.pending) > 0 && b.pending[0] == p {
		b.pending = b.pending[1:]
	}
}

// renderBoard prints the board top row first, floor row last, using block glyphs, the way the
// original Rust driver loop rendered its terminal display.
func renderBoard(b *engine.Board) {
	maxHeight := b.MaxHeightCol()
	if maxHeight < 4 {
		maxHeight = 4
	}
	for y := maxHeight; y >= 0; y-- {
		row := make([]byte, 0, engine.Width)
		for x := 0; x < engine.Width; x++ {
			if uint64(b.Cols[x])>>uint(y)&1 == 1 {
				row = append(row, '#')
			} else {
				row = append(row, '.')
			}
		}
		fmt.Println(string(row))
	}
	fmt.Println()
}
