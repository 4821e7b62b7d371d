package engine

import (
	"math/rand"
	"runtime"
	"sync"

	"github.com/yourusername/tetribot/internal/geometry"
)

// MaxSurvivableHeight is the playout harness's own death threshold: a
// game whose board height exceeds this value is considered topped out and
// the playout ends. This is deliberately a separate constant from
// MaxPruneHeight — spec.md section 9 notes the two call sites use
// different canonical defaults (16 for search pruning, 18 here, matching
// the repository's own interactive driver loop in main.rs).
const MaxSurvivableHeight = 18

// BenchOptions controls a benchmark playout run.
type BenchOptions struct {
	Trials      int   // number of independent games to play (default 16)
	PieceLimit  int   // pieces placed before a trial is cut off, 0 = unbounded
	Seed        int64 // RNG seed for piece generation; 0 picks a random seed
	Workers     int   // parallel workers; 0 = GOMAXPROCS
}

// DefaultBenchOptions returns sensible defaults for BenchOptions.
func DefaultBenchOptions() BenchOptions {
	return BenchOptions{Trials: 16, PieceLimit: 2000}
}

// BenchResult aggregates the outcome of a batch of playouts.
type BenchResult struct {
	Trials         int
	TotalPieces    int64
	TotalLines     int64
	TotalGarbage   int64
	TotalToppedOut int
	MaxB2B         uint64
}

// partialBenchResult holds one worker's contribution before aggregation.
type partialBenchResult struct {
	pieces, lines     int64
	garbage           int64
	toppedOut         int
	maxB2B            uint64
}

// Bench plays opts.Trials independent games with e's search to opts.PieceLimit
// pieces (or until the board tops out past MaxSurvivableHeight), spreading
// trials across a worker pool exactly the way bgengine's Rollout spreads
// Monte Carlo trials across goroutines.
func (e *Engine) Bench(opts BenchOptions) BenchResult {
	if opts.Trials <= 0 {
		opts.Trials = 16
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > opts.Trials {
		workers = opts.Trials
	}
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	trialsPerWorker := opts.Trials / workers
	extra := opts.Trials % workers

	results := make(chan partialBenchResult, workers)
	var wg sync.WaitGroup

	assigned := 0
	for w := 0; w < workers; w++ {
		n := trialsPerWorker
		if w < extra {
			n++
		}
		workerSeed := seed + int64(w)*1000003
		wg.Add(1)
		go func(trials int, workerSeed int64) {
			defer wg.Done()
			results <- e.benchWorker(trials, opts.PieceLimit, workerSeed)
		}(n, workerSeed)
		assigned += n
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var out BenchResult
	out.Trials = assigned
	for r := range results {
		out.TotalPieces += r.pieces
		out.TotalLines += r.lines
		out.TotalGarbage += r.garbage
		out.TotalToppedOut += r.toppedOut
		if r.maxB2B > out.MaxB2B {
			out.MaxB2B = r.maxB2B
		}
	}
	return out
}

// benchWorker plays `trials` independent games, each using a fresh
// 7-bag-shuffled queue, and returns its share of the aggregate stats.
func (e *Engine) benchWorker(trials, pieceLimit int, seed int64) partialBenchResult {
	rng := rand.New(rand.NewSource(seed))
	var out partialBenchResult

	for t := 0; t < trials; t++ {
		bag := newSevenBag(rng)
		game := NewGame(bag.next())

		placed := 0
		for pieceLimit == 0 || placed < pieceLimit {
			queue := bag.peek(e.Depth)
			if len(queue) == 0 {
				break
			}
			loc := e.Search(game, queue)
			info := e.Advance(game, queue[0], loc)
			bag.consume(queue[0])
			placed++

			out.lines += int64(info.LinesCleared)
			out.garbage += int64(info.GarbageSent)
			if game.B2B > out.maxB2B {
				out.maxB2B = game.B2B
			}
			if game.Board.MaxHeightCol() > MaxSurvivableHeight {
				out.toppedOut++
				break
			}
		}
		out.pieces += int64(placed)
	}
	return out
}

// sevenBag generates pieces using the standard random-bag-of-seven
// distribution, buffering enough ahead to serve BeamSearch's queue.
type sevenBag struct {
	rng     *rand.Rand
	pending []geometry.Piece
}

func newSevenBag(rng *rand.Rand) *sevenBag {
	b := &sevenBag{rng: rng}
	b.refill()
	return b
}

func (b *sevenBag) refill() {
	bag := geometry.All
	b.rng.Shuffle(len(bag), func(i, j int) { bag[i], bag[j] = bag[j], bag[i] })
	b.pending = append(b.pending, bag[:]...)
}

func (b *sevenBag) peek(n int) []geometry.Piece {
	for len(b.pending) < n {
		b.refill()
	}
	out := make([]geometry.Piece, n)
	copy(out, b.pending[:n])
	return out
}

func (b *sevenBag) next() geometry.Piece {
	if len(b.pending) == 0 {
		b.refill()
	}
	p := b.pending[0]
	b.pending = b.pending[1:]
	return p
}

func (b *sevenBag) consume(p geometry.Piece) {
	if len(b.pending) > 0 && b.pending[0] == p {
		b.pending = b.pending[1:]
	}
}
