package engine

import (
	"container/heap"

	"github.com/yourusername/tetribot/internal/attacktable"
	"github.com/yourusername/tetribot/internal/geometry"
)

// MaxPruneHeight is the beam search's canonical successor-pruning
// threshold (spec.md section 4.6 step 3 / section 9's unified default):
// any successor whose board height exceeds this value is discarded
// before scoring. Other call sites (an interactive driver's own
// early-exit, a benchmark harness's survival check) may use a different
// threshold — see pkg/engine/bench.go's MaxSurvivableHeight — but the
// search itself always prunes at this value.
const MaxPruneHeight = 16

// Node is one candidate in a beam-search layer: the accumulated score of
// the path so far, the game state at this point in the path, and the
// identifier of the top-level placement this path descends from.
type Node struct {
	Score float64
	ID    int
	Game  *Game
}

// nodeHeap is a bounded min-heap ordered by Score, used as the "worst
// score is evicted first" building block for a bounded top-W-by-score
// structure: see insertIfBetter. Mirrors the two-heap, swap-per-depth
// pattern from bgengine's rollout worker pool, generalized from a
// flat result buffer to a priority queue.
type nodeHeap []Node

func (h nodeHeap) Len() int            { return len(h) }
func (h nodeHeap) Less(i, j int) bool  { return h[i].Score < h[j].Score }
func (h nodeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x interface{}) { *h = append(*h, x.(Node)) }
func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// insertIfBetter pushes node into h if h has not yet reached width
// entries, or if node's score beats the heap's current worst (lowest)
// score — evicting that worst entry first. This keeps h as a bounded set
// of the W highest-scoring nodes seen so far, per spec.md section 4.6.
func insertIfBetter(h *nodeHeap, node Node, width int) {
	if h.Len() < width {
		heap.Push(h, node)
		return
	}
	if h.Len() > 0 && node.Score > (*h)[0].Score {
		heap.Pop(h)
		heap.Push(h, node)
	}
}

// BeamSearch performs a width-W, depth-D beam search over queue starting
// from root, returning the highest-scoring top-level placement for
// queue[0] (or the held piece). cache may be nil, in which case every node
// is scored fresh. See spec.md section 4.6.
func BeamSearch(root *Game, queue []geometry.Piece, eval *Eval, at *attacktable.Table, depth, width int, cache *EvalCache) PieceLocation {
	searchLoc := MoveGen(root, queue[0])

	var current nodeHeap
	for id, loc := range searchLoc {
		game := root.Clone()
		info := game.Advance(queue[0], loc, at)
		score := scoreCached(cache, eval, game, loc.Piece, info)
		insertIfBetter(&current, Node{Score: score, ID: id, Game: game}, width)
	}

	for i := 1; i < depth && i < len(queue); i++ {
		next := queue[i]
		var successor nodeHeap
		for _, node := range current {
			for _, loc := range MoveGen(node.Game, next) {
				game := node.Game.Clone()
				info := game.Advance(next, loc, at)
				if game.Board.MaxHeightCol() > MaxPruneHeight {
					continue
				}
				score := scoreCached(cache, eval, game, loc.Piece, info)
				insertIfBetter(&successor, Node{Score: score + node.Score, ID: node.ID, Game: game}, width)
			}
		}
		if len(successor) == 0 {
			break
		}
		current = successor
	}

	best := -1
	bestScore := 0.0
	for i, node := range current {
		if best == -1 || node.Score > bestScore {
			best = i
			bestScore = node.Score
		}
	}
	return searchLoc[current[best].ID]
}

// scoreCached evaluates game the way eval.Score does, but checks cache
// first and populates it on a miss. cache may be nil, matching bgengine's
// EvaluateCached, which falls back to a fresh evaluation whenever its
// cache isn't configured.
func scoreCached(cache *EvalCache, eval *Eval, game *Game, piece geometry.Piece, info PlacementInfo) float64 {
	if cache == nil {
		return eval.Score(game, piece, info)
	}
	p := int8(piece)
	if score, ok := cache.Get(game.Board, p); ok {
		return score
	}
	score := eval.Score(game, piece, info)
	cache.Put(game.Board, p, score)
	return score
}
