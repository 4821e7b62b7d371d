package engine

import (
	"testing"

	"github.com/yourusername/tetribot/internal/geometry"
)

func TestEvalCacheGetMissThenHit(t *testing.T) {
	c := NewEvalCache(64)
	var b Board
	b.Cols[0] = 1

	if _, ok := c.Get(b, int8(0)); ok {
		t.Fatalf("Get on empty cache returned a hit")
	}

	c.Put(b, int8(0), 42.5)

	score, ok := c.Get(b, int8(0))
	if !ok {
		t.Fatalf("Get after Put returned a miss")
	}
	if score != 42.5 {
		t.Fatalf("Get returned score %v, want 42.5", score)
	}
}

func TestEvalCacheDistinguishesPiece(t *testing.T) {
	c := NewEvalCache(64)
	var b Board
	b.Cols[3] = 7

	c.Put(b, int8(0), 1.0)
	if _, ok := c.Get(b, int8(1)); ok {
		t.Fatalf("Get with a different piece returned a hit for another piece's entry")
	}
}

func TestEvalCacheDemotesPrimaryOnCollisionButKeepsBothLookupable(t *testing.T) {
	c := NewEvalCache(2) // single slot: mask is 0, every key collides

	var a, b Board
	a.Cols[0] = 1
	b.Cols[0] = 2

	c.Put(a, 0, 1.0)
	c.Put(b, 0, 2.0)

	if score, ok := c.Get(a, 0); !ok || score != 1.0 {
		t.Fatalf("demoted primary entry should still be reachable via secondary, got score=%v ok=%v", score, ok)
	}
	if score, ok := c.Get(b, 0); !ok || score != 2.0 {
		t.Fatalf("most recent Put should be reachable via primary, got score=%v ok=%v", score, ok)
	}
}

func TestEvalCacheFlushClearsEntriesAndStats(t *testing.T) {
	c := NewEvalCache(64)
	var b Board
	b.Cols[0] = 1

	c.Put(b, 0, 5.0)
	c.Get(b, 0)
	c.Flush()

	if _, ok := c.Get(b, 0); ok {
		t.Fatalf("Get after Flush returned a hit")
	}
	if hr := c.HitRate(); hr != 0 {
		t.Fatalf("HitRate after Flush is %v, want 0", hr)
	}
}

func TestEvalCacheHitRate(t *testing.T) {
	c := NewEvalCache(64)
	var b Board
	b.Cols[0] = 1

	c.Get(b, 0) // miss
	c.Put(b, 0, 1.0)
	c.Get(b, 0) // hit
	c.Get(b, 0) // hit

	if hr := c.HitRate(); hr != 2.0/3.0 {
		t.Fatalf("HitRate is %v, want 2/3", hr)
	}
}

func TestBeamSearchUsesCacheWhenProvided(t *testing.T) {
	cache := NewEvalCache(1024)
	eng, err := NewEngine(EngineOptions{Depth: 2, Width: 16})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	eng.Cache = cache

	g := NewGame(geometry.T)
	queue := []geometry.Piece{geometry.I, geometry.O}
	eng.Search(g, queue)

	if cache.lookups == 0 {
		t.Fatalf("BeamSearch ran with a cache configured but never looked anything up")
	}
}
