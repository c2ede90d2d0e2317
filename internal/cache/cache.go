// Package cache holds the kernel's three bounded memoization caches:
// primitive meshes, expression results, and degree-mode trig calls. All
// three are backed by github.com/hashicorp/golang-lru/v2, which already
// implements exactly the get/put/evict-on-capacity contract each needs.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dekarrin/scadkernel/internal/kernel"
)

const (
	// PrimitiveCapacity bounds the number of distinct (op, resolved-params)
	// primitive meshes kept in memory at once.
	PrimitiveCapacity = 100
	// ExprMemoCapacity bounds the number of distinct pure-expression results
	// kept at once.
	ExprMemoCapacity = 1000
	// TrigCapacity bounds the memoized degree-mode trig results; sin, cos
	// and tan entries share these 360 slots. Trig results are cheap but
	// called very often inside tessellation loops.
	TrigCapacity = 360
)

// Caches bundles the three LRU caches. One set may be shared by many
// evaluation jobs; scadkernel.Evaluate keeps a single process-wide set.
type Caches struct {
	Primitive *lru.Cache[string, *kernel.Handle]
	ExprMemo  *lru.Cache[string, float64]
	Trig      *lru.Cache[string, float64]
}

// New builds a fresh, empty Caches set at the capacities the fragment/
// dispatch/eval packages expect.
func New() *Caches {
	prim, _ := lru.New[string, *kernel.Handle](PrimitiveCapacity)
	expr, _ := lru.New[string, float64](ExprMemoCapacity)
	trig, _ := lru.New[string, float64](TrigCapacity)
	return &Caches{Primitive: prim, ExprMemo: expr, Trig: trig}
}

// Purge clears all three caches, used by the memory monitor under
// high/critical memory pressure and between render-queue jobs.
func (c *Caches) Purge() {
	c.Primitive.Purge()
	c.ExprMemo.Purge()
	c.Trig.Purge()
}
