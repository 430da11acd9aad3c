package sqa

import "sync"

// PriorityGenerator mints strictly increasing priorities for newly created
// test plan instances. Instances created within one run must not collide on
// priority even if cell processing is ever parallelized, so the counter is
// guarded by a mutex. Construct one generator per run and inject it into
// the reconciliation pass; tests build independent generators per scenario.
type PriorityGenerator struct {
	mu   sync.Mutex
	next int
}

// NewPriorityGenerator creates a generator whose first priority is 1
func NewPriorityGenerator() *PriorityGenerator {
	return &PriorityGenerator{}
}

// Next returns the next priority
func (g *PriorityGenerator) Next() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return g.next
}
