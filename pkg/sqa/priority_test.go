package sqa

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriorityGeneratorStartsAtOne(t *testing.T) {
	g := NewPriorityGenerator()
	assert.Equal(t, 1, g.Next())
	assert.Equal(t, 2, g.Next())
	assert.Equal(t, 3, g.Next())
}

func TestPriorityGeneratorsAreIndependent(t *testing.T) {
	a := NewPriorityGenerator()
	b := NewPriorityGenerator()
	a.Next()
	a.Next()
	assert.Equal(t, 1, b.Next())
}

func TestPriorityGeneratorConcurrent(t *testing.T) {
	g := NewPriorityGenerator()

	const workers = 16
	const perWorker = 50

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[int]bool)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				p := g.Next()
				mu.Lock()
				seen[p] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Every priority minted exactly once
	assert.Len(t, seen, workers*perWorker)
	for p := 1; p <= workers*perWorker; p++ {
		assert.True(t, seen[p], "priority %d missing", p)
	}
}
