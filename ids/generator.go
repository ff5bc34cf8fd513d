package ids

import (
	"sync"
	"time"
)

// Generator hands out record identifiers that look like millisecond Unix timestamps.
// When two identifiers are requested within the same millisecond
// (or the clock steps backwards), the later one is bumped past the previous one,
// so identifiers are strictly increasing within a process
type Generator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewGenerator creates a Generator reading the wall clock
func NewGenerator() *Generator {
	return NewGeneratorWithClock(time.Now)
}

// NewGeneratorWithClock creates a Generator reading the given clock
func NewGeneratorWithClock(now func() time.Time) *Generator {
	return &Generator{
		now: now,
	}
}

// Next returns a new positive identifier
func (g *Generator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixNano() / int64(time.Millisecond)
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id

	return id
}
