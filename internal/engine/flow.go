package engine

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// RunIDGenerator names runs. The id tags every log line of a run and is
// the journal's primary key, so it must be unique per Driver.Run call.
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator is the default RunIDGenerator. Its ids sort by creation
// time, which keeps journal listings readable. Safe for concurrent use.
type UUIDv7Generator struct{}

func (UUIDv7Generator) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic(fmt.Sprintf("run id: %v", err))
	}
	return id.String()
}

// FixedGenerator hands out a fixed list of ids, for tests that assert on
// run ids or journal contents. It panics once the list is used up.
type FixedGenerator struct {
	mu   sync.Mutex
	next []string
}

func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{next: ids}
}

func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.next) == 0 {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.next[0]
	g.next = g.next[1:]
	return id
}
