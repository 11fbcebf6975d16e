package mocks

import (
	"fmt"
	"sync"
	"time"
)

// SequentialIDGenerator hands out predictable IDs.
type SequentialIDGenerator struct {
	GenerateFunc func() string
	prefix       string
	counter      int
	mu           sync.Mutex
}

func NewSequentialIDGenerator(prefix string) *SequentialIDGenerator {
	return &SequentialIDGenerator{prefix: prefix}
}

func (g *SequentialIDGenerator) Generate() string {
	if g.GenerateFunc != nil {
		return g.GenerateFunc()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s-%04d", g.prefix, g.counter)
}

// FixedClock always returns the same instant unless advanced.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixedClock(now time.Time) *FixedClock {
	return &FixedClock{now: now.UTC()}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// RecordingMetrics counts append outcomes.
type RecordingMetrics struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func NewRecordingMetrics() *RecordingMetrics {
	return &RecordingMetrics{outcomes: make(map[string]int)}
}

func (m *RecordingMetrics) ObserveAppend(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[outcome]++
}

func (m *RecordingMetrics) Count(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outcomes[outcome]
}
