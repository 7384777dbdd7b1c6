package transition

import (
	"math/rand"
	"time"
)

// Policy picks the xfade style for transition k (zero-based).
type Policy interface {
	Style(k int) string
}

// Pinned uses a fixed style for the first Count transitions and a uniformly
// random style from Pool after that.
type Pinned struct {
	Fixed string
	Count int
	Pool  []string
	Rand  *rand.Rand
}

// NewPinned builds a Pinned policy. A zero seed seeds from the clock.
func NewPinned(style string, count int, pool []string, seed int64) *Pinned {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Pinned{
		Fixed: style,
		Count: count,
		Pool:  pool,
		Rand:  rand.New(rand.NewSource(seed)),
	}
}

func (p *Pinned) Style(k int) string {
	if (k < p.Count && p.Fixed != "") || len(p.Pool) == 0 {
		return p.Fixed
	}
	return p.Pool[p.Rand.Intn(len(p.Pool))]
}

// Cycle walks through its styles in order. It is deterministic and meant for
// tests and reproducible renders.
type Cycle []string

func (c Cycle) Style(k int) string {
	if len(c) == 0 {
		return "fade"
	}
	return c[k%len(c)]
}
