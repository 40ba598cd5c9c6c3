package responses

import (
	"math/rand"
	"sort"
	"sync"
	"time"
)

// Table maps an intent label to its canned replies. It is read-only once loaded.
type Table map[string][]string

// Has reports whether label has at least one reply.
func (t Table) Has(label string) bool {
	if label == "" {
		return false
	}
	return len(t[label]) > 0
}

// Labels returns the labels in sorted order.
func (t Table) Labels() []string {
	labels := make([]string, 0, len(t))
	for label := range t {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Picker draws replies uniformly at random from a Table.
type Picker struct {
	table Table
	mu    sync.Mutex
	rng   *rand.Rand
}

// NewPicker uses rng for every draw; a nil rng is seeded from the clock.
func NewPicker(table Table, rng *rand.Rand) *Picker {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if table == nil {
		table = Table{}
	}
	return &Picker{table: table, rng: rng}
}

func (p *Picker) Table() Table {
	return p.table
}

func (p *Picker) Has(label string) bool {
	return p.table.Has(label)
}

// Pick returns a random reply for label, or false when the label has none.
func (p *Picker) Pick(label string) (string, bool) {
	candidates := p.table[label]
	if label == "" || len(candidates) == 0 {
		return "", false
	}
	p.mu.Lock()
	i := p.rng.Intn(len(candidates))
	p.mu.Unlock()
	return candidates[i], true
}
