package reconcile

import (
	"fmt"
	"sort"
	"strings"
)

// Counts accumulates per-outcome counters for a run.
type Counts map[string]int

// Add increments the counter for the given outcome.
func (c Counts) Add(outcome string) {
	c[outcome]++
}

// Get returns the counter for the given outcome (zero if never counted).
func (c Counts) Get(outcome string) int {
	return c[outcome]
}

// Total returns the number of records processed across all outcomes.
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Merge adds every counter from other into c.
func (c Counts) Merge(other Counts) {
	for outcome, n := range other {
		c[outcome] += n
	}
}

// Summary renders the counters as stable, sorted "outcome: n" lines.
func (c Counts) Summary() string {
	outcomes := make([]string, 0, len(c))
	for outcome := range c {
		outcomes = append(outcomes, outcome)
	}
	sort.Strings(outcomes)

	var b strings.Builder
	for _, outcome := range outcomes {
		fmt.Fprintf(&b, "%s: %d\n", outcome, c[outcome])
	}
	return b.String()
}
