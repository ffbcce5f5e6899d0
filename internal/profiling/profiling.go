// Package profiling is a lightweight per-tick CPU profiler. Subsystems wrap
// their hot operations with Track; the tick loop resets the totals once per
// tick and logs the top entries when a tick runs long.
package profiling

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

type entry struct {
	total time.Duration
	calls int
}

var (
	mu     sync.Mutex
	totals = make(map[string]entry)
)

// Track records the elapsed time and call count under the given name.
// Usage: defer profiling.Track("subsystem.Operation")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		e := totals[name]
		e.total += d
		e.calls++
		totals[name] = e
		mu.Unlock()
	}
}

// ResetTick clears the accumulated totals. Call at the start of each tick.
func ResetTick() {
	mu.Lock()
	clear(totals)
	mu.Unlock()
}

// Snapshot returns a copy of the accumulated per-operation totals.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(totals))
	for k, e := range totals {
		out[k] = e.total
	}
	return out
}

// SumWithPrefix totals all operations whose name starts with the prefix,
// e.g. SumWithPrefix("stream.") for the whole streaming subsystem.
func SumWithPrefix(prefix string) time.Duration {
	mu.Lock()
	defer mu.Unlock()
	var sum time.Duration
	for k, e := range totals {
		if strings.HasPrefix(k, prefix) {
			sum += e.total
		}
	}
	return sum
}

// TopN formats the n slowest operations since the last reset, slowest first,
// e.g. "stream.Tick:4.2ms(1), mesh.Build:2.1ms(3)" where the parenthesized
// figure is the call count.
func TopN(n int) string {
	mu.Lock()
	type pair struct {
		name string
		entry
	}
	list := make([]pair, 0, len(totals))
	for k, e := range totals {
		list = append(list, pair{k, e})
	}
	mu.Unlock()

	sort.Slice(list, func(i, j int) bool { return list[i].total > list[j].total })
	if n > len(list) {
		n = len(list)
	}
	parts := make([]string, 0, n)
	for _, p := range list[:n] {
		ms := float64(p.total.Microseconds()) / 1000.0
		parts = append(parts, fmt.Sprintf("%s:%.1fms(%d)", p.name, ms, p.calls))
	}
	return strings.Join(parts, ", ")
}
