// Package recordcounter implements the per-stream RECORD tally of
// spec.md §4.6: a line sink that swallows anything that isn't a well-formed
// Singer RECORD message.
//
// Grounded on original_source/elx/singer.py's writelines counting shape,
// translated to a small mutex-guarded Go struct since the runner's
// tap-stdout capture task is the only writer but Runner.RecordCounts may be
// read concurrently from a caller inspecting progress mid-run.
package recordcounter

import (
	"encoding/json"
	"sync"
)

// RecordCounter tallies RECORD messages observed on a tap's stdout, keyed by
// stream name.
type RecordCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

// New returns an empty RecordCounter.
func New() *RecordCounter {
	return &RecordCounter{counts: map[string]int{}}
}

type message struct {
	Type   string `json:"type"`
	Stream string `json:"stream"`
}

// WriteLine parses line as a Singer message; if it is a RECORD with a
// non-empty stream name, the stream's count is incremented. Any parse
// failure or non-RECORD message is silently ignored.
func (c *RecordCounter) WriteLine(line []byte) {
	var msg message
	if err := json.Unmarshal(line, &msg); err != nil {
		return
	}
	if msg.Type != "RECORD" || msg.Stream == "" {
		return
	}

	c.mu.Lock()
	c.counts[msg.Stream]++
	c.mu.Unlock()
}

// Counts returns a snapshot copy of the current per-stream tallies.
func (c *RecordCounter) Counts() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

// Reset clears all counts.
func (c *RecordCounter) Reset() {
	c.mu.Lock()
	c.counts = map[string]int{}
	c.mu.Unlock()
}
