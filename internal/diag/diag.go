// Package diag rate-limits diagnostics for recurring decode failures.
//
// The first failure of a class for a message id is logged at warn level.
// Repeats are logged at debug level with the number of previous
// occurrences, so a persistently noisy link does not flood the log.
package diag

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

type key struct {
	class string
	id    string
}

// Reporter counts failures by class and message id. A nil *Reporter
// discards everything. It is safe for concurrent use.
type Reporter struct {
	mu     sync.Mutex
	log    zerolog.Logger
	counts map[key]int
}

func New(log zerolog.Logger) *Reporter {
	return &Reporter{log: log, counts: map[key]int{}}
}

// Report records one failure and logs it. It returns the number of
// previous occurrences of the same class and id.
func (r *Reporter) Report(class, id string, err error) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	k := key{class, id}
	prev := r.counts[k]
	r.counts[k] = prev + 1
	r.mu.Unlock()

	ev := r.log.Debug()
	if prev == 0 {
		ev = r.log.Warn()
	}
	ev.Str("class", class).Str("id", id).Int("previous", prev).Err(err).Msg("decode failure")
	return prev
}

// Count returns how often class was reported for id.
func (r *Reporter) Count(class, id string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[key{class, id}]
}

// Entry is one line of a Summary.
type Entry struct {
	Class string
	ID    string
	Count int
}

// Summary returns every reported class and id, sorted by class then id.
func (r *Reporter) Summary() []Entry {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	out := make([]Entry, 0, len(r.counts))
	for k, n := range r.counts {
		out = append(out, Entry{Class: k.class, ID: k.id, Count: n})
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Class != out[j].Class {
			return out[i].Class < out[j].Class
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// LogSummary writes the summary at the given level, one event per entry.
func (r *Reporter) LogSummary(level zerolog.Level) {
	for _, e := range r.Summary() {
		r.log.WithLevel(level).Str("class", e.Class).Str("id", e.ID).Int("count", e.Count).Msg("failure totals")
	}
}
