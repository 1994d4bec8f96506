// internal/scheduler/intervals.go
package scheduler

import (
	"sort"
	"time"
)

// span is a half-open [start, end) interval in UTC. All engine interval
// math happens on spans at whole-second granularity.
type span struct {
	start time.Time
	end   time.Time
}

func newSpan(start, end time.Time) span {
	return span{start: start.UTC().Truncate(time.Second), end: end.UTC().Truncate(time.Second)}
}

func (s span) empty() bool {
	return !s.start.Before(s.end)
}

func (s span) contains(other span) bool {
	return !s.start.After(other.start) && !s.end.Before(other.end)
}

// mergeSpans sorts spans by start and coalesces overlapping or adjacent
// ones. Empty spans are dropped.
func mergeSpans(spans []span) []span {
	filtered := make([]span, 0, len(spans))
	for _, s := range spans {
		if !s.empty() {
			filtered = append(filtered, s)
		}
	}
	if len(filtered) == 0 {
		return nil
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].start.Before(filtered[j].start)
	})

	merged := []span{filtered[0]}
	for _, s := range filtered[1:] {
		last := &merged[len(merged)-1]
		if !s.start.After(last.end) { // overlap or zero gap
			if s.end.After(last.end) {
				last.end = s.end
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// subtractSpans removes sub from every span in base. Both inputs must be
// merged and sorted; the result is too.
func subtractSpans(base, sub []span) []span {
	if len(sub) == 0 {
		return base
	}

	var out []span
	for _, b := range base {
		cur := b.start
		for _, s := range sub {
			if s.end.Before(cur) || s.end.Equal(cur) {
				continue
			}
			if s.start.After(b.end) || s.start.Equal(b.end) {
				break
			}
			if s.start.After(cur) {
				out = append(out, span{start: cur, end: s.start})
			}
			if s.end.After(cur) {
				cur = s.end
			}
		}
		if cur.Before(b.end) {
			out = append(out, span{start: cur, end: b.end})
		}
	}
	return out
}

// intersectSpans computes the pairwise intersection of two merged,
// sorted span sets.
func intersectSpans(a, b []span) []span {
	var out []span
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		start := a[i].start
		if b[j].start.After(start) {
			start = b[j].start
		}
		end := a[i].end
		if b[j].end.Before(end) {
			end = b[j].end
		}
		if start.Before(end) {
			out = append(out, span{start: start, end: end})
		}
		if a[i].end.Before(b[j].end) {
			i++
		} else {
			j++
		}
	}
	return out
}

// coveredBy reports whether s is fully contained in one span of set.
// set must be merged and sorted.
func coveredBy(s span, set []span) bool {
	idx := sort.Search(len(set), func(i int) bool {
		return set[i].end.After(s.start)
	})
	return idx < len(set) && set[idx].contains(s)
}
