package analytics

import (
	"strings"
	"time"

	"trade-journal/internal/domain/journal"
)

// dateLayout is the civil-date form used by FilterState boundaries.
const dateLayout = "2006-01-02"

// ApplyFilters returns the subsequence of records matching every predicate
// set in state. Predicates are ANDed; an empty predicate passes everything.
// Input order is preserved, so the caller's snapshot order (open time
// descending, id descending) survives filtering. Records whose open
// timestamp does not parse fail any active date predicate closed.
func ApplyFilters(records []journal.TradeRecord, state journal.FilterState) []journal.TradeRecord {
	if state.IsEmpty() {
		return records
	}

	from, hasFrom := parseBoundary(state.DateFrom)
	to, hasTo := parseBoundary(state.DateTo)
	if hasTo {
		// Inclusive end-of-day: anything strictly before the next midnight.
		to = to.AddDate(0, 0, 1)
	}

	out := make([]journal.TradeRecord, 0, len(records))
	for _, r := range records {
		if hasFrom || hasTo {
			open, ok := journal.ParseInstant(r.OpenTime)
			if !ok {
				continue
			}
			if hasFrom && open.Before(from) {
				continue
			}
			if hasTo && !open.Before(to) {
				continue
			}
		}
		if !tagMatches(r.EA, state.EA) {
			continue
		}
		if !tagMatches(r.Symbol, state.Symbol) {
			continue
		}
		if !tagMatches(r.Timeframe, state.Timeframe) {
			continue
		}
		if !tagMatches(string(r.Side), state.Side) {
			continue
		}
		if !tagMatches(r.Session, state.Session) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// parseBoundary parses a civil-date filter boundary at UTC midnight.
// A malformed boundary behaves like an absent predicate.
func parseBoundary(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// tagMatches is the case-insensitive exact match used by every tag
// predicate. A record with a missing tag never matches a non-empty filter.
func tagMatches(value, filter string) bool {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(value), filter)
}
