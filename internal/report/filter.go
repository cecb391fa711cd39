package report

import (
	"time"

	"github.com/cylvision/dockwatch/internal/adapters/storage"
)

// Filter narrows the event log for report queries. All fields are
// optional; empty and "all" disable a filter. Start and End accept a
// calendar date ("2006-01-02") or a full timestamp (RFC3339 or
// "2006-01-02 15:04:05", read as UTC). An unparsable bound is treated
// as unbounded rather than rejected.
type Filter struct {
	Start     string
	End       string
	Platform  string
	Zone      string
	Direction string
}

// timestampLayouts are tried in order for non-date-only bounds.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

const dateLayout = "2006-01-02"

// parseBound parses a time bound. dateOnly reports whether the value
// carried no time component, which changes end-bound semantics.
func parseBound(value string) (t time.Time, dateOnly, ok bool) {
	if value == "" {
		return time.Time{}, false, false
	}
	if t, err := time.ParseInLocation(dateLayout, value, time.UTC); err == nil {
		return t, true, true
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, false, true
		}
	}
	return time.Time{}, false, false
}

// storageQuery translates the filter into a log query. A date-only
// start is inclusive from midnight; a date-only end means end-of-day
// inclusive, implemented as exclusive-before the following midnight.
// Full-timestamp ends stay inclusive as given.
func (f Filter) storageQuery() storage.Query {
	q := storage.Query{
		Platform: f.Platform,
		Zone:     f.Zone,
	}
	if t, _, ok := parseBound(f.Start); ok {
		q.Since = t
		q.SinceSet = true
	}
	if t, dateOnly, ok := parseBound(f.End); ok {
		q.UntilSet = true
		if dateOnly {
			q.Until = t.AddDate(0, 0, 1)
			q.UntilExclusive = true
		} else {
			q.Until = t
		}
	}
	return q
}
