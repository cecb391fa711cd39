// Package report aggregates the crossing-event log into filtered rows,
// time-bucketed series and per-platform summaries.
package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/cylvision/dockwatch/internal/adapters/storage"
	"github.com/cylvision/dockwatch/internal/domain/direction"
	"github.com/cylvision/dockwatch/internal/domain/model"
)

// Period selects the bucket granularity for series queries.
type Period string

// Supported bucket periods.
const (
	PeriodHour  Period = "hour"
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParsePeriod validates a period token.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodHour, PeriodDay, PeriodWeek, PeriodMonth:
		return Period(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrBadPeriod, s)
	}
}

// Bucket is one period's summed quantities.
type Bucket struct {
	Label    string `json:"bucket"`
	Loaded   int    `json:"loaded"`
	Unloaded int    `json:"unloaded"`
}

// ZoneTotals sums one zone's quantities.
type ZoneTotals struct {
	Loaded   int `json:"loaded"`
	Unloaded int `json:"unloaded"`
}

// PlatformSummary sums one platform's quantities across its zones.
type PlatformSummary struct {
	Loaded   int                   `json:"loaded"`
	Unloaded int                   `json:"unloaded"`
	Zones    map[string]ZoneTotals `json:"zones"`
}

// Summary is the full per-platform/per-zone rollup with a grand total.
type Summary struct {
	Platforms map[string]PlatformSummary `json:"platforms"`
	Total     ZoneTotals                 `json:"total"`
}

// EventSource is the read side of the event log.
type EventSource interface {
	Events(ctx context.Context, q storage.Query) ([]model.CrossingEvent, error)
}

// Engine answers report queries over the event log. It holds no state
// of its own: identical filters over an unchanged log yield identical
// results.
type Engine struct {
	source EventSource
}

// NewEngine creates an engine over the given log.
func NewEngine(source EventSource) *Engine {
	return &Engine{source: source}
}

// Rows returns filtered events normalized to the export row shape.
func (e *Engine) Rows(ctx context.Context, f Filter) ([]Row, error) {
	events, err := e.filtered(ctx, f)
	if err != nil {
		return nil, err
	}
	return BuildRows(events), nil
}

// Series buckets filtered events by period using UTC calendar rules
// and returns buckets sorted ascending by label. All four label
// formats sort correctly as strings. The hour format collides across
// calendar days on purpose: it produces the hour-of-day profile the
// legacy dashboards chart; bound the time range to a single day for a
// strict chronology.
func (e *Engine) Series(ctx context.Context, f Filter, period Period) ([]Bucket, error) {
	if _, err := ParsePeriod(string(period)); err != nil {
		return nil, err
	}
	events, err := e.filtered(ctx, f)
	if err != nil {
		return nil, err
	}

	sums := make(map[string]*Bucket)
	for _, ev := range events {
		label := bucketLabel(ev, period)
		b := sums[label]
		if b == nil {
			b = &Bucket{Label: label}
			sums[label] = b
		}
		addDirected(&b.Loaded, &b.Unloaded, ev)
	}

	out := make([]Bucket, 0, len(sums))
	for _, b := range sums {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

// Summarize groups the whole log (optionally one platform) by platform
// then zone, with per-zone sums, per-platform totals and a grand
// total.
func (e *Engine) Summarize(ctx context.Context, platform string) (Summary, error) {
	events, err := e.source.Events(ctx, storage.Query{Platform: platform})
	if err != nil {
		return Summary{}, fmt.Errorf("summary query: %w", err)
	}

	s := Summary{Platforms: make(map[string]PlatformSummary)}
	for _, ev := range events {
		ps, ok := s.Platforms[ev.Platform]
		if !ok {
			ps = PlatformSummary{Zones: make(map[string]ZoneTotals)}
		}
		zt := ps.Zones[ev.Zone]
		addDirected(&zt.Loaded, &zt.Unloaded, ev)
		ps.Zones[ev.Zone] = zt
		addDirected(&ps.Loaded, &ps.Unloaded, ev)
		s.Platforms[ev.Platform] = ps
		addDirected(&s.Total.Loaded, &s.Total.Unloaded, ev)
	}
	return s, nil
}

// filtered runs the storage query and applies the direction filter,
// which needs synonym normalization and so cannot be pushed into SQL.
func (e *Engine) filtered(ctx context.Context, f Filter) ([]model.CrossingEvent, error) {
	events, err := e.source.Events(ctx, f.storageQuery())
	if err != nil {
		return nil, fmt.Errorf("report query: %w", err)
	}
	if !direction.FilterActive(f.Direction) {
		return events, nil
	}

	want := direction.Normalize(f.Direction)
	filtered := events[:0]
	for _, ev := range events {
		if direction.Normalize(ev.Direction) == want {
			filtered = append(filtered, ev)
		}
	}
	return filtered, nil
}

// addDirected adds an event's quantity to the matching directional
// sum. Events with an unrecognized direction count toward neither.
func addDirected(loaded, unloaded *int, ev model.CrossingEvent) {
	switch direction.Normalize(ev.Direction) {
	case string(direction.Loaded):
		*loaded += ev.Qty
	case string(direction.Unloaded):
		*unloaded += ev.Qty
	}
}

// bucketLabel formats an event's UTC timestamp for one period.
func bucketLabel(ev model.CrossingEvent, period Period) string {
	ts := ev.Timestamp.UTC()
	switch period {
	case PeriodHour:
		return ts.Format("15") + ":00"
	case PeriodDay:
		return ts.Format("2006-01-02")
	case PeriodWeek:
		year, week := ts.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	default: // PeriodMonth, validated upstream
		return ts.Format("2006-01")
	}
}
