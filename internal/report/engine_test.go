package report_test

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/cylvision/dockwatch/internal/adapters/storage"
	"github.com/cylvision/dockwatch/internal/domain/model"
	"github.com/cylvision/dockwatch/internal/report"
)

// fakeSource serves a fixed event slice, applying the same filtering
// the durable log would, and records the last query for assertions.
type fakeSource struct {
	events []model.CrossingEvent
	last   storage.Query
}

func (f *fakeSource) Events(_ context.Context, q storage.Query) ([]model.CrossingEvent, error) {
	f.last = q
	var out []model.CrossingEvent
	for _, ev := range f.events {
		if q.Platform != "" && q.Platform != "all" && ev.Platform != q.Platform {
			continue
		}
		if q.Zone != "" && q.Zone != "all" && ev.Zone != q.Zone {
			continue
		}
		if q.SinceSet && ev.Timestamp.Before(q.Since) {
			continue
		}
		if q.UntilSet {
			if q.UntilExclusive {
				if !ev.Timestamp.Before(q.Until) {
					continue
				}
			} else if ev.Timestamp.After(q.Until) {
				continue
			}
		}
		out = append(out, ev)
	}
	return out, nil
}

func at(day string, hour, min int) time.Time {
	d, err := time.ParseInLocation("2006-01-02", day, time.UTC)
	if err != nil {
		panic(err)
	}
	return d.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func event(platform, zone, dir string, qty int, ts time.Time) model.CrossingEvent {
	return model.CrossingEvent{Platform: platform, Zone: zone, Direction: dir, Qty: qty, Timestamp: ts}
}

func TestRows(t *testing.T) {
	ctx := context.Background()

	Convey("Given a log with mixed platforms and directions", t, func() {
		src := &fakeSource{events: []model.CrossingEvent{
			event("dock-a", "gate", "loaded", 1, at("2024-06-01", 10, 0)),
			event("dock-a", "gate", "descarregado", 2, at("2024-06-01", 11, 0)),
			event("dock-b", "gate", "loaded", 1, at("2024-06-02", 9, 0)),
		}}
		engine := report.NewEngine(src)

		Convey("An empty filter returns every event as a row", func() {
			rows, err := engine.Rows(ctx, report.Filter{})
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 3)
			So(rows[0].Platform, ShouldEqual, "dock-a")
			So(rows[0].Quantity, ShouldEqual, 1)
		})

		Convey("Rows carry normalized directions", func() {
			rows, err := engine.Rows(ctx, report.Filter{})
			So(err, ShouldBeNil)
			So(rows[1].Direction, ShouldEqual, "unloaded")
		})

		Convey("A direction filter accepts synonyms", func() {
			rows, err := engine.Rows(ctx, report.Filter{Direction: "DESCARGA"})
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 1)
			So(rows[0].Direction, ShouldEqual, "unloaded")
		})

		Convey("Platform and zone filters are pushed to the log query", func() {
			_, err := engine.Rows(ctx, report.Filter{Platform: "dock-b", Zone: "gate"})
			So(err, ShouldBeNil)
			So(src.last.Platform, ShouldEqual, "dock-b")
			So(src.last.Zone, ShouldEqual, "gate")
		})

		Convey("A date-only end bound covers the whole day", func() {
			rows, err := engine.Rows(ctx, report.Filter{Start: "2024-06-01", End: "2024-06-01"})
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 2)
			So(src.last.UntilExclusive, ShouldBeTrue)
			So(src.last.Until, ShouldResemble, at("2024-06-02", 0, 0))
		})

		Convey("A full-timestamp end bound stays inclusive", func() {
			rows, err := engine.Rows(ctx, report.Filter{End: "2024-06-01 11:00:00"})
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 2)
			So(src.last.UntilExclusive, ShouldBeFalse)
		})

		Convey("An unparsable bound is treated as unbounded", func() {
			rows, err := engine.Rows(ctx, report.Filter{Start: "yesterday-ish"})
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 3)
			So(src.last.SinceSet, ShouldBeFalse)
		})
	})
}

func TestSeries(t *testing.T) {
	ctx := context.Background()

	Convey("Given events spread across one day", t, func() {
		src := &fakeSource{events: []model.CrossingEvent{
			event("dock-a", "gate", "loaded", 1, at("2024-06-01", 1, 15)),
			event("dock-a", "gate", "loaded", 2, at("2024-06-01", 13, 0)),
			event("dock-a", "gate", "unloaded", 1, at("2024-06-01", 13, 45)),
			event("dock-a", "gate", "unloaded", 3, at("2024-06-01", 23, 59)),
		}}
		engine := report.NewEngine(src)

		Convey("Day buckets collapse them to a single entry", func() {
			buckets, err := engine.Series(ctx, report.Filter{}, report.PeriodDay)
			So(err, ShouldBeNil)
			So(buckets, ShouldResemble, []report.Bucket{
				{Label: "2024-06-01", Loaded: 3, Unloaded: 4},
			})
		})

		Convey("Hour buckets come out sorted by hour of day", func() {
			buckets, err := engine.Series(ctx, report.Filter{}, report.PeriodHour)
			So(err, ShouldBeNil)
			So(buckets, ShouldResemble, []report.Bucket{
				{Label: "01:00", Loaded: 1},
				{Label: "13:00", Loaded: 2, Unloaded: 1},
				{Label: "23:00", Unloaded: 3},
			})
		})

		Convey("Week labels use the ISO week of the year", func() {
			buckets, err := engine.Series(ctx, report.Filter{}, report.PeriodWeek)
			So(err, ShouldBeNil)
			So(buckets, ShouldHaveLength, 1)
			So(buckets[0].Label, ShouldEqual, "2024-W22")
		})

		Convey("Month labels truncate to the calendar month", func() {
			buckets, err := engine.Series(ctx, report.Filter{}, report.PeriodMonth)
			So(err, ShouldBeNil)
			So(buckets, ShouldResemble, []report.Bucket{
				{Label: "2024-06", Loaded: 3, Unloaded: 4},
			})
		})

		Convey("An unknown period is rejected", func() {
			_, err := engine.Series(ctx, report.Filter{}, report.Period("fortnight"))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "fortnight")
		})

		Convey("The same query twice yields the same buckets", func() {
			first, err := engine.Series(ctx, report.Filter{}, report.PeriodHour)
			So(err, ShouldBeNil)
			second, err := engine.Series(ctx, report.Filter{}, report.PeriodHour)
			So(err, ShouldBeNil)
			So(second, ShouldResemble, first)
		})
	})
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()

	Convey("Given events on two platforms", t, func() {
		src := &fakeSource{events: []model.CrossingEvent{
			event("dock-a", "gate", "loaded", 2, at("2024-06-01", 8, 0)),
			event("dock-a", "rear", "unloaded", 1, at("2024-06-01", 9, 0)),
			event("dock-b", "gate", "carregado", 4, at("2024-06-01", 10, 0)),
		}}
		engine := report.NewEngine(src)

		Convey("The full summary rolls up platform, zone and grand totals", func() {
			s, err := engine.Summarize(ctx, "")
			So(err, ShouldBeNil)

			So(s.Platforms, ShouldContainKey, "dock-a")
			So(s.Platforms, ShouldContainKey, "dock-b")
			So(s.Platforms["dock-a"].Loaded, ShouldEqual, 2)
			So(s.Platforms["dock-a"].Unloaded, ShouldEqual, 1)
			So(s.Platforms["dock-a"].Zones["gate"], ShouldResemble, report.ZoneTotals{Loaded: 2})
			So(s.Platforms["dock-a"].Zones["rear"], ShouldResemble, report.ZoneTotals{Unloaded: 1})
			So(s.Platforms["dock-b"].Loaded, ShouldEqual, 4)
			So(s.Total, ShouldResemble, report.ZoneTotals{Loaded: 6, Unloaded: 1})
		})

		Convey("A platform-scoped summary only covers that platform", func() {
			s, err := engine.Summarize(ctx, "dock-b")
			So(err, ShouldBeNil)
			So(s.Platforms, ShouldHaveLength, 1)
			So(s.Total, ShouldResemble, report.ZoneTotals{Loaded: 4})
		})
	})
}
