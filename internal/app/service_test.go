package app_test

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/cylvision/dockwatch/internal/adapters/bus"
	"github.com/cylvision/dockwatch/internal/app"
	"github.com/cylvision/dockwatch/internal/domain/model"
	"github.com/cylvision/dockwatch/internal/report"
)

func startService(t *testing.T, pub bus.Publisher) *app.Service {
	t.Helper()
	svc := app.New(
		app.WithDBPath(":memory:"),
		app.WithShardCount(1),
		app.WithQueueSize(64),
		app.WithPublisher(pub),
	)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

// waitForEvents polls the stats until the event log reaches want
// entries, since batch processing is asynchronous.
func waitForEvents(svc *app.Service, want int) bool {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if n, ok := svc.GetStats()["eventCount"].(int); ok && n >= want {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func crossingBatches(platform string) []model.DetectionBatch {
	zones := map[string]model.Zone{
		"gate": {P1: model.Point{0, 300}, P2: model.Point{1020, 300}},
	}
	return []model.DetectionBatch{
		{Platform: platform, Zones: zones, Detections: []model.Detection{
			{TrackID: 1, Center: model.Point{500, 280}},
		}},
		{Platform: platform, Zones: zones, Detections: []model.Detection{
			{TrackID: 1, Center: model.Point{500, 320}},
		}},
	}
}

func TestPipeline(t *testing.T) {
	ctx := context.Background()

	Convey("Given a running service", t, func() {
		pub := bus.NewMemory()
		svc := startService(t, pub)

		Convey("A track crossing the gate produces one durable event", func() {
			for _, b := range crossingBatches("dock-a") {
				So(svc.ProcessBatch(ctx, b), ShouldBeTrue)
			}
			So(waitForEvents(svc, 1), ShouldBeTrue)

			rows, err := svc.ListReports(ctx, report.Filter{})
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 1)
			So(rows[0].Platform, ShouldEqual, "dock-a")
			So(rows[0].Zone, ShouldEqual, "gate")
			So(rows[0].Direction, ShouldEqual, "loaded")
			So(rows[0].Quantity, ShouldEqual, 1)

			Convey("And one realtime count on the fan-out", func() {
				So(pub.Counts(), ShouldResemble, []model.RealtimeCount{
					{Platform: "dock-a", Zone: "gate", Direction: "loaded", Qty: 1},
				})
			})

			Convey("And the summary reflects it", func() {
				s, err := svc.Summary(ctx, "")
				So(err, ShouldBeNil)
				So(s.Total, ShouldResemble, report.ZoneTotals{Loaded: 1})
			})

			Convey("And the chart series buckets it", func() {
				today := time.Now().UTC().Format("2006-01-02")
				buckets, err := svc.ChartSeries(ctx, "dock-a", report.PeriodDay, "", "")
				So(err, ShouldBeNil)
				So(buckets, ShouldResemble, []report.Bucket{
					{Label: today, Loaded: 1},
				})
			})
		})

		Convey("Stored zones apply to batches without inline zones", func() {
			zones := map[string]model.Zone{
				"gate": {P1: model.Point{0, 300}, P2: model.Point{1020, 300}},
			}
			So(svc.SetZones(ctx, "dock-b", zones), ShouldBeNil)

			got, err := svc.GetZones(ctx, "dock-b")
			So(err, ShouldBeNil)
			So(got, ShouldResemble, zones)

			batches := crossingBatches("dock-b")
			for i := range batches {
				batches[i].Zones = nil
			}
			for _, b := range batches {
				So(svc.ProcessBatch(ctx, b), ShouldBeTrue)
			}
			So(waitForEvents(svc, 1), ShouldBeTrue)
		})

		Convey("Batches without a platform are rejected", func() {
			So(svc.ProcessBatch(ctx, model.DetectionBatch{}), ShouldBeFalse)
		})

		Convey("Duplicate batch IDs are processed once", func() {
			b := crossingBatches("dock-c")[0]
			b.BatchID = "frame-1"
			So(svc.ProcessBatch(ctx, b), ShouldBeTrue)
			So(svc.ProcessBatch(ctx, b), ShouldBeFalse)
		})

		Convey("Stats expose pipeline gauges", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldBeTrue)
			So(stats["shardCount"], ShouldEqual, 1)
			So(stats, ShouldContainKey, "eventCount")
		})
	})
}

func TestServiceLifecycle(t *testing.T) {
	ctx := context.Background()

	Convey("Start is idempotent and Stop is safe before Start", t, func() {
		svc := app.New(app.WithDBPath(":memory:"), app.WithShardCount(1))
		svc.Stop()

		So(svc.Start(ctx), ShouldBeNil)
		So(svc.Start(ctx), ShouldBeNil)
		svc.Stop()

		Convey("After Stop, new batches are not accepted", func() {
			ok := svc.ProcessBatch(ctx, model.DetectionBatch{Platform: "dock-a"})
			So(ok, ShouldBeFalse)
		})
	})
}
