package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/cylvision/dockwatch/pkg/metrics"
)

func TestManager(t *testing.T) {
	Convey("A manager registers its collectors on a private registry", t, func() {
		reg := prometheus.NewRegistry()
		m := metrics.NewManager(metrics.WithRegistry(reg))
		So(m, ShouldNotBeNil)

		families, err := reg.Gather()
		So(err, ShouldBeNil)
		// Counters only appear after first use; vecs and histograms with
		// no observations gather empty. Gauges always show up.
		names := make(map[string]bool, len(families))
		for _, f := range families {
			names[f.GetName()] = true
		}
		So(names, ShouldContainKey, "dockwatch_pipeline_batch_processing_seconds")
		So(names, ShouldContainKey, "dockwatch_queue_size")

		Convey("Registering twice on the same registry panics, so each registry gets one manager", func() {
			So(func() { metrics.NewManager(metrics.WithRegistry(reg)) }, ShouldPanic)
		})
	})

	Convey("A custom namespace prefixes every collector", t, func() {
		reg := prometheus.NewRegistry()
		metrics.NewManager(metrics.WithRegistry(reg), metrics.WithNamespace("other"))

		families, err := reg.Gather()
		So(err, ShouldBeNil)
		for _, f := range families {
			So(f.GetName(), ShouldStartWith, "other_")
		}
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("The global helpers record without panicking", t, func() {
		metrics.RecordBatchReceived()
		metrics.RecordBatchDropped()
		metrics.RecordBatchDuplicate()
		metrics.RecordDecodeError()
		metrics.RecordEmptyBatch()
		metrics.RecordCrossing("dock-a", "gate", "loaded")
		metrics.RecordPublishError()
		metrics.RecordPersistError()
		metrics.RecordEventAppended()
		metrics.RecordTrackExpiry()
		metrics.RecordBatchLatency(0.002)
		metrics.UpdateActiveTracks(3)
		metrics.UpdateQueueSize(1)
		metrics.UpdateQueueCapacity(100)
		metrics.UpdateQueueUtilization(0.01)
		metrics.RecordHTTPRequest("/healthz", "GET", "200")
		metrics.RecordHTTPRequestDuration("/healthz", "GET", "200", 0.001)

		Convey("And the shared registry can gather them", func() {
			families, err := metrics.GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)

			found := false
			for _, f := range families {
				if f.GetName() == "dockwatch_pipeline_crossings_total" {
					found = true
				}
			}
			So(found, ShouldBeTrue)
		})
	})
}
