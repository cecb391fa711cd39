package emitter_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/cylvision/dockwatch/internal/adapters/bus"
	"github.com/cylvision/dockwatch/internal/domain/direction"
	"github.com/cylvision/dockwatch/internal/domain/model"
	"github.com/cylvision/dockwatch/internal/emitter"
)

type memAppender struct {
	events []model.CrossingEvent
	err    error
}

func (a *memAppender) Append(_ context.Context, e model.CrossingEvent) error {
	if a.err != nil {
		return a.err
	}
	a.events = append(a.events, e)
	return nil
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, model.RealtimeCount) error {
	return errors.New("broker gone")
}
func (failingPublisher) Close() error { return nil }

func TestEmit(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, 6, 1, 13, 30, 0, 0, time.UTC)

	Convey("Given an emitter with a fixed clock", t, func() {
		pub := bus.NewMemory()
		app := &memAppender{}
		em := emitter.New(pub, app, emitter.WithNow(func() time.Time { return fixed }))

		Convey("One crossing yields one publish and one append", func() {
			ev := em.Emit(ctx, "dock-a", "gate", direction.Loaded)

			So(ev, ShouldResemble, model.CrossingEvent{
				Platform:  "dock-a",
				Zone:      "gate",
				Direction: "loaded",
				Qty:       1,
				Timestamp: fixed,
			})
			So(app.events, ShouldResemble, []model.CrossingEvent{ev})
			So(pub.Counts(), ShouldResemble, []model.RealtimeCount{
				{Platform: "dock-a", Zone: "gate", Direction: "loaded", Qty: 1},
			})
		})

		Convey("Quantity is always one per crossing", func() {
			em.Emit(ctx, "dock-a", "gate", direction.Loaded)
			em.Emit(ctx, "dock-a", "gate", direction.Unloaded)
			So(app.events, ShouldHaveLength, 2)
			So(app.events[0].Qty, ShouldEqual, 1)
			So(app.events[1].Qty, ShouldEqual, 1)
		})
	})

	Convey("A failing publisher never blocks the durable append", t, func() {
		app := &memAppender{}
		em := emitter.New(failingPublisher{}, app, emitter.WithNow(func() time.Time { return fixed }))

		ev := em.Emit(ctx, "dock-a", "gate", direction.Unloaded)
		So(ev.Direction, ShouldEqual, "unloaded")
		So(app.events, ShouldHaveLength, 1)
	})

	Convey("A failing append never blocks the realtime publish", t, func() {
		pub := bus.NewMemory()
		app := &memAppender{err: errors.New("disk full")}
		em := emitter.New(pub, app, emitter.WithNow(func() time.Time { return fixed }))

		em.Emit(ctx, "dock-b", "gate", direction.Loaded)
		So(pub.Counts(), ShouldHaveLength, 1)
		So(app.events, ShouldBeEmpty)
	})
}
