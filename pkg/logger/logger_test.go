package logger_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/cylvision/dockwatch/pkg/logger"
)

func TestLogger(t *testing.T) {
	ctx := context.Background()

	Convey("Get initializes the global logger on first use", t, func() {
		log := logger.Get()
		So(log, ShouldNotBeNil)
		So(logger.Get(), ShouldEqual, log)

		Convey("And logging at every level does not panic", func() {
			log.Debug(ctx, "debug line", logger.String("k", "v"))
			log.Info(ctx, "info line", logger.Int("n", 1))
			log.Warn(ctx, "warn line", logger.Bool("flag", true))
			log.Error(ctx, "error line", logger.Error(errors.New("boom")))
		})

		Convey("Named returns a scoped logger", func() {
			So(log.Named("worker"), ShouldNotBeNil)
		})
	})

	Convey("Field constructors keep their keys", t, func() {
		So(logger.String("a", "b").Key, ShouldEqual, "a")
		So(logger.Int64("n", 2).Value, ShouldEqual, int64(2))
		So(logger.Float64("f", 1.5).Value, ShouldEqual, 1.5)
		So(logger.Any("x", []int{1}).Key, ShouldEqual, "x")
		So(logger.Error(errors.New("boom")).Key, ShouldEqual, "error")
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Known level tokens are accepted", t, func() {
		for _, level := range []string{"debug", "info", "warn", "warning", "error", "", " INFO "} {
			So(logger.SetLevelString(level), ShouldBeNil)
		}
	})

	Convey("Unknown tokens are rejected", t, func() {
		So(logger.SetLevelString("loud"), ShouldNotBeNil)
	})

	Convey("The default level is restored for other tests", t, func() {
		So(logger.SetLevelString("info"), ShouldBeNil)
	})
}
