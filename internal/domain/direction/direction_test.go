package direction_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/cylvision/dockwatch/internal/domain/direction"
)

func TestNormalize(t *testing.T) {
	Convey("Canonical tokens pass through", t, func() {
		So(direction.Normalize("loaded"), ShouldEqual, "loaded")
		So(direction.Normalize("unloaded"), ShouldEqual, "unloaded")
	})

	Convey("Portuguese synonyms normalize to canonical directions", t, func() {
		So(direction.Normalize("carregado"), ShouldEqual, "loaded")
		So(direction.Normalize("carregamento"), ShouldEqual, "loaded")
		So(direction.Normalize("carga"), ShouldEqual, "loaded")
		So(direction.Normalize("descarregado"), ShouldEqual, "unloaded")
		So(direction.Normalize("descarga"), ShouldEqual, "unloaded")
	})

	Convey("Case and surrounding whitespace are ignored", t, func() {
		So(direction.Normalize("  Carregado "), ShouldEqual, "loaded")
		So(direction.Normalize("UNLOADED"), ShouldEqual, "unloaded")
	})

	Convey("Unrecognized tokens pass through unmapped", t, func() {
		So(direction.Normalize("sideways"), ShouldEqual, "sideways")
	})
}

func TestFilterActive(t *testing.T) {
	Convey("Empty and 'all' disable the filter", t, func() {
		So(direction.FilterActive(""), ShouldBeFalse)
		So(direction.FilterActive("all"), ShouldBeFalse)
		So(direction.FilterActive(" ALL "), ShouldBeFalse)
	})

	Convey("Anything else restricts results", t, func() {
		So(direction.FilterActive("loaded"), ShouldBeTrue)
		So(direction.FilterActive("carregado"), ShouldBeTrue)
		So(direction.FilterActive("garbage"), ShouldBeTrue)
	})
}
