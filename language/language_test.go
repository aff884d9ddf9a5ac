package language

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Normalize", t, func() {
		Convey("Two-letter engine codes become three-letter server codes", func() {
			So(Normalize("en"), ShouldEqual, "eng")
			So(Normalize("ja"), ShouldEqual, "jpn")
			So(Normalize("de"), ShouldEqual, "deu")
		})

		Convey("Three-letter codes are stable", func() {
			So(Normalize("eng"), ShouldEqual, "eng")
			So(Normalize("JPN"), ShouldEqual, "jpn")
		})

		Convey("Bibliographic codes are folded", func() {
			So(Normalize("ger"), ShouldEqual, "deu")
			So(Normalize("fre"), ShouldEqual, "fra")
		})

		Convey("Regional tags drop the region", func() {
			So(Normalize("pt-BR"), ShouldEqual, "por")
		})

		Convey("Empty and undetermined codes are empty", func() {
			So(Normalize(""), ShouldBeEmpty)
			So(Normalize("und"), ShouldBeEmpty)
		})
	})
}

func TestEqual(t *testing.T) {
	Convey("Equal", t, func() {
		So(Equal("en", "eng"), ShouldBeTrue)
		So(Equal("de", "ger"), ShouldBeTrue)
		So(Equal("en", "jpn"), ShouldBeFalse)
		So(Equal("", ""), ShouldBeFalse)
	})
}

func TestName(t *testing.T) {
	Convey("Name", t, func() {
		So(Name("ja"), ShouldEqual, "Japanese")
		So(Name("eng"), ShouldEqual, "English")
		So(Name(""), ShouldBeEmpty)
	})
}
