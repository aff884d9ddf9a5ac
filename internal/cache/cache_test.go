package cache

import (
	"testing"
	"time"

	"github.com/marquee-cli/marquee/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestCollectGarbage(t *testing.T) {
	Convey("Given a directory with old and fresh files", t, func() {
		fsys := filesystem.API()
		So(fsys.MkdirAll("/logs/nested", 0o755), ShouldBeNil)

		old := time.Now().Add(-10 * 24 * time.Hour)
		for _, p := range []string{"/logs/old.log", "/logs/nested/old.json"} {
			So(fsys.WriteFile(p, []byte("x"), 0o644), ShouldBeNil)
			So(fsys.Chtimes(p, old, old), ShouldBeNil)
		}
		So(fsys.WriteFile("/logs/today.log", []byte("x"), 0o644), ShouldBeNil)

		Convey("When collecting", func() {
			n, err := CollectGarbage("/logs", TTL)

			Convey("Then only stale files are removed", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 2)

				exists, _ := fsys.Exists("/logs/today.log")
				So(exists, ShouldBeTrue)
				exists, _ = fsys.Exists("/logs/old.log")
				So(exists, ShouldBeFalse)
				exists, _ = fsys.DirExists("/logs/nested")
				So(exists, ShouldBeTrue)
			})
		})

		Convey("When the directory does not exist", func() {
			n, err := CollectGarbage("/nowhere", TTL)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 0)
		})
	})
}
