package where

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/marquee-cli/marquee/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestPaths(t *testing.T) {
	Convey("Path functions", t, func() {
		Convey("Config()", func() {
			path := Config()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Config() honors the override variable", func() {
			custom := filepath.Join(os.TempDir(), "marquee-where-test")
			t.Setenv(EnvConfigPath, custom)
			So(Config(), ShouldEqual, custom)
			So(lo.Must(filesystem.API().IsDir(custom)), ShouldBeTrue)
		})

		Convey("Logs() lives under Config()", func() {
			So(Logs(), ShouldStartWith, Config())
			So(lo.Must(filesystem.API().IsDir(Logs())), ShouldBeTrue)
		})

		Convey("History() is a file path under Config()", func() {
			So(filepath.Dir(History()), ShouldEqual, Config())
		})

		Convey("Temp()", func() {
			So(lo.Must(filesystem.API().IsDir(Temp())), ShouldBeTrue)
		})
	})
}
