package open

import (
	"testing"

	"github.com/marquee-cli/marquee/constant"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLauncher(t *testing.T) {
	Convey("Given a target", t, func() {
		const target = "/home/user/.config/marquee"

		Convey("Then linux uses xdg-open", func() {
			name, args, ok := launcher(constant.Linux, target)
			So(ok, ShouldBeTrue)
			So(name, ShouldEqual, "xdg-open")
			So(args, ShouldResemble, []string{target})
		})

		Convey("Then macOS uses open", func() {
			name, _, ok := launcher(constant.Darwin, target)
			So(ok, ShouldBeTrue)
			So(name, ShouldEqual, "open")
		})

		Convey("Then windows goes through rundll32", func() {
			name, args, ok := launcher(constant.Windows, target)
			So(ok, ShouldBeTrue)
			So(name, ShouldEndWith, "rundll32.exe")
			So(args[1], ShouldEqual, target)
		})

		Convey("Then unknown platforms are refused", func() {
			_, _, ok := launcher("plan9", target)
			So(ok, ShouldBeFalse)
		})
	})
}
