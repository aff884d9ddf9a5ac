package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/marquee-cli/marquee/config"
	"github.com/marquee-cli/marquee/constant"
	"github.com/marquee-cli/marquee/key"
	"github.com/marquee-cli/marquee/where"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseValue(t *testing.T) {
	Convey("Given config fields", t, func() {
		Convey("When setting an integer", func() {
			v, err := parseValue(config.Default[key.PlayerSeekSmall], []string{"15"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 15)
		})

		Convey("When setting a boolean", func() {
			v, err := parseValue(config.Default[key.AutoSkipIntro], []string{"true"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, true)
		})

		Convey("When setting a string", func() {
			v, err := parseValue(config.Default[key.ServerURL], []string{"https://media.example.com"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "https://media.example.com")
		})

		Convey("When the value does not parse", func() {
			_, err := parseValue(config.Default[key.PlayerSeekLarge], []string{"soon"})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, key.PlayerSeekLarge)
		})

		Convey("When no value is given", func() {
			_, err := parseValue(config.Default[key.ServerURL], nil)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestUnknownKey(t *testing.T) {
	Convey("Given a misspelled key", t, func() {
		_, err := lookupField("server.ulr")

		Convey("Then the closest key is suggested", func() {
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, key.ServerURL)
		})
	})
}

func TestEnvNames(t *testing.T) {
	Convey("Given the exposed config keys", t, func() {
		names := envNames()

		Convey("Then every name carries the prefix", func() {
			for _, n := range names {
				So(n, ShouldStartWith, "MARQUEE_")
			}
		})

		Convey("Then the config path override is listed once", func() {
			count := 0
			for _, n := range names {
				if n == where.EnvConfigPath {
					count++
				}
			}
			So(count, ShouldEqual, 1)
			So(len(envNames()), ShouldEqual, len(names))
		})

		Convey("Then keys map to underscored names", func() {
			So(names, ShouldContain, "MARQUEE_SERVER_URL")
		})
	})
}

func TestMarkAll(t *testing.T) {
	Convey("Given several ids", t, func() {
		var marked []string
		mark := func(_ context.Context, id string) error {
			if id == "bad" {
				return errors.New("boom")
			}
			marked = append(marked, id)
			return nil
		}

		Convey("When all succeed", func() {
			n, err := markAll(context.Background(), []string{"1", "2"}, mark)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)
		})

		Convey("When one fails", func() {
			n, err := markAll(context.Background(), []string{"1", "bad", "3"}, mark)

			Convey("Then it stops there", func() {
				So(err, ShouldNotBeNil)
				So(n, ShouldEqual, 1)
				So(marked, ShouldResemble, []string{"1"})
			})
		})
	})
}

func TestInstallHint(t *testing.T) {
	Convey("Given a platform", t, func() {
		So(installHint(constant.Darwin), ShouldContainSubstring, "brew")
		So(installHint(constant.Linux), ShouldContainSubstring, "apt")
		So(installHint("plan9"), ShouldBeBlank)
		So(missingDependency("mpv-custom"), ShouldContainSubstring, "mpv-custom")
	})
}
