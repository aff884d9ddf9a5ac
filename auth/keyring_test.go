package auth

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/zalando/go-keyring"
)

func init() {
	keyring.MockInit()
}

func TestToken(t *testing.T) {
	Convey("Given an empty keyring", t, func() {
		So(DeleteToken(), ShouldBeNil)

		Convey("Then reading reports that no token exists", func() {
			_, err := GetToken()
			So(err, ShouldEqual, ErrNoToken)
		})

		Convey("When a token is stored", func() {
			So(SetToken("secret"), ShouldBeNil)

			Convey("Then it can be read back and deleted", func() {
				token, err := GetToken()
				So(err, ShouldBeNil)
				So(token, ShouldEqual, "secret")

				So(DeleteToken(), ShouldBeNil)
				So(DeleteToken(), ShouldBeNil)
			})
		})
	})
}
