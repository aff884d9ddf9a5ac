package network

import (
	"net/http"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNewClient(t *testing.T) {
	Convey("Given a timeout", t, func() {
		c := NewClient(5 * time.Second)

		Convey("Then the client carries it with a pooled transport", func() {
			So(c.Timeout, ShouldEqual, 5*time.Second)
			tr, ok := c.Transport.(*http.Transport)
			So(ok, ShouldBeTrue)
			So(tr.MaxIdleConnsPerHost, ShouldEqual, 10)
		})
	})
}
