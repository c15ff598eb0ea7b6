package users

import (
	"context"
	"errors"
	"testing"

	"hybrid/config"

	. "github.com/smartystreets/goconvey/convey"
)

func TestStatic(t *testing.T) {
	Convey("Given a static directory", t, func() {
		dir := NewStatic([]config.User{
			{EID: "admin", ID: "1", Name: "Admin", Email: "admin@example.org"},
			{EID: "jdoe", ID: "2"},
		})

		Convey("Known users should be found", func() {
			u, err := dir.UserByEID(context.Background(), "admin")
			So(err, ShouldBeNil)
			So(u.ID, ShouldEqual, "1")
			So(u.Email, ShouldEqual, "admin@example.org")
		})

		Convey("Unknown users should not be defined", func() {
			u, err := dir.UserByEID(context.Background(), "ghost")
			So(u, ShouldBeNil)
			So(errors.Is(err, ErrUserNotDefined), ShouldBeTrue)
		})
	})
}
