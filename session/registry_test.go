package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hybrid/log"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRegistry(t *testing.T) {
	Convey("Given a registry", t, func() {
		reg := NewRegistry(log.Disabled)
		ctx, slot := WithSlot(context.Background())

		Convey("StartSession should register a fresh anonymous session", func() {
			sess, err := reg.StartSession(ctx)
			So(err, ShouldBeNil)
			So(sess.ID(), ShouldNotBeEmpty)
			So(sess.UserEID(), ShouldBeEmpty)
			So(reg.GetSession(sess.ID()), ShouldEqual, sess)
			So(reg.GetSessionsCount(), ShouldEqual, 1)

			Convey("and Invalidate should drop it", func() {
				sess.SetUser("admin", "1")
				sess.Invalidate()
				So(reg.GetSession(sess.ID()), ShouldBeNil)
				So(sess.UserEID(), ShouldBeEmpty)
			})
		})

		Convey("The current session should live in the request slot", func() {
			So(reg.CurrentSession(ctx), ShouldBeNil)

			sess, _ := reg.StartSession(ctx)
			reg.SetCurrentSession(ctx, sess)
			So(reg.CurrentSession(ctx), ShouldEqual, sess)
			So(slot.Get(), ShouldEqual, sess)
		})

		Convey("Without a slot the current session should stay unset", func() {
			sess, _ := reg.StartSession(ctx)
			reg.SetCurrentSession(context.Background(), sess)
			So(reg.CurrentSession(context.Background()), ShouldBeNil)
		})

		Convey("A closed registry should refuse new sessions", func() {
			reg.Close()
			_, err := reg.StartSession(ctx)
			So(err, ShouldEqual, ErrClosed)
		})
	})
}

func TestSweep(t *testing.T) {
	Convey("Given a registry with a short idle timeout", t, func() {
		reg := NewRegistry(log.Disabled, WithIdleTimeout(time.Minute, time.Second))
		ctx, _ := WithSlot(context.Background())

		idle, _ := reg.StartSession(ctx)
		busy, _ := reg.StartSession(ctx)
		So(reg.GetSessionsCount(), ShouldEqual, 2)

		Convey("Nothing should be dropped inside the timeout", func() {
			So(reg.Sweep(time.Now().Add(30*time.Second)), ShouldEqual, 0)
			So(reg.GetSessionsCount(), ShouldEqual, 2)
		})

		Convey("Sessions idle past the timeout should be dropped", func() {
			busy.(*memSession).lastActive = time.Now().Add(2 * time.Minute)

			So(reg.Sweep(time.Now().Add(90*time.Second)), ShouldEqual, 1)
			So(reg.GetSession(idle.ID()), ShouldBeNil)
			So(reg.GetSession(busy.ID()), ShouldEqual, busy)
		})
	})
}

func TestMiddleware(t *testing.T) {
	Convey("Given a handler behind the session middleware", t, func() {
		reg := NewRegistry(log.Disabled)

		var seen Session
		h := reg.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = reg.CurrentSession(r.Context())
		}))

		Convey("A request without cookie should get an unregistered anonymous session", func() {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			So(seen, ShouldNotBeNil)
			So(seen.ID(), ShouldNotBeEmpty)
			So(seen.UserEID(), ShouldBeEmpty)
			So(len(rec.Result().Cookies()), ShouldEqual, 0)
			So(reg.GetSessionsCount(), ShouldEqual, 0)

			Convey("and invalidating it should be harmless", func() {
				seen.Invalidate()
				So(reg.GetSessionsCount(), ShouldEqual, 0)
			})
		})

		Convey("Many anonymous requests should not grow the registry", func() {
			for i := 0; i < 10000; i++ {
				h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
			}
			So(reg.GetSessionsCount(), ShouldEqual, 0)
		})

		Convey("A cookie naming a started session should bind it", func() {
			ctx, _ := WithSlot(context.Background())
			started, err := reg.StartSession(ctx)
			So(err, ShouldBeNil)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: CookieName, Value: started.ID()})
			h.ServeHTTP(httptest.NewRecorder(), req)

			So(seen, ShouldEqual, started)
		})

		Convey("A stale cookie should get an anonymous session", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: CookieName, Value: "gone"})
			h.ServeHTTP(httptest.NewRecorder(), req)

			So(seen, ShouldNotBeNil)
			So(seen.ID(), ShouldNotEqual, "gone")
			So(reg.GetSessionsCount(), ShouldEqual, 0)
		})
	})
}
