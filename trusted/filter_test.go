package trusted

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"hybrid/audit"
	"hybrid/log"
	"hybrid/metrics"
	"hybrid/session"
	"hybrid/session/mocksession"
	"hybrid/token"
	"hybrid/users"
	"hybrid/users/mockusers"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

const (
	testSecret = "e2KS54H35j6vS5Z38nK40"
	testToken  = "sw9TTTqlEbGQkELqQuQPq92ydr4=;username;nonce"
)

type recordingSink struct{ events []audit.Event }

func (s *recordingSink) Publish(e audit.Event) { s.events = append(s.events, e) }

func staticResolver(_ context.Context, host string) ([]string, error) {
	if host == "trusted.example.org" {
		return []string{"192.0.2.10", "2001:db8::10"}, nil
	}
	return nil, errors.New("no such host")
}

func newRequest(remoteAddr, tok string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/resource", nil)
	r.RemoteAddr = remoteAddr
	if tok != "" {
		r.Header.Set(token.Header, tok)
	}
	return r
}

func TestNew(t *testing.T) {
	Convey("Given missing collaborators", t, func() {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		codec := token.NewCodec(nil)
		sessions := mocksession.NewMockManager(ctrl)
		directory := mockusers.NewMockDirectory(ctrl)
		cfg := Config{Enabled: true, SharedSecret: testSecret}

		Convey("The filter cannot be built", func() {
			_, err := New(cfg, nil, sessions, directory)
			So(errors.Is(err, ErrMisconfigured), ShouldBeTrue)

			_, err = New(cfg, codec, nil, directory)
			So(errors.Is(err, ErrMisconfigured), ShouldBeTrue)

			_, err = New(cfg, codec, sessions, nil)
			So(errors.Is(err, ErrMisconfigured), ShouldBeTrue)

			_, err = New(Config{Enabled: true}, codec, sessions, directory)
			So(errors.Is(err, ErrMisconfigured), ShouldBeTrue)
		})

		Convey("A disabled filter does not need a secret", func() {
			f, err := New(Config{}, codec, sessions, directory)
			So(err, ShouldBeNil)
			So(f.safeHosts.Allows("localhost"), ShouldBeTrue)
		})
	})
}

// nolint:funlen
func TestFilterHandler(t *testing.T) {
	Convey("Given a trusted filter with mocked collaborators", t, func() {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		sessions := mocksession.NewMockManager(ctrl)
		directory := mockusers.NewMockDirectory(ctrl)
		reg := prometheus.NewRegistry()
		m, err := metrics.NewMetrics(reg)
		So(err, ShouldBeNil)
		sink := &recordingSink{}

		cfg := Config{Enabled: true, SharedSecret: testSecret, SafeHosts: []string{"localhost;trusted.example.org"}}
		f, err := New(cfg, token.NewCodec(nil), sessions, directory,
			WithLogger(log.Disabled), WithMetrics(m.Filter), WithAuditSink(sink), WithResolver(staticResolver))
		So(err, ShouldBeNil)

		var seen *http.Request
		var seenSession session.Session
		handler := f.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = r
		}))

		Convey("A disabled filter should pass the request through untouched", func() {
			f.enabled = false
			req := newRequest("127.0.0.1:5555", testToken)
			handler.ServeHTTP(httptest.NewRecorder(), req)

			So(seen, ShouldEqual, req)
			So(testutil.ToFloat64(m.Filter.With(ResultDisabled)), ShouldEqual, 1)
		})

		Convey("A request from an untrusted host should be delegated without session calls", func() {
			req := newRequest("10.1.2.3:5555", testToken)
			handler.ServeHTTP(httptest.NewRecorder(), req)

			So(seen, ShouldEqual, req)
			So(RemoteUser(seen), ShouldBeEmpty)
			So(testutil.ToFloat64(m.Filter.With(ResultUntrustedHost)), ShouldEqual, 1)
		})

		Convey("A request without token should be delegated", func() {
			req := newRequest("127.0.0.1:5555", "")
			handler.ServeHTTP(httptest.NewRecorder(), req)

			So(seen, ShouldEqual, req)
			So(testutil.ToFloat64(m.Filter.With(ResultNoToken)), ShouldEqual, 1)
		})

		Convey("A request with a forged token should be delegated", func() {
			req := newRequest("127.0.0.1:5555", "sw9TTTqlEbGQkELqQuQPq92ydr4=;admin;nonce")
			handler.ServeHTTP(httptest.NewRecorder(), req)

			So(seen, ShouldEqual, req)
			So(testutil.ToFloat64(m.Filter.With(ResultInvalidToken)), ShouldEqual, 1)
		})

		Convey("A request with a malformed token should be delegated", func() {
			req := newRequest("127.0.0.1:5555", "garbage")
			handler.ServeHTTP(httptest.NewRecorder(), req)

			So(seen, ShouldEqual, req)
			So(testutil.ToFloat64(m.Filter.With(ResultInvalidToken)), ShouldEqual, 1)
		})

		Convey("When the session already belongs to the identity no swap should happen", func() {
			current := mocksession.NewMockSession(ctrl)
			current.EXPECT().UserEID().Return("username")
			sessions.EXPECT().CurrentSession(gomock.Any()).Return(current)

			req := newRequest("127.0.0.1:5555", testToken)
			handler.ServeHTTP(httptest.NewRecorder(), req)

			So(seen, ShouldEqual, req)
			So(testutil.ToFloat64(m.Filter.With(ResultSameIdentity)), ShouldEqual, 1)
		})

		Convey("An unknown user should be delegated", func() {
			current := mocksession.NewMockSession(ctrl)
			current.EXPECT().UserEID().Return("")
			sessions.EXPECT().CurrentSession(gomock.Any()).Return(current)
			directory.EXPECT().UserByEID(gomock.Any(), "username").Return(nil, users.ErrUserNotDefined)

			req := newRequest("127.0.0.1:5555", testToken)
			handler.ServeHTTP(httptest.NewRecorder(), req)

			So(seen, ShouldEqual, req)
			So(RemoteUser(seen), ShouldBeEmpty)
			So(testutil.ToFloat64(m.Filter.With(ResultUnknownUser)), ShouldEqual, 1)
		})

		Convey("A failing session manager should be delegated", func() {
			sessions.EXPECT().CurrentSession(gomock.Any()).Return(nil)
			directory.EXPECT().UserByEID(gomock.Any(), "username").Return(&users.User{EID: "username", ID: "42"}, nil)
			sessions.EXPECT().StartSession(gomock.Any()).Return(nil, session.ErrClosed)

			req := newRequest("127.0.0.1:5555", testToken)
			handler.ServeHTTP(httptest.NewRecorder(), req)

			So(seen, ShouldEqual, req)
			So(testutil.ToFloat64(m.Filter.With(ResultSessionError)), ShouldEqual, 1)
		})

		Convey("Given a valid token for another user", func() {
			current := mocksession.NewMockSession(ctrl)
			trustedSession := mocksession.NewMockSession(ctrl)

			current.EXPECT().UserEID().Return("anonymous-guest")
			gomock.InOrder(
				sessions.EXPECT().CurrentSession(gomock.Any()).Return(current),
				directory.EXPECT().UserByEID(gomock.Any(), "username").Return(&users.User{EID: "username", ID: "42"}, nil),
				sessions.EXPECT().StartSession(gomock.Any()).Return(trustedSession, nil),
				trustedSession.EXPECT().SetUser("username", "42"),
				trustedSession.EXPECT().SetActive(),
				sessions.EXPECT().SetCurrentSession(gomock.Any(), trustedSession).Do(
					func(_ context.Context, s session.Session) { seenSession = s }),
				trustedSession.EXPECT().Invalidate(),
				sessions.EXPECT().SetCurrentSession(gomock.Any(), current).Do(
					func(_ context.Context, s session.Session) { seenSession = s }),
			)

			Convey("The session should be swapped for the request and restored after", func() {
				var during session.Session
				swapHandler := f.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					seen = r
					during = seenSession
				}))

				req := newRequest("127.0.0.1:5555", testToken)
				swapHandler.ServeHTTP(httptest.NewRecorder(), req)

				So(during, ShouldEqual, trustedSession)
				So(seenSession, ShouldEqual, current)
				So(RemoteUser(seen), ShouldEqual, "username")
				So(testutil.ToFloat64(m.Filter.With(ResultSwitched)), ShouldEqual, 1)

				So(len(sink.events), ShouldEqual, 1)
				So(sink.events[0].Identity, ShouldEqual, "username")
				So(sink.events[0].PreviousIdentity, ShouldEqual, "anonymous-guest")
				So(sink.events[0].Host, ShouldEqual, "127.0.0.1")
			})

			Convey("The session should be restored even when the handler panics", func() {
				panicking := f.Handler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
					panic("downstream failure")
				}))

				req := newRequest("127.0.0.1:5555", testToken)
				So(func() { panicking.ServeHTTP(httptest.NewRecorder(), req) }, ShouldPanic)
				So(seenSession, ShouldEqual, current)
			})
		})
	})
}

func TestFilterWithRegistry(t *testing.T) {
	Convey("Given the filter behind the session middleware", t, func() {
		reg := session.NewRegistry(log.Disabled)
		directory := users.Static{"username": {EID: "username", ID: "42"}}

		f, err := New(Config{Enabled: true, SharedSecret: testSecret}, token.NewCodec(nil), reg, directory)
		So(err, ShouldBeNil)

		var inside, after session.Session
		var ctx context.Context
		chain := reg.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx = r.Context()
			f.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				inside = reg.CurrentSession(r.Context())
			})).ServeHTTP(w, r)
			after = reg.CurrentSession(r.Context())
		}))

		chain.ServeHTTP(httptest.NewRecorder(), newRequest("[::1]:5555", testToken))

		So(ctx, ShouldNotBeNil)
		So(inside.UserEID(), ShouldEqual, "username")
		So(inside.UserID(), ShouldEqual, "42")
		So(after.UserEID(), ShouldBeEmpty)
		So(after.ID(), ShouldNotEqual, inside.ID())
		So(reg.GetSession(inside.ID()), ShouldBeNil)
		So(reg.GetSessionsCount(), ShouldEqual, 0)
	})
}

// nolint:funlen
func TestFilterCallerHost(t *testing.T) {
	Convey("Given a filter trusting a named host and a proxy range", t, func() {
		reg := session.NewRegistry(log.Disabled)
		directory := users.Static{"username": {EID: "username", ID: "42"}}
		cfg := Config{
			Enabled:        true,
			SharedSecret:   testSecret,
			SafeHosts:      []string{"trusted.example.org;10.0.0.7"},
			TrustedProxies: []string{"172.16.0.0/12"},
		}

		f, err := New(cfg, token.NewCodec(nil), reg, directory, WithResolver(staticResolver))
		So(err, ShouldBeNil)

		var seen string
		chain := CapturePeer(reg.Middleware(f.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = RemoteUser(r)
		}))))
		serve := func(r *http.Request) string {
			seen = ""
			chain.ServeHTTP(httptest.NewRecorder(), r)
			return seen
		}

		Convey("A caller at an address of the named host should be trusted", func() {
			So(serve(newRequest("192.0.2.10:5555", testToken)), ShouldEqual, "username")
			So(serve(newRequest("[2001:db8::10]:5555", testToken)), ShouldEqual, "username")
		})

		Convey("A caller at a listed address should be trusted", func() {
			So(serve(newRequest("10.0.0.7:5555", testToken)), ShouldEqual, "username")
		})

		Convey("Any other caller should not be trusted", func() {
			So(serve(newRequest("192.0.2.11:5555", testToken)), ShouldBeEmpty)
			So(serve(newRequest("127.0.0.1:5555", testToken)), ShouldBeEmpty)
		})

		Convey("Forwarding headers from an unknown peer should be ignored", func() {
			r := newRequest("203.0.113.9:4444", testToken)
			r.Header.Set("X-Forwarded-For", "192.0.2.10")
			So(serve(r), ShouldBeEmpty)

			r = newRequest("203.0.113.9:4444", testToken)
			r.Header.Set("X-Real-IP", "10.0.0.7")
			So(serve(r), ShouldBeEmpty)
		})

		Convey("A trusted proxy should name the caller with its own hop", func() {
			r := newRequest("172.16.0.5:8080", testToken)
			r.Header.Set("X-Forwarded-For", "203.0.113.9, 192.0.2.10")
			So(serve(r), ShouldEqual, "username")

			r = newRequest("172.16.0.5:8080", testToken)
			r.Header.Set("X-Forwarded-For", "192.0.2.10, 203.0.113.9")
			So(serve(r), ShouldBeEmpty)
		})

		Convey("A RemoteAddr rewritten after capture should not matter", func() {
			inner := f.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = RemoteUser(r)
			}))
			rewriting := CapturePeer(reg.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				r.RemoteAddr = "10.0.0.7:1"
				inner.ServeHTTP(w, r)
			})))

			seen = ""
			rewriting.ServeHTTP(httptest.NewRecorder(), newRequest("203.0.113.9:4444", testToken))
			So(seen, ShouldBeEmpty)
		})
	})

	Convey("An invalid proxy entry should be a configuration error", t, func() {
		cfg := Config{Enabled: true, SharedSecret: testSecret, TrustedProxies: []string{"proxy.example.org"}}
		_, err := New(cfg, token.NewCodec(nil), session.NewRegistry(log.Disabled), users.Static{})
		So(errors.Is(err, ErrMisconfigured), ShouldBeTrue)
	})
}
