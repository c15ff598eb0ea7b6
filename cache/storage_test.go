package cache

import (
	"io/ioutil"
	"os"
	"testing"
	"time"

	"hybrid/config"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryStorage(t *testing.T) {
	Convey("Given a memory storage", t, func() {
		s := NewMemoryStorage(16)

		Convey("The first insert should be stored and the second refused", func() {
			ok, err := s.SetIfAbsent(ReplayBucket, "k", time.Minute)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)

			ok, err = s.SetIfAbsent(ReplayBucket, "k", time.Minute)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("Buckets should not share keys", func() {
			ok, _ := s.SetIfAbsent("a", "k", time.Minute)
			So(ok, ShouldBeTrue)
			ok, _ = s.SetIfAbsent("b", "k", time.Minute)
			So(ok, ShouldBeTrue)
		})

		Convey("A full storage should refuse new keys instead of forgetting live ones", func() {
			small := NewMemoryStorage(2)
			for _, k := range []string{"a", "b"} {
				ok, err := small.SetIfAbsent(ReplayBucket, k, time.Minute)
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
			}

			ok, err := small.SetIfAbsent(ReplayBucket, "c", time.Minute)
			So(err, ShouldEqual, ErrStorageFull)
			So(ok, ShouldBeFalse)

			ok, err = small.SetIfAbsent(ReplayBucket, "a", time.Minute)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("A full storage should make room from expired keys", func() {
			small := NewMemoryStorage(2)
			_, _ = small.SetIfAbsent(ReplayBucket, "short", 10*time.Millisecond)
			_, _ = small.SetIfAbsent(ReplayBucket, "long", time.Minute)

			time.Sleep(30 * time.Millisecond)
			ok, err := small.SetIfAbsent(ReplayBucket, "c", time.Minute)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)

			ok, _ = small.SetIfAbsent(ReplayBucket, "long", time.Minute)
			So(ok, ShouldBeFalse)
		})

		Convey("An expired key should be stored again", func() {
			ok, _ := s.SetIfAbsent(ReplayBucket, "short", 10*time.Millisecond)
			So(ok, ShouldBeTrue)

			time.Sleep(30 * time.Millisecond)
			ok, _ = s.SetIfAbsent(ReplayBucket, "short", time.Minute)
			So(ok, ShouldBeTrue)
		})
	})
}

func TestNutsDBStorage(t *testing.T) {
	Convey("Given a nutsdb storage in a temporary directory", t, func() {
		dir, err := ioutil.TempDir("", "hybrid-nutsdb")
		So(err, ShouldBeNil)
		defer os.RemoveAll(dir)

		s, err := NewNutsDBStorage(config.NutsDBCfg{Path: dir, SegmentSize: 8 * 1024 * 1024})
		So(err, ShouldBeNil)
		defer s.CloseConnection()

		So(s.CheckConn(), ShouldBeNil)

		ok, err := s.SetIfAbsent(ReplayBucket, "k", time.Minute)
		So(err, ShouldBeNil)
		So(ok, ShouldBeTrue)

		ok, err = s.SetIfAbsent(ReplayBucket, "k", time.Minute)
		So(err, ShouldBeNil)
		So(ok, ShouldBeFalse)
	})
}

func TestNewStorage(t *testing.T) {
	Convey("Given replay configurations", t, func() {
		Convey("A disabled replay window should use the stub", func() {
			s, err := NewStorage(config.ReplayCfg{})
			So(err, ShouldBeNil)
			So(s, ShouldHaveSameTypeAs, new(storageStub))

			ok, err := s.SetIfAbsent(ReplayBucket, "k", time.Minute)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
		})

		Convey("The memory type should build an LRU storage", func() {
			s, err := NewStorage(config.ReplayCfg{Enable: true, Type: config.StorageTypeMemory,
				Memory: config.MemoryCfg{Size: 8}})
			So(err, ShouldBeNil)
			So(s, ShouldHaveSameTypeAs, new(MemoryStorage))
		})
	})
}

func TestReplayGuard(t *testing.T) {
	Convey("Given a replay guard over memory", t, func() {
		guard := NewReplayGuard(NewMemoryStorage(16))

		seen, err := guard.Seen("sw9TTTqlEbGQkELqQuQPq92ydr4=", time.Minute)
		So(err, ShouldBeNil)
		So(seen, ShouldBeFalse)

		seen, err = guard.Seen("sw9TTTqlEbGQkELqQuQPq92ydr4=", time.Minute)
		So(err, ShouldBeNil)
		So(seen, ShouldBeTrue)

		seen, err = guard.Seen("EEFSxb/coHvGM+69RhmfAlXJ9J0=", time.Minute)
		So(err, ShouldBeNil)
		So(seen, ShouldBeFalse)
	})

	Convey("ttlSeconds should round up to whole seconds", t, func() {
		So(ttlSeconds(0), ShouldEqual, 1)
		So(ttlSeconds(1500*time.Millisecond), ShouldEqual, 2)
		So(ttlSeconds(time.Minute), ShouldEqual, 60)
	})
}
