package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/lancer-kit/uwe/v2"
	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
)

const (
	CookieName = "HYBRIDSESSION"

	DefaultIdleTimeout   = 30 * time.Minute
	DefaultSweepInterval = time.Minute
)

var ErrClosed = errors.New("session: registry is closed")

// Registry keeps started sessions in memory. Sessions idle for longer than
// the idle timeout are dropped by Sweep; the registry runs it periodically
// when added to a uwe chief.
type Registry struct {
	sync.RWMutex
	data   map[string]*memSession
	closed bool

	idleTimeout   time.Duration
	sweepInterval time.Duration

	log zerolog.Logger
}

type RegistryOption func(*Registry)

// WithIdleTimeout sets how long an unused session is kept and how often the
// registry looks for such sessions.
func WithIdleTimeout(idle, every time.Duration) RegistryOption {
	return func(reg *Registry) {
		reg.idleTimeout, reg.sweepInterval = idle, every
	}
}

func NewRegistry(logger zerolog.Logger, opts ...RegistryOption) *Registry {
	reg := &Registry{
		data:          map[string]*memSession{},
		idleTimeout:   DefaultIdleTimeout,
		sweepInterval: DefaultSweepInterval,
		log:           logger,
	}
	for _, opt := range opts {
		opt(reg)
	}
	return reg
}

func (reg *Registry) CurrentSession(ctx context.Context) Session {
	return SlotFrom(ctx).Get()
}

func (reg *Registry) StartSession(context.Context) (Session, error) {
	reg.Lock()
	defer reg.Unlock()

	if reg.closed {
		return nil, ErrClosed
	}

	sess := &memSession{id: xid.New().String(), registry: reg}
	sess.SetActive()
	reg.data[sess.id] = sess
	return sess, nil
}

// SetCurrentSession binds s to the request of ctx. Without a slot it is a no-op.
func (reg *Registry) SetCurrentSession(ctx context.Context, s Session) {
	slot := SlotFrom(ctx)
	if slot == nil {
		reg.log.Warn().Msg("no session slot in request context")
		return
	}
	slot.Set(s)
}

func (reg *Registry) GetSession(id string) Session {
	reg.RLock()
	defer reg.RUnlock()

	sess, ok := reg.data[id]
	if !ok {
		return nil
	}
	return sess
}

func (reg *Registry) GetSessionsCount() int {
	reg.RLock()
	defer reg.RUnlock()
	return len(reg.data)
}

func (reg *Registry) RMSession(id string) {
	reg.Lock()
	defer reg.Unlock()
	delete(reg.data, id)
}

// Close drops every session and refuses new ones.
func (reg *Registry) Close() {
	reg.Lock()
	defer reg.Unlock()

	reg.closed = true
	reg.data = map[string]*memSession{}
}

// Sweep drops the sessions last active before now minus the idle timeout and
// returns how many were dropped.
func (reg *Registry) Sweep(now time.Time) int {
	deadline := now.Add(-reg.idleTimeout)

	reg.Lock()
	defer reg.Unlock()

	var dropped int
	for id, sess := range reg.data {
		if sess.LastActive().Before(deadline) {
			delete(reg.data, id)
			dropped++
		}
	}
	return dropped
}

func (reg *Registry) Init() error { return nil }

// Run sweeps idle sessions until the worker context is done.
func (reg *Registry) Run(wCtx uwe.Context) error {
	ticker := time.NewTicker(reg.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			if n := reg.Sweep(now); n > 0 {
				reg.log.Debug().Int("dropped", n).Int("left", reg.GetSessionsCount()).
					Msg("idle sessions dropped")
			}
		case <-wCtx.Done():
			reg.log.Info().Msg("Receive exit code, stop sweeping sessions")
			return nil
		}
	}
}

// Middleware installs the session slot and binds the session named by the
// session cookie. Requests without a known session get an anonymous session
// that is not registered and ends with the request.
func (reg *Registry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, slot := WithSlot(r.Context())

		var sess Session
		if cookie, err := r.Cookie(CookieName); err == nil {
			sess = reg.GetSession(cookie.Value)
		}
		if sess == nil {
			sess = reg.anonymous()
		}

		sess.SetActive()
		slot.Set(sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (reg *Registry) anonymous() *memSession {
	return &memSession{id: xid.New().String(), registry: reg}
}

type memSession struct {
	sync.RWMutex
	id         string
	eid        string
	uid        string
	lastActive time.Time

	registry *Registry
}

func (s *memSession) ID() string { return s.id }

func (s *memSession) UserEID() string {
	s.RLock()
	defer s.RUnlock()
	return s.eid
}

func (s *memSession) UserID() string {
	s.RLock()
	defer s.RUnlock()
	return s.uid
}

func (s *memSession) SetUser(eid, id string) {
	s.Lock()
	defer s.Unlock()
	s.eid, s.uid = eid, id
}

func (s *memSession) SetActive() {
	s.Lock()
	defer s.Unlock()
	s.lastActive = time.Now()
}

func (s *memSession) LastActive() time.Time {
	s.RLock()
	defer s.RUnlock()
	return s.lastActive
}

func (s *memSession) Invalidate() {
	s.SetUser("", "")
	s.registry.RMSession(s.id)
}
