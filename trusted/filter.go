// Package trusted upgrades the session of requests that carry a valid
// x-sakai-token from an allowed host, for the duration of the request only.
package trusted

import (
	"context"
	"net"
	"net/http"
	"time"

	"hybrid/audit"
	"hybrid/metrics"
	"hybrid/session"
	"hybrid/token"
	"hybrid/users"

	"github.com/go-chi/chi/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	ResultDisabled      = "disabled"
	ResultUntrustedHost = "untrusted_host"
	ResultNoToken       = "no_token"
	ResultInvalidToken  = "invalid_token"
	ResultSameIdentity  = "same_identity"
	ResultUnknownUser   = "unknown_user"
	ResultSessionError  = "session_error"
	ResultSwitched      = "switched"
)

const resolveTimeout = 5 * time.Second

var ErrMisconfigured = errors.New("trusted: filter misconfigured")

type Config struct {
	Enabled      bool
	SharedSecret string
	SafeHosts    []string
	// TrustedProxies are addresses or CIDR ranges allowed to name the caller
	// through X-Real-IP or X-Forwarded-For.
	TrustedProxies []string
}

// TokenValidator checks a token against a secret and returns its identity.
type TokenValidator interface {
	Validate(token, secret string) (string, error)
}

type Filter struct {
	enabled   bool
	secret    string
	safeHosts AllowList
	proxies   ProxyList
	resolver  Resolver

	tokens    TokenValidator
	sessions  session.Manager
	directory users.Directory

	log     zerolog.Logger
	metrics *metrics.Counter
	audit   audit.Sink
}

type Option func(*Filter)

func WithLogger(logger zerolog.Logger) Option {
	return func(f *Filter) { f.log = logger }
}

func WithMetrics(c *metrics.Counter) Option {
	return func(f *Filter) { f.metrics = c }
}

// WithResolver replaces the DNS lookup of name entries of the allow list.
func WithResolver(lookup Resolver) Option {
	return func(f *Filter) { f.resolver = lookup }
}

func WithAuditSink(sink audit.Sink) Option {
	return func(f *Filter) {
		if sink != nil {
			f.audit = sink
		}
	}
}

func New(cfg Config, tokens TokenValidator, sessions session.Manager, directory users.Directory,
	opts ...Option) (*Filter, error) {
	if tokens == nil {
		return nil, errors.Wrap(ErrMisconfigured, "token validator is required")
	}
	if sessions == nil {
		return nil, errors.Wrap(ErrMisconfigured, "session manager is required")
	}
	if directory == nil {
		return nil, errors.Wrap(ErrMisconfigured, "user directory is required")
	}
	if cfg.Enabled && cfg.SharedSecret == "" {
		return nil, errors.Wrap(ErrMisconfigured, "shared secret is required")
	}

	hosts := NewAllowList(cfg.SafeHosts...)
	if hosts.Len() == 0 {
		hosts = NewAllowList(DefaultSafeHost)
	}
	proxies, err := NewProxyList(cfg.TrustedProxies...)
	if err != nil {
		return nil, errors.Wrap(ErrMisconfigured, err.Error())
	}

	f := &Filter{
		enabled:   cfg.Enabled,
		secret:    cfg.SharedSecret,
		safeHosts: hosts,
		proxies:   proxies,
		resolver:  net.DefaultResolver.LookupHost,
		tokens:    tokens,
		sessions:  sessions,
		directory: directory,
		log:       zerolog.Nop(),
		audit:     audit.Discard{},
	}
	for _, opt := range opts {
		opt(f)
	}

	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()
	f.safeHosts, err = f.safeHosts.Resolve(ctx, f.resolver)
	if err != nil {
		f.log.Warn().Err(err).Msg("safe hosts will match by name only")
	}
	return f, nil
}

// callerHost is the transport peer, or the client it forwards for when the
// peer is a trusted proxy.
func (f *Filter) callerHost(r *http.Request) string {
	host := CallerHost(r)
	if !f.proxies.Contains(host) {
		return host
	}
	if fwd := ForwardedHost(r); fwd != "" {
		return fwd
	}
	return host
}

func (f *Filter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !f.enabled {
			f.metrics.Inc(ResultDisabled)
			next.ServeHTTP(w, r)
			return
		}

		host := f.callerHost(r)
		logger := f.log.With().Str("host", host).Logger()

		if !f.safeHosts.Allows(host) {
			logger.Warn().Msg("ignoring trusted token request from untrusted host")
			f.metrics.Inc(ResultUntrustedHost)
			next.ServeHTTP(w, r)
			return
		}

		raw := r.Header.Get(token.Header)
		if raw == "" {
			f.metrics.Inc(ResultNoToken)
			next.ServeHTTP(w, r)
			return
		}

		identity, err := f.tokens.Validate(raw, f.secret)
		if err != nil || identity == "" {
			logger.Warn().Err(err).Msg("trusted token rejected")
			f.metrics.Inc(ResultInvalidToken)
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		original := f.sessions.CurrentSession(ctx)
		var previous string
		if original != nil {
			previous = original.UserEID()
		}
		if identity == previous {
			f.metrics.Inc(ResultSameIdentity)
			next.ServeHTTP(w, r)
			return
		}

		user, err := f.directory.UserByEID(ctx, identity)
		if err != nil || user == nil {
			logger.Warn().Err(err).Str("identity", identity).Msg("trusted user not found")
			f.metrics.Inc(ResultUnknownUser)
			next.ServeHTTP(w, r)
			return
		}

		requestSession, err := f.sessions.StartSession(ctx)
		if err != nil {
			logger.Error().Err(err).Str("identity", identity).Msg("unable to start trusted session")
			f.metrics.Inc(ResultSessionError)
			next.ServeHTTP(w, r)
			return
		}

		defer func() {
			requestSession.Invalidate()
			f.sessions.SetCurrentSession(ctx, original)
		}()

		requestSession.SetUser(user.EID, user.ID)
		requestSession.SetActive()
		f.sessions.SetCurrentSession(ctx, requestSession)

		f.metrics.Inc(ResultSwitched)
		f.audit.Publish(audit.Event{
			Kind:             audit.KindTrustedLogin,
			Identity:         user.EID,
			PreviousIdentity: previous,
			Host:             host,
			RequestID:        middleware.GetReqID(ctx),
			At:               time.Now().UTC(),
		})
		logger.Debug().Str("identity", user.EID).Msg("trusted session started")

		next.ServeHTTP(w, WithRemoteUser(r, user.EID))
	})
}
