// Package remoteauth asks the remote system which user owns the tracking
// cookie of a request.
package remoteauth

import (
	"io"
	"io/ioutil"
	"net/http"
	"sync"
	"time"

	"hybrid/metrics"
	"hybrid/token"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

const (
	DefaultCookieName = "SAKAI-TRACKING"
	DefaultAnonymous  = "anonymous"
	DefaultTimeout    = 10 * time.Second

	maxBodySize = 1 << 20
)

const (
	ResultNoCookie  = "no_cookie"
	ResultCached    = "cached"
	ResultFound     = "found"
	ResultAnonymous = "anonymous"
	ResultNotFound  = "not_found"
	ResultError     = "error"
)

var (
	ErrInvalidArgument = errors.New("remoteauth: invalid argument")
	ErrRemoteLookup    = errors.New("remoteauth: remote lookup failed")
)

type Config struct {
	ValidateURL string
	Principal   string
	Hostname    string
	CookieName  string
	Anonymous   string
	Timeout     time.Duration
}

// AuthInfo is the remote view of the cookie owner. An empty Principal means
// the cookie belongs to nobody or to the anonymous user.
type AuthInfo struct {
	Principal    string `json:"principal"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	EmailAddress string `json:"email"`
}

func (a *AuthInfo) Anonymous() bool {
	return a == nil || a.Principal == ""
}

// TokenMinter creates the outbound x-sakai-token.
type TokenMinter interface {
	Create(hostname, identity string) (string, error)
}

// ClientProvider returns the client for one lookup. Idle connections of the
// client are closed once the lookup is over.
type ClientProvider func(timeout time.Duration) *http.Client

func freshClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &http.Transport{Proxy: http.ProxyFromEnvironment},
	}
}

type Validator struct {
	cfg     Config
	tokens  TokenMinter
	clients ClientProvider

	log     zerolog.Logger
	metrics *metrics.Counter

	// used when the request carries no RequestCache
	noCache sync.Once
}

type Option func(*Validator)

func WithLogger(logger zerolog.Logger) Option {
	return func(v *Validator) { v.log = logger }
}

func WithMetrics(c *metrics.Counter) Option {
	return func(v *Validator) { v.metrics = c }
}

func WithClientProvider(p ClientProvider) Option {
	return func(v *Validator) {
		if p != nil {
			v.clients = p
		}
	}
}

func NewValidator(cfg Config, tokens TokenMinter, opts ...Option) (*Validator, error) {
	switch {
	case tokens == nil:
		return nil, errors.Wrap(ErrInvalidArgument, "token minter is required")
	case cfg.ValidateURL == "":
		return nil, errors.Wrap(ErrInvalidArgument, "validate url is empty")
	case cfg.Principal == "":
		return nil, errors.Wrap(ErrInvalidArgument, "principal is empty")
	case cfg.Hostname == "":
		return nil, errors.Wrap(ErrInvalidArgument, "hostname is empty")
	}

	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if cfg.Anonymous == "" {
		cfg.Anonymous = DefaultAnonymous
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	v := &Validator{
		cfg:     cfg,
		tokens:  tokens,
		clients: freshClient,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Resolve returns the owner of the tracking cookie of r, or nil when there is
// no cookie or the remote system does not know it. Within one request the
// lookup runs at most once and every call returns the same *AuthInfo.
func (v *Validator) Resolve(r *http.Request) (*AuthInfo, error) {
	if r == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "request is nil")
	}

	c := CacheFrom(r.Context())
	if c == nil {
		v.noCache.Do(func() {
			v.log.Warn().Msg("request has no remote identity cache, lookups are not memoized")
		})
		return v.lookup(r)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resolved {
		v.metrics.Inc(ResultCached)
		return c.info, nil
	}

	info, err := v.lookup(r)
	if err != nil {
		return nil, err
	}
	c.info, c.resolved = info, true
	return info, nil
}

func (v *Validator) lookup(r *http.Request) (*AuthInfo, error) {
	cookie, err := r.Cookie(v.cfg.CookieName)
	if err != nil {
		v.metrics.Inc(ResultNoCookie)
		return nil, nil
	}

	info, err := v.fetch(r, cookie.Value)
	if err != nil {
		v.metrics.Inc(ResultError)
		v.log.Error().Err(err).Str("url", v.cfg.ValidateURL).Msg("remote identity lookup failed")
		return nil, err
	}

	switch {
	case info == nil:
		v.metrics.Inc(ResultNotFound)
	case info.Anonymous():
		v.metrics.Inc(ResultAnonymous)
	default:
		v.metrics.Inc(ResultFound)
	}
	return info, nil
}

func (v *Validator) fetch(r *http.Request, secret string) (*AuthInfo, error) {
	xToken, err := v.tokens.Create(v.cfg.Hostname, v.cfg.Principal)
	if err != nil {
		return nil, errors.Wrap(err, "unable to mint token")
	}

	target := v.cfg.ValidateURL + secret
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.Wrap(ErrRemoteLookup, err.Error())
	}
	req.Header.Set(token.Header, xToken)

	client := v.clients(v.cfg.Timeout)
	defer client.CloseIdleConnections()

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(ErrRemoteLookup, err.Error())
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(ErrRemoteLookup, err.Error())
	}

	if resp.StatusCode == http.StatusNotFound {
		v.log.Debug().Str("url", target).Msg("remote system does not know the cookie")
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Wrapf(ErrRemoteLookup, "unexpected status %d", resp.StatusCode)
	}

	return v.parse(body)
}

func (v *Validator) parse(body []byte) (*AuthInfo, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.Wrap(ErrRemoteLookup, "malformed json")
	}

	user := gjson.GetBytes(body, "user")
	if !user.IsObject() {
		return nil, errors.Wrap(ErrRemoteLookup, "no user object in response")
	}

	info := &AuthInfo{
		FirstName:    user.Get("properties.firstName").String(),
		LastName:     user.Get("properties.lastName").String(),
		EmailAddress: user.Get("properties.email").String(),
	}
	if p := user.Get("principal").String(); p != v.cfg.Anonymous {
		info.Principal = p
	}
	return info, nil
}
