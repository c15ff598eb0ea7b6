// Package token creates and validates x-sakai-token values of the form
// `signature;identity;nonce`, signed with a secret shared between hosts.
package token

import (
	"net/http"
	"strings"
	"time"

	"hybrid/signature"

	"github.com/pkg/errors"
	"github.com/rs/xid"
)

const (
	Separator = ";"
	Header    = "x-sakai-token"
)

var (
	ErrInvalidArgument   = errors.New("token: invalid argument")
	ErrNoSharedSecret    = errors.Wrap(ErrInvalidArgument, "token: no shared secret configured")
	ErrMalformedToken    = errors.Wrap(ErrInvalidArgument, "token: malformed token")
	ErrSignatureMismatch = errors.New("token: signature mismatch")
	ErrTokenExpired      = errors.New("token: nonce outside of the accepted window")
	ErrTokenReplayed     = errors.New("token: already used")
)

// Registry maps a hostname to the secret shared with it.
type Registry interface {
	SharedSecret(hostname string) (string, bool)
}

// Secrets is a static Registry. It must not be modified once handed to a Codec.
type Secrets map[string]string

func (s Secrets) SharedSecret(hostname string) (string, bool) {
	secret, ok := s[hostname]
	return secret, ok
}

// ReplayGuard remembers signatures for ttl and reports the ones seen before.
type ReplayGuard interface {
	Seen(signature string, ttl time.Duration) (bool, error)
}

type Codec struct {
	registry Registry
	nonce    func() string
	now      func() time.Time
	maxAge   time.Duration
	guard    ReplayGuard
}

type Option func(*Codec)

// WithNonceSource replaces the xid based nonce generator.
func WithNonceSource(fn func() string) Option {
	return func(c *Codec) { c.nonce = fn }
}

func WithClock(fn func() time.Time) Option {
	return func(c *Codec) { c.now = fn }
}

// WithMaxAge rejects tokens whose nonce is not an xid issued within d.
// Peers with random nonces are refused while it is set.
func WithMaxAge(d time.Duration) Option {
	return func(c *Codec) { c.maxAge = d }
}

// WithReplayGuard refuses a signature seen before within the max age.
// It has no effect without WithMaxAge.
func WithReplayGuard(g ReplayGuard) Option {
	return func(c *Codec) { c.guard = g }
}

func NewCodec(registry Registry, opts ...Option) *Codec {
	if registry == nil {
		registry = Secrets{}
	}

	c := &Codec{
		registry: registry,
		nonce:    func() string { return xid.New().String() },
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ResolveSecret returns the secret shared with hostname, or "" when none is
// configured.
func (c *Codec) ResolveSecret(hostname string) (string, error) {
	if hostname == "" {
		return "", errors.Wrap(ErrInvalidArgument, "hostname is empty")
	}

	secret, ok := c.registry.SharedSecret(hostname)
	if !ok {
		return "", nil
	}
	return secret, nil
}

// Create signs identity with the secret shared with hostname.
func (c *Codec) Create(hostname, identity string) (string, error) {
	secret, err := c.ResolveSecret(hostname)
	if err != nil {
		return "", err
	}
	if secret == "" {
		return "", errors.Wrapf(ErrNoSharedSecret, "hostname %q", hostname)
	}
	return c.Sign(secret, identity)
}

// Sign builds a token for identity with a fresh nonce.
func (c *Codec) Sign(secret, identity string) (string, error) {
	if secret == "" {
		return "", errors.Wrap(ErrInvalidArgument, "secret is empty")
	}
	if identity == "" {
		return "", errors.Wrap(ErrInvalidArgument, "identity is empty")
	}
	if strings.Contains(identity, Separator) {
		return "", errors.Wrapf(ErrInvalidArgument, "identity contains %q", Separator)
	}

	message := identity + Separator + c.nonce()
	sig, err := signature.Calculate(message, secret)
	if err != nil {
		return "", errors.Wrap(err, "unable to sign token")
	}
	return sig + Separator + message, nil
}

// Validate checks token against secret and returns the asserted identity.
// An empty token yields "" and no error. On failure the identity is always "".
func (c *Codec) Validate(token, secret string) (string, error) {
	if token == "" {
		return "", nil
	}
	if secret == "" {
		return "", errors.Wrap(ErrInvalidArgument, "secret is empty")
	}

	parts := strings.Split(token, Separator)
	if len(parts) != 3 {
		return "", errors.Wrapf(ErrMalformedToken, "expected 3 fields, got %d", len(parts))
	}
	sig, identity, nonce := parts[0], parts[1], parts[2]
	if sig == "" || identity == "" || nonce == "" {
		return "", errors.Wrap(ErrMalformedToken, "empty field")
	}

	expected, err := signature.Calculate(identity+Separator+nonce, secret)
	if err != nil {
		return "", errors.Wrap(err, "unable to sign token")
	}
	if !signature.Equal(expected, sig) {
		return "", ErrSignatureMismatch
	}

	if err := c.checkFreshness(sig, nonce); err != nil {
		return "", err
	}
	return identity, nil
}

// ValidateRequest validates the token carried in the Header of r.
func (c *Codec) ValidateRequest(r *http.Request, secret string) (string, error) {
	if r == nil {
		return "", errors.Wrap(ErrInvalidArgument, "request is nil")
	}
	return c.Validate(r.Header.Get(Header), secret)
}

func (c *Codec) checkFreshness(sig, nonce string) error {
	if c.maxAge <= 0 {
		return nil
	}

	id, err := xid.FromString(nonce)
	if err != nil {
		return errors.Wrap(ErrTokenExpired, "nonce carries no timestamp")
	}

	age := c.now().Sub(id.Time())
	if age > c.maxAge || age < -c.maxAge {
		return errors.Wrapf(ErrTokenExpired, "nonce age %s", age)
	}

	if c.guard == nil {
		return nil
	}
	seen, err := c.guard.Seen(sig, c.maxAge)
	if err != nil {
		return errors.Wrap(err, "unable to check replay")
	}
	if seen {
		return ErrTokenReplayed
	}
	return nil
}
