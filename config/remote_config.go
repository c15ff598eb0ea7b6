package config

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	DefaultCookieName    = "SAKAI-TRACKING"
	DefaultAnonymous     = "anonymous"
	DefaultRemoteTimeout = 10
)

// RemoteCfg configures the lookup of the identity bound to the tracking
// cookie on the remote system.
type RemoteCfg struct {
	Disable bool `json:"disable" yaml:"disable"`
	// ValidateURL is the endpoint prefix; the cookie value is appended as is.
	ValidateURL string `json:"validate_url" yaml:"validate_url"`
	// Principal is the identity asserted in our own x-sakai-token.
	Principal string `json:"principal" yaml:"principal"`
	// Hostname selects the shared secret used to sign our token.
	Hostname   string `json:"hostname" yaml:"hostname"`
	CookieName string `json:"cookie_name" yaml:"cookie_name"`
	Anonymous  string `json:"anonymous" yaml:"anonymous"`
	// Timeout of the lookup round trip in seconds.
	Timeout int64 `json:"timeout" yaml:"timeout"`
}

func (cfg RemoteCfg) Validate() error {
	if cfg.Disable {
		return nil
	}

	return validation.ValidateStruct(&cfg,
		validation.Field(&cfg.ValidateURL, validation.Required, is.URL),
		validation.Field(&cfg.Principal, validation.Required),
		validation.Field(&cfg.Hostname, validation.Required),
		validation.Field(&cfg.CookieName, validation.Required),
		validation.Field(&cfg.Timeout, validation.Min(int64(1))),
	)
}

func (cfg *RemoteCfg) Init() {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if cfg.Anonymous == "" {
		cfg.Anonymous = DefaultAnonymous
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultRemoteTimeout
	}
}

func (cfg RemoteCfg) TimeoutDuration() time.Duration {
	return time.Duration(cfg.Timeout) * time.Second
}
