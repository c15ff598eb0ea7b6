package config

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	DefaultSessionIdle  = 1800
	DefaultSessionSweep = 60
)

// SessionsCfg bounds the life of sessions kept by the in-process registry.
type SessionsCfg struct {
	// IdleTimeout in seconds after which an unused session is dropped.
	IdleTimeout int64 `json:"idle_timeout" yaml:"idle_timeout"`
	// SweepInterval in seconds between two looks for idle sessions.
	SweepInterval int64 `json:"sweep_interval" yaml:"sweep_interval"`
}

func (cfg SessionsCfg) Validate() error {
	return validation.ValidateStruct(&cfg,
		validation.Field(&cfg.IdleTimeout, validation.Min(int64(1))),
		validation.Field(&cfg.SweepInterval, validation.Min(int64(1))),
	)
}

func (cfg *SessionsCfg) Init() {
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = DefaultSessionIdle
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = DefaultSessionSweep
	}
}

func (cfg SessionsCfg) IdleDuration() time.Duration {
	return time.Duration(cfg.IdleTimeout) * time.Second
}

func (cfg SessionsCfg) SweepDuration() time.Duration {
	return time.Duration(cfg.SweepInterval) * time.Second
}
