package main

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type LoadCfg struct {
	// Target is the whoami endpoint of the service under test.
	Target     string   `yaml:"target"`
	Secret     string   `yaml:"secret"`
	Identities []string `yaml:"identities"`
	// UnknownPercentage of the requests assert a random, unknown identity.
	UnknownPercentage int `yaml:"unknown_percentage"`
	// ForgedPercentage of the requests carry a token signed with a wrong secret.
	ForgedPercentage int  `yaml:"forged_percentage"`
	TickPeriod       uint `yaml:"tick_period"`
	Workers          int  `yaml:"workers"`
}

func (cfg LoadCfg) Validate() error {
	return validation.ValidateStruct(&cfg,
		validation.Field(&cfg.Target, validation.Required, is.URL),
		validation.Field(&cfg.Secret, validation.Required),
		validation.Field(&cfg.Identities, validation.Required),
		validation.Field(&cfg.UnknownPercentage, validation.Min(0), validation.Max(100)),
		validation.Field(&cfg.ForgedPercentage, validation.Min(0), validation.Max(100)),
		validation.Field(&cfg.TickPeriod, validation.Required),
		validation.Field(&cfg.Workers, validation.Required, validation.Min(1)),
	)
}
