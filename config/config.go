package config

import (
	"io/ioutil"

	"hybrid/log"
	"hybrid/metrics"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/lancer-kit/noble"
	"github.com/lancer-kit/uwe/v2/presets/api"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	ServiceName = "hybrid"
)

// AppInfo is reported by the info endpoint.
type AppInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Build   string `json:"build"`
}

var App = AppInfo{Name: ServiceName} //nolint:gochecknoglobals

// Cfg main structure of the app configuration.
type Cfg struct {
	Log log.Config `json:"log" yaml:"log"`
	API api.Config `json:"api" yaml:"api"`

	Trust    TrustCfg    `json:"trust" yaml:"trust"`
	Remote   RemoteCfg   `json:"remote" yaml:"remote"`
	Replay   ReplayCfg   `json:"replay" yaml:"replay"`
	Audit    AuditCfg    `json:"audit" yaml:"audit"`
	Sessions SessionsCfg `json:"sessions" yaml:"sessions"`

	// SharedSecrets maps a peer hostname to the secret shared with it.
	SharedSecrets map[string]noble.Secret `json:"shared_secrets" yaml:"shared_secrets"`
	Users         []User                  `json:"users" yaml:"users"`

	Monitoring metrics.MonitoringConf `json:"monitoring" yaml:"monitoring"`
}

func (cfg Cfg) Validate() error {
	for host, secret := range cfg.SharedSecrets {
		if err := noble.RequiredSecret.Validate(secret); err != nil {
			return errors.Wrap(err, "shared_secrets."+host)
		}
	}

	if !cfg.Remote.Disable {
		if _, ok := cfg.SharedSecrets[cfg.Remote.Hostname]; !ok {
			return errors.Errorf("remote: no shared secret configured for hostname %q", cfg.Remote.Hostname)
		}
	}

	for i, user := range cfg.Users {
		if err := user.Validate(); err != nil {
			return errors.Wrapf(err, "users[%d]", i)
		}
	}

	return validation.ValidateStruct(&cfg,
		validation.Field(&cfg.API, validation.Required),
		validation.Field(&cfg.Log, validation.Required),
		validation.Field(&cfg.Trust),
		validation.Field(&cfg.Remote),
		validation.Field(&cfg.Replay),
		validation.Field(&cfg.Audit),
		validation.Field(&cfg.Sessions),
	)
}

// SecretMap returns the shared secrets with their values resolved.
func (cfg Cfg) SecretMap() map[string]string {
	res := make(map[string]string, len(cfg.SharedSecrets))
	for host, secret := range cfg.SharedSecrets {
		res[host] = secret.Get()
	}
	return res
}

// ReadConfig loads, validates and normalizes the yaml configuration at path.
func ReadConfig(path string) (Cfg, error) {
	rawConfig, err := ioutil.ReadFile(path)
	if err != nil {
		return Cfg{}, errors.Wrapf(err, "unable to read config file %s", path)
	}

	return ParseConfig(rawConfig)
}

func ParseConfig(rawConfig []byte) (Cfg, error) {
	config := new(Cfg)
	if err := yaml.Unmarshal(rawConfig, config); err != nil {
		return Cfg{}, errors.Wrap(err, "unable to unmarshal config file")
	}

	config.Trust.Init()
	config.Remote.Init()
	config.Replay.Init()
	config.Audit.Init()
	config.Sessions.Init()

	if err := config.Validate(); err != nil {
		return Cfg{}, errors.Wrap(err, "invalid configuration")
	}

	return *config, nil
}

// User is a directory entry that trusted tokens may assert.
type User struct {
	EID   string `json:"eid" yaml:"eid"`
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
}

func (cfg User) Validate() error {
	return validation.ValidateStruct(&cfg,
		validation.Field(&cfg.EID, validation.Required),
		validation.Field(&cfg.ID, validation.Required),
	)
}
