package config

import (
	"net"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/lancer-kit/noble"
	"github.com/pkg/errors"
)

const DefaultSafeHost = "localhost"

// TrustCfg configures the inbound x-sakai-token filter.
type TrustCfg struct {
	Disable      bool         `json:"disable" yaml:"disable"`
	SharedSecret noble.Secret `json:"shared_secret" yaml:"shared_secret"`
	// SafeHosts lists the caller hosts allowed to present trusted tokens.
	// A single entry may also hold a ';' separated list.
	SafeHosts []string `json:"safe_hosts" yaml:"safe_hosts"`
	// TrustedProxies are the addresses or CIDR ranges of reverse proxies
	// whose X-Real-IP and X-Forwarded-For headers name the caller.
	// Forwarding headers from any other peer are ignored.
	TrustedProxies []string `json:"trusted_proxies" yaml:"trusted_proxies"`
}

func (cfg TrustCfg) Validate() error {
	if cfg.Disable {
		return nil
	}

	return validation.ValidateStruct(&cfg,
		validation.Field(&cfg.SharedSecret, validation.Required, noble.RequiredSecret),
		validation.Field(&cfg.SafeHosts, validation.Required),
		validation.Field(&cfg.TrustedProxies, validation.By(validateProxies)),
	)
}

func (cfg *TrustCfg) Init() {
	var hosts []string
	for _, entry := range cfg.SafeHosts {
		for _, host := range strings.Split(entry, ";") {
			host = strings.TrimSpace(host)
			if host != "" {
				hosts = append(hosts, host)
			}
		}
	}

	if len(hosts) == 0 {
		hosts = []string{DefaultSafeHost}
	}
	cfg.SafeHosts = hosts
}

func validateProxies(value interface{}) error {
	proxies, _ := value.([]string)
	for _, entry := range proxies {
		if net.ParseIP(entry) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(entry); err != nil {
			return errors.Errorf("%q is neither an address nor a CIDR range", entry)
		}
	}
	return nil
}
