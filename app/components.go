package app

import (
	"hybrid/audit"
	"hybrid/cache"
	"hybrid/config"
	"hybrid/metrics"
	"hybrid/remoteauth"
	"hybrid/session"
	"hybrid/token"
	"hybrid/trusted"
	"hybrid/users"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Components are the long lived parts of the service built from the config.
type Components struct {
	Metrics   *metrics.Metrics
	Storage   cache.Storage
	Codec     *token.Codec
	Sessions  *session.Registry
	Directory users.Directory
	Audit     audit.Sink
	Publisher *audit.RabbitPublisher
	Filter    *trusted.Filter
	// Validator is nil when the remote lookup is disabled.
	Validator *remoteauth.Validator
}

func NewComponents(logger zerolog.Logger, cfg config.Cfg, reg *prometheus.Registry) (*Components, error) {
	var err error
	c := new(Components)

	c.Metrics, err = metrics.NewMetrics(reg)
	if err != nil {
		return nil, err
	}

	c.Storage, err = cache.NewStorage(cfg.Replay)
	if err != nil {
		return nil, errors.Wrap(err, "unable to init replay storage")
	}

	codecOpts := []token.Option{}
	if cfg.Replay.Enable {
		codecOpts = append(codecOpts,
			token.WithMaxAge(cfg.Replay.MaxAgeDuration()),
			token.WithReplayGuard(cache.NewReplayGuard(c.Storage)),
		)
	}
	c.Codec = token.NewCodec(token.Secrets(cfg.SecretMap()), codecOpts...)

	c.Sessions = session.NewRegistry(logger.With().Str("worker", WorkerSessionSweeper).Logger(),
		session.WithIdleTimeout(cfg.Sessions.IdleDuration(), cfg.Sessions.SweepDuration()))
	c.Directory = users.NewStatic(cfg.Users)

	switch cfg.Audit.Sink {
	case config.AuditSinkRabbit:
		c.Publisher = audit.NewRabbitPublisher(
			logger.With().Str("worker", WorkerAuditPublisher).Logger(), cfg.Audit)
		c.Audit = c.Publisher
	default:
		c.Audit = audit.NewLogSink(logger.With().Str("component", "audit").Logger())
	}

	c.Filter, err = trusted.New(
		trusted.Config{
			Enabled:        !cfg.Trust.Disable,
			SharedSecret:   cfg.Trust.SharedSecret.Get(),
			SafeHosts:      cfg.Trust.SafeHosts,
			TrustedProxies: cfg.Trust.TrustedProxies,
		},
		c.Codec, c.Sessions, c.Directory,
		trusted.WithLogger(logger.With().Str("component", "trusted_filter").Logger()),
		trusted.WithMetrics(c.Metrics.Filter),
		trusted.WithAuditSink(c.Audit),
	)
	if err != nil {
		return nil, errors.Wrap(err, "unable to init trusted filter")
	}

	if !cfg.Remote.Disable {
		c.Validator, err = remoteauth.NewValidator(
			remoteauth.Config{
				ValidateURL: cfg.Remote.ValidateURL,
				Principal:   cfg.Remote.Principal,
				Hostname:    cfg.Remote.Hostname,
				CookieName:  cfg.Remote.CookieName,
				Anonymous:   cfg.Remote.Anonymous,
				Timeout:     cfg.Remote.TimeoutDuration(),
			},
			c.Codec,
			remoteauth.WithLogger(logger.With().Str("component", "remote_identity").Logger()),
			remoteauth.WithMetrics(c.Metrics.Remote),
		)
		if err != nil {
			return nil, errors.Wrap(err, "unable to init remote identity validator")
		}
	}

	return c, nil
}

func (c *Components) Close() error {
	c.Sessions.Close()
	return c.Storage.CloseConnection()
}
