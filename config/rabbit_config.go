package config

import (
	"fmt"
	"os"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/lancer-kit/noble"
)

const (
	AuditSinkLog    = "log"
	AuditSinkRabbit = "rabbit"

	DefaultAuditBuffer = 64
)

// AuditCfg selects where the identity switch events are reported.
type AuditCfg struct {
	Sink string `json:"sink" yaml:"sink"`
	// BufferSize of the queue between request handlers and the publisher.
	BufferSize int      `json:"buffer_size" yaml:"buffer_size"`
	Rabbit     RabbitMQ `json:"rabbit" yaml:"rabbit"`
}

func (cfg AuditCfg) Validate() error {
	validators := []*validation.FieldRules{
		validation.Field(&cfg.Sink, validation.Required, validation.In(AuditSinkLog, AuditSinkRabbit)),
	}
	if cfg.Sink == AuditSinkRabbit {
		validators = append(validators,
			validation.Field(&cfg.BufferSize, validation.Min(1)),
			validation.Field(&cfg.Rabbit),
		)
	}
	return validation.ValidateStruct(&cfg, validators...)
}

func (cfg *AuditCfg) Init() {
	if cfg.Sink == "" {
		cfg.Sink = AuditSinkLog
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultAuditBuffer
	}
}

type RabbitMQ struct {
	Auth     RabbitAuth `json:"auth" yaml:"auth"`
	Exchange Exchange   `json:"exchange" yaml:"exchange"`
}

func (cfg RabbitMQ) Validate() error {
	return validation.ValidateStruct(&cfg,
		validation.Field(&cfg.Auth, validation.Required),
		validation.Field(&cfg.Exchange, validation.Required),
	)
}

type RabbitAuth struct {
	Host     string       `json:"host" yaml:"host"`
	User     noble.Secret `json:"user" yaml:"user"`
	Password noble.Secret `json:"password" yaml:"password"`
	AppID    string       `json:"app_id" yaml:"app_id"`
}

func (cfg RabbitAuth) Validate() error {
	return validation.ValidateStruct(&cfg,
		validation.Field(&cfg.Host, validation.Required),
	)
}

func (cfg RabbitAuth) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s", cfg.User.Get(), cfg.Password.Get(), cfg.Host)
}

// GetAppID identifies this node in the published messages.
func (cfg RabbitAuth) GetAppID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s:%s", hostname, cfg.AppID)
}

type Exchange struct {
	Exchange     string `json:"exchange" yaml:"exchange"`
	ExchangeType string `json:"exchange_type" yaml:"exchange_type"`
	RoutingKey   string `json:"routing_key" yaml:"routing_key"`
	// Durable exchanges will survive server restarts
	Durable bool `json:"durable" yaml:"durable"`
	// Will remain declared when there are no remaining bindings.
	AutoDelete bool `json:"auto_delete" yaml:"auto_delete"`
}

func (cfg Exchange) Validate() error {
	return validation.ValidateStruct(&cfg,
		validation.Field(&cfg.Exchange, validation.Required),
		validation.Field(&cfg.ExchangeType, validation.Required),
	)
}
