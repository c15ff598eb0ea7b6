package audit

import (
	"encoding/json"

	"hybrid/config"

	"github.com/lancer-kit/uwe/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

const contentTypeJSON = "application/json"

// RabbitPublisher is a uwe worker that forwards events to a RabbitMQ exchange.
// Events published while the buffer is full are dropped.
type RabbitPublisher struct {
	config config.RabbitMQ
	logger zerolog.Logger
	bus    chan Event

	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewRabbitPublisher(logger zerolog.Logger, cfg config.AuditCfg) *RabbitPublisher {
	return &RabbitPublisher{
		config: cfg.Rabbit,
		logger: logger,
		bus:    make(chan Event, cfg.BufferSize),
	}
}

func (worker *RabbitPublisher) Publish(e Event) {
	select {
	case worker.bus <- e:
	default:
		worker.logger.Warn().Str("kind", e.Kind).Str("identity", e.Identity).
			Msg("audit buffer is full, event dropped")
	}
}

func (worker *RabbitPublisher) Init() error {
	var err error
	worker.conn, err = amqp.Dial(worker.config.Auth.URL())
	if err != nil {
		return errors.Wrap(err, "failed to connect to RabbitMQ")
	}

	worker.channel, err = worker.conn.Channel()
	if err != nil {
		return errors.Wrap(err, "failed to open a channel")
	}

	return worker.ensureExchange(worker.config.Exchange)
}

func (worker *RabbitPublisher) ensureExchange(ex config.Exchange) error {
	err := worker.channel.ExchangeDeclare(
		ex.Exchange, ex.ExchangeType,
		ex.Durable, ex.AutoDelete, false, false, nil,
	)
	if err != nil {
		return errors.Wrap(err, "failed to declare exchange - "+ex.Exchange)
	}
	return nil
}

func (worker *RabbitPublisher) Run(wCtx uwe.Context) error {
	for {
		select {
		case e := <-worker.bus:
			if err := worker.send(e); err != nil {
				worker.logger.Error().Err(err).Str("kind", e.Kind).Msg("failed to publish audit event")
			}

		case <-wCtx.Done():
			worker.logger.Info().Msg("Receive exit code, stop publisher")
			if err := worker.channel.Close(); err != nil {
				worker.logger.Warn().Err(err).Msg("fail when try to close channel")
			}
			if err := worker.conn.Close(); err != nil {
				worker.logger.Warn().Err(err).Msg("fail when try to close connection")
			}
			return nil
		}
	}
}

func (worker *RabbitPublisher) send(e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "failed to marshal event")
	}

	ex := worker.config.Exchange
	return worker.channel.Publish(ex.Exchange, ex.RoutingKey, false, false, amqp.Publishing{
		ContentType: contentTypeJSON,
		AppId:       worker.config.Auth.GetAppID(),
		Type:        e.Kind,
		Timestamp:   e.At,
		Body:        body,
	})
}
