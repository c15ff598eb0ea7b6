// Package audit reports trusted identity switches.
package audit

import (
	"time"

	"github.com/rs/zerolog"
)

const (
	KindTrustedLogin = "trusted_login"
)

type Event struct {
	Kind             string    `json:"kind"`
	Identity         string    `json:"identity"`
	PreviousIdentity string    `json:"previous_identity,omitempty"`
	Host             string    `json:"host"`
	RequestID        string    `json:"request_id,omitempty"`
	At               time.Time `json:"at"`
}

// Sink receives events. Publish must not block the request path.
type Sink interface {
	Publish(Event)
}

type Discard struct{}

func (Discard) Publish(Event) {}

type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{log: logger}
}

func (s *LogSink) Publish(e Event) {
	s.log.Info().
		Str("kind", e.Kind).
		Str("identity", e.Identity).
		Str("previous_identity", e.PreviousIdentity).
		Str("host", e.Host).
		Str("request_id", e.RequestID).
		Time("at", e.At).
		Msg("audit event")
}
