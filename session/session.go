// Package session holds the per-request "current session" that the trusted
// filter swaps, and a small in-process registry implementing it.
package session

//go:generate mockgen -destination mocksession/mocksession.go -package mocksession hybrid/session Session,Manager

import (
	"context"
)

// Session is the server side state bound to one client.
type Session interface {
	ID() string
	UserEID() string
	UserID() string
	SetUser(eid, id string)
	SetActive()
	Invalidate()
}

// Manager starts sessions and tracks the one bound to the current request.
type Manager interface {
	CurrentSession(ctx context.Context) Session
	StartSession(ctx context.Context) (Session, error)
	SetCurrentSession(ctx context.Context, s Session)
}

type slotKey struct{}

// Slot is the mutable holder of the current session of one request.
type Slot struct {
	current Session
}

// WithSlot returns a child context with an empty slot.
func WithSlot(ctx context.Context) (context.Context, *Slot) {
	slot := new(Slot)
	return context.WithValue(ctx, slotKey{}, slot), slot
}

// SlotFrom returns the slot of ctx or nil.
func SlotFrom(ctx context.Context) *Slot {
	slot, _ := ctx.Value(slotKey{}).(*Slot)
	return slot
}

func (s *Slot) Get() Session {
	if s == nil {
		return nil
	}
	return s.current
}

func (s *Slot) Set(sess Session) {
	if s == nil {
		return
	}
	s.current = sess
}
