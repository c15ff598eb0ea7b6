// Package users resolves the identities asserted by trusted tokens.
package users

//go:generate mockgen -destination mockusers/mockusers.go -package mockusers hybrid/users Directory

import (
	"context"

	"hybrid/config"

	"github.com/pkg/errors"
)

var ErrUserNotDefined = errors.New("users: user not defined")

type User struct {
	EID   string `json:"eid"`
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Directory looks users up by their external id.
type Directory interface {
	UserByEID(ctx context.Context, eid string) (*User, error)
}

// Static is a read-only in-memory Directory.
type Static map[string]User

func NewStatic(list []config.User) Static {
	dir := make(Static, len(list))
	for _, u := range list {
		dir[u.EID] = User{EID: u.EID, ID: u.ID, Name: u.Name, Email: u.Email}
	}
	return dir
}

func (dir Static) UserByEID(_ context.Context, eid string) (*User, error) {
	u, ok := dir[eid]
	if !ok {
		return nil, errors.Wrapf(ErrUserNotDefined, "eid %q", eid)
	}
	return &u, nil
}
