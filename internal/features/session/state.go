package session

import (
	usermodels "nft-marketplace-backend/internal/features/user/models"
)

type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent copy of the session. User is non-nil only when
// Address is set and the backend registered exactly that address.
type Snapshot struct {
	State   State
	Address string
	User    *usermodels.User
	// Err is the error that ended the last failed attempt, if any.
	Err error
	// Version increases with every committed change.
	Version uint64
}

func (s Snapshot) Connected() bool {
	return s.State == Connected && s.User != nil
}
