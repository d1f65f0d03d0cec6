package p2p

import (
	"errors"
	"fmt"
)

var (
	// ErrPeerUnreachable means the request never got a response. Callers skip
	// the peer for this round; there is no retry.
	ErrPeerUnreachable = errors.New("peer unreachable")
	// ErrPeerRejected means the peer answered 400 or 500.
	ErrPeerRejected = errors.New("peer rejected request")
	// ErrConflict means the peer answered 409: its chain and ours disagree.
	ErrConflict = errors.New("peer reported conflict")
)

// StatusError records an unexpected HTTP status from a peer.
type StatusError struct {
	Peer   string
	Status int
	Err    error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("peer %s answered %d: %v", e.Peer, e.Status, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }
