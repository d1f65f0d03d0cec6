package ledger

import "errors"

var (
	// ErrNoIdentity is returned by operations that need the node's public key
	// before one has been configured.
	ErrNoIdentity = errors.New("no identity configured")

	// ErrIntegrity aborts mining when a pooled transaction no longer verifies.
	ErrIntegrity = errors.New("open transactions failed verification")

	// ErrPersistence is logged when the store rejects a write. The in-memory
	// mutation that preceded it is kept.
	ErrPersistence = errors.New("persisting ledger state failed")

	ErrRewardSubmission = errors.New("reward transactions cannot be submitted")
	ErrInvalidPeer      = errors.New("peer address must not be empty")
)
