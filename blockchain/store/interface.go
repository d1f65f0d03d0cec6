package store

import (
	"errors"
	"fmt"

	"gocuria/blockchain"
)

// State is everything a node persists between runs.
type State struct {
	Chain            []blockchain.Block
	OpenTransactions []blockchain.Transaction
	PeerNodes        []string
}

// ChainStore persists a node's State. Save must be atomic: a concurrent or
// later Load sees either the previous state or the new one, never a mix.
type ChainStore interface {
	// Load returns ok=false when nothing has been saved yet. Malformed data is
	// an error.
	Load() (state State, ok bool, err error)
	Save(state State) error
	Close() error
}

const (
	BackendFile    = "file"
	BackendLevelDB = "leveldb"
	BackendMemory  = "memory"
)

var (
	ErrUnknownBackend = errors.New("unknown storage backend")
	ErrCorrupt        = errors.New("persisted state is malformed")
)

// Open returns the store for backend, scoped to nodeID under dataDir.
func Open(backend, dataDir, nodeID string) (ChainStore, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(dataDir, nodeID)
	case BackendLevelDB:
		return NewLevelDBStore(dataDir, nodeID)
	case BackendMemory:
		return NewMemoryChainStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
