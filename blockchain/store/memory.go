package store

import (
	"sync"

	"gocuria/blockchain"
)

// MemoryChainStore keeps state in process. Values are deep-copied on the way
// in and out so callers cannot alias the stored chain.
type MemoryChainStore struct {
	state State
	saved bool
	saves int
	mu    sync.RWMutex
}

func NewMemoryChainStore() *MemoryChainStore {
	return &MemoryChainStore{}
}

func (m *MemoryChainStore) Load() (State, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.saved {
		return State{}, false, nil
	}
	return copyState(m.state), true, nil
}

func (m *MemoryChainStore) Save(state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = copyState(state)
	m.saved = true
	m.saves++
	return nil
}

// Saves returns how many times Save has been called.
func (m *MemoryChainStore) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

func (m *MemoryChainStore) Close() error {
	return nil
}

func copyState(s State) State {
	out := State{
		Chain:            blockchain.CloneChain(s.Chain),
		OpenTransactions: make([]blockchain.Transaction, len(s.OpenTransactions)),
		PeerNodes:        make([]string, len(s.PeerNodes)),
	}
	copy(out.OpenTransactions, s.OpenTransactions)
	copy(out.PeerNodes, s.PeerNodes)
	return out
}
