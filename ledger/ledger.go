// Package ledger owns a node's chain, pending pool and peer set. Every
// operation that reads or mutates them is serialized through one mutex;
// outbound peer calls happen after the lock is released.
package ledger

import (
	"fmt"
	"log/slog"
	"sync"

	"gocuria/blockchain"
	"gocuria/blockchain/store"
	"gocuria/p2p"
)

// PeerClient is the outbound half of the peer protocol.
type PeerClient interface {
	BroadcastTransaction(peer string, tx blockchain.Transaction) error
	BroadcastBlock(peer string, b blockchain.Block) error
	FetchChain(peer string) ([]blockchain.Block, error)
}

type Config struct {
	NodeID string
	// PublicKey may be empty; operations that need an identity then fail
	// with ErrNoIdentity until Reinitialize supplies one.
	PublicKey string
	Store     store.ChainStore
	Client    PeerClient
	Logger    *slog.Logger
}

type Ledger struct {
	mu sync.Mutex

	chain        []blockchain.Block
	pool         []blockchain.Transaction
	peers        *p2p.PeerSet
	publicKey    string
	nodeID       string
	needsResolve bool

	store  store.ChainStore
	client PeerClient
	logger *slog.Logger
}

// New builds a ledger from whatever cfg.Store holds. An empty store yields a
// genesis-only chain; malformed persisted data is an error.
func New(cfg Config) (*Ledger, error) {
	if cfg.Store == nil {
		cfg.Store = store.NewMemoryChainStore()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "ledger", "node", cfg.NodeID)
	client := cfg.Client
	if client == nil {
		client = p2p.NewClient(p2p.DefaultTimeout, logger)
	}

	l := &Ledger{
		nodeID:    cfg.NodeID,
		publicKey: cfg.PublicKey,
		store:     cfg.Store,
		client:    client,
		logger:    logger,
	}
	if err := l.load(); err != nil {
		return nil, err
	}
	return l, nil
}

// Reinitialize swaps in a new identity and reloads chain, pool and peers from
// the store, discarding unsaved in-memory state.
func (l *Ledger) Reinitialize(publicKey string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev := l.publicKey
	l.publicKey = publicKey
	if err := l.load(); err != nil {
		l.publicKey = prev
		return err
	}
	l.needsResolve = false
	l.logger.Info("ledger reinitialized", "blocks", len(l.chain), "pending", len(l.pool))
	return nil
}

// load replaces in-memory state with the persisted one. Callers hold mu or
// own l exclusively.
func (l *Ledger) load() error {
	state, ok, err := l.store.Load()
	if err != nil {
		return fmt.Errorf("load ledger state: %w", err)
	}
	if !ok {
		l.chain = []blockchain.Block{blockchain.Genesis()}
		l.pool = []blockchain.Transaction{}
		l.peers = p2p.NewPeerSet()
		return nil
	}
	if len(state.Chain) == 0 || !blockchain.IsGenesis(state.Chain[0]) {
		return fmt.Errorf("load ledger state: %w: chain does not start at genesis", store.ErrCorrupt)
	}

	l.chain = state.Chain
	l.pool = state.OpenTransactions
	if l.pool == nil {
		l.pool = []blockchain.Transaction{}
	}
	l.peers = p2p.NewPeerSet(state.PeerNodes...)
	return nil
}

// persist writes the current state. Failures are logged and swallowed.
// Callers hold mu.
func (l *Ledger) persist() {
	state := store.State{
		Chain:            l.chain,
		OpenTransactions: l.pool,
		PeerNodes:        l.peers.List(),
	}
	if err := l.store.Save(state); err != nil {
		l.logger.Error("save failed", "err", fmt.Errorf("%w: %w", ErrPersistence, err))
	}
}

// Chain returns a copy of the chain.
func (l *Ledger) Chain() []blockchain.Block {
	l.mu.Lock()
	defer l.mu.Unlock()
	return blockchain.CloneChain(l.chain)
}

// LastBlock returns a copy of the chain tail.
func (l *Ledger) LastBlock() blockchain.Block {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.chain[len(l.chain)-1].Clone()
}

// OpenTransactions returns a copy of the pending pool.
func (l *Ledger) OpenTransactions() []blockchain.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]blockchain.Transaction, len(l.pool))
	copy(out, l.pool)
	return out
}

func (l *Ledger) PublicKey() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.publicKey
}

func (l *Ledger) NodeID() string {
	return l.nodeID
}

// NeedsResolve reports whether a peer answered a block broadcast with a
// conflict, or announced a block ahead of our tail, since the last Resolve.
func (l *Ledger) NeedsResolve() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.needsResolve
}

func (l *Ledger) MarkNeedsResolve() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.needsResolve = true
}

// VerifyOwnChain runs full chain verification over the local chain.
func (l *Ledger) VerifyOwnChain() error {
	return blockchain.VerifyChain(l.Chain())
}

// Close releases the underlying store.
func (l *Ledger) Close() error {
	return l.store.Close()
}
