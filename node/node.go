package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"gocuria/api"
	"gocuria/blockchain/store"
	"gocuria/config"
	"gocuria/ledger"
	"gocuria/p2p"
	"gocuria/wallet"
)

// FullNode wires storage, identity, the ledger and the HTTP API together.
type FullNode struct {
	config config.Config
	logger *slog.Logger

	// Core blockchain storage
	store store.ChainStore

	keyring *wallet.Keyring
	ledger  *ledger.Ledger
	server  *api.Server
}

// NewFullNode opens the configured store, loads the node's saved keys if any
// and builds the ledger. Peers from the configuration are added to the
// persisted peer set.
func NewFullNode(cfg config.Config, logger *slog.Logger) (*FullNode, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("node", cfg.NodeID)

	chainStore, err := store.Open(cfg.Storage, cfg.DataDir, cfg.NodeID)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage, err)
	}

	keyring := wallet.NewKeyring(cfg.DataDir, cfg.NodeID)
	if _, err := keyring.Load(); err != nil {
		if !errors.Is(err, wallet.ErrIdentityNotFound) {
			chainStore.Close()
			return nil, fmt.Errorf("load keys: %w", err)
		}
		logger.Info("no saved identity; create one before mining or sending")
	}

	l, err := ledger.New(ledger.Config{
		NodeID:    cfg.NodeID,
		PublicKey: keyring.PublicKey(),
		Store:     chainStore,
		Client:    p2p.NewClient(cfg.PeerTimeout, logger),
		Logger:    logger,
	})
	if err != nil {
		chainStore.Close()
		return nil, err
	}
	for _, peer := range cfg.Peers {
		if err := l.AddPeerNode(peer); err != nil {
			logger.Warn("ignoring configured peer", "peer", peer, "err", err)
		}
	}

	return &FullNode{
		config:  cfg,
		logger:  logger,
		store:   chainStore,
		keyring: keyring,
		ledger:  l,
		server:  api.NewServer(l, keyring, cfg.Listen, logger),
	}, nil
}

// Start serves the HTTP API on the configured address. It blocks until Stop.
func (n *FullNode) Start() error {
	n.logger.Info("full node starting", "listen", n.config.Listen, "storage", n.config.Storage, "blocks", len(n.ledger.Chain()))
	return n.server.Start()
}

// Serve is Start on an existing listener.
func (n *FullNode) Serve(ln net.Listener) error {
	return n.server.Serve(ln)
}

// Stop gracefully shuts down the FullNode
func (n *FullNode) Stop(ctx context.Context) error {
	n.logger.Info("stopping full node")
	err := n.server.Shutdown(ctx)
	if cerr := n.ledger.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func (n *FullNode) Ledger() *ledger.Ledger {
	return n.ledger
}

func (n *FullNode) Keyring() *wallet.Keyring {
	return n.keyring
}

func (n *FullNode) Config() config.Config {
	return n.config
}
