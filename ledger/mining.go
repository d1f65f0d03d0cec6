package ledger

import (
	"errors"
	"fmt"

	"gocuria/blockchain"
	"gocuria/blockchain/verification"
	"gocuria/p2p"
)

// MineBlock seals the pending pool into a new block paid to the node's own
// key, clears the pool, persists and broadcasts the block. A peer answering
// with a conflict marks the ledger as needing Resolve; mining never resolves
// on its own.
func (l *Ledger) MineBlock() (blockchain.Block, error) {
	block, peers, err := l.mine()
	if err != nil {
		return blockchain.Block{}, err
	}

	for _, peer := range peers {
		err := l.client.BroadcastBlock(peer, block)
		switch {
		case err == nil:
		case errors.Is(err, p2p.ErrPeerUnreachable):
			l.logger.Debug("skipping unreachable peer", "peer", peer)
		case errors.Is(err, p2p.ErrConflict):
			l.logger.Warn("peer reported a conflicting chain", "peer", peer)
			l.MarkNeedsResolve()
		default:
			l.logger.Warn("peer rejected block", "peer", peer, "index", block.Index, "err", err)
		}
	}
	return block, nil
}

func (l *Ledger) mine() (blockchain.Block, []string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.publicKey == "" {
		return blockchain.Block{}, nil, ErrNoIdentity
	}
	if err := verification.VerifyTransactions(l.pool, l.balanceLocked); err != nil {
		l.logger.Error("refusing to mine", "err", err)
		return blockchain.Block{}, nil, fmt.Errorf("%w: %w", ErrIntegrity, err)
	}

	block := blockchain.NewBlock(blockchain.BlockCreationParams{
		Index:        len(l.chain),
		Previous:     l.chain[len(l.chain)-1],
		Transactions: l.pool,
		Miner:        l.publicKey,
	})

	l.chain = append(l.chain, block)
	l.pool = []blockchain.Transaction{}
	l.persist()

	l.logger.Info("block mined", "index", block.Index, "proof", block.Proof, "transactions", len(block.Transactions))
	return block.Clone(), l.peers.List(), nil
}
