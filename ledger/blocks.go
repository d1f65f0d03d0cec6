package ledger

import (
	"fmt"

	"gocuria/blockchain"
	"gocuria/p2p"
)

// BlockOutcome is how ReceiveBlock disposed of a peer's block.
type BlockOutcome int

const (
	// BlockAccepted means the block was appended to the chain.
	BlockAccepted BlockOutcome = iota
	// BlockAhead means the block is further ahead than our tail; the ledger
	// is marked as needing Resolve.
	BlockAhead
	// BlockRejected means the block does not extend our chain.
	BlockRejected
)

func (o BlockOutcome) String() string {
	switch o {
	case BlockAccepted:
		return "accepted"
	case BlockAhead:
		return "ahead"
	case BlockRejected:
		return "rejected"
	default:
		return fmt.Sprintf("BlockOutcome(%d)", int(o))
	}
}

// AddBlock appends a block proposed by a peer. The proof must hold over every
// transaction but the last, and the previous hash must match our tail. On
// success every pooled transaction equal to one in the block is dropped.
func (l *Ledger) AddBlock(payload p2p.BlockPayload) error {
	block, err := payload.ToBlock()
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.addBlockLocked(block)
}

// ReceiveBlock handles a block broadcast by a peer under a single lock: a
// block that directly follows our tail goes through AddBlock, one further
// ahead marks the ledger as needing Resolve, anything else is rejected.
func (l *Ledger) ReceiveBlock(payload p2p.BlockPayload) (BlockOutcome, error) {
	block, err := payload.ToBlock()
	if err != nil {
		return BlockRejected, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	next := len(l.chain)
	switch {
	case block.Index == next:
		if err := l.addBlockLocked(block); err != nil {
			return BlockRejected, err
		}
		return BlockAccepted, nil
	case block.Index > next:
		l.needsResolve = true
		l.logger.Info("peer is ahead, resolve needed", "index", block.Index, "height", next)
		return BlockAhead, nil
	default:
		return BlockRejected, fmt.Errorf("%w: block %d does not extend height %d", blockchain.ErrInvalidChain, block.Index, next)
	}
}

func (l *Ledger) addBlockLocked(block blockchain.Block) error {
	if block.Index != len(l.chain) {
		l.logger.Info("block rejected", "index", block.Index, "want", len(l.chain))
		return fmt.Errorf("block %d at height %d: %w", block.Index, len(l.chain), blockchain.ErrInvalidIndex)
	}
	tail := l.chain[len(l.chain)-1]
	if err := blockchain.ValidateBlockLink(block, tail); err != nil {
		l.logger.Info("block rejected", "index", block.Index, "err", err)
		return err
	}

	l.chain = append(l.chain, block)
	l.pool = withoutConfirmed(l.pool, block.Transactions)
	l.persist()
	l.logger.Info("block accepted", "index", block.Index, "pending", len(l.pool))
	return nil
}

// withoutConfirmed returns the pool entries that do not appear, field for
// field, in confirmed.
func withoutConfirmed(pool, confirmed []blockchain.Transaction) []blockchain.Transaction {
	seen := make(map[blockchain.Transaction]struct{}, len(confirmed))
	for _, tx := range confirmed {
		seen[tx] = struct{}{}
	}
	out := make([]blockchain.Transaction, 0, len(pool))
	for _, tx := range pool {
		if _, ok := seen[tx]; !ok {
			out = append(out, tx)
		}
	}
	return out
}
