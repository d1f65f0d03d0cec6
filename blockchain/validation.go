package blockchain

import (
	"fmt"
	"log/slog"
)

// ValidateBlockLink checks a block against the block it claims to follow: the
// index must be the next one, the previous hash must match and the proof must
// hold over every transaction except the last one, which is the miner's reward.
func ValidateBlockLink(block Block, previous Block) error {
	if block.Index != previous.Index+1 {
		return fmt.Errorf("block %d after %d: %w", block.Index, previous.Index, ErrInvalidIndex)
	}
	if block.PreviousHash != HashBlock(previous) {
		return fmt.Errorf("block %d: %w", block.Index, ErrHashMismatch)
	}
	if !ValidProof(withoutReward(block.Transactions), block.PreviousHash, block.Proof) {
		return fmt.Errorf("block %d: %w", block.Index, ErrInvalidProof)
	}
	return nil
}

// VerifyChain checks every hash link and proof in chain. The genesis block is
// not checked for proof or link, but it must be the fixed genesis block. The
// first failing block invalidates the whole chain.
func VerifyChain(chain []Block) error {
	if len(chain) == 0 {
		return fmt.Errorf("%w: empty chain", ErrInvalidChain)
	}
	if !IsGenesis(chain[0]) {
		return fmt.Errorf("%w: first block is not genesis", ErrInvalidChain)
	}

	for i := 1; i < len(chain); i++ {
		if err := ValidateBlockLink(chain[i], chain[i-1]); err != nil {
			slog.Debug("chain verification failed", "component", "validation", "index", i, "err", err)
			return fmt.Errorf("%w: %w", ErrInvalidChain, err)
		}
	}
	return nil
}

// withoutReward drops the final transaction of a block.
func withoutReward(txs []Transaction) []Transaction {
	if len(txs) == 0 {
		return txs
	}
	return txs[:len(txs)-1]
}
