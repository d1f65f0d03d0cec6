package ledger

import (
	"gocuria/blockchain"
)

// Resolve applies the longest-valid-chain rule. Peers are asked for their
// chains in address order; a candidate replaces the current winner only when
// it is strictly longer and passes VerifyChain. If the local chain is
// replaced the pool is cleared. The resolve-needed flag is always cleared.
//
// Chains are fetched without holding the lock so two nodes resolving against
// each other cannot stall; the comparison runs against the chain as it is
// when the lock is retaken.
func (l *Ledger) Resolve() bool {
	peers := l.PeerNodes()

	var candidates [][]blockchain.Block
	for _, peer := range peers {
		chain, err := l.client.FetchChain(peer)
		if err != nil {
			l.logger.Debug("skipping peer during resolve", "peer", peer, "err", err)
			continue
		}
		if err := blockchain.VerifyChain(chain); err != nil {
			l.logger.Info("peer chain failed verification", "peer", peer, "length", len(chain), "err", err)
			continue
		}
		candidates = append(candidates, chain)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	winner := l.chain
	replaced := false
	for _, chain := range candidates {
		if len(chain) > len(winner) {
			winner = chain
			replaced = true
		}
	}
	if replaced {
		l.logger.Info("chain replaced", "old_length", len(l.chain), "new_length", len(winner))
		l.chain = winner
		l.pool = []blockchain.Transaction{}
	}
	l.needsResolve = false
	l.persist()
	return replaced
}
