package ledger

import (
	"errors"
	"fmt"

	"gocuria/blockchain"
	"gocuria/blockchain/verification"
	"gocuria/p2p"
)

type addOptions struct {
	fromBroadcast bool
}

// AddOption adjusts AddTransaction.
type AddOption func(*addOptions)

// FromBroadcast marks a transaction received from a peer. It is pooled but
// not broadcast again.
func FromBroadcast() AddOption {
	return func(o *addOptions) { o.fromBroadcast = true }
}

// AddTransaction verifies tx, including the sender's funds, appends it to the
// pool and persists. Unless FromBroadcast is given, tx is then posted to every
// peer in address order. Unreachable peers are skipped; the first peer that
// rejects it stops the fan-out and its error is returned, although tx stays
// pooled locally.
func (l *Ledger) AddTransaction(tx blockchain.Transaction, opts ...AddOption) error {
	var o addOptions
	for _, opt := range opts {
		opt(&o)
	}

	peers, err := l.admit(tx)
	if err != nil {
		return err
	}
	if o.fromBroadcast {
		return nil
	}

	for _, peer := range peers {
		err := l.client.BroadcastTransaction(peer, tx)
		switch {
		case err == nil:
		case errors.Is(err, p2p.ErrPeerUnreachable):
			l.logger.Debug("skipping unreachable peer", "peer", peer)
		case errors.Is(err, p2p.ErrPeerRejected):
			l.logger.Warn("peer rejected transaction", "peer", peer, "err", err)
			return fmt.Errorf("broadcast transaction: %w", err)
		default:
			l.logger.Warn("transaction broadcast failed", "peer", peer, "err", err)
		}
	}
	return nil
}

// admit runs the locked half of AddTransaction and returns the peers to
// broadcast to.
func (l *Ledger) admit(tx blockchain.Transaction) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.publicKey == "" {
		return nil, ErrNoIdentity
	}
	if tx.IsReward() {
		return nil, fmt.Errorf("%w: %w", blockchain.ErrValidation, ErrRewardSubmission)
	}
	if err := verification.VerifyTransaction(tx, l.balanceLocked, true); err != nil {
		l.logger.Info("transaction rejected", "sender", short(tx.Sender), "amount", tx.Amount, "err", err)
		return nil, err
	}

	l.pool = append(l.pool, tx)
	l.persist()
	l.logger.Info("transaction pooled", "sender", short(tx.Sender), "recipient", short(tx.Recipient), "amount", tx.Amount)
	return l.peers.List(), nil
}

// VerifyPool re-checks the signature of every pending transaction.
func (l *Ledger) VerifyPool() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return verification.VerifyTransactions(l.pool, l.balanceLocked)
}

// short trims a hex key for log output.
func short(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}
