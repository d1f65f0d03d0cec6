package ledger

// Balance returns what participant has received in mined blocks, minus what
// it has sent in mined blocks, minus what it is sending in the pending pool.
// Pending receipts are not credited.
func (l *Ledger) Balance(participant string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balanceLocked(participant)
}

// OwnBalance is Balance for the node's own public key.
func (l *Ledger) OwnBalance() (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.publicKey == "" {
		return 0, ErrNoIdentity
	}
	return l.balanceLocked(l.publicKey), nil
}

func (l *Ledger) balanceLocked(participant string) float64 {
	var received, sent float64
	for _, block := range l.chain {
		for _, tx := range block.Transactions {
			if tx.Recipient == participant {
				received += tx.Amount
			}
			if tx.Sender == participant {
				sent += tx.Amount
			}
		}
	}
	for _, tx := range l.pool {
		if tx.Sender == participant {
			sent += tx.Amount
		}
	}
	return received - sent
}
