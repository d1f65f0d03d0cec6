package ledger

import "strings"

// AddPeerNode adds addr to the peer set and persists. Adding a known peer is
// a no-op apart from the save.
func (l *Ledger) AddPeerNode(addr string) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ErrInvalidPeer
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.peers.Add(addr) {
		l.logger.Info("peer added", "peer", addr)
	}
	l.persist()
	return nil
}

// RemovePeerNode drops addr from the peer set and persists.
func (l *Ledger) RemovePeerNode(addr string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.peers.Remove(addr) {
		l.logger.Info("peer removed", "peer", addr)
	}
	l.persist()
}

// PeerNodes returns the known peers in address order.
func (l *Ledger) PeerNodes() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.peers.List()
}
