package p2p

import "sort"

// PeerSet is a plain set of peer addresses: no liveness tracking and no size
// bound. It is not safe for concurrent use; the ledger guards it.
type PeerSet struct {
	peers map[string]struct{}
}

func NewPeerSet(addresses ...string) *PeerSet {
	ps := &PeerSet{peers: make(map[string]struct{}, len(addresses))}
	for _, a := range addresses {
		ps.Add(a)
	}
	return ps
}

// Add inserts address and reports whether it was new.
func (ps *PeerSet) Add(address string) bool {
	if address == "" {
		return false
	}
	if _, ok := ps.peers[address]; ok {
		return false
	}
	ps.peers[address] = struct{}{}
	return true
}

// Remove deletes address and reports whether it was present.
func (ps *PeerSet) Remove(address string) bool {
	if _, ok := ps.peers[address]; !ok {
		return false
	}
	delete(ps.peers, address)
	return true
}

func (ps *PeerSet) Contains(address string) bool {
	_, ok := ps.peers[address]
	return ok
}

func (ps *PeerSet) Len() int {
	return len(ps.peers)
}

// List returns the addresses in lexicographic order, which is also the order
// used for broadcasts and conflict resolution.
func (ps *PeerSet) List() []string {
	out := make([]string, 0, len(ps.peers))
	for a := range ps.peers {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
