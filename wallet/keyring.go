package wallet

import "sync"

// Keyring holds the wallet a node currently signs with, together with the
// directory its key files live in. It is safe for concurrent use.
type Keyring struct {
	mu      sync.RWMutex
	dir     string
	nodeID  string
	current *Wallet
}

func NewKeyring(dir, nodeID string) *Keyring {
	return &Keyring{dir: dir, nodeID: nodeID}
}

// Create generates a new wallet and makes it current. It is not saved.
func (k *Keyring) Create() (*Wallet, error) {
	w, err := Generate()
	if err != nil {
		return nil, err
	}
	k.mu.Lock()
	k.current = w
	k.mu.Unlock()
	return w, nil
}

// Load reads the node's key files and makes the wallet current.
func (k *Keyring) Load() (*Wallet, error) {
	w, err := Load(k.dir, k.nodeID)
	if err != nil {
		return nil, err
	}
	k.mu.Lock()
	k.current = w
	k.mu.Unlock()
	return w, nil
}

// Save writes the current wallet to the node's key files.
func (k *Keyring) Save() error {
	k.mu.RLock()
	w := k.current
	k.mu.RUnlock()
	if w == nil {
		return ErrIdentityNotFound
	}
	return w.Save(k.dir, k.nodeID)
}

// Current returns the wallet in use, if any.
func (k *Keyring) Current() (*Wallet, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.current, k.current != nil
}

// PublicKey returns the current public key, or "" without a wallet.
func (k *Keyring) PublicKey() string {
	if w, ok := k.Current(); ok {
		return w.PublicKey
	}
	return ""
}
