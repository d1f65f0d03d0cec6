package wallet

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// KeyFiles returns the public and private key file paths for a node.
func KeyFiles(dir, nodeID string) (public, private string) {
	base := filepath.Join(dir, "wallet-"+nodeID)
	return base + ".pub", base + ".key"
}

// Save writes the keypair into dir, scoped by nodeID.
func (w *Wallet) Save(dir, nodeID string) error {
	if w == nil || w.private == nil {
		return ErrNoPrivateKey
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create key directory: %w", err)
	}
	pubPath, privPath := KeyFiles(dir, nodeID)
	if err := writeFileAtomic(pubPath, []byte(w.PublicKey+"\n"), 0o644); err != nil {
		return fmt.Errorf("save public key: %w", err)
	}
	if err := writeFileAtomic(privPath, []byte(w.PrivateKey+"\n"), 0o600); err != nil {
		return fmt.Errorf("save private key: %w", err)
	}
	return nil
}

// Load reads the keypair saved for nodeID. It returns ErrIdentityNotFound when
// either key file is missing.
func Load(dir, nodeID string) (*Wallet, error) {
	pubPath, privPath := KeyFiles(dir, nodeID)
	pub, err := readKey(pubPath)
	if err != nil {
		return nil, err
	}
	priv, err := readKey(privPath)
	if err != nil {
		return nil, err
	}
	return FromKeys(priv, pub)
}

func readKey(path string) (string, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrIdentityNotFound, path)
	}
	if err != nil {
		return "", fmt.Errorf("read key %s: %w", path, err)
	}
	return strings.TrimSpace(string(b)), nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
