package store

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gocuria/blockchain"
)

// FileStore keeps a node's state in a single text file of three JSON lines:
// the chain, the pending transactions and the peer addresses.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(dataDir, nodeID string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{path: filepath.Join(dataDir, fmt.Sprintf("blockchain-%s.txt", nodeID))}, nil
}

func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Load() (State, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("read %s: %w", f.path, err)
	}

	state, err := decodeLines(data)
	if err != nil {
		return State{}, false, fmt.Errorf("%s: %w", f.path, err)
	}
	return state, true, nil
}

func (f *FileStore) Save(state State) error {
	data, err := encodeLines(state)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close state: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

func (f *FileStore) Close() error {
	return nil
}

// encodeLines renders the three documents, one per line.
func encodeLines(state State) ([]byte, error) {
	docs, err := encodeDocuments(state)
	if err != nil {
		return nil, err
	}
	return bytes.Join(docs[:], []byte("\n")), nil
}

func decodeLines(data []byte) (State, error) {
	var docs [3][]byte
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	n := 0
	for scanner.Scan() {
		if n == len(docs) {
			return State{}, fmt.Errorf("%w: more than %d lines", ErrCorrupt, len(docs))
		}
		docs[n] = append([]byte(nil), scanner.Bytes()...)
		n++
	}
	if err := scanner.Err(); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if n != len(docs) {
		return State{}, fmt.Errorf("%w: expected %d lines, found %d", ErrCorrupt, len(docs), n)
	}
	return decodeDocuments(docs)
}

// encodeDocuments produces the chain, pool and peer JSON documents shared by
// every persistent backend.
func encodeDocuments(state State) ([3][]byte, error) {
	var docs [3][]byte
	chain := state.Chain
	if chain == nil {
		chain = []blockchain.Block{}
	}
	pool := state.OpenTransactions
	if pool == nil {
		pool = []blockchain.Transaction{}
	}
	peers := state.PeerNodes
	if peers == nil {
		peers = []string{}
	}

	var err error
	if docs[0], err = json.Marshal(chain); err != nil {
		return docs, fmt.Errorf("encode chain: %w", err)
	}
	if docs[1], err = json.Marshal(pool); err != nil {
		return docs, fmt.Errorf("encode open transactions: %w", err)
	}
	if docs[2], err = json.Marshal(peers); err != nil {
		return docs, fmt.Errorf("encode peer nodes: %w", err)
	}
	return docs, nil
}

func decodeDocuments(docs [3][]byte) (State, error) {
	var state State
	if err := json.Unmarshal(docs[0], &state.Chain); err != nil {
		return State{}, fmt.Errorf("%w: chain: %v", ErrCorrupt, err)
	}
	if err := json.Unmarshal(docs[1], &state.OpenTransactions); err != nil {
		return State{}, fmt.Errorf("%w: open transactions: %v", ErrCorrupt, err)
	}
	if err := json.Unmarshal(docs[2], &state.PeerNodes); err != nil {
		return State{}, fmt.Errorf("%w: peer nodes: %v", ErrCorrupt, err)
	}
	for i := range state.Chain {
		if state.Chain[i].Transactions == nil {
			state.Chain[i].Transactions = []blockchain.Transaction{}
		}
	}
	return state, nil
}
