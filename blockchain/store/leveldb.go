package store

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/syndtr/goleveldb/leveldb"
)

// LevelDBStore keeps the same three documents as FileStore under per-node
// keys of a LevelDB database, written together in one batch.
type LevelDBStore struct {
	db     *leveldb.DB
	prefix string
}

func NewLevelDBStore(dataDir, nodeID string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(filepath.Join(dataDir, "leveldb"), nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb: %w", err)
	}
	return &LevelDBStore{db: db, prefix: nodeID + "/"}, nil
}

func (s *LevelDBStore) keys() [3][]byte {
	return [3][]byte{
		[]byte(s.prefix + "chain"),
		[]byte(s.prefix + "open_transactions"),
		[]byte(s.prefix + "peer_nodes"),
	}
}

func (s *LevelDBStore) Load() (State, bool, error) {
	snap, err := s.db.GetSnapshot()
	if err != nil {
		return State{}, false, fmt.Errorf("leveldb snapshot: %w", err)
	}
	defer snap.Release()

	var docs [3][]byte
	for i, key := range s.keys() {
		value, err := snap.Get(key, nil)
		if errors.Is(err, leveldb.ErrNotFound) {
			if i == 0 {
				return State{}, false, nil
			}
			return State{}, false, fmt.Errorf("%w: key %s missing", ErrCorrupt, key)
		}
		if err != nil {
			return State{}, false, fmt.Errorf("leveldb get %s: %w", key, err)
		}
		docs[i] = value
	}

	state, err := decodeDocuments(docs)
	if err != nil {
		return State{}, false, err
	}
	return state, true, nil
}

func (s *LevelDBStore) Save(state State) error {
	docs, err := encodeDocuments(state)
	if err != nil {
		return err
	}
	batch := new(leveldb.Batch)
	for i, key := range s.keys() {
		batch.Put(key, docs[i])
	}
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("leveldb write: %w", err)
	}
	return nil
}

func (s *LevelDBStore) Close() error {
	return s.db.Close()
}
