package ledger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"

	"gocuria/blockchain"
	"gocuria/blockchain/store"
	"gocuria/mocks"
	"gocuria/p2p"
	"gocuria/wallet"
)

// fakeClient records outbound calls and answers from per-peer tables.
type fakeClient struct {
	mu     sync.Mutex
	errs   map[string]error
	chains map[string][]blockchain.Block
	calls  []string
}

func (f *fakeClient) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeClient) BroadcastTransaction(peer string, tx blockchain.Transaction) error {
	f.record("tx " + peer)
	return f.errs[peer]
}

func (f *fakeClient) BroadcastBlock(peer string, b blockchain.Block) error {
	f.record("block " + peer)
	return f.errs[peer]
}

func (f *fakeClient) FetchChain(peer string) ([]blockchain.Block, error) {
	f.record("chain " + peer)
	if err := f.errs[peer]; err != nil {
		return nil, err
	}
	return blockchain.CloneChain(f.chains[peer]), nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newWallet(t *testing.T) *wallet.Wallet {
	t.Helper()
	w, err := wallet.Generate()
	if err != nil {
		t.Fatalf("Failed to generate wallet: %v", err)
	}
	return w
}

func newLedger(t *testing.T, publicKey string, client PeerClient, s store.ChainStore) *Ledger {
	t.Helper()
	if client == nil {
		client = &fakeClient{}
	}
	if s == nil {
		s = store.NewMemoryChainStore()
	}
	l, err := New(Config{NodeID: "5000", PublicKey: publicKey, Store: s, Client: client, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return l
}

func signed(t *testing.T, from *wallet.Wallet, to string, amount float64) blockchain.Transaction {
	t.Helper()
	tx, err := mocks.GenerateValidTransaction(from, to, amount)
	if err != nil {
		t.Fatalf("Failed to sign transaction: %v", err)
	}
	return tx
}

func mine(t *testing.T, l *Ledger) blockchain.Block {
	t.Helper()
	b, err := l.MineBlock()
	if err != nil {
		t.Fatalf("MineBlock() failed: %v", err)
	}
	return b
}

func TestNewLedgerStartsAtGenesis(t *testing.T) {
	l := newLedger(t, "", nil, nil)
	chain := l.Chain()
	if len(chain) != 1 || !blockchain.IsGenesis(chain[0]) {
		t.Fatalf("Expected genesis-only chain, got %+v", chain)
	}
	if len(l.OpenTransactions()) != 0 || len(l.PeerNodes()) != 0 {
		t.Error("Expected empty pool and peer set")
	}
	if err := l.VerifyOwnChain(); err != nil {
		t.Errorf("VerifyOwnChain() = %v", err)
	}
}

func TestNoIdentity(t *testing.T) {
	l := newLedger(t, "", nil, nil)

	if err := l.AddTransaction(blockchain.Transaction{Sender: "a", Recipient: "b", Amount: 1}); !errors.Is(err, ErrNoIdentity) {
		t.Errorf("AddTransaction() = %v, want ErrNoIdentity", err)
	}
	if _, err := l.MineBlock(); !errors.Is(err, ErrNoIdentity) {
		t.Errorf("MineBlock() = %v, want ErrNoIdentity", err)
	}
	if _, err := l.OwnBalance(); !errors.Is(err, ErrNoIdentity) {
		t.Errorf("OwnBalance() = %v, want ErrNoIdentity", err)
	}
	if len(l.Chain()) != 1 {
		t.Error("Chain changed without an identity")
	}
}

func TestBalanceArithmetic(t *testing.T) {
	alice := newWallet(t)
	bob := newWallet(t)
	l := newLedger(t, alice.PublicKey, nil, nil)

	mine(t, l)
	if got := l.Balance(alice.PublicKey); got != 10 {
		t.Fatalf("Balance(alice) after first block = %v, want 10", got)
	}

	if err := l.AddTransaction(signed(t, alice, bob.PublicKey, 4)); err != nil {
		t.Fatalf("AddTransaction() failed: %v", err)
	}
	if got := l.Balance(alice.PublicKey); got != 6 {
		t.Errorf("Balance(alice) with pending spend = %v, want 6", got)
	}
	if got := l.Balance(bob.PublicKey); got != 0 {
		t.Errorf("Balance(bob) with pending receipt = %v, want 0", got)
	}

	block := mine(t, l)
	if len(block.Transactions) != 2 || !block.Transactions[1].IsReward() {
		t.Fatalf("Expected transfer followed by reward, got %+v", block.Transactions)
	}
	if got := l.Balance(alice.PublicKey); got != 16 {
		t.Errorf("Balance(alice) after second block = %v, want 16", got)
	}
	if got := l.Balance(bob.PublicKey); got != 4 {
		t.Errorf("Balance(bob) after second block = %v, want 4", got)
	}
	own, err := l.OwnBalance()
	if err != nil || own != 16 {
		t.Errorf("OwnBalance() = %v, %v; want 16", own, err)
	}
	if len(l.OpenTransactions()) != 0 {
		t.Error("Mining did not clear the pool")
	}
	if err := l.VerifyOwnChain(); err != nil {
		t.Errorf("VerifyOwnChain() = %v", err)
	}
}

func TestAddTransactionRejections(t *testing.T) {
	alice := newWallet(t)
	bob := newWallet(t)
	mallory := newWallet(t)
	l := newLedger(t, alice.PublicKey, nil, nil)
	mine(t, l)
	if err := l.AddTransaction(signed(t, alice, bob.PublicKey, 5)); err != nil {
		t.Fatalf("AddTransaction() failed: %v", err)
	}

	forged := signed(t, alice, bob.PublicKey, 1)
	forged.Amount = 2

	tests := []struct {
		name    string
		tx      blockchain.Transaction
		wantErr error
	}{
		{name: "insufficient funds", tx: signed(t, alice, bob.PublicKey, 6), wantErr: blockchain.ErrInsufficientFunds},
		{name: "forged amount", tx: forged, wantErr: blockchain.ErrInvalidSignature},
		{name: "signed by another key", tx: blockchain.Transaction{Sender: alice.PublicKey, Recipient: bob.PublicKey, Signature: signed(t, mallory, bob.PublicKey, 1).Signature, Amount: 1}, wantErr: blockchain.ErrInvalidSignature},
		{name: "reward submission", tx: blockchain.RewardTransaction(bob.PublicKey), wantErr: ErrRewardSubmission},
		{name: "negative amount", tx: blockchain.Transaction{Sender: alice.PublicKey, Recipient: bob.PublicKey, Amount: -1}, wantErr: blockchain.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := l.AddTransaction(tt.tx)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AddTransaction() = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, blockchain.ErrValidation) {
				t.Errorf("AddTransaction() = %v does not wrap ErrValidation", err)
			}
			if n := len(l.OpenTransactions()); n != 1 {
				t.Errorf("Expected pool of 1, got %d", n)
			}
		})
	}
}

func TestAddTransactionFanOut(t *testing.T) {
	alice := newWallet(t)
	bob := newWallet(t)

	t.Run("first rejection stops fan-out", func(t *testing.T) {
		client := &fakeClient{errs: map[string]error{
			"a:1": fmt.Errorf("%w: a:1: refused", p2p.ErrPeerUnreachable),
			"b:1": &p2p.StatusError{Peer: "b:1", Status: http.StatusBadRequest, Err: p2p.ErrPeerRejected},
		}}
		l := newLedger(t, alice.PublicKey, client, nil)
		mine(t, l)
		for _, p := range []string{"c:1", "b:1", "a:1"} {
			if err := l.AddPeerNode(p); err != nil {
				t.Fatal(err)
			}
		}
		client.calls = nil

		err := l.AddTransaction(signed(t, alice, bob.PublicKey, 1))
		if !errors.Is(err, p2p.ErrPeerRejected) {
			t.Fatalf("AddTransaction() = %v, want ErrPeerRejected", err)
		}
		want := []string{"tx a:1", "tx b:1"}
		if fmt.Sprint(client.calls) != fmt.Sprint(want) {
			t.Errorf("Calls = %v, want %v", client.calls, want)
		}
		if len(l.OpenTransactions()) != 1 {
			t.Error("Rejected broadcast should leave the transaction pooled")
		}
	})

	t.Run("broadcast origin is not rebroadcast", func(t *testing.T) {
		client := &fakeClient{}
		l := newLedger(t, alice.PublicKey, client, nil)
		mine(t, l)
		l.AddPeerNode("a:1")
		client.calls = nil

		if err := l.AddTransaction(signed(t, alice, bob.PublicKey, 1), FromBroadcast()); err != nil {
			t.Fatalf("AddTransaction() failed: %v", err)
		}
		if len(client.calls) != 0 {
			t.Errorf("Expected no outbound calls, got %v", client.calls)
		}
	})
}

func TestMineBlockConflictMarksResolve(t *testing.T) {
	alice := newWallet(t)
	client := &fakeClient{errs: map[string]error{
		"a:1": &p2p.StatusError{Peer: "a:1", Status: http.StatusInternalServerError, Err: p2p.ErrPeerRejected},
		"b:1": &p2p.StatusError{Peer: "b:1", Status: http.StatusConflict, Err: p2p.ErrConflict},
	}}
	l := newLedger(t, alice.PublicKey, client, nil)
	l.AddPeerNode("a:1")
	l.AddPeerNode("b:1")

	block := mine(t, l)
	if block.Index != 1 {
		t.Errorf("Expected block index 1, got %d", block.Index)
	}
	if !l.NeedsResolve() {
		t.Error("409 from a peer should mark the ledger as needing resolve")
	}
	if len(client.calls) != 2 {
		t.Errorf("A rejected block broadcast should not stop fan-out, calls %v", client.calls)
	}
}

func TestMineBlockIntegrityFailure(t *testing.T) {
	alice := newWallet(t)
	s := store.NewMemoryChainStore()
	bad := blockchain.Transaction{Sender: alice.PublicKey, Recipient: "bob", Signature: "00", Amount: 1}
	if err := s.Save(store.State{Chain: []blockchain.Block{blockchain.Genesis()}, OpenTransactions: []blockchain.Transaction{bad}}); err != nil {
		t.Fatal(err)
	}
	l := newLedger(t, alice.PublicKey, nil, s)

	if err := l.VerifyPool(); !errors.Is(err, blockchain.ErrInvalidSignature) {
		t.Errorf("VerifyPool() = %v, want ErrInvalidSignature", err)
	}
	if _, err := l.MineBlock(); !errors.Is(err, ErrIntegrity) {
		t.Fatalf("MineBlock() = %v, want ErrIntegrity", err)
	}
	if len(l.Chain()) != 1 || len(l.OpenTransactions()) != 1 {
		t.Error("Failed mining changed ledger state")
	}
}

func TestAddBlock(t *testing.T) {
	alice := newWallet(t)
	bob := newWallet(t)
	carol := newWallet(t)

	miner := newLedger(t, alice.PublicKey, nil, nil)
	follower := newLedger(t, carol.PublicKey, nil, nil)

	first := mine(t, miner)
	if err := follower.AddBlock(p2p.NewBlockPayload(first)); err != nil {
		t.Fatalf("AddBlock(first) failed: %v", err)
	}

	tx := signed(t, alice, bob.PublicKey, 4)
	if err := miner.AddTransaction(tx); err != nil {
		t.Fatal(err)
	}
	if err := follower.AddTransaction(tx, FromBroadcast()); err != nil {
		t.Fatalf("Follower failed to pool broadcast transaction: %v", err)
	}
	other := signed(t, alice, bob.PublicKey, 1)
	if err := follower.AddTransaction(other, FromBroadcast()); err != nil {
		t.Fatal(err)
	}

	second := mine(t, miner)
	if err := follower.AddBlock(p2p.NewBlockPayload(second)); err != nil {
		t.Fatalf("AddBlock(second) failed: %v", err)
	}
	pool := follower.OpenTransactions()
	if len(pool) != 1 || pool[0] != other {
		t.Errorf("Expected only the unconfirmed transaction to remain, got %+v", pool)
	}
	if got := follower.Balance(bob.PublicKey); got != 4 {
		t.Errorf("Balance(bob) on follower = %v, want 4", got)
	}

	t.Run("replayed block", func(t *testing.T) {
		err := follower.AddBlock(p2p.NewBlockPayload(second))
		if !errors.Is(err, blockchain.ErrInvalidIndex) {
			t.Errorf("AddBlock() = %v, want ErrInvalidIndex", err)
		}
		if len(follower.Chain()) != 3 {
			t.Error("Rejected block changed the chain")
		}
	})

	t.Run("foreign previous hash", func(t *testing.T) {
		rival := newLedger(t, bob.PublicKey, nil, nil)
		mine(t, rival)
		mine(t, rival)
		foreign := mine(t, rival)
		err := follower.AddBlock(p2p.NewBlockPayload(foreign))
		if !errors.Is(err, blockchain.ErrHashMismatch) {
			t.Errorf("AddBlock() = %v, want ErrHashMismatch", err)
		}
	})

	t.Run("index must equal chain length", func(t *testing.T) {
		third := mine(t, miner)
		if third.Index != len(miner.Chain())-1 {
			t.Fatalf("Mined block has index %d on a chain of %d blocks", third.Index, len(miner.Chain()))
		}

		skipped := third.Clone()
		skipped.Index = 42
		err := follower.AddBlock(p2p.NewBlockPayload(skipped))
		if !errors.Is(err, blockchain.ErrInvalidIndex) {
			t.Errorf("AddBlock() = %v, want ErrInvalidIndex", err)
		}
		if len(follower.Chain()) != 3 {
			t.Fatal("Rejected block changed the chain")
		}

		if err := follower.AddBlock(p2p.NewBlockPayload(third)); err != nil {
			t.Fatalf("AddBlock(third) failed: %v", err)
		}
		if err := follower.VerifyOwnChain(); err != nil {
			t.Errorf("VerifyOwnChain() = %v", err)
		}
		for i, b := range follower.Chain() {
			if b.Index != i {
				t.Errorf("Block at height %d has index %d", i, b.Index)
			}
		}
	})

	t.Run("bad proof", func(t *testing.T) {
		third := mine(t, miner)
		third.Proof++
		for blockchain.ValidProof(third.Transactions[:len(third.Transactions)-1], third.PreviousHash, third.Proof) {
			third.Proof++
		}
		err := follower.AddBlock(p2p.NewBlockPayload(third))
		if !errors.Is(err, blockchain.ErrInvalidProof) {
			t.Errorf("AddBlock() = %v, want ErrInvalidProof", err)
		}
	})

	t.Run("malformed payload", func(t *testing.T) {
		err := follower.AddBlock(p2p.BlockPayload{})
		if !errors.Is(err, p2p.ErrMalformedPayload) {
			t.Errorf("AddBlock() = %v, want ErrMalformedPayload", err)
		}
	})
}

func TestReceiveBlock(t *testing.T) {
	alice := newWallet(t)
	miner := newLedger(t, alice.PublicKey, nil, nil)
	b1 := mine(t, miner)
	b2 := mine(t, miner)
	b3 := mine(t, miner)

	l := newLedger(t, "", nil, nil)

	outcome, err := l.ReceiveBlock(p2p.NewBlockPayload(b1))
	if err != nil || outcome != BlockAccepted {
		t.Fatalf("ReceiveBlock(b1) = %v, %v; want accepted", outcome, err)
	}

	outcome, err = l.ReceiveBlock(p2p.NewBlockPayload(b3))
	if err != nil || outcome != BlockAhead {
		t.Errorf("ReceiveBlock(b3) = %v, %v; want ahead", outcome, err)
	}
	if !l.NeedsResolve() {
		t.Error("A block ahead of the tail should mark the ledger as needing resolve")
	}

	outcome, err = l.ReceiveBlock(p2p.NewBlockPayload(b1))
	if err == nil || outcome != BlockRejected {
		t.Errorf("ReceiveBlock(b1 again) = %v, %v; want rejected", outcome, err)
	}

	outcome, err = l.ReceiveBlock(p2p.NewBlockPayload(b2))
	if err != nil || outcome != BlockAccepted {
		t.Errorf("ReceiveBlock(b2) = %v, %v; want accepted", outcome, err)
	}
	if len(l.Chain()) != 3 {
		t.Errorf("Expected 3 blocks, got %d", len(l.Chain()))
	}
}

func TestPeerNodes(t *testing.T) {
	s := store.NewMemoryChainStore()
	l := newLedger(t, "", nil, s)

	if err := l.AddPeerNode("  "); !errors.Is(err, ErrInvalidPeer) {
		t.Errorf("AddPeerNode(blank) = %v, want ErrInvalidPeer", err)
	}
	l.AddPeerNode("localhost:5002")
	l.AddPeerNode("localhost:5001")
	l.AddPeerNode("localhost:5002")
	l.RemovePeerNode("localhost:9999")

	want := []string{"localhost:5001", "localhost:5002"}
	if fmt.Sprint(l.PeerNodes()) != fmt.Sprint(want) {
		t.Errorf("PeerNodes() = %v, want %v", l.PeerNodes(), want)
	}
	l.RemovePeerNode("localhost:5001")

	state, _, _ := s.Load()
	if fmt.Sprint(state.PeerNodes) != "[localhost:5002]" {
		t.Errorf("Persisted peers = %v", state.PeerNodes)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	alice := newWallet(t)
	bob := newWallet(t)
	dir := t.TempDir()

	open := func() store.ChainStore {
		s, err := store.NewFileStore(dir, "5000")
		if err != nil {
			t.Fatal(err)
		}
		return s
	}

	l := newLedger(t, alice.PublicKey, nil, open())
	mine(t, l)
	if err := l.AddTransaction(signed(t, alice, bob.PublicKey, 2.5)); err != nil {
		t.Fatal(err)
	}
	l.AddPeerNode("localhost:5001")

	reloaded := newLedger(t, alice.PublicKey, nil, open())
	if fmt.Sprint(reloaded.Chain()) != fmt.Sprint(l.Chain()) {
		t.Errorf("Chain mismatch after reload:\n got  %+v\n want %+v", reloaded.Chain(), l.Chain())
	}
	if fmt.Sprint(reloaded.OpenTransactions()) != fmt.Sprint(l.OpenTransactions()) {
		t.Errorf("Pool mismatch after reload")
	}
	if fmt.Sprint(reloaded.PeerNodes()) != fmt.Sprint(l.PeerNodes()) {
		t.Errorf("Peers mismatch after reload")
	}
	if err := reloaded.VerifyOwnChain(); err != nil {
		t.Errorf("Reloaded chain failed verification: %v", err)
	}
}

func TestReinitialize(t *testing.T) {
	alice := newWallet(t)
	s := store.NewMemoryChainStore()
	l := newLedger(t, "", nil, s)
	l.MarkNeedsResolve()

	if err := l.Reinitialize(alice.PublicKey); err != nil {
		t.Fatalf("Reinitialize() failed: %v", err)
	}
	if l.PublicKey() != alice.PublicKey {
		t.Error("Reinitialize did not set the public key")
	}
	if l.NeedsResolve() {
		t.Error("Reinitialize should clear the resolve flag")
	}
	mine(t, l)

	bob := newWallet(t)
	if err := l.Reinitialize(bob.PublicKey); err != nil {
		t.Fatal(err)
	}
	if len(l.Chain()) != 2 {
		t.Errorf("Expected persisted chain of 2 blocks, got %d", len(l.Chain()))
	}
}

func TestNewRejectsChainWithoutGenesis(t *testing.T) {
	s := store.NewMemoryChainStore()
	s.Save(store.State{Chain: []blockchain.Block{{Index: 0, Proof: 7}}})

	_, err := New(Config{Store: s, Client: &fakeClient{}, Logger: quietLogger()})
	if !errors.Is(err, store.ErrCorrupt) {
		t.Errorf("New() = %v, want ErrCorrupt", err)
	}
}
