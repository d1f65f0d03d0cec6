package verification

import (
	"errors"
	"testing"

	"gocuria/blockchain"
	"gocuria/wallet"
)

func signedTx(t *testing.T, from *wallet.Wallet, to string, amount float64) blockchain.Transaction {
	t.Helper()
	sig, err := from.Sign(from.PublicKey, to, amount)
	if err != nil {
		t.Fatalf("Sign() failed: %v", err)
	}
	return blockchain.Transaction{Sender: from.PublicKey, Recipient: to, Signature: sig, Amount: amount}
}

func fixedBalance(amount float64) BalanceFunc {
	return func(string) float64 { return amount }
}

func TestVerifyTransaction(t *testing.T) {
	alice, err := wallet.Generate()
	if err != nil {
		t.Fatal(err)
	}
	good := signedTx(t, alice, "bob", 6)
	forged := good
	forged.Amount = 1

	tests := []struct {
		name       string
		tx         blockchain.Transaction
		balance    float64
		checkFunds bool
		wantErr    error
	}{
		{name: "funded and signed", tx: good, balance: 10, checkFunds: true},
		{name: "exact balance", tx: good, balance: 6, checkFunds: true},
		{name: "insufficient funds", tx: good, balance: 5, checkFunds: true, wantErr: blockchain.ErrInsufficientFunds},
		{name: "insufficient funds ignored without funds check", tx: good, balance: 0, checkFunds: false},
		{name: "bad signature", tx: forged, balance: 10, checkFunds: true, wantErr: blockchain.ErrInvalidSignature},
		{name: "bad signature without funds check", tx: forged, balance: 10, checkFunds: false, wantErr: blockchain.ErrInvalidSignature},
		{
			name:    "malformed sender",
			tx:      blockchain.Transaction{Sender: "nobody", Recipient: "bob", Signature: good.Signature, Amount: 1},
			balance: 10, checkFunds: true,
			wantErr: wallet.ErrMalformedKey,
		},
		{
			name:    "reward skips signature",
			tx:      blockchain.RewardTransaction("bob"),
			balance: 0, checkFunds: false,
		},
		{
			name:    "negative amount",
			tx:      blockchain.Transaction{Sender: alice.PublicKey, Recipient: "bob", Amount: -1},
			balance: 10, checkFunds: true,
			wantErr: blockchain.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyTransaction(tt.tx, fixedBalance(tt.balance), tt.checkFunds)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("VerifyTransaction() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("VerifyTransaction() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerifyTransactions(t *testing.T) {
	alice, err := wallet.Generate()
	if err != nil {
		t.Fatal(err)
	}
	pool := []blockchain.Transaction{
		signedTx(t, alice, "bob", 1),
		signedTx(t, alice, "carol", 100),
	}

	// Funds are not re-checked for pooled transactions.
	if err := VerifyTransactions(pool, fixedBalance(0)); err != nil {
		t.Fatalf("VerifyTransactions() unexpected error = %v", err)
	}

	pool[1].Recipient = "mallory"
	if err := VerifyTransactions(pool, fixedBalance(0)); !errors.Is(err, blockchain.ErrInvalidSignature) {
		t.Errorf("VerifyTransactions() error = %v, want ErrInvalidSignature", err)
	}
}
