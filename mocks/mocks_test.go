package mocks

import (
	"errors"
	"math/rand/v2"
	"testing"

	"gocuria/blockchain"
	"gocuria/wallet"
)

func TestGenerateValidTransaction(t *testing.T) {
	accounts, err := GenerateAccounts(2)
	if err != nil {
		t.Fatal(err)
	}
	tx, err := GenerateValidTransaction(accounts[0], accounts[1].PublicKey, 3)
	if err != nil {
		t.Fatal(err)
	}
	if ok, err := wallet.Verify(tx); err != nil || !ok {
		t.Errorf("Generated transaction does not verify: %v", err)
	}
}

func TestGenerateRandomTransaction(t *testing.T) {
	accounts, err := GenerateAccounts(3)
	if err != nil {
		t.Fatal(err)
	}
	recipients := []string{accounts[0].PublicKey, accounts[1].PublicKey, accounts[2].PublicKey}
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 20; i++ {
		tx, err := GenerateRandomTransaction(rng, accounts[0], recipients, 5)
		if err != nil {
			t.Fatal(err)
		}
		if tx.Recipient == accounts[0].PublicKey {
			t.Error("Sender picked itself as recipient")
		}
		if tx.Amount < 0.01 || tx.Amount > 5 {
			t.Errorf("Amount %v out of range", tx.Amount)
		}
	}

	if _, err := GenerateRandomTransaction(rng, accounts[0], recipients, 0); !errors.Is(err, ErrNoFunds) {
		t.Errorf("Expected ErrNoFunds, got %v", err)
	}
}

func TestGeneratedChains(t *testing.T) {
	if err := blockchain.VerifyChain(GenerateMinedChain(3, "miner")); err != nil {
		t.Errorf("Mined chain does not verify: %v", err)
	}
	for _, blocks := range []int{1, 2, 3} {
		if err := blockchain.VerifyChain(GenerateInvalidChain(blocks, "miner")); !errors.Is(err, blockchain.ErrInvalidChain) {
			t.Errorf("Invalid chain of %d blocks verified: %v", blocks, err)
		}
	}
}
