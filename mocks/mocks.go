// Package mocks builds signed transactions, accounts and valid chains for
// tests and the traffic bot.
package mocks

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"gocuria/blockchain"
	"gocuria/wallet"
)

var ErrNoFunds = errors.New("insufficient balance")

// GenerateAccounts creates count fresh wallets.
func GenerateAccounts(count int) ([]*wallet.Wallet, error) {
	accounts := make([]*wallet.Wallet, count)
	for i := range accounts {
		w, err := wallet.Generate()
		if err != nil {
			return nil, fmt.Errorf("account %d: %w", i, err)
		}
		accounts[i] = w
	}
	return accounts, nil
}

// GenerateValidTransaction signs a transfer of amount from sender to
// recipient.
func GenerateValidTransaction(sender *wallet.Wallet, recipient string, amount float64) (blockchain.Transaction, error) {
	sig, err := sender.Sign(sender.PublicKey, recipient, amount)
	if err != nil {
		return blockchain.Transaction{}, err
	}
	return blockchain.Transaction{
		Sender:    sender.PublicKey,
		Recipient: recipient,
		Signature: sig,
		Amount:    amount,
	}, nil
}

// GenerateRandomTransaction signs a transfer to a random recipient other than
// sender, for an amount between 0.01 and balance rounded to cents.
func GenerateRandomTransaction(rng *rand.Rand, sender *wallet.Wallet, recipients []string, balance float64) (blockchain.Transaction, error) {
	if balance < 0.01 {
		return blockchain.Transaction{}, ErrNoFunds
	}
	var candidates []string
	for _, r := range recipients {
		if r != sender.PublicKey {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return blockchain.Transaction{}, errors.New("no recipient other than the sender")
	}

	cents := int64(math.Floor(balance * 100))
	amount := float64(1+rng.Int64N(cents)) / 100
	return GenerateValidTransaction(sender, candidates[rng.IntN(len(candidates))], amount)
}

// GenerateMinedChain returns a valid chain of blocks mined blocks after
// genesis, each paying the reward to miner. Timestamps are fixed so equal
// arguments give equal chains.
func GenerateMinedChain(blocks int, miner string) []blockchain.Block {
	chain := []blockchain.Block{blockchain.Genesis()}
	for i := 0; i < blocks; i++ {
		chain = append(chain, blockchain.NewBlock(blockchain.BlockCreationParams{
			Index:     len(chain),
			Previous:  chain[len(chain)-1],
			Miner:     miner,
			Timestamp: float64(1700000000 + i),
		}))
	}
	return chain
}

// GenerateInvalidChain returns a chain of blocks mined blocks whose first
// block no longer links to genesis and pays an inflated reward. For blocks
// < 1 the genesis-only chain is returned unchanged.
func GenerateInvalidChain(blocks int, miner string) []blockchain.Block {
	chain := GenerateMinedChain(blocks, miner)
	if len(chain) > 1 {
		chain[1].PreviousHash = strings.Repeat("0", len(chain[1].PreviousHash))
		chain[1].Transactions[len(chain[1].Transactions)-1].Amount = 1000
	}
	return chain
}
