// Package verification holds the transaction checks that need the wallet's
// signature scheme. Block and chain checks live in package blockchain.
package verification

import (
	"fmt"
	"log/slog"

	"gocuria/blockchain"
	"gocuria/wallet"
)

// BalanceFunc returns the spendable balance of a participant.
type BalanceFunc func(participant string) float64

// VerifyTransaction checks tx's signature and, when checkFunds is set, that the
// sender can cover the amount. Admission into the pool checks funds; audits of
// already pooled transactions only re-check signatures, tolerating balance drift.
func VerifyTransaction(tx blockchain.Transaction, balance BalanceFunc, checkFunds bool) error {
	if err := blockchain.ValidateAmount(tx.Amount); err != nil {
		return err
	}

	if checkFunds {
		have := balance(tx.Sender)
		if have < tx.Amount {
			slog.Debug("transaction rejected", "component", "validation", "reason", "funds", "have", have, "need", tx.Amount)
			return fmt.Errorf("%w: has %v, needs %v", blockchain.ErrInsufficientFunds, have, tx.Amount)
		}
	}

	if tx.IsReward() {
		return nil
	}

	ok, err := wallet.Verify(tx)
	if err != nil {
		return fmt.Errorf("%w: %w", blockchain.ErrInvalidSignature, err)
	}
	if !ok {
		slog.Debug("transaction rejected", "component", "validation", "reason", "signature")
		return blockchain.ErrInvalidSignature
	}
	return nil
}

// VerifyTransactions re-checks the signature of every pooled transaction.
// Funds are deliberately not re-checked.
func VerifyTransactions(txs []blockchain.Transaction, balance BalanceFunc) error {
	for i, tx := range txs {
		if err := VerifyTransaction(tx, balance, false); err != nil {
			return fmt.Errorf("transaction %d: %w", i, err)
		}
	}
	return nil
}
