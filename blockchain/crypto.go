package blockchain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
)

// CanonicalTransaction is the fixed (sender, recipient, amount) ordering of a
// transaction. Its JSON encoding is the only transaction content that is ever
// signed, verified or hashed, so the field order must never change.
type CanonicalTransaction struct {
	Sender    string  `json:"sender"`
	Recipient string  `json:"recipient"`
	Amount    float64 `json:"amount"`
}

func CanonicalForm(tx Transaction) CanonicalTransaction {
	return CanonicalTransaction{
		Sender:    tx.Sender,
		Recipient: tx.Recipient,
		Amount:    tx.Amount,
	}
}

// CanonicalBytes returns the byte string a transaction signature covers.
func CanonicalBytes(sender, recipient string, amount float64) []byte {
	return mustMarshal(CanonicalTransaction{Sender: sender, Recipient: recipient, Amount: amount})
}

// CanonicalBytes returns the byte string tx's signature covers.
func (tx Transaction) CanonicalBytes() []byte {
	return CanonicalBytes(tx.Sender, tx.Recipient, tx.Amount)
}

func canonicalTransactions(txs []Transaction) []CanonicalTransaction {
	out := make([]CanonicalTransaction, len(txs))
	for i, tx := range txs {
		out[i] = CanonicalForm(tx)
	}
	return out
}

// hashableBlock fixes the field order of a block digest.
type hashableBlock struct {
	Index        int                    `json:"index"`
	PreviousHash string                 `json:"previous_hash"`
	Transactions []CanonicalTransaction `json:"transactions"`
	Proof        int                    `json:"proof"`
	Timestamp    float64                `json:"timestamp"`
}

// HashBlock returns the lowercase hex SHA-256 digest of a block's canonical
// representation. It links every block to its predecessor.
func HashBlock(b Block) string {
	data := mustMarshal(hashableBlock{
		Index:        b.Index,
		PreviousHash: b.PreviousHash,
		Transactions: canonicalTransactions(b.Transactions),
		Proof:        b.Proof,
		Timestamp:    b.Timestamp,
	})
	return hashHex(data)
}

// proofGuess concatenates the canonical transactions, the previous block hash
// and the candidate proof into the string hashed by proof-of-work.
func proofGuess(txs []Transaction, lastHash string, proof int) []byte {
	guess := mustMarshal(canonicalTransactions(txs))
	guess = append(guess, lastHash...)
	guess = strconv.AppendInt(guess, int64(proof), 10)
	return guess
}

func hashHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// mustMarshal only fails on non-finite floats. Amounts are checked with
// ValidateAmount before they reach the hashing code.
func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic("blockchain: canonical encoding failed: " + err.Error())
	}
	return b
}
