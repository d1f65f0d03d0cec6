package blockchain

import "strings"

// ValidProof reports whether hashing txs, lastHash and proof together yields a
// digest that meets the fixed difficulty. It is a pure function.
func ValidProof(txs []Transaction, lastHash string, proof int) bool {
	return strings.HasPrefix(hashHex(proofGuess(txs, lastHash, proof)), DifficultyPrefix)
}
