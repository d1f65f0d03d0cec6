package blockchain

// ProofOfWork searches proofs upward from zero until ValidProof holds for txs
// on top of lastHash. The loop is unbounded and never yields; callers serving
// other requests should run it on its own goroutine.
func ProofOfWork(txs []Transaction, lastHash string) int {
	proof := 0
	for !ValidProof(txs, lastHash, proof) {
		proof++
	}
	return proof
}
