package blockchain

import "time"

type BlockCreationParams struct {
	// Index is the position of the new block, the length of the chain it
	// extends.
	Index        int
	Previous     Block
	Transactions []Transaction
	Miner        string
	Timestamp    float64
}

// NewBlock mines a block on top of params.Previous. The proof covers the
// pending transactions only; the miner's reward is appended afterwards, which
// is why chain verification ignores the last transaction of every block.
func NewBlock(params BlockCreationParams) Block {
	ts := params.Timestamp
	if ts == 0 {
		ts = float64(time.Now().UnixNano()) / float64(time.Second)
	}

	lastHash := HashBlock(params.Previous)
	proof := ProofOfWork(params.Transactions, lastHash)

	txs := make([]Transaction, 0, len(params.Transactions)+1)
	txs = append(txs, params.Transactions...)
	txs = append(txs, RewardTransaction(params.Miner))

	return Block{
		Index:        params.Index,
		PreviousHash: lastHash,
		Transactions: txs,
		Proof:        proof,
		Timestamp:    ts,
	}
}
