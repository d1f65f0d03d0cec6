package blockchain

const (
	// DifficultyPrefix is the fixed proof-of-work target: the hex digest of a
	// valid guess must start with it.
	DifficultyPrefix = "00"

	// MiningSender marks the reward transaction appended by a miner.
	MiningSender = "MINING"

	// MiningReward is the amount credited to a miner for every block.
	MiningReward = 10.0

	// GenesisProof is the proof stored in the genesis block.
	GenesisProof = 100
)

type Transaction struct {
	Sender    string  `json:"sender"`
	Recipient string  `json:"recipient"`
	Signature string  `json:"signature"`
	Amount    float64 `json:"amount"`
}

// IsReward reports whether tx is a mining reward. Reward transactions carry no
// signature and are never checked against a sender key.
func (tx Transaction) IsReward() bool {
	return tx.Sender == MiningSender
}

type Block struct {
	Index        int           `json:"index"`
	PreviousHash string        `json:"previous_hash"`
	Transactions []Transaction `json:"transactions"`
	Proof        int           `json:"proof"`
	Timestamp    float64       `json:"timestamp"`
}

// Clone returns a copy of b that shares no transaction slice with it.
func (b Block) Clone() Block {
	out := b
	out.Transactions = make([]Transaction, len(b.Transactions))
	copy(out.Transactions, b.Transactions)
	return out
}

// CloneChain deep-copies a slice of blocks.
func CloneChain(chain []Block) []Block {
	out := make([]Block, len(chain))
	for i, b := range chain {
		out[i] = b.Clone()
	}
	return out
}

// RewardTransaction builds the transaction a miner appends after finding a proof.
func RewardTransaction(recipient string) Transaction {
	return Transaction{
		Sender:    MiningSender,
		Recipient: recipient,
		Signature: "",
		Amount:    MiningReward,
	}
}
