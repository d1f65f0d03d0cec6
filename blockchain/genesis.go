package blockchain

// Genesis returns the fixed first block shared by every node. Each call
// returns a fresh value so callers may keep it without aliasing.
func Genesis() Block {
	return Block{
		Index:        0,
		PreviousHash: "",
		Transactions: []Transaction{},
		Proof:        GenesisProof,
		Timestamp:    0,
	}
}

// IsGenesis reports whether b equals the genesis block field for field.
func IsGenesis(b Block) bool {
	return b.Index == 0 &&
		b.PreviousHash == "" &&
		len(b.Transactions) == 0 &&
		b.Proof == GenesisProof &&
		b.Timestamp == 0
}
