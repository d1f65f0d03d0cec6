package p2p

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gocuria/blockchain"
)

// Wire payloads use pointer fields so that a missing key can be told apart
// from a zero value. Nothing is turned into a blockchain value until Validate
// has accepted the whole payload.

// ErrMalformedPayload wraps blockchain.ErrValidation so handlers can treat a
// bad payload like any other rejected input.
var ErrMalformedPayload = fmt.Errorf("%w: malformed payload", blockchain.ErrValidation)

// TransactionMessage is the body of POST /broadcast-transaction and the
// element type of every transaction list on the wire.
type TransactionMessage struct {
	Sender    *string  `json:"sender"`
	Recipient *string  `json:"recipient"`
	Amount    *float64 `json:"amount"`
	Signature *string  `json:"signature"`
}

// BlockPayload is the flattened block carried by broadcasts and /chain.
type BlockPayload struct {
	Index        *int                 `json:"index"`
	PreviousHash *string              `json:"previous_hash"`
	Transactions []TransactionMessage `json:"transactions"`
	Proof        *int                 `json:"proof"`
	Timestamp    *float64             `json:"timestamp"`
}

// BlockMessage is the body of POST /broadcast-block.
type BlockMessage struct {
	Block *BlockPayload `json:"block"`
}

func NewTransactionMessage(tx blockchain.Transaction) TransactionMessage {
	return TransactionMessage{
		Sender:    &tx.Sender,
		Recipient: &tx.Recipient,
		Amount:    &tx.Amount,
		Signature: &tx.Signature,
	}
}

func NewBlockPayload(b blockchain.Block) BlockPayload {
	txs := make([]TransactionMessage, len(b.Transactions))
	for i, tx := range b.Transactions {
		txs[i] = NewTransactionMessage(tx)
	}
	return BlockPayload{
		Index:        &b.Index,
		PreviousHash: &b.PreviousHash,
		Transactions: txs,
		Proof:        &b.Proof,
		Timestamp:    &b.Timestamp,
	}
}

func NewBlockMessage(b blockchain.Block) BlockMessage {
	p := NewBlockPayload(b)
	return BlockMessage{Block: &p}
}

func (m TransactionMessage) Validate() error {
	var missing []string
	if m.Sender == nil {
		missing = append(missing, "sender")
	}
	if m.Recipient == nil {
		missing = append(missing, "recipient")
	}
	if m.Amount == nil {
		missing = append(missing, "amount")
	}
	if m.Signature == nil {
		missing = append(missing, "signature")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: transaction missing %v", ErrMalformedPayload, missing)
	}
	if err := blockchain.ValidateAmount(*m.Amount); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	return nil
}

// Transaction converts a validated message.
func (m TransactionMessage) Transaction() (blockchain.Transaction, error) {
	if err := m.Validate(); err != nil {
		return blockchain.Transaction{}, err
	}
	return blockchain.Transaction{
		Sender:    *m.Sender,
		Recipient: *m.Recipient,
		Signature: *m.Signature,
		Amount:    *m.Amount,
	}, nil
}

func (p BlockPayload) Validate() error {
	var missing []string
	if p.Index == nil {
		missing = append(missing, "index")
	}
	if p.PreviousHash == nil {
		missing = append(missing, "previous_hash")
	}
	if p.Transactions == nil {
		missing = append(missing, "transactions")
	}
	if p.Proof == nil {
		missing = append(missing, "proof")
	}
	if p.Timestamp == nil {
		missing = append(missing, "timestamp")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: block missing %v", ErrMalformedPayload, missing)
	}
	if *p.Index < 0 || *p.Proof < 0 {
		return fmt.Errorf("%w: negative index or proof", ErrMalformedPayload)
	}
	for i, tx := range p.Transactions {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("transaction %d: %w", i, err)
		}
	}
	return nil
}

// ToBlock converts a validated payload. Either the whole block is built or an
// error is returned; partial blocks never escape.
func (p BlockPayload) ToBlock() (blockchain.Block, error) {
	if err := p.Validate(); err != nil {
		return blockchain.Block{}, err
	}
	txs := make([]blockchain.Transaction, len(p.Transactions))
	for i, m := range p.Transactions {
		txs[i] = blockchain.Transaction{
			Sender:    *m.Sender,
			Recipient: *m.Recipient,
			Signature: *m.Signature,
			Amount:    *m.Amount,
		}
	}
	return blockchain.Block{
		Index:        *p.Index,
		PreviousHash: *p.PreviousHash,
		Transactions: txs,
		Proof:        *p.Proof,
		Timestamp:    *p.Timestamp,
	}, nil
}

// ToBlock converts the block carried by the message.
func (m BlockMessage) ToBlock() (blockchain.Block, error) {
	if m.Block == nil {
		return blockchain.Block{}, fmt.Errorf("%w: missing block", ErrMalformedPayload)
	}
	return m.Block.ToBlock()
}

// EncodeChain flattens a chain for GET /chain.
func EncodeChain(chain []blockchain.Block) []BlockPayload {
	out := make([]BlockPayload, len(chain))
	for i, b := range chain {
		out[i] = NewBlockPayload(b)
	}
	return out
}

// DecodeChain parses a GET /chain body into blocks.
func DecodeChain(r io.Reader) ([]blockchain.Block, error) {
	var payloads []BlockPayload
	if err := decodeJSON(r, &payloads); err != nil {
		return nil, err
	}
	chain := make([]blockchain.Block, len(payloads))
	for i, p := range payloads {
		b, err := p.ToBlock()
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		chain[i] = b
	}
	return chain, nil
}

// DecodeTransactionMessage reads a broadcast transaction body.
func DecodeTransactionMessage(r io.Reader) (TransactionMessage, error) {
	var m TransactionMessage
	if err := decodeJSON(r, &m); err != nil {
		return m, err
	}
	return m, m.Validate()
}

// DecodeBlockMessage reads a broadcast block body.
func DecodeBlockMessage(r io.Reader) (BlockMessage, error) {
	var m BlockMessage
	if err := decodeJSON(r, &m); err != nil {
		return m, err
	}
	if m.Block == nil {
		return m, fmt.Errorf("%w: missing block", ErrMalformedPayload)
	}
	return m, m.Block.Validate()
}

func decodeJSON(r io.Reader, v any) error {
	err := json.NewDecoder(r).Decode(v)
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: empty body", ErrMalformedPayload)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}
