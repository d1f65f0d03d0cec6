package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gocuria/blockchain"
	"gocuria/ledger"
	"gocuria/p2p"
)

type transactionRequest struct {
	Recipient *string  `json:"recipient"`
	Amount    *float64 `json:"amount"`
}

// HandleTransactions creates a transaction from the node's own wallet on POST
// and lists the pending pool on GET.
func HandleTransactions(w http.ResponseWriter, r *http.Request, d *Deps) {
	switch r.Method {
	case http.MethodPost:
		handleCreateTransaction(w, r, d)
	case http.MethodGet:
		handleOpenTransactions(w, d)
	default:
		methodNotAllowed(w)
	}
}

func handleCreateTransaction(w http.ResponseWriter, r *http.Request, d *Deps) {
	wal, ok := d.Keyring.Current()
	if !ok {
		writeMessage(w, http.StatusBadRequest, "No wallet set up.", ledger.ErrNoIdentity)
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON format.", err)
		return
	}
	if req.Recipient == nil || req.Amount == nil {
		writeMessage(w, http.StatusBadRequest, "Required data is missing.", nil)
		return
	}

	sig, err := wal.Sign(wal.PublicKey, *req.Recipient, *req.Amount)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Signing the transaction failed.", err)
		return
	}
	tx := blockchain.Transaction{
		Sender:    wal.PublicKey,
		Recipient: *req.Recipient,
		Signature: sig,
		Amount:    *req.Amount,
	}

	if err := d.Ledger.AddTransaction(tx); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, blockchain.ErrValidation) || errors.Is(err, ledger.ErrNoIdentity) {
			status = http.StatusBadRequest
		}
		writeMessage(w, status, "Creating a transaction failed.", err)
		return
	}

	funds, _ := d.Ledger.OwnBalance()
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":     "Successfully added transaction.",
		"transaction": p2p.NewTransactionMessage(tx),
		"funds":       funds,
	})
}

func handleOpenTransactions(w http.ResponseWriter, d *Deps) {
	pool := d.Ledger.OpenTransactions()
	out := make([]p2p.TransactionMessage, len(pool))
	for i, tx := range pool {
		out[i] = p2p.NewTransactionMessage(tx)
	}
	writeJSON(w, http.StatusOK, out)
}
