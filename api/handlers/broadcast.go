package handlers

import (
	"net/http"

	"gocuria/ledger"
	"gocuria/p2p"
)

// HandleBroadcastTransaction pools a transaction relayed by a peer without
// relaying it further.
func HandleBroadcastTransaction(w http.ResponseWriter, r *http.Request, d *Deps) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if d.Ledger.PublicKey() == "" {
		writeMessage(w, http.StatusInternalServerError, "No identity configured.", ledger.ErrNoIdentity)
		return
	}

	msg, err := p2p.DecodeTransactionMessage(r.Body)
	if err != nil {
		d.Logger.Debug("malformed transaction broadcast", "err", err)
		writeMessage(w, http.StatusBadRequest, "Invalid transaction payload.", err)
		return
	}
	tx, err := msg.Transaction()
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid transaction payload.", err)
		return
	}

	if err := d.Ledger.AddTransaction(tx, ledger.FromBroadcast()); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Creating a transaction failed.", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":     "Successfully added transaction.",
		"transaction": p2p.NewTransactionMessage(tx),
	})
}

// HandleBroadcastBlock appends a block announced by a peer when it extends
// our tail. A block further ahead only marks the ledger for resolution.
func HandleBroadcastBlock(w http.ResponseWriter, r *http.Request, d *Deps) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	msg, err := p2p.DecodeBlockMessage(r.Body)
	if err != nil {
		d.Logger.Debug("malformed block broadcast", "err", err)
		writeMessage(w, http.StatusBadRequest, "Invalid block payload.", err)
		return
	}

	outcome, err := d.Ledger.ReceiveBlock(*msg.Block)
	switch outcome {
	case ledger.BlockAccepted:
		writeMessage(w, http.StatusCreated, "Block added.", nil)
	case ledger.BlockAhead:
		writeMessage(w, http.StatusOK, "Blockchain seems to differ from local blockchain.", nil)
	default:
		writeMessage(w, http.StatusConflict, "Blockchain seems to be shorter, block not added.", err)
	}
}
