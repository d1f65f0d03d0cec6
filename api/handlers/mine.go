package handlers

import (
	"errors"
	"net/http"

	"gocuria/ledger"
	"gocuria/p2p"
)

// HandleMine mines the pending pool. It refuses while a peer conflict is
// waiting to be resolved.
func HandleMine(w http.ResponseWriter, r *http.Request, d *Deps) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if d.Ledger.NeedsResolve() {
		writeMessage(w, http.StatusConflict, "Resolve conflicts first, block not added!", nil)
		return
	}

	block, err := d.Ledger.MineBlock()
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ledger.ErrNoIdentity) {
			status = http.StatusBadRequest
		}
		writeMessage(w, status, "Adding a block failed.", err)
		return
	}

	funds, _ := d.Ledger.OwnBalance()
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Block added successfully.",
		"block":   p2p.NewBlockPayload(block),
		"funds":   funds,
	})
}
