package handlers

import (
	"net/http"

	"gocuria/p2p"
)

// HandleChain serves the full chain. Peers fetch it during resolution.
func HandleChain(w http.ResponseWriter, r *http.Request, d *Deps) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, p2p.EncodeChain(d.Ledger.Chain()))
}

func HandleResolveConflicts(w http.ResponseWriter, r *http.Request, d *Deps) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if d.Ledger.Resolve() {
		writeMessage(w, http.StatusOK, "Chain was replaced!", nil)
		return
	}
	writeMessage(w, http.StatusOK, "Local chain kept!", nil)
}
