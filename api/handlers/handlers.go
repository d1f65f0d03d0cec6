package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"gocuria/ledger"
	"gocuria/wallet"
)

// Deps is what every handler needs from the node.
type Deps struct {
	Ledger  *ledger.Ledger
	Keyring *wallet.Keyring
	Logger  *slog.Logger
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeMessage answers with {"message": msg} plus an "error" field when err
// is set.
func writeMessage(w http.ResponseWriter, status int, msg string, err error) {
	body := map[string]any{"message": msg}
	if err != nil {
		body["error"] = err.Error()
	}
	writeJSON(w, status, body)
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}
