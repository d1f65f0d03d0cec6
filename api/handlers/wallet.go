package handlers

import (
	"net/http"
)

// HandleWallet creates and saves a new wallet on POST, or loads the saved one
// on GET. Either way the ledger is reinitialized with the resulting key.
func HandleWallet(w http.ResponseWriter, r *http.Request, d *Deps) {
	switch r.Method {
	case http.MethodPost:
		if _, err := d.Keyring.Create(); err != nil {
			writeMessage(w, http.StatusInternalServerError, "Creating the wallet failed.", err)
			return
		}
		if err := d.Keyring.Save(); err != nil {
			writeMessage(w, http.StatusInternalServerError, "Saving the keys failed.", err)
			return
		}
	case http.MethodGet:
		if _, err := d.Keyring.Load(); err != nil {
			writeMessage(w, http.StatusInternalServerError, "Loading the keys failed.", err)
			return
		}
	default:
		methodNotAllowed(w)
		return
	}

	if err := d.Ledger.Reinitialize(d.Keyring.PublicKey()); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Reloading the ledger failed.", err)
		return
	}
	funds, _ := d.Ledger.OwnBalance()
	writeJSON(w, http.StatusCreated, map[string]any{
		"public_key": d.Keyring.PublicKey(),
		"funds":      funds,
	})
}

func HandleBalance(w http.ResponseWriter, r *http.Request, d *Deps) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	funds, err := d.Ledger.OwnBalance()
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Loading balance failed.", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Fetched balance successfully.",
		"funds":   funds,
	})
}
