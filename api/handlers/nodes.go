package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// HandleNode adds a peer on POST /node and removes one on DELETE /node/{addr}.
func HandleNode(w http.ResponseWriter, r *http.Request, d *Deps) {
	switch r.Method {
	case http.MethodPost:
		handleAddNode(w, r, d)
	case http.MethodDelete:
		handleRemoveNode(w, r, d)
	default:
		methodNotAllowed(w)
	}
}

func handleAddNode(w http.ResponseWriter, r *http.Request, d *Deps) {
	var body struct {
		Node string `json:"node"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "No data attached.", err)
		return
	}
	if err := d.Ledger.AddPeerNode(body.Node); err != nil {
		writeMessage(w, http.StatusBadRequest, "No node data found.", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":   "Node added successfully.",
		"all_nodes": d.Ledger.PeerNodes(),
	})
}

func handleRemoveNode(w http.ResponseWriter, r *http.Request, d *Deps) {
	addr := strings.TrimPrefix(r.URL.Path, "/node/")
	if addr == "" || addr == r.URL.Path {
		writeMessage(w, http.StatusBadRequest, "Node address required in URL.", nil)
		return
	}
	d.Ledger.RemovePeerNode(addr)
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Node removed.",
		"all_nodes": d.Ledger.PeerNodes(),
	})
}

func HandleNodes(w http.ResponseWriter, r *http.Request, d *Deps) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"all_nodes": d.Ledger.PeerNodes()})
}
