package mw

import (
	"encoding/json"
	"net/http"
)

// SourceHeader names the store that served a data response. Handlers set
// it and the access log reports it.
const SourceHeader = "X-Atal-Source"

// rejectJSON answers with the same {"error": ...} body the API handlers use.
func rejectJSON(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
