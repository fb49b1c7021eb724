package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

const maxBodyBytes = 1 << 20 // 1 MiB request body cap

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// readJSON decodes the request body into v, rejecting unknown payload sizes
// and trailing garbage.
func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	return dec.Decode(v)
}

// parseIntPath reads a numeric path segment, returning 0 when absent or not
// a number.
func parseIntPath(r *http.Request, name string) int {
	v := strings.TrimSpace(r.PathValue(name))
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
