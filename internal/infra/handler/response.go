package handler

import (
	"encoding/json"
	"errors"
	"net/http"
)

var (
	errServiceUnavailable = errors.New("service unavailable")
	errNotFound           = errors.New("not found")
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError writes {"error": msg}. Only 4xx responses expose err's text.
func writeError(w http.ResponseWriter, status int, err error) {
	message := "internal error"
	switch {
	case status >= 400 && status < 500 && err != nil:
		message = err.Error()
	case status == http.StatusBadGateway:
		message = "movie catalog unavailable"
	case status == http.StatusServiceUnavailable:
		message = "service unavailable"
	}
	writeJSON(w, status, map[string]string{"error": message})
}
