// internal/handlers/health.go
package handlers

import "net/http"

// HealthHandler is the liveness endpoint.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
