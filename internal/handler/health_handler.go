package handler

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports whether a backing store is reachable.
type Pinger func(ctx context.Context) error

type healthResponse struct {
	Status string `json:"status"`
	Mongo  string `json:"mongo"`
}

// Health reports liveness and, when ping is set, database reachability.
//
// @Summary Healthcheck
// @Tags health
// @Produce json
// @Success 200 {object} healthResponse
// @Failure 503 {object} healthResponse
// @Router /health [get]
func Health(ping Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := healthResponse{Status: "ok", Mongo: "skipped"}
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				res.Status, res.Mongo = "degraded", "down"
				writeJSON(w, http.StatusServiceUnavailable, res)
				return
			}
			res.Mongo = "up"
		}
		writeJSON(w, http.StatusOK, res)
	}
}
