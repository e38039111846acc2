package flowsmonitor

import (
	"encoding/json"
	"net/http"
	"time"
)

type healthResponse struct {
	Status              string `json:"status"`
	LatestSnapshotEpoch int64  `json:"latest_snapshot_epoch"`
}

type statusResponse struct {
	Uptime    string           `json:"uptime"`
	Endpoints []EndpointStatus `json:"endpoints"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *StatusServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if latest := s.board.LatestSnapshotTime(); !latest.IsZero() {
		resp.LatestSnapshotEpoch = latest.Unix()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *StatusServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Endpoints: s.board.Endpoints(),
	})
}
