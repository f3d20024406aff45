package main

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/chicogong/realtime-duplex/pkg/orchestrator"
)

func writeJSONSnapshot(w io.Writer, snapshot []orchestrator.RegistrySnapshot) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(snapshot)
}

// latencyHandler serves GET /sessions/{id}/latency (§A.5): the per-stage
// timing breakdown for one live session's most recent turn, looked up
// through the registry's refcounted Lookup so a concurrent idle sweep
// can't close the stream mid-read.
func latencyHandler(registry *orchestrator.SessionRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		entry, release, ok := registry.Lookup(id)
		if !ok {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		defer release()

		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(entry.Stream.GetLatencyBreakdown())
	}
}
