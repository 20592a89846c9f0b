package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/fitseek/fitseek/internal/search"
	"github.com/fitseek/fitseek/internal/types"
)

// ssePreamble is a comment frame padding the start of the stream so
// buffering proxies flush the response headers immediately.
var ssePreamble = ":" + strings.Repeat(" ", 2048) + "\n\n"

// streamRequest is the wire shape of a search request. Targets arrive under
// measurements.first (pit-to-pit) and measurements.second (length).
type streamRequest struct {
	Category     string `json:"category"`
	Seller       string `json:"seller"`
	Measurements struct {
		First  *float64 `json:"first"`
		Second *float64 `json:"second"`
	} `json:"measurements"`
	P2PTolerance    float64 `json:"p2pTolerance"`
	LengthTolerance float64 `json:"lengthTolerance"`
	MaxItems        int     `json:"maxItems"`
	MaxLinks        int     `json:"maxLinks"`
	SearchID        string  `json:"searchId"`
}

// handleSearchStream runs a search and streams its events as SSE frames.
// Invalid requests are rejected with 400 before any job is registered.
func (s *Server) handleSearchStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	var wire streamRequest
	if err := json.NewDecoder(r.Body).Decode(&wire); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	req := &types.SearchRequest{
		Category:        types.Category(strings.ToLower(strings.TrimSpace(wire.Category))),
		TargetP2P:       wire.Measurements.First,
		TargetLength:    wire.Measurements.Second,
		P2PTolerance:    wire.P2PTolerance,
		LengthTolerance: wire.LengthTolerance,
		Seller:          wire.Seller,
		MaxItems:        wire.MaxItems,
		MaxLinks:        wire.MaxLinks,
		SearchID:        strings.TrimSpace(wire.SearchID),
	}
	if req.SearchID == "" {
		req.SearchID = uuid.New().String()
	}

	events, err := s.orchestrator.Run(r.Context(), req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Client disconnect is an external cancellation trigger. The flag is a
	// no-op once the job has finished and been removed.
	searchID := req.SearchID
	go func() {
		<-r.Context().Done()
		s.registry.Cancel(searchID)
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	_, _ = fmt.Fprint(w, ssePreamble)
	flusher.Flush()

	for event := range events {
		data, err := search.MarshalEvent(event)
		if err != nil {
			s.logger.Printf("Failed to marshal %s event: %v", event.Kind(), err)
			continue
		}
		// Write failures mean the client is gone; keep draining so the
		// pipeline can unwind through its cancellation path.
		_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Kind(), data)
		flusher.Flush()
	}
}

// handleSearchCancel flags a running search for cancellation. Unknown ids
// are accepted; cancelling twice is a no-op.
func (s *Server) handleSearchCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		SearchID string `json:"searchId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.SearchID) == "" {
		s.writeJSON(w, map[string]interface{}{
			"ok":    false,
			"error": "missing searchId",
		})
		return
	}

	s.registry.Cancel(req.SearchID)
	s.writeJSON(w, map[string]interface{}{
		"ok":       true,
		"searchId": req.SearchID,
	})
}

// handleStatus reports the in-flight jobs.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jobs := s.registry.Snapshot()
	s.writeJSON(w, map[string]interface{}{
		"active": len(jobs),
		"jobs":   jobs,
	})
}
