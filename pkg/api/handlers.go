package api

import (
	"encoding/json"
	"math"
	"mime"
	"net/http"
	"sync"

	"chgraph/pkg/ch"
)

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	graph *ch.PreprocessedGraph
	qs    sync.Pool
	stats StatsResponse
}

// NewHandlers creates handlers serving queries against g.
func NewHandlers(g *ch.PreprocessedGraph, stats StatsResponse) *Handlers {
	return &Handlers{
		graph: g,
		qs: sync.Pool{
			New: func() any { return ch.NewQueryState(g) },
		},
		stats: stats,
	}
}

// HandleRoute handles POST /api/v1/route.
func (h *Handlers) HandleRoute(w http.ResponseWriter, r *http.Request) {
	// Enforce Content-Type.
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	// Parse request.
	var req RouteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	if req.Source >= h.graph.NumNodes {
		writeError(w, http.StatusBadRequest, "invalid_node_id", "source")
		return
	}
	if req.Target >= h.graph.NumNodes {
		writeError(w, http.StatusBadRequest, "invalid_node_id", "target")
		return
	}

	qs := h.qs.Get().(*ch.QueryState)
	total := ch.Query(h.graph, req.Source, req.Target, qs)
	h.qs.Put(qs)

	if math.IsInf(total, 1) {
		writeError(w, http.StatusNotFound, "no_route_found", "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(RouteResponse{TotalWeight: total})
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.stats)
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: code, Field: field})
}
