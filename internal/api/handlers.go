package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gresik-digital/expansion-cli/internal/expansion"
	"github.com/gresik-digital/expansion-cli/internal/model"
	"github.com/gresik-digital/expansion-cli/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

// scoreRequest is the body for POST /api/expansion/score and /conflicts.
type scoreRequest struct {
	Center     model.GeoPoint `json:"center"`
	RadiusKm   float64        `json:"radius_km"`
	SelectedID int64          `json:"selected_id"`
	RoadWidthM *float64       `json:"road_width_m,omitempty"`
	Region     string         `json:"region,omitempty"`
}

type scoreResponse struct {
	RunID string                     `json:"run_id,omitempty"`
	Score expansion.OpportunityScore `json:"score"`
}

type conflictsResponse struct {
	RunID              string               `json:"run_id,omitempty"`
	Conflicts          []expansion.Conflict `json:"conflicts"`
	CannibalizationPct float64              `json:"cannibalization_pct"`
}

type hotspotsRequest struct {
	Region    string          `json:"region,omitempty"`
	Reference *model.GeoPoint `json:"reference,omitempty"`
}

type hotspotsResponse struct {
	RunID     string              `json:"run_id,omitempty"`
	Hotspots  []expansion.Hotspot `json:"hotspots"`
	Direction string              `json:"direction"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.RadiusKm <= 0 {
		req.RadiusKm = model.DefaultServiceRadiusKm
	}

	ctx := r.Context()
	distributors, err := s.store.ListDistributors(ctx)
	if err != nil {
		s.serverError(w, "list distributors", err)
		return
	}
	warehouses, err := s.store.ListWarehouses(ctx)
	if err != nil {
		s.serverError(w, "list warehouses", err)
		return
	}
	cells, err := s.store.ListDemandCells(ctx, s.regionFor(req.Region))
	if err != nil {
		s.serverError(w, "list demand cells", err)
		return
	}

	result := expansion.ComputeOpportunityScore(expansion.ScoreInput{
		Center:       req.Center,
		RadiusKm:     req.RadiusKm,
		SelectedID:   req.SelectedID,
		Distributors: distributors,
		Warehouses:   warehouses,
		Cells:        cells,
		RoadWidthM:   req.RoadWidthM,
	})

	runID := s.saveRun(ctx, "score", req.Region, req.Center, req.RadiusKm, result)
	writeJSON(w, http.StatusOK, scoreResponse{RunID: runID, Score: result})
}

func (s *Server) handleConflicts(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.RadiusKm <= 0 {
		req.RadiusKm = model.DefaultServiceRadiusKm
	}

	ctx := r.Context()
	distributors, err := s.store.ListDistributors(ctx)
	if err != nil {
		s.serverError(w, "list distributors", err)
		return
	}

	conflicts := expansion.ComputeConflicts(req.SelectedID, req.Center, req.RadiusKm, distributors)
	resp := conflictsResponse{
		Conflicts:          conflicts,
		CannibalizationPct: expansion.CannibalizationPct(conflicts),
	}
	resp.RunID = s.saveRun(ctx, "conflicts", req.Region, req.Center, req.RadiusKm, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHotspots(w http.ResponseWriter, r *http.Request) {
	var req hotspotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	ctx := r.Context()
	cells, err := s.store.ListDemandCells(ctx, s.regionFor(req.Region))
	if err != nil {
		s.serverError(w, "list demand cells", err)
		return
	}
	distributors, err := s.store.ListDistributors(ctx)
	if err != nil {
		s.serverError(w, "list distributors", err)
		return
	}

	uncovered := expansion.Whitespace(cells, distributors)
	hotspots := expansion.ComputeHotspots(uncovered, req.Reference)
	resp := hotspotsResponse{
		Hotspots:  hotspots,
		Direction: expansion.DirectionSummary(hotspots),
	}

	var center model.GeoPoint
	if req.Reference != nil {
		center = *req.Reference
	}
	resp.RunID = s.saveRun(ctx, "hotspots", req.Region, center, 0, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := s.store.GetAnalysis(r.Context(), id)
	if err != nil {
		s.serverError(w, "get analysis run", err)
		return
	}
	if run == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "run not found"})
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}
	runs, err := s.store.ListAnalyses(r.Context(), limit)
	if err != nil {
		s.serverError(w, "list analysis runs", err)
		return
	}
	if runs == nil {
		runs = []store.AnalysisRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// saveRun persists the computation for later review. Persistence failures do
// not fail the request; the result is already computed.
func (s *Server) saveRun(ctx context.Context, kind, region string, center model.GeoPoint, radiusKm float64, result any) string {
	payload, err := json.Marshal(result)
	if err != nil {
		s.log.Warn("failed to marshal analysis result", zap.String("kind", kind), zap.Error(err))
		return ""
	}
	run := &store.AnalysisRun{
		ID:        uuid.NewString(),
		Kind:      kind,
		Region:    s.regionFor(region),
		Center:    center,
		RadiusKm:  radiusKm,
		Result:    payload,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.SaveAnalysis(ctx, run); err != nil {
		s.log.Warn("failed to persist analysis run", zap.String("kind", kind), zap.Error(err))
		return ""
	}
	return run.ID
}

func (s *Server) regionFor(requested string) string {
	if requested != "" {
		return requested
	}
	return s.region
}

func (s *Server) serverError(w http.ResponseWriter, op string, err error) {
	s.log.Error("handler failure", zap.String("op", op), zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}
