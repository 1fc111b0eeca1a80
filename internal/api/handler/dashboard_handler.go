package handler

import (
	"log/slog"
	"net/http"

	"goldloan-engine/internal/api/handler/dto"
	"goldloan-engine/internal/domain/dashboard"
)

type DashboardHandler struct {
	service dashboard.Service
	logger  *slog.Logger
}

func NewDashboardHandler(s dashboard.Service, l *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: s,
		logger:  l.With("component", "DashboardHandler"),
	}
}

// GetMetrics returns the portfolio aggregate. The response may be a few
// seconds stale when the cache is enabled.
//
// @Summary Retrieve dashboard metrics
// @Tags Dashboard
// @Produce json
// @Success 200 {object} dto.DashboardResponse
// @Router /admin/dashboard [get]
// @Security BearerAuth
func (h *DashboardHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.GetMetrics(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewDashboardResponse(m))
}

// SaveSnapshot persists a fresh portfolio aggregate as a historical record.
//
// @Summary Persist a dashboard snapshot
// @Tags Dashboard
// @Produce json
// @Success 201 {object} dto.SnapshotResponse
// @Router /admin/dashboard/snapshot [post]
// @Security BearerAuth
func (h *DashboardHandler) SaveSnapshot(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.SaveSnapshot(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, dto.NewSnapshotResponse(s))
}

// ListSnapshots lists persisted dashboard snapshots, newest first.
//
// @Summary List dashboard snapshots
// @Tags Dashboard
// @Produce json
// @Success 200 {array} dto.SnapshotResponse
// @Router /admin/dashboard/snapshots [get]
// @Security BearerAuth
func (h *DashboardHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.service.ListSnapshots(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewSnapshotListResponse(snapshots))
}
