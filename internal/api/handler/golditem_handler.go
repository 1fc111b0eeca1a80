package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"goldloan-engine/internal/api/handler/dto"
	"goldloan-engine/internal/domain/golditem"
	"goldloan-engine/internal/pkg/apperrors"
)

type GoldItemHandler struct {
	service golditem.Service
	logger  *slog.Logger
}

func NewGoldItemHandler(s golditem.Service, l *slog.Logger) *GoldItemHandler {
	return &GoldItemHandler{
		service: s,
		logger:  l.With("component", "GoldItemHandler"),
	}
}

// AddItem registers a gold item in the inventory. New items always enter as
// AVAILABLE; only the lending engine moves them.
//
// @Summary Add a gold item
// @Tags GoldItems
// @Accept json
// @Produce json
// @Param request body dto.GoldItemRequest true "Gold item payload"
// @Success 201 {object} dto.GoldItemResponse
// @Failure 400 {object} dto.Response "Invalid request payload"
// @Router /admin/gold-items [post]
// @Security BearerAuth
func (h *GoldItemHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req dto.GoldItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	created, err := h.service.AddItem(r.Context(), req.ToDomain())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, dto.NewGoldItemResponse(created))
}

// GetItem retrieves a gold item.
//
// @Summary Retrieve a gold item
// @Tags GoldItems
// @Produce json
// @Param itemID path int true "Gold item ID"
// @Success 200 {object} dto.GoldItemResponse
// @Failure 404 {object} dto.Response "Gold item not found"
// @Router /admin/gold-items/{itemID} [get]
// @Security BearerAuth
func (h *GoldItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := getIDParam(r, "itemID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	item, err := h.service.GetItem(r.Context(), itemID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewGoldItemResponse(item))
}

// ListItems lists the whole inventory.
//
// @Summary List gold items
// @Tags GoldItems
// @Produce json
// @Success 200 {array} dto.GoldItemResponse
// @Router /admin/gold-items [get]
// @Security BearerAuth
func (h *GoldItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewGoldItemListResponse(items))
}

// ListAvailableItems lists items free to back a new customer loan.
//
// @Summary List available gold items
// @Tags GoldItems
// @Produce json
// @Success 200 {array} dto.GoldItemResponse
// @Router /admin/gold-items/available [get]
// @Security BearerAuth
func (h *GoldItemHandler) ListAvailableItems(w http.ResponseWriter, r *http.Request) {
	h.listByStatus(w, r, golditem.StatusAvailable)
}

// ListPledgedItems lists items currently collateralizing customer loans.
//
// @Summary List pledged gold items
// @Tags GoldItems
// @Produce json
// @Success 200 {array} dto.GoldItemResponse
// @Router /admin/gold-items/pledged [get]
// @Security BearerAuth
func (h *GoldItemHandler) ListPledgedItems(w http.ResponseWriter, r *http.Request) {
	h.listByStatus(w, r, golditem.StatusPledged)
}

func (h *GoldItemHandler) listByStatus(w http.ResponseWriter, r *http.Request, status golditem.Status) {
	items, err := h.service.ListItemsByStatus(r.Context(), status)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewGoldItemListResponse(items))
}

// UpdateItem replaces a gold item's descriptive fields. Status is not settable
// through this endpoint.
//
// @Summary Update a gold item
// @Tags GoldItems
// @Accept json
// @Produce json
// @Param itemID path int true "Gold item ID"
// @Param request body dto.GoldItemRequest true "Gold item payload"
// @Success 200 {object} dto.GoldItemResponse
// @Failure 400 {object} dto.Response "Invalid request payload"
// @Failure 404 {object} dto.Response "Gold item not found"
// @Router /admin/gold-items/{itemID} [put]
// @Security BearerAuth
func (h *GoldItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := getIDParam(r, "itemID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	var req dto.GoldItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	item := req.ToDomain()
	item.ID = itemID

	updated, err := h.service.UpdateItem(r.Context(), item)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewGoldItemResponse(updated))
}

// RemoveItem deletes a gold item. Pledged items cannot be removed.
//
// @Summary Remove a gold item
// @Tags GoldItems
// @Produce json
// @Param itemID path int true "Gold item ID"
// @Success 200 {object} dto.Response
// @Failure 404 {object} dto.Response "Gold item not found"
// @Failure 409 {object} dto.Response "Item is pledged and cannot be removed"
// @Router /admin/gold-items/{itemID} [delete]
// @Security BearerAuth
func (h *GoldItemHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := getIDParam(r, "itemID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	if err := h.service.RemoveItem(r.Context(), itemID); err != nil {
		respondError(w, err)
		return
	}
	respondEnvelope(w, http.StatusOK, nil, "Gold item removed")
}
