package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"goldloan-engine/internal/domain/admin"
	"goldloan-engine/internal/pkg/apperrors"
)

type AdminHandler struct {
	service admin.Service
	logger  *slog.Logger
}

func NewAdminHandler(s admin.Service, l *slog.Logger) *AdminHandler {
	return &AdminHandler{
		service: s,
		logger:  l.With("component", "AdminHandler"),
	}
}

// ListAdmins returns the admin allow-list.
//
// @Summary List admin emails
// @Tags AdminManagement
// @Produce json
// @Success 200 {array} string
// @Router /admin-management/admins [get]
// @Security BearerAuth
func (h *AdminHandler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	emails, err := h.service.ListAdmins(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, emails)
}

// AddAdmin adds an email to the allow-list.
//
// @Summary Add an admin email
// @Tags AdminManagement
// @Produce json
// @Param email query string true "Admin email"
// @Success 200 {array} string "Updated allow-list"
// @Failure 400 {object} dto.Response "Invalid email"
// @Router /admin-management/admins/add [post]
// @Security BearerAuth
func (h *AdminHandler) AddAdmin(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		respondError(w, fmt.Errorf("%w: email query parameter is required", apperrors.ErrInvalidArgument))
		return
	}

	emails, err := h.service.AddAdmin(r.Context(), email)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, emails)
}

// RemoveAdmin removes an email from the allow-list.
//
// @Summary Remove an admin email
// @Tags AdminManagement
// @Produce json
// @Param email query string true "Admin email"
// @Success 200 {array} string "Updated allow-list"
// @Failure 404 {object} dto.Response "Email not on the allow-list"
// @Router /admin-management/admins/remove [post]
// @Security BearerAuth
func (h *AdminHandler) RemoveAdmin(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		respondError(w, fmt.Errorf("%w: email query parameter is required", apperrors.ErrInvalidArgument))
		return
	}

	emails, err := h.service.RemoveAdmin(r.Context(), email)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, emails)
}
