package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"goldloan-engine/internal/api/handler/dto"
	"goldloan-engine/internal/config"
	"goldloan-engine/internal/domain/admin"
	"goldloan-engine/internal/pkg/apperrors"
)

type AuthHandler struct {
	cfg    config.Config
	admins admin.Service
	logger *slog.Logger
}

func NewAuthHandler(cfg config.Config, admins admin.Service, l *slog.Logger) *AuthHandler {
	return &AuthHandler{
		cfg:    cfg,
		admins: admins,
		logger: l.With("component", "AuthHandler"),
	}
}

// GenerateBearerToken issues a JWT for an allow-listed admin email.
//
// @Summary Generate a JWT bearer token
// @Description Issues an HS256 bearer token for an email on the admin allow-list. An empty allow-list admits any email so the first admin can bootstrap.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.TokenRequest true "admin email"
// @Success 200 {object} dto.TokenResponse "Token successfully generated"
// @Failure 400 {object} dto.Response "Invalid request parameters"
// @Failure 403 {object} dto.Response "Email not on the admin allow-list"
// @Router /auth/token [post]
func (h *AuthHandler) GenerateBearerToken(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warn("Failed to decode token request", "error", err)
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if req.Email == "" {
		respondError(w, fmt.Errorf("%w: email is required", apperrors.ErrInvalidArgument))
		return
	}

	allowed, err := h.authorized(r, req.Email)
	if err != nil {
		respondError(w, err)
		return
	}
	if !allowed {
		h.logger.Warn("Token request for non-admin email", "email", req.Email)
		respondError(w, fmt.Errorf("%w: email is not an administrator", apperrors.ErrForbidden))
		return
	}

	claims := jwt.MapClaims{
		"email": req.Email,
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(h.cfg.Server.Auth.JWTSecret))
	if err != nil {
		h.logger.Error("Failed to sign token", "error", err)
		respondError(w, fmt.Errorf("%w: could not sign token", apperrors.ErrInternalServer))
		return
	}

	h.logger.Info("Bearer token issued", "email", req.Email)
	respondJSON(w, http.StatusOK, dto.TokenResponse{Token: fmt.Sprintf("Bearer %s", tokenString)})
}

// authorized admits any email while the allow-list is empty so the first
// admin can bootstrap the installation.
func (h *AuthHandler) authorized(r *http.Request, email string) (bool, error) {
	admins, err := h.admins.ListAdmins(r.Context())
	if err != nil {
		return false, err
	}
	if len(admins) == 0 {
		return true, nil
	}
	return h.admins.IsAdmin(r.Context(), email)
}
