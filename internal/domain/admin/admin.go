// Package admin manages the allow-list of console administrators. The list
// lives in a single settings row; membership gates token issuance.
package admin

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"goldloan-engine/internal/pkg/apperrors"
)

type Repository interface {
	// GetAdminEmails returns the allow-list, empty when unset.
	GetAdminEmails(ctx context.Context) ([]string, error)

	SetAdminEmails(ctx context.Context, emails []string) error
}

type Service interface {
	ListAdmins(ctx context.Context) ([]string, error)
	AddAdmin(ctx context.Context, email string) ([]string, error)
	RemoveAdmin(ctx context.Context, email string) ([]string, error)
	IsAdmin(ctx context.Context, email string) (bool, error)
}

type serviceImpl struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) Service {
	return &serviceImpl{repo: repo, logger: logger.With("component", "AdminService")}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", apperrors.NewValidationError("email", "must be a valid email address")
	}
	return email, nil
}

func (s *serviceImpl) ListAdmins(ctx context.Context) ([]string, error) {
	return s.repo.GetAdminEmails(ctx)
}

func (s *serviceImpl) AddAdmin(ctx context.Context, email string) ([]string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	emails, err := s.repo.GetAdminEmails(ctx)
	if err != nil {
		return nil, err
	}
	if slices.Contains(emails, email) {
		return emails, nil
	}

	emails = append(emails, email)
	if err := s.repo.SetAdminEmails(ctx, emails); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Admin added", "email", email)
	return emails, nil
}

func (s *serviceImpl) RemoveAdmin(ctx context.Context, email string) ([]string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	emails, err := s.repo.GetAdminEmails(ctx)
	if err != nil {
		return nil, err
	}
	idx := slices.Index(emails, email)
	if idx < 0 {
		return nil, apperrors.ErrNotFound
	}

	emails = slices.Delete(emails, idx, idx+1)
	if err := s.repo.SetAdminEmails(ctx, emails); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Admin removed", "email", email)
	return emails, nil
}

func (s *serviceImpl) IsAdmin(ctx context.Context, email string) (bool, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return false, err
	}
	emails, err := s.repo.GetAdminEmails(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(emails, email), nil
}
