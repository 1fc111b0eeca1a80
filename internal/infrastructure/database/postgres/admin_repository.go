package postgres

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
)

// AdminRepository persists the admin allow-list as a single comma-joined
// settings row, keyed by a fixed id.
type AdminRepository struct {
	db     DBPool
	logger *slog.Logger
}

func NewAdminRepository(db DBPool, logger *slog.Logger) *AdminRepository {
	return &AdminRepository{db: db, logger: logger.With("component", "AdminRepository")}
}

const adminSettingsID = 1

func (r *AdminRepository) GetAdminEmails(ctx context.Context) ([]string, error) {
	var joined string
	err := r.db.QueryRow(ctx, `SELECT admin_emails FROM admin_settings WHERE id = $1`, adminSettingsID).Scan(&joined)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []string{}, nil
		}
		r.logger.ErrorContext(ctx, "Failed to read admin settings", "error", err)
		return nil, translateDBError(err, r.logger)
	}

	if strings.TrimSpace(joined) == "" {
		return []string{}, nil
	}
	parts := strings.Split(joined, ",")
	emails := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			emails = append(emails, p)
		}
	}
	return emails, nil
}

func (r *AdminRepository) SetAdminEmails(ctx context.Context, emails []string) error {
	sql := `
        INSERT INTO admin_settings (id, admin_emails, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (id) DO UPDATE SET admin_emails = EXCLUDED.admin_emails, updated_at = NOW()`

	if _, err := r.db.Exec(ctx, sql, adminSettingsID, strings.Join(emails, ",")); err != nil {
		r.logger.ErrorContext(ctx, "Failed to write admin settings", "error", err)
		return translateDBError(err, r.logger)
	}
	return nil
}
