package postgres

import (
	"context"
	"log/slog"

	"goldloan-engine/internal/notification"
)

type SMSRepository struct {
	db     DBPool
	logger *slog.Logger
}

func NewSMSRepository(db DBPool, logger *slog.Logger) *SMSRepository {
	return &SMSRepository{db: db, logger: logger.With("component", "SMSRepository")}
}

func (r *SMSRepository) InsertSMS(ctx context.Context, sms *notification.SMS) error {
	sql := `
        INSERT INTO sms_notifications (phone_number, message, type, reference_id, status, sent_at)
        VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, sql, sms.PhoneNumber, sms.Message, sms.Type, sms.ReferenceID, sms.Status, sms.SentAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert SMS record", "error", err)
		return translateDBError(err, r.logger)
	}
	return nil
}

func (r *SMSRepository) ListSMSByReference(ctx context.Context, referenceID int64) ([]*notification.SMS, error) {
	query := `
        SELECT id, phone_number, message, type, reference_id, status, sent_at
        FROM sms_notifications
        WHERE reference_id = $1
        ORDER BY sent_at DESC`

	rows, err := r.db.Query(ctx, query, referenceID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query SMS records", "reference_id", referenceID, "error", err)
		return nil, translateDBError(err, r.logger)
	}
	defer rows.Close()

	messages := make([]*notification.SMS, 0)
	for rows.Next() {
		var sms notification.SMS
		if err := rows.Scan(&sms.ID, &sms.PhoneNumber, &sms.Message, &sms.Type, &sms.ReferenceID, &sms.Status, &sms.SentAt); err != nil {
			return nil, translateDBError(err, r.logger)
		}
		messages = append(messages, &sms)
	}
	if err := rows.Err(); err != nil {
		return nil, translateDBError(err, r.logger)
	}
	return messages, nil
}
