package repository

import (
	"context"

	"github.com/google/uuid"

	"meterhub/internal/models"
)

// NotificationRepository is the create-only notification sink. Delivery is
// handled elsewhere; this core only produces records.
type NotificationRepository struct {
	db DBTX
}

// NewNotificationRepository returns repository.
func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification record.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	const query = `
		INSERT INTO notifications (public_id, user_id, category, severity, title, message, ref_table, ref_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at
	`
	if n.PublicID == uuid.Nil {
		n.PublicID = uuid.New()
	}
	return r.db.QueryRowContext(ctx, query,
		n.PublicID,
		n.UserID,
		n.Category,
		n.Severity,
		n.Title,
		n.Message,
		n.RefTable,
		n.RefID,
	).Scan(&n.ID, &n.CreatedAt)
}
