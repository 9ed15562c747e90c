package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/unclebandit/innkeeper-backend/internal/model"
)

// AlertRepositoryInterface defines the in-app alert store
type AlertRepositoryInterface interface {
	Create(ctx context.Context, alert *model.GuestAlert) error
}

type AlertRepository struct {
	DB *sql.DB
}

// Create inserts an in-app alert row. In-app delivery is considered complete
// once this insert succeeds.
func (r *AlertRepository) Create(ctx context.Context, alert *model.GuestAlert) error {
	alert.CreatedAt = time.Now()
	query := `
        INSERT INTO guest_alerts (id, tenant_id, actor_id, event_id, event_type, template, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := r.DB.ExecContext(ctx, query,
		alert.ID, alert.TenantID, alert.ActorID, alert.EventID, alert.EventType, alert.Template, alert.CreatedAt)
	return err
}

var _ AlertRepositoryInterface = (*AlertRepository)(nil)
