package repository

import (
	"context"
	"database/sql"

	"github.com/unclebandit/innkeeper-backend/internal/model"
)

// StaffRepositoryInterface defines methods used by recipient resolution
type StaffRepositoryInterface interface {
	ListActiveByRole(ctx context.Context, tenantID, role string) ([]model.StaffContact, error)
}

// StaffRepository is the concrete implementation
type StaffRepository struct {
	DB *sql.DB
}

// ListActiveByRole fetches a tenant's active staff contacts for one role.
func (r *StaffRepository) ListActiveByRole(ctx context.Context, tenantID, role string) ([]model.StaffContact, error) {
	query := `
        SELECT id, tenant_id, role, name, phone, email, is_active
        FROM staff_contacts
        WHERE tenant_id = $1 AND role = $2 AND is_active = true
        ORDER BY id
    `
	rows, err := r.DB.QueryContext(ctx, query, tenantID, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	staff := []model.StaffContact{}
	for rows.Next() {
		var s model.StaffContact
		if err := rows.Scan(&s.ID, &s.TenantID, &s.Role, &s.Name, &s.Phone, &s.Email, &s.IsActive); err != nil {
			return nil, err
		}
		staff = append(staff, s)
	}
	return staff, rows.Err()
}

var _ StaffRepositoryInterface = (*StaffRepository)(nil)
