// internal/model/staff.go
package model

// StaffContact is a hotel staff member reachable by notifications.
type StaffContact struct {
    ID       string `db:"id" json:"id"`
    TenantID string `db:"tenant_id" json:"tenant_id"`
    Role     string `db:"role" json:"role"` // front_desk, manager, housekeeping_staff
    Name     string `db:"name" json:"name"`
    Phone    string `db:"phone" json:"phone"`
    Email    string `db:"email" json:"email"`
    IsActive bool   `db:"is_active" json:"is_active"`
}
