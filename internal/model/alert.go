// internal/model/alert.go
package model

import "time"

// GuestAlert is an in-app alert row. In-app delivery is synchronous: the
// notification counts as delivered once this row is inserted.
type GuestAlert struct {
    ID        string    `db:"id" json:"id"`
    TenantID  string    `db:"tenant_id" json:"tenant_id"`
    ActorID   string    `db:"actor_id" json:"actor_id"` // guest id or staff id
    EventID   string    `db:"event_id" json:"event_id"`
    EventType string    `db:"event_type" json:"event_type"`
    Template  string    `db:"template" json:"template"`
    CreatedAt time.Time `db:"created_at" json:"created_at"`
}
