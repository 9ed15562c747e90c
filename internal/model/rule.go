// internal/model/rule.go
package model

import "time"

// RouteTarget says which channels and template to use for one recipient type.
type RouteTarget struct {
    Channels []string `json:"channels"`
    Template string   `json:"template"`
}

// NotificationRule is tenant-scoped routing configuration: which recipient
// types get which channels for a given event type. Authored out-of-band;
// read-only from the queue's perspective.
type NotificationRule struct {
    ID        int    `db:"id" json:"id"`
    TenantID  string `db:"tenant_id" json:"tenant_id"`
    EventType string `db:"event_type" json:"event_type"`
    Priority  int    `db:"priority" json:"priority"`
    IsActive  bool   `db:"is_active" json:"is_active"`

    // RoutingConfig maps recipient type ("guest", "manager", ...) to its
    // route target.
    RoutingConfig map[string]RouteTarget `db:"routing_config" json:"routing_config"`

    CreatedAt time.Time  `db:"created_at" json:"created_at"`
    UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}
