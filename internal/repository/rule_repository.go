package repository

import (
    "context"
    "database/sql"
    "encoding/json"

    "github.com/unclebandit/innkeeper-backend/internal/model"
)

// RuleRepositoryInterface defines the read-only rule store. The queue never
// writes rules; authoring happens elsewhere.
type RuleRepositoryInterface interface {
    ListActive(ctx context.Context, tenantID, eventType string) ([]*model.NotificationRule, error)
}

type RuleRepository struct {
    DB *sql.DB
}

// ListActive returns the active rules for a tenant and event type, highest
// priority first. An empty result is a valid outcome, not an error.
func (r *RuleRepository) ListActive(ctx context.Context, tenantID, eventType string) ([]*model.NotificationRule, error) {
    query := `
        SELECT id, tenant_id, event_type, priority, is_active, routing_config, created_at, updated_at
        FROM notification_rules
        WHERE tenant_id=$1 AND event_type=$2 AND is_active=true
        ORDER BY priority DESC
    `
    rows, err := r.DB.QueryContext(ctx, query, tenantID, eventType)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    rules := []*model.NotificationRule{}
    for rows.Next() {
        var rule model.NotificationRule
        var routing []byte
        if err := rows.Scan(&rule.ID, &rule.TenantID, &rule.EventType, &rule.Priority,
            &rule.IsActive, &routing, &rule.CreatedAt, &rule.UpdatedAt); err != nil {
            return nil, err
        }
        if err := json.Unmarshal(routing, &rule.RoutingConfig); err != nil {
            return nil, err
        }
        rules = append(rules, &rule)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return rules, nil
}

var _ RuleRepositoryInterface = (*RuleRepository)(nil)
