// internal/notify/rules.go
package notify

import (
    "context"

    "github.com/unclebandit/innkeeper-backend/internal/model"
    "github.com/unclebandit/innkeeper-backend/internal/repository"
)

// RuleResolver returns the active routing rules for (tenant, event type),
// highest priority first. Pure read, safe to call repeatedly. An empty
// result is valid: it means the event completes as a no-op.
type RuleResolver interface {
    Resolve(ctx context.Context, tenantID, eventType string) ([]*model.NotificationRule, error)
}

// StoreRuleResolver reads rules from the rule store.
type StoreRuleResolver struct {
    Rules repository.RuleRepositoryInterface
}

func (r *StoreRuleResolver) Resolve(ctx context.Context, tenantID, eventType string) ([]*model.NotificationRule, error) {
    return r.Rules.ListActive(ctx, tenantID, eventType)
}
