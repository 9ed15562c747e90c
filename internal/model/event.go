// internal/model/event.go
package model

import "time"

// Status is the lifecycle state of a NotificationEvent.
type Status string

const (
    StatusPending    Status = "pending"
    StatusProcessing Status = "processing"
    StatusCompleted  Status = "completed"
    StatusFailed     Status = "failed"
)

// CanTransition reports whether moving from one status to another is legal.
// pending→processing (claim), processing→completed/failed (terminal),
// processing→pending (retry). Nothing else.
func CanTransition(from, to Status) bool {
    switch from {
    case StatusPending:
        return to == StatusProcessing
    case StatusProcessing:
        return to == StatusCompleted || to == StatusFailed || to == StatusPending
    }
    return false
}

// RecipientHint is the producer-supplied recipient list. It is advisory:
// actual resolution always goes through the recipient resolver.
type RecipientHint struct {
    Type  string `json:"type"`
    Email string `json:"email,omitempty"`
    Phone string `json:"phone,omitempty"`
    Role  string `json:"role,omitempty"`
}

// DeliveryResult is the outcome of one (recipientType, channel) attempt.
type DeliveryResult struct {
    Success bool   `json:"success"`
    Error   string `json:"error,omitempty"`
    Detail  string `json:"detail,omitempty"`
}

// NotificationEvent is the unit of work in the delivery queue.
type NotificationEvent struct {
    ID          string `db:"id" json:"id"`
    TenantID    string `db:"tenant_id" json:"tenant_id"`
    EventType   string `db:"event_type" json:"event_type"`
    EventSource string `db:"event_source" json:"event_source"`
    SourceID    string `db:"source_id" json:"source_id"`
    Priority    int    `db:"priority" json:"priority"`

    Recipients   []RecipientHint   `db:"recipients" json:"recipients"`
    TemplateData map[string]string `db:"template_data" json:"template_data"`
    Channels     []string          `db:"channels" json:"channels"`

    Status          Status                    `db:"status" json:"status"`
    ScheduledAt     time.Time                 `db:"scheduled_at" json:"scheduled_at"`
    RetryCount      int                       `db:"retry_count" json:"retry_count"`
    MaxRetries      int                       `db:"max_retries" json:"max_retries"`
    DeliveryResults map[string]DeliveryResult `db:"delivery_results" json:"delivery_results"`
    ProcessedAt     *time.Time                `db:"processed_at" json:"processed_at,omitempty"`

    CreatedAt time.Time `db:"created_at" json:"created_at"`
    UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ResultKey builds the delivery_results map key for a recipient/channel pair,
// e.g. "guest_sms".
func ResultKey(recipientType, channel string) string {
    return recipientType + "_" + channel
}

// NoRulesResultKey is the synthetic delivery_results key recorded when an
// event matches no active routing rules and completes as a no-op.
const NoRulesResultKey = "no_rules"
