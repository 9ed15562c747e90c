package repository

import (
    "context"
    "database/sql"
    "encoding/json"
    "fmt"
    "sort"
    "strings"
    "time"

    appErrors "github.com/unclebandit/innkeeper-backend/internal/errors"
    "github.com/unclebandit/innkeeper-backend/internal/model"
)

// EventRepositoryInterface defines the event-store methods used by handlers
// and the worker.
type EventRepositoryInterface interface {
    Insert(ctx context.Context, ev *model.NotificationEvent) error
    GetByID(ctx context.Context, id string) (*model.NotificationEvent, error)
    ListByTenant(ctx context.Context, tenantID string, offset, limit int, status string) ([]*model.NotificationEvent, int, error)
    ClaimDue(ctx context.Context, limit int) ([]*model.NotificationEvent, error)
    MarkCompleted(ctx context.Context, id string, results map[string]model.DeliveryResult) error
    MarkRetry(ctx context.Context, id string, results map[string]model.DeliveryResult, retryCount int, nextScheduledAt time.Time) error
    MarkFailed(ctx context.Context, id string, results map[string]model.DeliveryResult, retryCount int) error
}

type EventRepository struct {
    DB *sql.DB
}

const eventColumns = `id, tenant_id, event_type, event_source, source_id, priority,
        recipients, template_data, channels, status, scheduled_at,
        retry_count, max_retries, delivery_results, processed_at, created_at, updated_at`

// Insert stores a new event. Producers only ever insert; all later mutation
// belongs to the worker.
func (r *EventRepository) Insert(ctx context.Context, ev *model.NotificationEvent) error {
    now := time.Now()
    ev.CreatedAt = now
    ev.UpdatedAt = now
    if ev.Status == "" {
        ev.Status = model.StatusPending
    }
    if ev.ScheduledAt.IsZero() {
        ev.ScheduledAt = now
    }
    if ev.MaxRetries == 0 {
        ev.MaxRetries = 3
    }
    if ev.DeliveryResults == nil {
        ev.DeliveryResults = map[string]model.DeliveryResult{}
    }

    recipients, err := json.Marshal(ev.Recipients)
    if err != nil {
        return err
    }
    templateData, err := json.Marshal(ev.TemplateData)
    if err != nil {
        return err
    }
    channels, err := json.Marshal(ev.Channels)
    if err != nil {
        return err
    }
    results, err := json.Marshal(ev.DeliveryResults)
    if err != nil {
        return err
    }

    query := `
        INSERT INTO notification_events
        (id, tenant_id, event_type, event_source, source_id, priority,
         recipients, template_data, channels, status, scheduled_at,
         retry_count, max_retries, delivery_results, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
    `
    _, err = r.DB.ExecContext(ctx, query,
        ev.ID, ev.TenantID, ev.EventType, ev.EventSource, ev.SourceID, ev.Priority,
        recipients, templateData, channels, ev.Status, ev.ScheduledAt,
        ev.RetryCount, ev.MaxRetries, results, ev.CreatedAt, ev.UpdatedAt,
    )
    return err
}

// GetByID fetches an event by its ID.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.NotificationEvent, error) {
    query := `SELECT ` + eventColumns + ` FROM notification_events WHERE id=$1`
    ev, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, appErrors.NewEventNotFound(id)
        }
        return nil, err
    }
    return ev, nil
}

// ListByTenant returns a page of a tenant's events, newest first, optionally
// filtered by status.
func (r *EventRepository) ListByTenant(ctx context.Context, tenantID string, offset, limit int, status string) ([]*model.NotificationEvent, int, error) {
    events := []*model.NotificationEvent{}
    query := `SELECT ` + eventColumns + ` FROM notification_events WHERE tenant_id=$1`
    args := []interface{}{tenantID}
    argPos := 2

    if status != "" {
        query += fmt.Sprintf(" AND status=$%d", argPos)
        args = append(args, status)
        argPos++
    }
    query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
    args = append(args, limit, offset)

    rows, err := r.DB.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, 0, err
    }
    defer rows.Close()

    for rows.Next() {
        ev, err := scanEvent(rows)
        if err != nil {
            return nil, 0, err
        }
        events = append(events, ev)
    }
    if err := rows.Err(); err != nil {
        return nil, 0, err
    }

    countQuery := `SELECT COUNT(*) FROM notification_events WHERE tenant_id=$1`
    countArgs := []interface{}{tenantID}
    if status != "" {
        countQuery += " AND status=$2"
        countArgs = append(countArgs, status)
    }
    var total int
    if err := r.DB.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
        return nil, 0, err
    }

    return events, total, nil
}

// ClaimDue atomically claims up to limit due events (status=pending and
// scheduled_at in the past), flipping them to processing. The claim is a
// single statement over a SKIP LOCKED select, so two workers polling the
// same due set never both claim the same event.
func (r *EventRepository) ClaimDue(ctx context.Context, limit int) ([]*model.NotificationEvent, error) {
    query := `
        WITH due AS (
            SELECT id FROM notification_events
            WHERE status='pending' AND scheduled_at <= NOW()
            ORDER BY priority DESC, scheduled_at ASC
            LIMIT $1
            FOR UPDATE SKIP LOCKED
        )
        UPDATE notification_events e
        SET status='processing', updated_at=NOW()
        FROM due
        WHERE e.id = due.id
        RETURNING ` + qualify(eventColumns, "e.")

    rows, err := r.DB.QueryContext(ctx, query, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    events := []*model.NotificationEvent{}
    for rows.Next() {
        ev, err := scanEvent(rows)
        if err != nil {
            return nil, err
        }
        events = append(events, ev)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }

    // RETURNING does not guarantee order; restore the claim order.
    sort.SliceStable(events, func(i, j int) bool {
        if events[i].Priority != events[j].Priority {
            return events[i].Priority > events[j].Priority
        }
        return events[i].ScheduledAt.Before(events[j].ScheduledAt)
    })
    return events, nil
}

// MarkCompleted is the terminal success transition. Only legal from
// processing; a stale or double write hits zero rows and is reported.
func (r *EventRepository) MarkCompleted(ctx context.Context, id string, results map[string]model.DeliveryResult) error {
    res, err := json.Marshal(orEmpty(results))
    if err != nil {
        return err
    }
    query := `
        UPDATE notification_events
        SET status='completed', delivery_results=$2, processed_at=NOW(), updated_at=NOW()
        WHERE id=$1 AND status='processing'
    `
    out, err := r.DB.ExecContext(ctx, query, id, res)
    if err != nil {
        return err
    }
    return requireOneRow(out, id)
}

// MarkRetry sends a claimed event back to pending with a bumped retry count
// and a new scheduled_at in the future.
func (r *EventRepository) MarkRetry(ctx context.Context, id string, results map[string]model.DeliveryResult, retryCount int, nextScheduledAt time.Time) error {
    res, err := json.Marshal(orEmpty(results))
    if err != nil {
        return err
    }
    query := `
        UPDATE notification_events
        SET status='pending', delivery_results=$2, retry_count=$3, scheduled_at=$4, updated_at=NOW()
        WHERE id=$1 AND status='processing'
    `
    out, err := r.DB.ExecContext(ctx, query, id, res, retryCount, nextScheduledAt)
    if err != nil {
        return err
    }
    return requireOneRow(out, id)
}

// MarkFailed is the terminal failure transition (retries exhausted).
func (r *EventRepository) MarkFailed(ctx context.Context, id string, results map[string]model.DeliveryResult, retryCount int) error {
    res, err := json.Marshal(orEmpty(results))
    if err != nil {
        return err
    }
    query := `
        UPDATE notification_events
        SET status='failed', delivery_results=$2, retry_count=$3, processed_at=NOW(), updated_at=NOW()
        WHERE id=$1 AND status='processing'
    `
    out, err := r.DB.ExecContext(ctx, query, id, res, retryCount)
    if err != nil {
        return err
    }
    return requireOneRow(out, id)
}

func requireOneRow(res sql.Result, id string) error {
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return fmt.Errorf("event %s not in processing state, transition rejected", id)
    }
    return nil
}

func orEmpty(results map[string]model.DeliveryResult) map[string]model.DeliveryResult {
    if results == nil {
        return map[string]model.DeliveryResult{}
    }
    return results
}

// qualify prefixes each column in a comma-separated list, for RETURNING
// clauses with a table alias.
func qualify(columns, prefix string) string {
    parts := strings.Split(columns, ",")
    for i, p := range parts {
        parts[i] = prefix + strings.TrimSpace(p)
    }
    return strings.Join(parts, ", ")
}

type rowScanner interface {
    Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*model.NotificationEvent, error) {
    var ev model.NotificationEvent
    var recipients, templateData, channels, results []byte
    err := row.Scan(
        &ev.ID, &ev.TenantID, &ev.EventType, &ev.EventSource, &ev.SourceID, &ev.Priority,
        &recipients, &templateData, &channels, &ev.Status, &ev.ScheduledAt,
        &ev.RetryCount, &ev.MaxRetries, &results, &ev.ProcessedAt, &ev.CreatedAt, &ev.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    if err := json.Unmarshal(recipients, &ev.Recipients); err != nil {
        return nil, err
    }
    if err := json.Unmarshal(templateData, &ev.TemplateData); err != nil {
        return nil, err
    }
    if err := json.Unmarshal(channels, &ev.Channels); err != nil {
        return nil, err
    }
    if err := json.Unmarshal(results, &ev.DeliveryResults); err != nil {
        return nil, err
    }
    return &ev, nil
}

var _ EventRepositoryInterface = (*EventRepository)(nil)
