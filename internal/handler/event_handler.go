// internal/handler/event_handler.go
package handler

import (
    "encoding/json"
    "errors"
    "log"
    "net/http"
    "strconv"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/go-playground/validator/v10"

    appErrors "github.com/unclebandit/innkeeper-backend/internal/errors"
    "github.com/unclebandit/innkeeper-backend/internal/model"
    "github.com/unclebandit/innkeeper-backend/internal/pkg/id"
    "github.com/unclebandit/innkeeper-backend/internal/queue"
    "github.com/unclebandit/innkeeper-backend/internal/repository"
)

// EventHandler holds the dependencies for notification HTTP handlers
type EventHandler struct {
    Events   repository.EventRepositoryInterface
    Rules    repository.RuleRepositoryInterface
    Queue    queue.Publisher
    validate *validator.Validate
}

// NewEventHandler creates an EventHandler with the given stores and publisher
func NewEventHandler(events repository.EventRepositoryInterface, rules repository.RuleRepositoryInterface, q queue.Publisher) *EventHandler {
    return &EventHandler{
        Events:   events,
        Rules:    rules,
        Queue:    q,
        validate: validator.New(),
    }
}

type createEventPayload struct {
    TenantID     string                `json:"tenant_id" validate:"required"`
    EventType    string                `json:"event_type" validate:"required"`
    EventSource  string                `json:"event_source"`
    SourceID     string                `json:"source_id"`
    Priority     int                   `json:"priority" validate:"gte=0"`
    Recipients   []model.RecipientHint `json:"recipients"`
    TemplateData map[string]string     `json:"template_data"`
    Channels     []string              `json:"channels"`
    ScheduledAt  *time.Time            `json:"scheduled_at,omitempty"`
    MaxRetries   int                   `json:"max_retries" validate:"gte=0,lte=10"`
}

// CreateEvent inserts a new pending notification event and nudges the worker.
// Producers only ever insert; the worker owns all later status changes.
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
    var payload createEventPayload
    if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
        http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
        return
    }
    if err := h.validate.Struct(payload); err != nil {
        http.Error(w, "invalid event: "+err.Error(), http.StatusBadRequest)
        return
    }

    ev := &model.NotificationEvent{
        ID:           id.New(),
        TenantID:     payload.TenantID,
        EventType:    payload.EventType,
        EventSource:  payload.EventSource,
        SourceID:     payload.SourceID,
        Priority:     payload.Priority,
        Recipients:   payload.Recipients,
        TemplateData: payload.TemplateData,
        Channels:     payload.Channels,
        Status:       model.StatusPending,
        MaxRetries:   payload.MaxRetries,
    }
    if payload.ScheduledAt != nil {
        ev.ScheduledAt = *payload.ScheduledAt
    }
    if ev.TemplateData == nil {
        ev.TemplateData = map[string]string{}
    }

    if err := h.Events.Insert(r.Context(), ev); err != nil {
        http.Error(w, "failed to create event: "+err.Error(), http.StatusInternalServerError)
        return
    }

    // Best effort: a dropped nudge just means the poll ticker picks it up.
    if err := h.Queue.EventQueued(ev.ID); err != nil {
        log.Println("failed to publish nudge for event", ev.ID, ":", err)
    }

    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(http.StatusCreated)
    json.NewEncoder(w).Encode(ev)
}

// GetEvent returns one event with its status and delivery results.
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
    eventID := chi.URLParam(r, "id")

    ev, err := h.Events.GetByID(r.Context(), eventID)
    if err != nil {
        var notFound *appErrors.ErrEventNotFound
        if errors.As(err, &notFound) {
            http.Error(w, err.Error(), http.StatusNotFound)
            return
        }
        http.Error(w, "failed to fetch event: "+err.Error(), http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(ev)
}

// ListTenantEvents returns a paginated list of a tenant's events
func (h *EventHandler) ListTenantEvents(w http.ResponseWriter, r *http.Request) {
    tenantID := chi.URLParam(r, "tenantID")

    page := 1
    pageSize := 20
    if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
        page = p
    }
    if ps, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && ps > 0 {
        pageSize = ps
    }
    if pageSize > 100 {
        pageSize = 100
    }
    status := r.URL.Query().Get("status")
    offset := (page - 1) * pageSize

    events, total, err := h.Events.ListByTenant(r.Context(), tenantID, offset, pageSize, status)
    if err != nil {
        http.Error(w, "failed to fetch events: "+err.Error(), http.StatusInternalServerError)
        return
    }

    totalPages := (total + pageSize - 1) / pageSize
    response := map[string]interface{}{
        "data": events,
        "pagination": map[string]int{
            "page":        page,
            "page_size":   pageSize,
            "total_count": total,
            "total_pages": totalPages,
        },
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(response)
}

// ListTenantRules returns a tenant's active routing rules for an event type
func (h *EventHandler) ListTenantRules(w http.ResponseWriter, r *http.Request) {
    tenantID := chi.URLParam(r, "tenantID")
    eventType := r.URL.Query().Get("event_type")
    if eventType == "" {
        http.Error(w, "event_type query parameter is required", http.StatusBadRequest)
        return
    }

    rules, err := h.Rules.ListActive(r.Context(), tenantID, eventType)
    if err != nil {
        http.Error(w, "failed to fetch rules: "+err.Error(), http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]interface{}{"data": rules})
}
