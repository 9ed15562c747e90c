// internal/notify/worker.go
package notify

import (
    "context"
    "fmt"
    "log"
    "time"

    "github.com/unclebandit/innkeeper-backend/internal/model"
)

// EventStore defines the event-store methods the worker needs
type EventStore interface {
    ClaimDue(ctx context.Context, limit int) ([]*model.NotificationEvent, error)
    MarkCompleted(ctx context.Context, id string, results map[string]model.DeliveryResult) error
    MarkRetry(ctx context.Context, id string, results map[string]model.DeliveryResult, retryCount int, nextScheduledAt time.Time) error
    MarkFailed(ctx context.Context, id string, results map[string]model.DeliveryResult, retryCount int) error
}

// Worker drives claimed events through rule resolution, dispatch and the
// retry/outcome policy. The worker is the sole writer of event status.
type Worker struct {
    Store      EventStore
    Rules      RuleResolver
    Dispatcher *Dispatcher
    Backoff    BackoffFunc

    BatchSize    int
    EventTimeout time.Duration
}

// NewWorker wires a worker with the default batch size and timeouts.
func NewWorker(store EventStore, rules RuleResolver, dispatcher *Dispatcher) *Worker {
    return &Worker{
        Store:        store,
        Rules:        rules,
        Dispatcher:   dispatcher,
        Backoff:      DefaultBackoff,
        BatchSize:    50,
        EventTimeout: 30 * time.Second,
    }
}

// ProcessBatch claims one batch of due events and processes them in claim
// order (priority desc, scheduled_at asc). Every event's outcome is isolated:
// nothing an individual event does can abort the rest of the batch. Returns
// the number of events claimed.
func (w *Worker) ProcessBatch(ctx context.Context) int {
    events, err := w.Store.ClaimDue(ctx, w.BatchSize)
    if err != nil {
        log.Println("failed to claim due events:", err)
        return 0
    }
    for _, ev := range events {
        w.processEvent(ctx, ev)
    }
    return len(events)
}

func (w *Worker) processEvent(ctx context.Context, ev *model.NotificationEvent) {
    defer func() {
        if r := recover(); r != nil {
            log.Printf("event %s: panic during dispatch: %v", ev.ID, r)
            w.applyRetry(ctx, ev, ev.DeliveryResults, fmt.Errorf("panic: %v", r))
        }
    }()

    // Ceiling per event so one stuck event can't stall the batch. Outcome
    // writes use the parent ctx: a timed-out event still gets persisted.
    ectx := ctx
    if w.EventTimeout > 0 {
        var cancel context.CancelFunc
        ectx, cancel = context.WithTimeout(ctx, w.EventTimeout)
        defer cancel()
    }

    rules, err := w.Rules.Resolve(ectx, ev.TenantID, ev.EventType)
    if err != nil {
        log.Printf("event %s: rule lookup failed: %v", ev.ID, err)
        w.applyRetry(ctx, ev, ev.DeliveryResults, err)
        return
    }

    if len(rules) == 0 {
        // No configured routing is a valid no-op, not an error.
        results := map[string]model.DeliveryResult{}
        for k, v := range ev.DeliveryResults {
            results[k] = v
        }
        results[model.NoRulesResultKey] = model.DeliveryResult{
            Success: true,
            Detail:  "no applicable routing rules",
        }
        if err := w.Store.MarkCompleted(ctx, ev.ID, results); err != nil {
            log.Printf("event %s: failed to mark completed: %v", ev.ID, err)
        }
        return
    }

    results, err := w.Dispatcher.Dispatch(ectx, ev, rules)
    if err != nil {
        log.Printf("event %s: dispatch failed: %v", ev.ID, err)
        w.applyRetry(ctx, ev, results, err)
        return
    }

    // Per-channel failures stay visible in the results but the event itself
    // completed.
    if err := w.Store.MarkCompleted(ctx, ev.ID, results); err != nil {
        log.Printf("event %s: failed to mark completed: %v", ev.ID, err)
    }
}

// applyRetry handles an infrastructure failure: bounded requeue with
// backoff, terminal failure once retries are exhausted.
func (w *Worker) applyRetry(ctx context.Context, ev *model.NotificationEvent, results map[string]model.DeliveryResult, cause error) {
    retryCount := ev.RetryCount + 1
    if retryCount < ev.MaxRetries {
        next := time.Now().Add(w.Backoff(retryCount))
        if err := w.Store.MarkRetry(ctx, ev.ID, results, retryCount, next); err != nil {
            log.Printf("event %s: failed to mark retry: %v", ev.ID, err)
        }
        return
    }
    log.Printf("event %s: retries exhausted (%d/%d), failing: %v", ev.ID, retryCount, ev.MaxRetries, cause)
    if err := w.Store.MarkFailed(ctx, ev.ID, results, retryCount); err != nil {
        log.Printf("event %s: failed to mark failed: %v", ev.ID, err)
    }
}
