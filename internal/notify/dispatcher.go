// internal/notify/dispatcher.go
package notify

import (
    "context"
    "errors"
    "log"
    "sync"
    "time"

    appErrors "github.com/unclebandit/innkeeper-backend/internal/errors"
    "github.com/unclebandit/innkeeper-backend/internal/model"
)

// Dispatcher fans one claimed event out across every matched
// (recipientType, channel) pair: rules are unioned, recipients resolved, and
// the per-channel senders invoked concurrently with a per-send timeout.
type Dispatcher struct {
    Resolver    RecipientResolver
    Senders     Registry
    SendTimeout time.Duration
}

type dispatchJob struct {
    key           string
    recipientType RecipientType
    channel       Channel
    template      string
}

// Dispatch returns the merged delivery results for the event. Per-channel
// failures (unresolved recipient, sender failure, timeout) are recorded in
// the result map and never returned as errors; only infrastructure failures
// (recipient store unreachable) come back as an error, which sends the whole
// event into the retry policy.
//
// Results already marked success in the event are carried forward and their
// pairs skipped, so a retried event never re-sends a delivered channel.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *model.NotificationEvent, rules []*model.NotificationRule) (map[string]model.DeliveryResult, error) {
    results := map[string]model.DeliveryResult{}
    for k, v := range ev.DeliveryResults {
        results[k] = v
    }

    jobs := d.collectJobs(ev, rules, results)
    if len(jobs) == 0 {
        return results, nil
    }

    var (
        mu       sync.Mutex
        wg       sync.WaitGroup
        firstErr error
    )
    for _, job := range jobs {
        wg.Add(1)
        go func(job dispatchJob) {
            defer wg.Done()
            res, err := d.attempt(ctx, ev, job)
            mu.Lock()
            defer mu.Unlock()
            if err != nil {
                if firstErr == nil {
                    firstErr = err
                }
                return
            }
            results[job.key] = res
        }(job)
    }
    wg.Wait()

    return results, firstErr
}

// collectJobs unions the routing configs of every matched rule into one job
// per (recipientType, channel) pair, skipping unknown channels and pairs
// already delivered on an earlier attempt. Rules come in priority order, so
// the highest-priority rule wins the template for a contested pair.
func (d *Dispatcher) collectJobs(ev *model.NotificationEvent, rules []*model.NotificationRule, prior map[string]model.DeliveryResult) []dispatchJob {
    jobs := []dispatchJob{}
    seen := map[string]bool{}
    for _, rule := range rules {
        for recipientType, target := range rule.RoutingConfig {
            for _, raw := range target.Channels {
                ch := Channel(raw)
                if !ch.IsValid() {
                    log.Printf("event %s: unknown channel %q in rule %d, skipping", ev.ID, raw, rule.ID)
                    continue
                }
                if _, ok := d.Senders[ch]; !ok {
                    log.Printf("event %s: no sender registered for channel %q, skipping", ev.ID, raw)
                    continue
                }
                key := model.ResultKey(recipientType, raw)
                if seen[key] {
                    continue
                }
                seen[key] = true
                if prev, ok := prior[key]; ok && prev.Success {
                    continue // already delivered on a previous attempt
                }
                jobs = append(jobs, dispatchJob{
                    key:           key,
                    recipientType: RecipientType(recipientType),
                    channel:       ch,
                    template:      target.Template,
                })
            }
        }
    }
    return jobs
}

// attempt resolves and sends one pair. The error return is reserved for
// infrastructure failures.
func (d *Dispatcher) attempt(ctx context.Context, ev *model.NotificationEvent, job dispatchJob) (model.DeliveryResult, error) {
    addr, err := d.Resolver.Resolve(ctx, ev.TenantID, job.recipientType, job.channel, ev.TemplateData)
    if err != nil {
        var unresolved *appErrors.ErrRecipientUnresolved
        if errors.As(err, &unresolved) {
            return model.DeliveryResult{Success: false, Error: "no contact info"}, nil
        }
        return model.DeliveryResult{}, err
    }

    sctx := ctx
    if d.SendTimeout > 0 {
        var cancel context.CancelFunc
        sctx, cancel = context.WithTimeout(ctx, d.SendTimeout)
        defer cancel()
    }

    return d.Senders[job.channel].Send(sctx, SendRequest{
        TenantID:     ev.TenantID,
        EventID:      ev.ID,
        EventType:    ev.EventType,
        Template:     job.template,
        TemplateData: ev.TemplateData,
        Recipient:    addr,
    }), nil
}
