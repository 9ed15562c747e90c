// internal/notify/senders.go
package notify

import (
    "context"
    "log"

    "github.com/unclebandit/innkeeper-backend/internal/model"
    "github.com/unclebandit/innkeeper-backend/internal/pkg/id"
    "github.com/unclebandit/innkeeper-backend/internal/repository"
)

// The sms/email/push gateways are external collaborators. These senders are
// the integration points: they log the outgoing message and report success.
// Swap in the real provider clients behind the same Sender interface.

// SMSGatewaySender hands messages to the SMS provider.
type SMSGatewaySender struct {
    From string
}

func (s *SMSGatewaySender) Send(ctx context.Context, req SendRequest) model.DeliveryResult {
    if err := ctx.Err(); err != nil {
        return model.DeliveryResult{Success: false, Error: "sms send aborted: " + err.Error()}
    }
    log.Printf("sms: tenant=%s event=%s template=%s to=%s", req.TenantID, req.EventID, req.Template, req.Recipient.Value)
    return model.DeliveryResult{Success: true, Detail: "sms accepted for " + req.Recipient.Value}
}

// EmailGatewaySender hands messages to the email provider.
type EmailGatewaySender struct {
    From string
}

func (s *EmailGatewaySender) Send(ctx context.Context, req SendRequest) model.DeliveryResult {
    if err := ctx.Err(); err != nil {
        return model.DeliveryResult{Success: false, Error: "email send aborted: " + err.Error()}
    }
    log.Printf("email: tenant=%s event=%s template=%s to=%s", req.TenantID, req.EventID, req.Template, req.Recipient.Value)
    return model.DeliveryResult{Success: true, Detail: "email accepted for " + req.Recipient.Value}
}

// PushGatewaySender hands messages to the push provider, addressed by
// internal actor id (device token lookup is the provider's concern).
type PushGatewaySender struct{}

func (s *PushGatewaySender) Send(ctx context.Context, req SendRequest) model.DeliveryResult {
    if err := ctx.Err(); err != nil {
        return model.DeliveryResult{Success: false, Error: "push send aborted: " + err.Error()}
    }
    log.Printf("push: tenant=%s event=%s template=%s actor=%s", req.TenantID, req.EventID, req.Template, req.Recipient.Value)
    return model.DeliveryResult{Success: true, Detail: "push accepted for actor " + req.Recipient.Value}
}

// InAppSender delivers by inserting a guest_alerts row. No external call:
// delivered the moment the insert succeeds, failed only on store failure.
type InAppSender struct {
    Alerts repository.AlertRepositoryInterface
}

func (s *InAppSender) Send(ctx context.Context, req SendRequest) model.DeliveryResult {
    alert := &model.GuestAlert{
        ID:        id.New(),
        TenantID:  req.TenantID,
        ActorID:   req.Recipient.Value,
        EventID:   req.EventID,
        EventType: req.EventType,
        Template:  req.Template,
    }
    if err := s.Alerts.Create(ctx, alert); err != nil {
        return model.DeliveryResult{Success: false, Error: "alert insert failed: " + err.Error()}
    }
    return model.DeliveryResult{Success: true, Detail: "alert " + alert.ID + " created"}
}

// NewRegistry wires the default channel → sender table.
func NewRegistry(alerts repository.AlertRepositoryInterface) Registry {
    return Registry{
        ChannelSMS:   &SMSGatewaySender{},
        ChannelEmail: &EmailGatewaySender{},
        ChannelInApp: &InAppSender{Alerts: alerts},
        ChannelPush:  &PushGatewaySender{},
    }
}
