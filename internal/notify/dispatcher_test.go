package notify_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/innkeeper-backend/internal/model"
	"github.com/unclebandit/innkeeper-backend/internal/notify"
)

// recordingSender captures every request it receives
type recordingSender struct {
	mu     sync.Mutex
	calls  []notify.SendRequest
	result model.DeliveryResult
}

func (s *recordingSender) Send(ctx context.Context, req notify.SendRequest) model.DeliveryResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	return s.result
}

func (s *recordingSender) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// blockingSender waits for ctx to expire, the timed-out-provider case
type blockingSender struct{}

func (blockingSender) Send(ctx context.Context, req notify.SendRequest) model.DeliveryResult {
	<-ctx.Done()
	return model.DeliveryResult{Success: false, Error: "send timed out"}
}

func okSender() *recordingSender {
	return &recordingSender{result: model.DeliveryResult{Success: true}}
}

func guestRule(routing map[string]model.RouteTarget) []*model.NotificationRule {
	return []*model.NotificationRule{{
		ID:            1,
		TenantID:      "seaside-inn",
		EventType:     "reservation_created",
		Priority:      10,
		IsActive:      true,
		RoutingConfig: routing,
	}}
}

func newEvent() *model.NotificationEvent {
	return &model.NotificationEvent{
		ID:        "ev-1",
		TenantID:  "seaside-inn",
		EventType: "reservation_created",
		Priority:  10,
		TemplateData: map[string]string{
			"guest_phone": "+254700111222",
			"guest_id":    "guest-42",
		},
		Status:     model.StatusProcessing,
		MaxRetries: 3,
	}
}

func TestDispatchGuestWithPhoneButNoEmail(t *testing.T) {
	sms := okSender()
	email := okSender()
	d := &notify.Dispatcher{
		Resolver: &notify.StaffRecipientResolver{Staff: &MockStaffRepo{}},
		Senders:  notify.Registry{notify.ChannelSMS: sms, notify.ChannelEmail: email},
	}

	rules := guestRule(map[string]model.RouteTarget{
		"guest": {Channels: []string{"sms", "email"}, Template: "booking_confirmed"},
	})

	results, err := d.Dispatch(context.Background(), newEvent(), rules)
	require.NoError(t, err)

	assert.True(t, results["guest_sms"].Success)
	assert.False(t, results["guest_email"].Success)
	assert.Equal(t, "no contact info", results["guest_email"].Error)

	assert.Equal(t, 1, sms.callCount())
	assert.Equal(t, 0, email.callCount(), "unresolved recipient must not reach the sender")
	require.Len(t, sms.calls, 1)
	assert.Equal(t, "booking_confirmed", sms.calls[0].Template)
	assert.Equal(t, "+254700111222", sms.calls[0].Recipient.Value)
}

func TestDispatchUnknownChannelSkipped(t *testing.T) {
	sms := okSender()
	d := &notify.Dispatcher{
		Resolver: &notify.StaffRecipientResolver{Staff: &MockStaffRepo{}},
		Senders:  notify.Registry{notify.ChannelSMS: sms},
	}

	rules := guestRule(map[string]model.RouteTarget{
		"guest": {Channels: []string{"fax", "sms"}, Template: "booking_confirmed"},
	})

	results, err := d.Dispatch(context.Background(), newEvent(), rules)
	require.NoError(t, err)

	assert.True(t, results["guest_sms"].Success)
	_, ok := results["guest_fax"]
	assert.False(t, ok, "unknown channel must be skipped, not recorded")
}

func TestDispatchReplaySkipsDeliveredPairs(t *testing.T) {
	sms := okSender()
	email := okSender()
	d := &notify.Dispatcher{
		Resolver: &notify.StaffRecipientResolver{Staff: &MockStaffRepo{}},
		Senders:  notify.Registry{notify.ChannelSMS: sms, notify.ChannelEmail: email},
	}

	ev := newEvent()
	ev.TemplateData["guest_email"] = "guest@example.com"
	ev.RetryCount = 1
	ev.DeliveryResults = map[string]model.DeliveryResult{
		"guest_sms": {Success: true, Detail: "sent on first attempt"},
	}

	rules := guestRule(map[string]model.RouteTarget{
		"guest": {Channels: []string{"sms", "email"}, Template: "booking_confirmed"},
	})

	results, err := d.Dispatch(context.Background(), ev, rules)
	require.NoError(t, err)

	assert.Equal(t, 0, sms.callCount(), "already-delivered channel must not be re-sent")
	assert.Equal(t, 1, email.callCount())
	assert.True(t, results["guest_sms"].Success, "prior result carried forward")
	assert.Equal(t, "sent on first attempt", results["guest_sms"].Detail)
	assert.True(t, results["guest_email"].Success)
}

func TestDispatchUnionsRulesWithoutDoubleSend(t *testing.T) {
	sms := okSender()
	d := &notify.Dispatcher{
		Resolver: &notify.StaffRecipientResolver{Staff: &MockStaffRepo{}},
		Senders:  notify.Registry{notify.ChannelSMS: sms},
	}

	// Two active rules both routing guest→sms with different templates. The
	// higher-priority rule wins the pair; the event is sent once.
	rules := []*model.NotificationRule{
		{ID: 1, Priority: 10, RoutingConfig: map[string]model.RouteTarget{
			"guest": {Channels: []string{"sms"}, Template: "vip_confirmed"},
		}},
		{ID: 2, Priority: 1, RoutingConfig: map[string]model.RouteTarget{
			"guest": {Channels: []string{"sms"}, Template: "booking_confirmed"},
		}},
	}

	results, err := d.Dispatch(context.Background(), newEvent(), rules)
	require.NoError(t, err)
	assert.True(t, results["guest_sms"].Success)
	require.Equal(t, 1, sms.callCount())
	assert.Equal(t, "vip_confirmed", sms.calls[0].Template)
}

func TestDispatchResolverInfrastructureFailurePropagates(t *testing.T) {
	d := &notify.Dispatcher{
		Resolver: &notify.StaffRecipientResolver{Staff: &MockStaffRepo{err: fmt.Errorf("connection refused")}},
		Senders:  notify.Registry{notify.ChannelSMS: okSender()},
	}

	rules := guestRule(map[string]model.RouteTarget{
		"manager": {Channels: []string{"sms"}, Template: "cancellation_alert"},
	})

	_, err := d.Dispatch(context.Background(), newEvent(), rules)
	assert.Error(t, err, "staff store being down is an infrastructure failure")
}

func TestDispatchSendTimeoutRecordedAsFailedAttempt(t *testing.T) {
	d := &notify.Dispatcher{
		Resolver:    &notify.StaffRecipientResolver{Staff: &MockStaffRepo{}},
		Senders:     notify.Registry{notify.ChannelSMS: blockingSender{}},
		SendTimeout: 10 * time.Millisecond,
	}

	rules := guestRule(map[string]model.RouteTarget{
		"guest": {Channels: []string{"sms"}, Template: "payment_due"},
	})

	results, err := d.Dispatch(context.Background(), newEvent(), rules)
	require.NoError(t, err, "a timed-out send is a failed attempt, not an event failure")
	assert.False(t, results["guest_sms"].Success)
	assert.Equal(t, "send timed out", results["guest_sms"].Error)
}
