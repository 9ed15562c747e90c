package notify_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/innkeeper-backend/internal/model"
	"github.com/unclebandit/innkeeper-backend/internal/notify"
)

// MockAlertRepo captures created alerts
type MockAlertRepo struct {
	alerts []*model.GuestAlert
	err    error
}

func (m *MockAlertRepo) Create(ctx context.Context, alert *model.GuestAlert) error {
	if m.err != nil {
		return m.err
	}
	m.alerts = append(m.alerts, alert)
	return nil
}

func TestInAppSenderCreatesAlertRow(t *testing.T) {
	repo := &MockAlertRepo{}
	s := &notify.InAppSender{Alerts: repo}

	res := s.Send(context.Background(), notify.SendRequest{
		TenantID:  "seaside-inn",
		EventID:   "ev-1",
		EventType: "reservation_created",
		Template:  "new_booking_alert",
		Recipient: notify.Address{Kind: notify.AddressActor, Value: "staff-001"},
	})

	assert.True(t, res.Success)
	require.Len(t, repo.alerts, 1)
	alert := repo.alerts[0]
	assert.Equal(t, "seaside-inn", alert.TenantID)
	assert.Equal(t, "staff-001", alert.ActorID)
	assert.Equal(t, "ev-1", alert.EventID)
	assert.Equal(t, "new_booking_alert", alert.Template)
	assert.NotEmpty(t, alert.ID)
}

func TestInAppSenderStoreFailureIsFailedAttempt(t *testing.T) {
	s := &notify.InAppSender{Alerts: &MockAlertRepo{err: fmt.Errorf("disk full")}}

	res := s.Send(context.Background(), notify.SendRequest{
		TenantID:  "seaside-inn",
		EventID:   "ev-1",
		Recipient: notify.Address{Kind: notify.AddressActor, Value: "guest-42"},
	})

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "disk full")
}

func TestGatewaySendersHonorCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := notify.SendRequest{Recipient: notify.Address{Value: "+254700111222"}}
	for name, s := range map[string]notify.Sender{
		"sms":   &notify.SMSGatewaySender{},
		"email": &notify.EmailGatewaySender{},
		"push":  &notify.PushGatewaySender{},
	} {
		res := s.Send(ctx, req)
		assert.False(t, res.Success, "%s sender must fail on cancelled context", name)
	}
}
