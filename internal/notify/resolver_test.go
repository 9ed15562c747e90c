package notify_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/innkeeper-backend/internal/errors"
	"github.com/unclebandit/innkeeper-backend/internal/model"
	"github.com/unclebandit/innkeeper-backend/internal/notify"
)

// MockStaffRepo serves active staff contacts from memory
type MockStaffRepo struct {
	staff map[string][]model.StaffContact // keyed tenant + "/" + role
	err   error
}

func (m *MockStaffRepo) ListActiveByRole(ctx context.Context, tenantID, role string) ([]model.StaffContact, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.staff[tenantID+"/"+role], nil
}

func TestResolveGuestFromTemplateData(t *testing.T) {
	r := &notify.StaffRecipientResolver{Staff: &MockStaffRepo{}}
	data := map[string]string{
		"guest_phone": "+254700111222",
		"guest_email": "guest@example.com",
		"guest_id":    "guest-42",
	}

	addr, err := r.Resolve(context.Background(), "seaside-inn", notify.RecipientGuest, notify.ChannelSMS, data)
	require.NoError(t, err)
	assert.Equal(t, notify.Address{Kind: notify.AddressPhone, Value: "+254700111222"}, addr)

	addr, err = r.Resolve(context.Background(), "seaside-inn", notify.RecipientGuest, notify.ChannelEmail, data)
	require.NoError(t, err)
	assert.Equal(t, notify.Address{Kind: notify.AddressEmail, Value: "guest@example.com"}, addr)

	addr, err = r.Resolve(context.Background(), "seaside-inn", notify.RecipientGuest, notify.ChannelInApp, data)
	require.NoError(t, err)
	assert.Equal(t, notify.Address{Kind: notify.AddressActor, Value: "guest-42"}, addr)
}

func TestResolveGuestMissingContact(t *testing.T) {
	r := &notify.StaffRecipientResolver{Staff: &MockStaffRepo{}}
	data := map[string]string{"guest_phone": "+254700111222"} // no email

	_, err := r.Resolve(context.Background(), "seaside-inn", notify.RecipientGuest, notify.ChannelEmail, data)
	var unresolved *appErrors.ErrRecipientUnresolved
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "guest", unresolved.RecipientType)
	assert.Equal(t, "email", unresolved.Channel)
}

func TestResolveStaffByRole(t *testing.T) {
	repo := &MockStaffRepo{staff: map[string][]model.StaffContact{
		"seaside-inn/manager": {
			{ID: "staff-1", Phone: "", Email: "manager@example.com"},
			{ID: "staff-2", Phone: "+254700999888", Email: ""},
		},
	}}
	r := &notify.StaffRecipientResolver{Staff: repo}

	// First contact has no phone; resolution falls through to the second.
	addr, err := r.Resolve(context.Background(), "seaside-inn", notify.RecipientManager, notify.ChannelSMS, nil)
	require.NoError(t, err)
	assert.Equal(t, notify.Address{Kind: notify.AddressPhone, Value: "+254700999888"}, addr)

	addr, err = r.Resolve(context.Background(), "seaside-inn", notify.RecipientManager, notify.ChannelEmail, nil)
	require.NoError(t, err)
	assert.Equal(t, notify.Address{Kind: notify.AddressEmail, Value: "manager@example.com"}, addr)

	// In-app resolves to the first active staff member's actor id.
	addr, err = r.Resolve(context.Background(), "seaside-inn", notify.RecipientManager, notify.ChannelInApp, nil)
	require.NoError(t, err)
	assert.Equal(t, notify.Address{Kind: notify.AddressActor, Value: "staff-1"}, addr)
}

func TestResolveStaffNoneActive(t *testing.T) {
	r := &notify.StaffRecipientResolver{Staff: &MockStaffRepo{}}

	_, err := r.Resolve(context.Background(), "seaside-inn", notify.RecipientHousekeeping, notify.ChannelSMS, nil)
	var unresolved *appErrors.ErrRecipientUnresolved
	assert.ErrorAs(t, err, &unresolved)
}

func TestResolveStaffStoreFailureIsNotUnresolved(t *testing.T) {
	r := &notify.StaffRecipientResolver{Staff: &MockStaffRepo{err: fmt.Errorf("connection refused")}}

	_, err := r.Resolve(context.Background(), "seaside-inn", notify.RecipientFrontDesk, notify.ChannelSMS, nil)
	require.Error(t, err)
	var unresolved *appErrors.ErrRecipientUnresolved
	assert.False(t, errors.As(err, &unresolved), "store failure must not look like a missing contact")
}
