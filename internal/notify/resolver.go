// internal/notify/resolver.go
package notify

import (
    "context"

    appErrors "github.com/unclebandit/innkeeper-backend/internal/errors"
    "github.com/unclebandit/innkeeper-backend/internal/repository"
)

// RecipientResolver maps an abstract recipient type plus tenant context to a
// concrete address. A missing contact is reported as ErrRecipientUnresolved;
// any other error is an infrastructure failure.
type RecipientResolver interface {
    Resolve(ctx context.Context, tenantID string, recipientType RecipientType, channel Channel, templateData map[string]string) (Address, error)
}

// StaffRecipientResolver resolves guests from the event's template data and
// staff roles from the tenant's active staff contacts. Tenant context comes
// in as arguments on every call, never from shared state.
type StaffRecipientResolver struct {
    Staff repository.StaffRepositoryInterface
}

func (r *StaffRecipientResolver) Resolve(ctx context.Context, tenantID string, recipientType RecipientType, channel Channel, templateData map[string]string) (Address, error) {
    if recipientType == RecipientGuest {
        return resolveGuest(recipientType, channel, templateData)
    }
    return r.resolveStaff(ctx, tenantID, recipientType, channel)
}

func resolveGuest(recipientType RecipientType, channel Channel, templateData map[string]string) (Address, error) {
    var key string
    var kind AddressKind
    switch channel {
    case ChannelSMS:
        key, kind = "guest_phone", AddressPhone
    case ChannelEmail:
        key, kind = "guest_email", AddressEmail
    case ChannelInApp, ChannelPush:
        key, kind = "guest_id", AddressActor
    default:
        return Address{}, appErrors.NewRecipientUnresolved(string(recipientType), string(channel))
    }
    if v := templateData[key]; v != "" {
        return Address{Kind: kind, Value: v}, nil
    }
    return Address{}, appErrors.NewRecipientUnresolved(string(recipientType), string(channel))
}

func (r *StaffRecipientResolver) resolveStaff(ctx context.Context, tenantID string, recipientType RecipientType, channel Channel) (Address, error) {
    staff, err := r.Staff.ListActiveByRole(ctx, tenantID, string(recipientType))
    if err != nil {
        return Address{}, err // store unreachable: infrastructure failure
    }
    for _, s := range staff {
        switch channel {
        case ChannelSMS:
            if s.Phone != "" {
                return Address{Kind: AddressPhone, Value: s.Phone}, nil
            }
        case ChannelEmail:
            if s.Email != "" {
                return Address{Kind: AddressEmail, Value: s.Email}, nil
            }
        case ChannelInApp, ChannelPush:
            return Address{Kind: AddressActor, Value: s.ID}, nil
        }
    }
    return Address{}, appErrors.NewRecipientUnresolved(string(recipientType), string(channel))
}
