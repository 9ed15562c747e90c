// internal/notify/channel.go
package notify

import (
    "context"

    "github.com/unclebandit/innkeeper-backend/internal/model"
)

// Channel is a delivery medium. The set is closed: routing configs are
// stored as free-form strings, so anything that doesn't parse into one of
// these is skipped at dispatch time.
type Channel string

const (
    ChannelSMS   Channel = "sms"
    ChannelEmail Channel = "email"
    ChannelInApp Channel = "in_app"
    ChannelPush  Channel = "push"
)

func (c Channel) IsValid() bool {
    switch c {
    case ChannelSMS, ChannelEmail, ChannelInApp, ChannelPush:
        return true
    }
    return false
}

// RecipientType is an abstract role resolved to a concrete address at
// dispatch time.
type RecipientType string

const (
    RecipientGuest        RecipientType = "guest"
    RecipientFrontDesk    RecipientType = "front_desk"
    RecipientManager      RecipientType = "manager"
    RecipientHousekeeping RecipientType = "housekeeping_staff"
)

func (t RecipientType) IsValid() bool {
    switch t {
    case RecipientGuest, RecipientFrontDesk, RecipientManager, RecipientHousekeeping:
        return true
    }
    return false
}

// AddressKind says what a resolved address value is.
type AddressKind string

const (
    AddressPhone AddressKind = "phone"
    AddressEmail AddressKind = "email"
    AddressActor AddressKind = "actor" // internal actor id (guest or staff)
)

// Address is a concrete resolved recipient.
type Address struct {
    Kind  AddressKind
    Value string
}

// SendRequest carries everything a sender needs for one delivery.
type SendRequest struct {
    TenantID     string
    EventID      string
    EventType    string
    Template     string
    TemplateData map[string]string
    Recipient    Address
}

// Sender delivers one notification on a single channel. Implementations must
// honor ctx cancellation; a timed-out send is reported as a failed result,
// not an error.
type Sender interface {
    Send(ctx context.Context, req SendRequest) model.DeliveryResult
}

// Registry is the static channel → sender table. Dispatch looks channels up
// here instead of switching on strings.
type Registry map[Channel]Sender
