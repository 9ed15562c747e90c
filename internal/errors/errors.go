// internal/errors/errors.go
package appErrors

import "fmt"

// ErrEventNotFound is a sentinel error
type ErrEventNotFound struct {
    EventID string
}

func (e *ErrEventNotFound) Error() string {
    return fmt.Sprintf("notification event %s not found", e.EventID)
}

// Helper constructor
func NewEventNotFound(id string) error {
    return &ErrEventNotFound{EventID: id}
}

// ErrRecipientUnresolved means no concrete address could be found for a
// recipient type on a channel. Expected failure: recorded as a failed
// delivery attempt, never fails the event itself.
type ErrRecipientUnresolved struct {
    RecipientType string
    Channel       string
}

func (e *ErrRecipientUnresolved) Error() string {
    return fmt.Sprintf("no contact info for %s on channel %s", e.RecipientType, e.Channel)
}

func NewRecipientUnresolved(recipientType, channel string) error {
    return &ErrRecipientUnresolved{RecipientType: recipientType, Channel: channel}
}
