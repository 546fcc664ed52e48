package booking

import "fmt"

// BookingStatus represents the current state of a booking in its lifecycle.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
	StatusDeclined  BookingStatus = "declined"
	StatusRefunded  BookingStatus = "refunded"
)

// validTransitions defines the state machine for booking status transitions.
// No edge leads back into pending.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusDeclined, StatusCancelled, StatusRefunded},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusRefunded},
	StatusCompleted: {StatusRefunded},
	StatusCancelled: {StatusRefunded},
	StatusDeclined:  {StatusRefunded},
	StatusRefunded:  {},
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status is terminal for lifecycle purposes.
// Only pending and confirmed bookings still move on their own; the admin
// refund edge is an override and does not count.
func (s BookingStatus) IsTerminal() bool {
	return s != StatusPending && s != StatusConfirmed
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}

// PayoutStatus tracks whether the platform has paid the celebrity out. It is
// independent of the booking status.
type PayoutStatus string

const (
	PayoutPending PayoutStatus = "pending"
	PayoutPaid    PayoutStatus = "paid"
)

// ParsePayoutStatus converts a string to a PayoutStatus.
func ParsePayoutStatus(s string) (PayoutStatus, error) {
	switch p := PayoutStatus(s); p {
	case PayoutPending, PayoutPaid:
		return p, nil
	}
	return "", fmt.Errorf("invalid payout status: %s", s)
}
