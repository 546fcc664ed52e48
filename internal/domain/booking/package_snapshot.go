package booking

import "github.com/google/uuid"

// PackageSnapshot is the service package as it was when the booking was made.
// It is copied by value so later catalog edits never reach existing bookings.
type PackageSnapshot struct {
	ServiceID   uuid.UUID `json:"service_id"`
	Title       string    `json:"title"`
	PriceMinor  int64     `json:"price_minor"`
	Duration    string    `json:"duration"`
	Description string    `json:"description"`
	Features    []string  `json:"features"`
}

// IsZero reports whether no package was selected.
func (p PackageSnapshot) IsZero() bool {
	return p.ServiceID == uuid.Nil && p.Title == ""
}

func (p PackageSnapshot) clone() PackageSnapshot {
	out := p
	if p.Features != nil {
		out.Features = append([]string(nil), p.Features...)
	}
	return out
}
