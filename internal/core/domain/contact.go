package domain

import "time"

// Contact is an existing connection of the seeker, read-only input to
// connector-path scoring. The scorer never mutates contact data.
type Contact struct {
	ID             string
	Name           string
	CurrentTitle   string
	CurrentCompany string

	// ConnectedOn is when the connection was made, used to estimate
	// relationship strength. Nil when unknown.
	ConnectedOn *time.Time

	CreatedAt time.Time
}
