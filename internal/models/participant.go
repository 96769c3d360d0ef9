package models

// Participant is a person who drives or rides in trips.
type Participant struct {
	// ID is the unique identifier for the participant (UUID format).
	ID string

	// FirstName is used in compact listings such as a trip's people names.
	FirstName string

	// LastName is optional.
	LastName string

	// CreatedAt is the Unix timestamp when the participant was created.
	CreatedAt int64
}

// FullName returns the display name used in reports.
func (p Participant) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
