package models

// Report groups a closed batch of trips that are settled together.
type Report struct {
	// ID is the unique identifier for the report (UUID format).
	ID string

	// CreatorID is the participant who created the report.
	CreatorID string

	// CreatedAt is the Unix timestamp when the report was created.
	CreatedAt int64
}
