package models

import "github.com/shopspring/decimal"

// Car is a participant's car. The owner always drives it.
type Car struct {
	// ID is the unique identifier for the car (UUID format).
	ID string

	// OwnerID is the participant who owns and drives the car.
	OwnerID string

	// Description is free text, e.g. "Blue Fiat".
	Description string

	// PricePerTrip is the full cost of one trip, shared by everyone in the car.
	PricePerTrip decimal.Decimal
}
