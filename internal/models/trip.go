package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Way is the direction of a trip.
type Way string

const (
	WayGoTo   Way = "go_to"
	WayReturn Way = "return"
)

// Valid reports whether w is a known way.
func (w Way) Valid() bool {
	return w == WayGoTo || w == WayReturn
}

// Label returns the human-readable name of the way.
func (w Way) Label() string {
	switch w {
	case WayGoTo:
		return "Go"
	case WayReturn:
		return "Return"
	default:
		return string(w)
	}
}

// WayAt picks the way for a trip registered at t: mornings (up to 12:59) go,
// afternoons return.
func WayAt(t time.Time) Way {
	if t.Hour() <= 12 {
		return WayGoTo
	}
	return WayReturn
}

// DateFormat is the layout used to store and display trip dates.
const DateFormat = "2006-01-02"

// Trip is a single ride in a car. There is at most one trip per (date, car, way).
type Trip struct {
	// ID is the unique identifier for the trip (UUID format).
	ID string

	// Date is the day of the trip (time part is ignored).
	Date time.Time

	// CarID is the car used. Its owner is the driver.
	CarID string

	// Way is the direction of the trip.
	Way Way

	// Passengers are the participant IDs in the car. May include the driver.
	Passengers []string

	// PricePerPassenger is the car's price per trip divided by everyone in
	// the car, recomputed whenever passengers change.
	PricePerPassenger decimal.Decimal

	// Notes is optional free text.
	Notes string

	// ReportID is set once the trip is included in a report and never changes after.
	ReportID string
}

// Label describes the trip for charge details, e.g. "2020-03-28 Go in Blue Fiat".
func (t Trip) Label(car Car) string {
	return fmt.Sprintf("%s %s in %s", t.Date.Format(DateFormat), t.Way.Label(), car.Description)
}
