// Package models defines the domain models for the carpool cost tracker.
//
// # Models
//
//   - Participant: a person who drives or rides
//   - Car: a car owned by a participant, with a fixed price per trip
//   - Trip: one ride in a car on a given date and way
//   - Report: a closed batch of trips that is settled together
//
// # Design Principles
//
// 1. **Explicit relationships**: models reference each other by ID strings, not pointers
// 2. **Exact money**: every amount is a decimal.Decimal rounded to cents
// 3. **Derived data stays derived**: settlements are computed from a report's
// trips on demand and never stored
package models
