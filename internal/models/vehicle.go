// Package models defines the typed records the service manages.
//
// Both record kinds are stored as delimited text: every field is a string at
// rest, and numeric fields are parsed on demand. The struct field sets are
// fixed, so every persisted row carries the full column superset.
package models

import "strconv"

// Vehicle statuses.
const (
	StatusAvailable       = "AVAILABLE"
	StatusRented          = "RENTED"
	StatusDamaged         = "DAMAGED"
	StatusServiceRequired = "SERVICEREQ"
)

// VehicleColumns is the canonical column order for the vehicle table.
// It doubles as the CSV header on save.
var VehicleColumns = []string{
	"id", "make", "model", "colour", "vin", "year", "vrm",
	"category", "numberSeats", "dayRate", "status", "fuelEconomy", "branch",
}

// Vehicle is a single fleet record. VRM (the registration plate) is the
// business key used for lookups; id carries no uniqueness invariant.
type Vehicle struct {
	ID          string `json:"id"`
	Make        string `json:"make"`
	Model       string `json:"model"`
	Colour      string `json:"colour"`
	VIN         string `json:"vin"`
	Year        string `json:"year"`
	VRM         string `json:"vrm"`
	Category    string `json:"category"`
	NumberSeats string `json:"numberSeats"`
	DayRate     string `json:"dayRate"`
	Status      string `json:"status"`
	FuelEconomy string `json:"fuelEconomy"`
	Branch      string `json:"branch"`
}

// Record maps the vehicle onto its column names for persistence.
func (v Vehicle) Record() map[string]string {
	return map[string]string{
		"id":          v.ID,
		"make":        v.Make,
		"model":       v.Model,
		"colour":      v.Colour,
		"vin":         v.VIN,
		"year":        v.Year,
		"vrm":         v.VRM,
		"category":    v.Category,
		"numberSeats": v.NumberSeats,
		"dayRate":     v.DayRate,
		"status":      v.Status,
		"fuelEconomy": v.FuelEconomy,
		"branch":      v.Branch,
	}
}

// VehicleFromRecord builds a Vehicle from a persisted row. Missing columns
// yield empty fields.
func VehicleFromRecord(rec map[string]string) Vehicle {
	return Vehicle{
		ID:          rec["id"],
		Make:        rec["make"],
		Model:       rec["model"],
		Colour:      rec["colour"],
		VIN:         rec["vin"],
		Year:        rec["year"],
		VRM:         rec["vrm"],
		Category:    rec["category"],
		NumberSeats: rec["numberSeats"],
		DayRate:     rec["dayRate"],
		Status:      rec["status"],
		FuelEconomy: rec["fuelEconomy"],
		Branch:      rec["branch"],
	}
}

// DayRateValue parses the day rate. ok is false for empty or non-numeric
// values; callers treat those records as rate-less rather than erroring.
func (v Vehicle) DayRateValue() (float64, bool) {
	if v.DayRate == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.DayRate, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// HasIssue reports whether the vehicle is out of service.
func (v Vehicle) HasIssue() bool {
	return v.Status == StatusDamaged || v.Status == StatusServiceRequired
}
