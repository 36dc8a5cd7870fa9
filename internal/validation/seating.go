// Package validation checks request payloads field by field, collecting
// every violation instead of stopping at the first so one 400 response is
// enough to fix a payload.
package validation

import (
	"fmt"
	"time"
)

// SeatingPayload is the decoded create-seating request. Payloads are decoded
// into a generic map first so that a wrongly-typed field (e.g. a string
// numSeats) is reported per field rather than failing the whole decode.
type SeatingPayload struct {
	SeatingTime string
	NumSeats    int
	Notes       string
}

// Seating validates a raw create-seating payload. It returns the typed
// payload and a list of violated fields; the payload is only meaningful when
// the list is empty.
func Seating(raw map[string]interface{}) (SeatingPayload, []string) {
	var p SeatingPayload
	var fields []string

	if v, ok := raw["seatingTime"].(string); ok {
		if _, err := time.Parse(time.RFC3339, v); err != nil {
			fields = append(fields, "seatingTime must be a valid ISO-8601 timestamp")
		} else {
			p.SeatingTime = v
		}
	} else {
		fields = append(fields, "seatingTime is required")
	}

	// JSON numbers decode as float64; reject fractions and non-numbers alike.
	if v, ok := raw["numSeats"].(float64); ok && v == float64(int(v)) && v > 0 {
		p.NumSeats = int(v)
	} else {
		fields = append(fields, "numSeats must be a positive integer")
	}

	if v, present := raw["notes"]; present {
		s, ok := v.(string)
		if !ok {
			fields = append(fields, "notes must be a string")
		}
		p.Notes = s
	}

	return p, fields
}

// RestaurantPayload is the decoded create-restaurant request. The region is
// kept raw here; the service parses it against the region enum.
type RestaurantPayload struct {
	Name        string
	Description string
	Region      string
}

// Restaurant validates a raw create-restaurant payload, collecting all
// violations.
func Restaurant(raw map[string]interface{}) (RestaurantPayload, []string) {
	var p RestaurantPayload
	var fields []string

	if v, ok := raw["name"].(string); ok && v != "" {
		p.Name = v
	} else {
		fields = append(fields, "name is required")
	}
	if v, present := raw["description"]; present {
		s, ok := v.(string)
		if !ok {
			fields = append(fields, "description must be a string")
		}
		p.Description = s
	}
	if v, ok := raw["region"].(string); ok && v != "" {
		p.Region = v
	} else {
		fields = append(fields, "region is required")
	}

	return p, fields
}

// FieldError formats a field violation consistently. Exposed for callers
// that append service-level checks (e.g. enum membership) to the collected
// list.
func FieldError(field, problem string) string {
	return fmt.Sprintf("%s %s", field, problem)
}
