package model

import (
	"fmt"

	"github.com/viant/toolbox"
)

// RequiredFields lists the caller supplied fields every submission must
// carry. The remaining payload content is opaque and passed through
// unmodified.
var RequiredFields = []string{"name", "course", "cost"}

// numericFields are normalized to plain numbers at the model boundary so
// that values survive a store round trip without changing representation
// (e.g. decimal wrappers, json.Number, numeric strings).
var numericFields = map[string]bool{"cost": true}

// ValidationError indicates malformed or missing caller input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("Missing field: %v", e.Field)
	}
	return fmt.Sprintf("invalid field %v: %v", e.Field, e.Reason)
}

// IsValidation reports whether err is a caller input error.
func IsValidation(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}

// NormalizePayload validates the required fields and returns a copy of the
// payload with numeric fields converted to float64. The input map is left
// untouched.
func NormalizePayload(payload map[string]interface{}) (map[string]interface{}, error) {
	for _, field := range RequiredFields {
		value, ok := payload[field]
		if !ok || value == nil || value == "" {
			return nil, &ValidationError{Field: field}
		}
	}
	normalized := make(map[string]interface{}, len(payload))
	for key, value := range payload {
		if numericFields[key] {
			number, err := toolbox.ToFloat(value)
			if err != nil {
				return nil, &ValidationError{Field: key, Reason: "not a number"}
			}
			normalized[key] = number
			continue
		}
		normalized[key] = value
	}
	return normalized, nil
}
