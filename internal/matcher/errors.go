package matcher

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"salvo-backend/internal/model"
)

// ErrSourceRequired is returned when a catalog source is not provided.
var ErrSourceRequired = errors.New("catalog source required")

// ValidationError reports a search query the matcher should not receive.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// validate caches struct metadata; the range rules live in the tags on
// model.SearchQuery.
var validate = validator.New()

// Validate checks q before it reaches the matcher, which trusts its input.
func Validate(q model.SearchQuery) error {
	finite := []struct {
		field string
		v     float64
	}{
		{"lat", q.Latitude},
		{"lng", q.Longitude},
		{"radius_km", q.RadiusKm},
	}
	for _, f := range finite {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &ValidationError{Field: f.field, Reason: "must be a finite number"}
		}
	}

	if err := validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &ValidationError{Field: jsonName(fe.Field()), Reason: reasonFor(fe)}
		}
		return &ValidationError{Field: "query", Reason: err.Error()}
	}
	return nil
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func jsonName(field string) string {
	switch field {
	case "Latitude":
		return "lat"
	case "Longitude":
		return "lng"
	case "RadiusKm":
		return "radius_km"
	}
	return strings.ToLower(field)
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "latitude":
		return "must be between -90 and 90"
	case "longitude":
		return "must be between -180 and 180"
	case "gte":
		return "must not be negative"
	case "max":
		return "at most " + fe.Param() + " entries"
	}
	return "failed " + fe.Tag()
}
