package catalog

import (
	"math"

	"salvo-backend/internal/model"
)

// CheckRecord reports whether rec may take part in a proximity search.
// If it may not, reason says why; the record is skipped, never fatal.
func CheckRecord(rec model.BusinessRecord) (ok bool, reason string) {
	if !rec.Active() {
		return false, "status not active"
	}
	if !rec.Located() {
		return false, "coordinates missing"
	}
	lat, lng := *rec.Latitude, *rec.Longitude
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false, "coordinates not finite"
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return false, "coordinates out of range"
	}
	return true, ""
}

// CheckNew validates a record offered for registration.
func CheckNew(rec model.BusinessRecord) (ok bool, reason string) {
	if rec.ID == "" {
		return false, "id missing"
	}
	if rec.Name == "" {
		return false, "nome missing"
	}
	if rec.Category == "" {
		return false, "categoria missing"
	}
	if rec.Located() {
		if ok, reason := CheckRecord(model.BusinessRecord{
			Status: model.StatusActive, Latitude: rec.Latitude, Longitude: rec.Longitude,
		}); !ok {
			return false, reason
		}
	}
	return true, ""
}
