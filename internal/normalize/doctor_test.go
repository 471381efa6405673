package normalize

import (
	"reflect"
	"testing"

	"turnon/internal/models"
)

func TestNormalizeDoctors(t *testing.T) {
	raw := map[string]any{
		"doctors": []any{
			map[string]any{
				"id":          4.0,
				"first_name":  "Marta",
				"last_name":   "Gil",
				"office_room": "12B",
				"services": []any{
					map[string]any{"id": 1.0, "name": "Medicina general"},
					map[string]any{"service_id": "2", "service_name": "Vacunación"},
					"junk",
				},
			},
		},
	}
	doctors := NormalizeDoctors(Unwrap(raw))
	want := []models.Doctor{{
		ID:         4,
		Name:       "Marta Gil",
		OfficeRoom: "12B",
		Services: []models.ServiceRef{
			{ID: 1, Name: "Medicina general"},
			{ID: 2, Name: "Vacunación"},
		},
	}}
	if !reflect.DeepEqual(doctors, want) {
		t.Fatalf("unexpected doctors: %+v", doctors)
	}
}
