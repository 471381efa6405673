package normalize

import (
	"strings"

	"turnon/internal/models"
)

var (
	doctorIDKeys       = []string{"id", "doctor_id", "doctorId", "user_id", "userId"}
	doctorNameKeys     = []string{"name", "full_name", "fullName", "doctor_name", "doctorName"}
	doctorServicesKeys = []string{"services", "service_list", "serviceList"}
	serviceRefIDKeys   = []string{"id", "service_id", "serviceId"}
	serviceRefNameKeys = []string{"name", "service_name", "serviceName"}
)

func NormalizeDoctor(raw any) models.Doctor {
	r := asRecord(raw)
	id, _ := r.int(doctorIDKeys...)

	name := r.str(doctorNameKeys...)
	if name == "" {
		name = strings.TrimSpace(r.str(userNameKeys...) + " " + r.str(userLastNameKeys...))
	}

	services := []models.ServiceRef{}
	for _, item := range r.list(doctorServicesKeys...) {
		s := asRecord(item)
		if s == nil {
			continue
		}
		sid, _ := s.int(serviceRefIDKeys...)
		services = append(services, models.ServiceRef{ID: sid, Name: s.str(serviceRefNameKeys...)})
	}

	return models.Doctor{
		ID:         id,
		Name:       name,
		Email:      r.str(userEmailKeys...),
		OfficeRoom: r.str(officeRoomKeys...),
		Services:   services,
	}
}

func NormalizeDoctors(records []any) []models.Doctor {
	doctors := make([]models.Doctor, 0, len(records))
	for _, raw := range records {
		if asRecord(raw) == nil {
			continue
		}
		doctors = append(doctors, NormalizeDoctor(raw))
	}
	return doctors
}
