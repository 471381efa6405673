package normalize

import (
	"strings"
	"time"

	"turnon/internal/models"
)

// Accessor chains for turn fields, snake_case first.
var (
	turnIDKeys       = []string{"id", "turn_id", "turnId"}
	turnCodeKeys     = []string{"turn", "turn_code", "turnCode", "code"}
	patientNameKeys  = []string{"patient_name", "patientName", "name"}
	patientEmailKeys = []string{"patient_email", "patientEmail", "email"}
	patientPhoneKeys = []string{"patient_phone", "patientPhone", "phone"}
	turnStatusKeys   = []string{"status", "turn_status", "turnStatus", "state"}
	startTimeKeys    = []string{"start_time", "startTime", "check_in", "checkIn", "created_at", "createdAt"}
	endTimeKeys      = []string{"end_time", "endTime", "actual_end_time", "actualEndTime", "created_at", "createdAt"}
	createdAtKeys    = []string{"created_at", "createdAt"}
	companyIDKeys    = []string{"company_id", "companyId", "company.id"}
	serviceIDKeys    = []string{"service_id", "serviceId", "service.id"}
	serviceNameKeys  = []string{"service_name", "serviceName", "service.name"}
	turnUserIDKeys   = []string{"user_id", "userId", "doctor_id", "doctorId", "user.id", "doctor.id"}
	turnUserNameKeys = []string{"user_name", "userName", "doctor_name", "doctorName", "user.name", "doctor.name"}
	officeRoomKeys   = []string{"office_room", "officeRoom", "room", "user.office_room", "doctor.office_room"}
)

const (
	demoPatientName = "Paciente de ejemplo"
	demoServiceName = "Consulta general"
	demoDuration    = 30 * time.Minute
)

// NormalizeTurn maps one raw backend record onto models.Turn. Missing or
// malformed fields fall back to defaults; it never fails.
func NormalizeTurn(raw any) models.Turn {
	r := asRecord(raw)
	id, _ := r.int(turnIDKeys...)
	return models.Turn{
		ID:           id,
		Turn:         r.str(turnCodeKeys...),
		PatientName:  r.str(patientNameKeys...),
		PatientEmail: r.str(patientEmailKeys...),
		PatientPhone: r.str(patientPhoneKeys...),
		StartTime:    r.str(startTimeKeys...),
		EndTime:      r.str(endTimeKeys...),
		Status:       TurnStatus(r.str(turnStatusKeys...)),
		CompanyID:    r.intPtr(companyIDKeys...),
		ServiceID:    r.intPtr(serviceIDKeys...),
		ServiceName:  r.str(serviceNameKeys...),
		UserID:       r.intPtr(turnUserIDKeys...),
		UserName:     r.str(turnUserNameKeys...),
		OfficeRoom:   r.str(officeRoomKeys...),
		CreatedAt:    r.str(createdAtKeys...),
	}
}

// NormalizeTurns normalizes every object in records. Entries that are not
// JSON objects are skipped.
func NormalizeTurns(records []any) []models.Turn {
	turns := make([]models.Turn, 0, len(records))
	for _, raw := range records {
		if asRecord(raw) == nil {
			continue
		}
		turns = append(turns, NormalizeTurn(raw))
	}
	return turns
}

// TurnStatus upper-cases a raw status; blank means PENDING.
func TurnStatus(raw string) string {
	status := strings.ToUpper(strings.TrimSpace(raw))
	if status == "" {
		return models.StatusPending
	}
	return status
}

// FallbackTurn is the stand-in shown when the backend returned no data at all.
func FallbackTurn(now time.Time) models.Turn {
	return models.Turn{
		Turn:        "Q001",
		PatientName: demoPatientName,
		ServiceName: demoServiceName,
		StartTime:   now.Format(time.RFC3339),
		EndTime:     now.Add(demoDuration).Format(time.RFC3339),
		Status:      models.StatusPending,
		CreatedAt:   now.Format(time.RFC3339),
	}
}
