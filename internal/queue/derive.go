package queue

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"turnon/internal/models"
)

const (
	placeholder        = "—"
	unnamedService     = "Servicio no especificado"
	unassignedDoctor   = "Sin asignar"
	patientLabelPrefix = "Paciente"
)

// timeLayouts are tried in order when reading turn timestamps.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// NormalizeStatus returns the upper-cased status of a turn, PENDING when blank.
func NormalizeStatus(turn models.Turn) string {
	status := strings.ToUpper(strings.TrimSpace(turn.Status))
	if status == "" {
		return models.StatusPending
	}
	return status
}

func CountStats(turns []models.Turn) models.QueueStats {
	stats := models.QueueStats{Total: len(turns)}
	for _, turn := range turns {
		switch NormalizeStatus(turn) {
		case models.StatusPending:
			stats.Pending++
		case models.StatusActive:
			stats.Active++
		case models.StatusCompleted:
			stats.Completed++
		case models.StatusCancelled:
			stats.Cancelled++
		}
	}
	return stats
}

// ParseTime reads an ISO-8601 timestamp. Zone-less values are read in loc.
func ParseTime(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SortByStartTime returns a copy ordered by ascending start time. Turns
// without a readable start time go last; ties keep their input order.
func SortByStartTime(turns []models.Turn) []models.Turn {
	sorted := make([]models.Turn, len(turns))
	copy(sorted, turns)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, okA := ParseTime(sorted[i].StartTime, time.UTC)
		b, okB := ParseTime(sorted[j].StartTime, time.UTC)
		switch {
		case !okA:
			return false
		case !okB:
			return true
		default:
			return a.Before(b)
		}
	})
	return sorted
}

// TicketCode is the display code for the turn at index: Q001, Q002, ...
func TicketCode(index int) string {
	return fmt.Sprintf("Q%03d", index+1)
}

func TransformToQueueEntry(turn models.Turn, index int) models.QueueEntry {
	return models.QueueEntry{
		TurnID:      turn.ID,
		Position:    fmt.Sprintf("#%d", index+1),
		Ticket:      TicketCode(index),
		ServerCode:  turn.Turn,
		PatientName: orDefault(turn.PatientName, fmt.Sprintf("%s %d", patientLabelPrefix, index+1)),
		ServiceName: orDefault(turn.ServiceName, unnamedService),
		Email:       orDefault(turn.PatientEmail, placeholder),
		Phone:       orDefault(turn.PatientPhone, placeholder),
		Doctor:      orDefault(turn.UserName, unassignedDoctor),
		OfficeRoom:  turn.OfficeRoom,
		StartTime:   turn.StartTime,
		Status:      NormalizeStatus(turn),
	}
}

// TransformToUpcoming prefers the server-issued code over the positional one
// and renders the start time as HH:MM in loc.
func TransformToUpcoming(turn models.Turn, index int, loc *time.Location) models.UpcomingTurn {
	clock := placeholder
	if t, ok := ParseTime(turn.StartTime, loc); ok {
		if loc != nil {
			t = t.In(loc)
		}
		clock = t.Format("15:04")
	}
	return models.UpcomingTurn{
		TurnID:      turn.ID,
		Ticket:      orDefault(turn.Turn, TicketCode(index)),
		PatientName: orDefault(turn.PatientName, fmt.Sprintf("%s %d", patientLabelPrefix, index+1)),
		ServiceName: orDefault(turn.ServiceName, unnamedService),
		Doctor:      orDefault(turn.UserName, unassignedDoctor),
		Time:        clock,
		Status:      NormalizeStatus(turn),
	}
}

// maxUpcoming caps the waiting-room preview.
const maxUpcoming = 5

// BuildView derives everything a queue screen renders from one turn list.
func BuildView(date string, turns []models.Turn, loc *time.Location) models.QueueView {
	view := models.QueueView{
		Date:     date,
		Stats:    CountStats(turns),
		Pending:  []models.QueueEntry{},
		Active:   []models.QueueEntry{},
		Upcoming: []models.UpcomingTurn{},
	}
	var pending, active []models.Turn
	for _, turn := range SortByStartTime(turns) {
		switch NormalizeStatus(turn) {
		case models.StatusPending:
			pending = append(pending, turn)
		case models.StatusActive:
			active = append(active, turn)
		}
	}
	for i, turn := range pending {
		view.Pending = append(view.Pending, TransformToQueueEntry(turn, i))
		if i < maxUpcoming {
			view.Upcoming = append(view.Upcoming, TransformToUpcoming(turn, i, loc))
		}
	}
	for i, turn := range active {
		view.Active = append(view.Active, TransformToQueueEntry(turn, i))
	}
	return view
}

// FilterByDoctor keeps the turns assigned to userID; zero keeps everything.
func FilterByDoctor(turns []models.Turn, userID int64) []models.Turn {
	if userID == 0 {
		return turns
	}
	filtered := make([]models.Turn, 0, len(turns))
	for _, turn := range turns {
		if turn.UserID != nil && *turn.UserID == userID {
			filtered = append(filtered, turn)
		}
	}
	return filtered
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
