package service

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"turnon/internal/models"
	"turnon/internal/normalize"
	"turnon/internal/queue"
	"turnon/internal/store"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Notifier is told about every successful turn mutation.
type Notifier interface {
	TurnsUpdated(ctx context.Context, turnID int64, userID *int64, action string)
}

type ActivityRecorder interface {
	RecordTurnEvent(ctx context.Context, event store.TurnEvent) error
}

type TurnOptions struct {
	// DemoFallback substitutes a single demo turn when the backend answers
	// with no data at all. An empty list is never replaced.
	DemoFallback bool
	Location     *time.Location
	Now          func() time.Time
	Notifier     Notifier
	Activity     ActivityRecorder
}

type Turns struct {
	api      Backend
	demo     bool
	loc      *time.Location
	now      func() time.Time
	notifier Notifier
	activity ActivityRecorder
}

type CreateTurnInput struct {
	PatientName  string `json:"patientName"`
	PatientEmail string `json:"patientEmail"`
	PatientPhone string `json:"patientPhone"`
	ServiceID    int64  `json:"serviceId"`
	UserID       int64  `json:"userId"`
	CompanyID    *int64 `json:"companyId"`
	StartTime    string `json:"startTime"`
	OfficeRoom   string `json:"officeRoom"`
}

const actionCreate = "create"

func NewTurns(api Backend, options TurnOptions) *Turns {
	loc := options.Location
	if loc == nil {
		loc = time.Local
	}
	now := options.Now
	if now == nil {
		now = time.Now
	}
	return &Turns{
		api:      api,
		demo:     options.DemoFallback,
		loc:      loc,
		now:      now,
		notifier: options.Notifier,
		activity: options.Activity,
	}
}

func (s *Turns) Location() *time.Location {
	return s.loc
}

// Today is the current date in the service's time zone, as YYYY-MM-DD.
func (s *Turns) Today() string {
	return s.now().In(s.loc).Format(dateLayout)
}

func (s *Turns) List(ctx context.Context) ([]models.Turn, error) {
	raw, err := s.api.Get(ctx, "/api/turns", nil)
	if err != nil {
		return nil, err
	}
	return s.decode(raw), nil
}

func (s *Turns) Pending(ctx context.Context, date string) ([]models.Turn, error) {
	return s.listByDate(ctx, "/api/turns/pending", date)
}

func (s *Turns) Active(ctx context.Context, date string) ([]models.Turn, error) {
	return s.listByDate(ctx, "/api/turns/active", date)
}

func (s *Turns) listByDate(ctx context.Context, path, date string) ([]models.Turn, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}
	raw, err := s.api.Get(ctx, path, url.Values{"date": {date}})
	if err != nil {
		return nil, err
	}
	return s.decode(raw), nil
}

// View builds the queue screen for one day. The pending, active and full
// lists are fetched concurrently and merged by turn id; doctorID > 0 keeps
// only that doctor's turns.
func (s *Turns) View(ctx context.Context, date string, doctorID int64) (models.QueueView, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return models.QueueView{}, err
	}

	var pending, active, all []models.Turn
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pending, err = s.Pending(gctx, date)
		return err
	})
	g.Go(func() error {
		var err error
		active, err = s.Active(gctx, date)
		return err
	})
	g.Go(func() error {
		var err error
		all, err = s.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.QueueView{}, err
	}

	turns := mergeTurns(pending, active, s.onDay(all, date))
	turns = queue.FilterByDoctor(turns, doctorID)
	return queue.BuildView(date, turns, s.loc), nil
}

// DayStats counts the turns that start on date.
func (s *Turns) DayStats(ctx context.Context, date string) (models.DailyStats, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return models.DailyStats{}, err
	}
	all, err := s.List(ctx)
	if err != nil {
		return models.DailyStats{}, err
	}
	counts := queue.CountStats(s.onDay(all, date))
	return models.DailyStats{
		Day:       date,
		Total:     counts.Total,
		Pending:   counts.Pending,
		Active:    counts.Active,
		Completed: counts.Completed,
		Cancelled: counts.Cancelled,
	}, nil
}

func (s *Turns) Create(ctx context.Context, input CreateTurnInput) (models.Turn, error) {
	input.PatientName = strings.TrimSpace(input.PatientName)
	input.PatientEmail = strings.TrimSpace(input.PatientEmail)
	input.PatientPhone = strings.TrimSpace(input.PatientPhone)
	input.StartTime = strings.TrimSpace(input.StartTime)
	input.OfficeRoom = strings.TrimSpace(input.OfficeRoom)

	switch {
	case input.PatientName == "":
		return models.Turn{}, fmt.Errorf("%w: patient name is required", ErrValidation)
	case input.ServiceID <= 0:
		return models.Turn{}, fmt.Errorf("%w: service is required", ErrValidation)
	case input.UserID <= 0:
		return models.Turn{}, fmt.Errorf("%w: doctor is required", ErrValidation)
	}
	if input.StartTime == "" {
		input.StartTime = s.now().In(s.loc).Format(time.RFC3339)
	} else if _, ok := queue.ParseTime(input.StartTime, s.loc); !ok {
		return models.Turn{}, fmt.Errorf("%w: start time %q is not a valid timestamp", ErrValidation, input.StartTime)
	}

	payload := map[string]any{
		"patientName": input.PatientName,
		"serviceId":   input.ServiceID,
		"userId":      input.UserID,
		"startTime":   input.StartTime,
		"status":      models.StatusPending,
	}
	if input.PatientEmail != "" {
		payload["patientEmail"] = input.PatientEmail
	}
	if input.PatientPhone != "" {
		payload["patientPhone"] = input.PatientPhone
	}
	if input.CompanyID != nil {
		payload["companyId"] = *input.CompanyID
	}
	if input.OfficeRoom != "" {
		payload["officeRoom"] = input.OfficeRoom
	}

	raw, err := s.api.Post(ctx, "/api/turns", payload)
	if err != nil {
		return models.Turn{}, err
	}

	turn := normalize.NormalizeTurn(normalize.First(raw))
	if turn.ID == 0 && turn.PatientName == "" {
		serviceID, userID := input.ServiceID, input.UserID
		turn = models.Turn{
			PatientName:  input.PatientName,
			PatientEmail: input.PatientEmail,
			PatientPhone: input.PatientPhone,
			StartTime:    input.StartTime,
			Status:       models.StatusPending,
			CompanyID:    input.CompanyID,
			ServiceID:    &serviceID,
			UserID:       &userID,
			OfficeRoom:   input.OfficeRoom,
		}
	}
	s.publish(ctx, turn, actionCreate)
	return turn, nil
}

func (s *Turns) Complete(ctx context.Context, id int64) (models.Turn, error) {
	return s.transition(ctx, id, queue.ActionComplete, models.StatusCompleted)
}

func (s *Turns) Cancel(ctx context.Context, id int64) (models.Turn, error) {
	return s.transition(ctx, id, queue.ActionCancel, models.StatusCancelled)
}

func (s *Turns) transition(ctx context.Context, id int64, action, target string) (models.Turn, error) {
	if id <= 0 {
		return models.Turn{}, fmt.Errorf("%w: turn id must be positive", ErrValidation)
	}

	current, found, err := s.find(ctx, id)
	if err != nil {
		log.Printf("turn lookup failed before %s turn_id=%d err=%v", action, id, err)
	}
	if found && !queue.ValidTransition(action, current.Status) {
		return models.Turn{}, fmt.Errorf("%w: cannot %s turn %d in status %s", ErrInvalidTransition, action, id, queue.NormalizeStatus(current))
	}

	raw, err := s.api.Patch(ctx, fmt.Sprintf("/api/turns/%d/%s", id, action), nil)
	if err != nil {
		return models.Turn{}, err
	}

	turn := normalize.NormalizeTurn(normalize.First(raw))
	if turn.ID == 0 {
		turn = current
		turn.ID = id
		turn.Status = target
	}
	s.publish(ctx, turn, action)
	return turn, nil
}

func (s *Turns) find(ctx context.Context, id int64) (models.Turn, bool, error) {
	raw, err := s.api.Get(ctx, "/api/turns", nil)
	if err != nil {
		return models.Turn{}, false, err
	}
	for _, turn := range normalize.NormalizeTurns(normalize.Unwrap(raw)) {
		if turn.ID == id {
			return turn, true, nil
		}
	}
	return models.Turn{}, false, nil
}

func (s *Turns) publish(ctx context.Context, turn models.Turn, action string) {
	if s.activity != nil {
		event := store.TurnEvent{
			EventID:    uuid.NewString(),
			TurnID:     turn.ID,
			Action:     action,
			Status:     queue.NormalizeStatus(turn),
			UserID:     turn.UserID,
			OccurredAt: s.now().UTC(),
		}
		if err := s.activity.RecordTurnEvent(ctx, event); err != nil {
			log.Printf("record turn event failed turn_id=%d action=%s err=%v", turn.ID, action, err)
		}
	}
	if s.notifier != nil {
		s.notifier.TurnsUpdated(ctx, turn.ID, turn.UserID, action)
	}
}

func (s *Turns) decode(raw any) []models.Turn {
	if raw == nil && s.demo {
		return []models.Turn{normalize.FallbackTurn(s.now().In(s.loc))}
	}
	return normalize.NormalizeTurns(normalize.Unwrap(raw))
}

func (s *Turns) resolveDate(date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return s.Today(), nil
	}
	if _, err := time.ParseInLocation(dateLayout, date, s.loc); err != nil {
		return "", fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	return date, nil
}

// onDay keeps the turns whose start time falls on date in the service's
// time zone. Turns without a parsable start time are dropped.
func (s *Turns) onDay(turns []models.Turn, date string) []models.Turn {
	kept := make([]models.Turn, 0, len(turns))
	for _, turn := range turns {
		start, ok := queue.ParseTime(turn.StartTime, s.loc)
		if ok && start.In(s.loc).Format(dateLayout) == date {
			kept = append(kept, turn)
		}
	}
	return kept
}

// mergeTurns concatenates lists, keeping the first occurrence of each turn.
// Turns without a server id are keyed on their visible fields.
func mergeTurns(lists ...[]models.Turn) []models.Turn {
	seen := make(map[string]struct{})
	merged := make([]models.Turn, 0)
	for _, list := range lists {
		for _, turn := range list {
			key := fmt.Sprintf("id:%d", turn.ID)
			if turn.ID == 0 {
				key = "tmp:" + turn.Turn + "|" + turn.PatientName + "|" + turn.StartTime
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, turn)
		}
	}
	return merged
}
