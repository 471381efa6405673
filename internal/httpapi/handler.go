package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"turnon/internal/apiclient"
	"turnon/internal/models"
	"turnon/internal/service"
	"turnon/internal/store"
)

type TurnService interface {
	List(ctx context.Context) ([]models.Turn, error)
	Pending(ctx context.Context, date string) ([]models.Turn, error)
	Active(ctx context.Context, date string) ([]models.Turn, error)
	View(ctx context.Context, date string, doctorID int64) (models.QueueView, error)
	Create(ctx context.Context, input service.CreateTurnInput) (models.Turn, error)
	Complete(ctx context.Context, id int64) (models.Turn, error)
	Cancel(ctx context.Context, id int64) (models.Turn, error)
}

type UserService interface {
	List(ctx context.Context) ([]models.UserAccount, error)
	Get(ctx context.Context, id string) (models.UserAccount, error)
	Create(ctx context.Context, input service.CreateUserInput) (models.UserAccount, error)
	Update(ctx context.Context, id string, updated models.UserAccount, previous *models.UserAccount) (models.UserAccount, error)
}

type DoctorService interface {
	WithServices(ctx context.Context) ([]models.Doctor, error)
}

type AuthService interface {
	Login(ctx context.Context, creds service.Credentials) (models.Session, error)
	Register(ctx context.Context, input service.RegisterInput) (models.UserAccount, error)
}

type ChartService interface {
	Chart(ctx context.Context, weekOf string) (models.ChartPaths, error)
}

type KioskSource interface {
	Snapshot() models.KioskSnapshot
	Refresh(ctx context.Context) bool
}

// HistorySource lists the recorded mutations of one turn.
type HistorySource interface {
	ListTurnEvents(ctx context.Context, turnID int64) ([]store.TurnEvent, error)
}

type Services struct {
	Turns     TurnService
	Users     UserService
	Doctors   DoctorService
	Auth      AuthService
	Dashboard ChartService
	Kiosk     KioskSource
	// History is nil when no activity store is configured.
	History HistorySource
}

type Options struct {
	// KioskToken, when set, must be presented by kiosk screens as ?token= or
	// X-Kiosk-Token.
	KioskToken string
}

type Handler struct {
	services   Services
	kioskToken string
}

type errorResponse struct {
	RequestID string        `json:"request_id"`
	Error     responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type userRequest struct {
	Name      string `json:"name"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	Age       *int   `json:"age"`
	CompanyID *int64 `json:"companyId"`
	Password  string `json:"password"`
}

func (u userRequest) account() models.UserAccount {
	return models.UserAccount{
		Name:      strings.TrimSpace(u.Name),
		LastName:  strings.TrimSpace(u.LastName),
		Email:     strings.TrimSpace(u.Email),
		Phone:     strings.TrimSpace(u.Phone),
		Role:      strings.TrimSpace(u.Role),
		Status:    strings.TrimSpace(u.Status),
		Age:       u.Age,
		CompanyID: u.CompanyID,
	}
}

func NewHandler(services Services, options Options) *Handler {
	return &Handler{services: services, kioskToken: options.KioskToken}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/api/auth/login", h.handleLogin)
	mux.HandleFunc("/api/auth/register", h.handleRegister)
	mux.HandleFunc("/api/turns", h.handleTurns)
	mux.HandleFunc("/api/turns/pending", h.handlePendingTurns)
	mux.HandleFunc("/api/turns/active", h.handleActiveTurns)
	mux.HandleFunc("/api/turns/", h.handleTurnActions)
	mux.HandleFunc("/api/queue", h.handleQueue)
	mux.HandleFunc("/api/dashboard/chart", h.handleChart)
	mux.HandleFunc("/api/kiosk", h.handleKiosk)
	mux.HandleFunc("/api/users", h.handleUsers)
	mux.HandleFunc("/api/users/", h.handleUser)
	mux.HandleFunc("/api/doctors/with-services", h.handleDoctors)
	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req service.Credentials
	if !decodeJSON(w, r, &req) {
		return
	}
	session, err := h.services.Auth.Login(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req service.RegisterInput
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.services.Auth.Register(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) handleTurns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		turns, err := h.services.Turns.List(r.Context())
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, turns)
	case http.MethodPost:
		var req service.CreateTurnInput
		if !decodeJSON(w, r, &req) {
			return
		}
		turn, err := h.services.Turns.Create(r.Context(), req)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, turn)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handlePendingTurns(w http.ResponseWriter, r *http.Request) {
	h.listByDate(w, r, h.services.Turns.Pending)
}

func (h *Handler) handleActiveTurns(w http.ResponseWriter, r *http.Request) {
	h.listByDate(w, r, h.services.Turns.Active)
}

func (h *Handler) listByDate(w http.ResponseWriter, r *http.Request, list func(context.Context, string) ([]models.Turn, error)) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	turns, err := list(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, turns)
}

// handleTurnActions serves PATCH /api/turns/{id}/complete,
// PATCH /api/turns/{id}/cancel and GET /api/turns/{id}/events.
func (h *Handler) handleTurnActions(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/turns/"), "/"), "/")
	if len(parts) != 2 {
		writeError(w, requestIDFromRequest(r), http.StatusNotFound, "not_found", "route not found")
		return
	}
	action := parts[1]
	want := http.MethodPatch
	if action == "events" {
		want = http.MethodGet
	}
	if r.Method != want {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, requestIDFromRequest(r), http.StatusBadRequest, "invalid_request", "turn id must be a positive integer")
		return
	}

	var turn models.Turn
	switch action {
	case "complete":
		turn, err = h.services.Turns.Complete(r.Context(), id)
	case "cancel":
		turn, err = h.services.Turns.Cancel(r.Context(), id)
	case "events":
		h.turnEvents(w, r, id)
		return
	default:
		writeError(w, requestIDFromRequest(r), http.StatusNotFound, "not_found", "unknown turn action")
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, turn)
}

func (h *Handler) turnEvents(w http.ResponseWriter, r *http.Request, id int64) {
	if h.services.History == nil {
		writeError(w, requestIDFromRequest(r), http.StatusNotFound, "not_found", "turn history is not enabled")
		return
	}
	events, err := h.services.History.ListTurnEvents(r.Context(), id)
	if err != nil {
		log.Printf("list turn events failed turn_id=%d err=%v", id, err)
		writeError(w, requestIDFromRequest(r), http.StatusInternalServerError, "internal_error", "could not load turn history")
		return
	}
	if events == nil {
		events = []store.TurnEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *Handler) handleQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var doctorID int64
	if raw := strings.TrimSpace(r.URL.Query().Get("doctor_id")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			writeError(w, requestIDFromRequest(r), http.StatusBadRequest, "invalid_request", "doctor_id must be a positive integer")
			return
		}
		doctorID = parsed
	}
	view, err := h.services.Turns.View(r.Context(), r.URL.Query().Get("date"), doctorID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	paths, err := h.services.Dashboard.Chart(r.Context(), r.URL.Query().Get("week"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, paths)
}

// handleKiosk serves the public waiting-room snapshot. Backend failures
// never reach the screen; it keeps showing the last view.
func (h *Handler) handleKiosk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.kioskToken != "" {
		token := r.URL.Query().Get("token")
		if token == "" {
			token = r.Header.Get("X-Kiosk-Token")
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(h.kioskToken)) != 1 {
			writeError(w, requestIDFromRequest(r), http.StatusUnauthorized, "unauthorized", "invalid kiosk token")
			return
		}
	}
	if h.services.Kiosk.Snapshot().UpdatedAt.IsZero() {
		h.services.Kiosk.Refresh(r.Context())
	}
	writeJSON(w, http.StatusOK, h.services.Kiosk.Snapshot())
}

func (h *Handler) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		users, err := h.services.Users.List(r.Context())
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, users)
	case http.MethodPost:
		var req userRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		user, err := h.services.Users.Create(r.Context(), service.CreateUserInput{User: req.account(), Password: req.Password})
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, user)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleUser(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/users/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, requestIDFromRequest(r), http.StatusNotFound, "not_found", "route not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		user, err := h.services.Users.Get(r.Context(), id)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	case http.MethodPut:
		var req userRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		var previous *models.UserAccount
		current, err := h.services.Users.Get(r.Context(), id)
		switch {
		case err == nil:
			previous = &current
		case !errors.Is(err, service.ErrNotFound):
			h.fail(w, r, err)
			return
		}
		user, err := h.services.Users.Update(r.Context(), id, req.account(), previous)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleDoctors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	doctors, err := h.services.Doctors.WithServices(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doctors)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := mapError(err)
	if code == "upstream_error" {
		upstreamFailures.Add(1)
	}
	writeError(w, requestIDFromRequest(r), status, code, msg)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		writeError(w, requestIDFromRequest(r), http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return false
	}
	return true
}

func mapError(err error) (int, string, string) {
	var httpErr *apiclient.HTTPError
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, "invalid_request", strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": ")
	case errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict, "invalid_state", "turn state does not allow this action"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found", "not found"
	case errors.As(err, &httpErr):
		return httpErr.Status, upstreamCode(httpErr.Status), httpErr.Error()
	default:
		return http.StatusBadGateway, "upstream_error", "backend request failed"
	}
}

func upstreamCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return "invalid_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "access_denied"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "invalid_state"
	default:
		return "upstream_error"
	}
}

func writeError(w http.ResponseWriter, requestID string, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		RequestID: requestID,
		Error: responseError{
			Code:    code,
			Message: message,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
