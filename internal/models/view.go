package models

import "time"

// QueueEntry is the list-row projection of a turn. It carries no identity of
// its own: Position and Ticket come from the turn's index in the list.
type QueueEntry struct {
	TurnID      int64  `json:"turnId"`
	Position    string `json:"position"`
	Ticket      string `json:"ticket"`
	ServerCode  string `json:"serverCode,omitempty"`
	PatientName string `json:"patientName"`
	ServiceName string `json:"serviceName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Doctor      string `json:"doctor"`
	OfficeRoom  string `json:"officeRoom,omitempty"`
	StartTime   string `json:"startTime,omitempty"`
	Status      string `json:"status"`
}

type UpcomingTurn struct {
	TurnID      int64  `json:"turnId"`
	Ticket      string `json:"ticket"`
	PatientName string `json:"patientName"`
	ServiceName string `json:"serviceName"`
	Doctor      string `json:"doctor"`
	Time        string `json:"time"`
	Status      string `json:"status"`
}

type QueueStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

type QueueView struct {
	Date     string         `json:"date"`
	Stats    QueueStats     `json:"stats"`
	Pending  []QueueEntry   `json:"pending"`
	Active   []QueueEntry   `json:"active"`
	Upcoming []UpcomingTurn `json:"upcoming"`
}

type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type PlotPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

type ChartPaths struct {
	Line      string      `json:"line"`
	Area      string      `json:"area"`
	Highlight int         `json:"highlight"`
	Points    []PlotPoint `json:"points"`
}

type DailyStats struct {
	Day       string `json:"day"`
	Total     int    `json:"total"`
	Pending   int    `json:"pending"`
	Active    int    `json:"active"`
	Completed int    `json:"completed"`
	Cancelled int    `json:"cancelled"`
}

// KioskSnapshot is the last queue view fetched for the public screen. Stale
// is set when the latest refresh failed and the view is an older one.
type KioskSnapshot struct {
	View      QueueView `json:"view"`
	UpdatedAt time.Time `json:"updatedAt"`
	Stale     bool      `json:"stale"`
}
