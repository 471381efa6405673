package models

type Turn struct {
	ID           int64  `json:"id"`
	Turn         string `json:"turn,omitempty"`
	PatientName  string `json:"patientName"`
	PatientEmail string `json:"patientEmail,omitempty"`
	PatientPhone string `json:"patientPhone,omitempty"`
	StartTime    string `json:"startTime,omitempty"`
	EndTime      string `json:"endTime,omitempty"`
	Status       string `json:"status"`
	CompanyID    *int64 `json:"companyId,omitempty"`
	ServiceID    *int64 `json:"serviceId,omitempty"`
	ServiceName  string `json:"serviceName,omitempty"`
	UserID       *int64 `json:"userId,omitempty"`
	UserName     string `json:"userName,omitempty"`
	OfficeRoom   string `json:"officeRoom,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
}

const (
	StatusPending   = "PENDING"
	StatusActive    = "ACTIVE"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)
