package models

type UserAccount struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	LastName  string `json:"lastName,omitempty"`
	Age       *int   `json:"age,omitempty"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	CompanyID *int64 `json:"companyId,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

const (
	UserStatusActive   = "ACTIVE"
	UserStatusInactive = "INACTIVE"
)

const (
	RoleAdmin      = "ADMIN"
	RoleUser       = "USER"
	RoleSupervisor = "SUPERVISOR"
	RoleAgent      = "AGENT"
)

type ServiceRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Doctor struct {
	ID         int64        `json:"id"`
	Name       string       `json:"name"`
	Email      string       `json:"email,omitempty"`
	OfficeRoom string       `json:"officeRoom,omitempty"`
	Services   []ServiceRef `json:"services"`
}

type SessionUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Session is what a successful login leaves behind.
type Session struct {
	Token string      `json:"token"`
	User  SessionUser `json:"user"`
}
