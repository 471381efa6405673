package normalize

import (
	"fmt"
	"strings"
	"time"

	"turnon/internal/models"

	"github.com/google/uuid"
)

var (
	userIDKeys        = []string{"id", "user_id", "userId", "_id"}
	userNameKeys      = []string{"name", "first_name", "firstName", "username"}
	userLastNameKeys  = []string{"last_name", "lastName"}
	userAgeKeys       = []string{"age"}
	userRoleKeys      = []string{"role", "role_name", "roleName", "rol", "role.name"}
	userStatusKeys    = []string{"status", "state", "estado", "is_active", "isActive", "active"}
	userEmailKeys     = []string{"email", "mail"}
	userPhoneKeys     = []string{"phone", "phone_number", "phoneNumber", "telefono"}
	userCreatedAtKeys = []string{"created_at", "createdAt"}
	userUpdatedAtKeys = []string{"updated_at", "updatedAt"}
)

var (
	activeTokens   = tokenSet("ACTIVE", "ACTIVO", "ENABLED", "HABILITADO", "1", "TRUE", "VERDADERO")
	inactiveTokens = tokenSet("INACTIVE", "INACTIVO", "DISABLED", "DESHABILITADO", "0", "FALSE", "FALSO")
)

// fallbackUserID is swapped in tests.
var fallbackUserID = func() string {
	return fmt.Sprintf("tmp-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

func tokenSet(tokens ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}

// NormalizeUser maps a raw backend user onto models.UserAccount. Every record
// gets an ID: the explicit identifier, else the email, else a synthesized
// temporary one that is never sent back to the backend.
func NormalizeUser(raw any) models.UserAccount {
	r := asRecord(raw)
	email := r.str(userEmailKeys...)

	id := r.str(userIDKeys...)
	if id == "" {
		id = email
	}
	if id == "" {
		id = fallbackUserID()
	}

	var age *int
	if n, ok := r.int(userAgeKeys...); ok {
		v := int(n)
		age = &v
	}

	role := strings.ToUpper(r.str(userRoleKeys...))
	if role == "" {
		role = models.RoleUser
	}

	status := models.UserStatusActive
	if raw := r.str(userStatusKeys...); raw != "" {
		status = UserStatus(raw)
	}

	var companyID *int64
	if d := r.digits(companyIDKeys...); d != "" {
		if n, ok := toInt64(d); ok {
			companyID = &n
		}
	}

	return models.UserAccount{
		ID:        id,
		Name:      r.str(userNameKeys...),
		LastName:  r.str(userLastNameKeys...),
		Age:       age,
		Role:      role,
		Status:    status,
		Email:     email,
		Phone:     r.digits(userPhoneKeys...),
		CompanyID: companyID,
		CreatedAt: r.str(userCreatedAtKeys...),
		UpdatedAt: r.str(userUpdatedAtKeys...),
	}
}

func NormalizeUsers(records []any) []models.UserAccount {
	users := make([]models.UserAccount, 0, len(records))
	for _, raw := range records {
		if asRecord(raw) == nil {
			continue
		}
		users = append(users, NormalizeUser(raw))
	}
	return users
}

// UserStatus maps the known truthy/falsy tokens onto ACTIVE/INACTIVE.
// Anything else is returned upper-cased.
func UserStatus(raw string) string {
	token := strings.ToUpper(strings.TrimSpace(raw))
	if _, ok := activeTokens[token]; ok {
		return models.UserStatusActive
	}
	if _, ok := inactiveTokens[token]; ok {
		return models.UserStatusInactive
	}
	return token
}

// RoleLabel buckets a free-form role into its display label.
func RoleLabel(role string) string {
	upper := strings.ToUpper(strings.TrimSpace(role))
	switch {
	case strings.Contains(upper, "ADMIN"):
		return "Administrador"
	case strings.Contains(upper, "SUPERVISOR"):
		return "Supervisor"
	case strings.Contains(upper, "AGENT"):
		return "Agente"
	case strings.Contains(upper, "USER"), strings.Contains(upper, "USUARIO"):
		return "Usuario"
	default:
		return role
	}
}

// RoleFromLabel maps a display label back onto the backend role.
// RoleFromLabel(RoleLabel(r)) == r for ADMIN, USER, SUPERVISOR and AGENT.
func RoleFromLabel(label string) string {
	upper := strings.ToUpper(strings.TrimSpace(label))
	switch upper {
	case "ADMINISTRADOR":
		return models.RoleAdmin
	case "USUARIO":
		return models.RoleUser
	case "SUPERVISOR":
		return models.RoleSupervisor
	case "AGENTE":
		return models.RoleAgent
	default:
		return upper
	}
}

// BuildUserPayload builds the body of a user create/update. Only non-empty
// fields that differ from previous are included; role and companyId are
// always carried, taken from previous when updated leaves them unset.
func BuildUserPayload(updated models.UserAccount, previous *models.UserAccount) map[string]any {
	payload := map[string]any{}
	changed := func(key, next, prev string) {
		next = strings.TrimSpace(next)
		if next == "" {
			return
		}
		if previous != nil && next == strings.TrimSpace(prev) {
			return
		}
		payload[key] = next
	}

	var prev models.UserAccount
	if previous != nil {
		prev = *previous
	}
	changed("name", updated.Name, prev.Name)
	changed("lastName", updated.LastName, prev.LastName)
	changed("email", updated.Email, prev.Email)
	changed("phone", digitsOnly(updated.Phone), digitsOnly(prev.Phone))
	changed("status", UserStatus(updated.Status), UserStatus(prev.Status))

	if updated.Age != nil && (previous == nil || prev.Age == nil || *prev.Age != *updated.Age) {
		payload["age"] = *updated.Age
	}
	role := RoleFromLabel(updated.Role)
	if role == "" {
		role = RoleFromLabel(prev.Role)
	}
	if role != "" {
		payload["role"] = role
	}
	company := updated.CompanyID
	if company == nil {
		company = prev.CompanyID
	}
	if company != nil {
		payload["companyId"] = *company
	}
	return payload
}
