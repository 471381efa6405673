package normalize

import (
	"reflect"
	"strings"
	"testing"

	"turnon/internal/models"
)

func TestUserStatus(t *testing.T) {
	tests := map[string]string{
		"Activo":        models.UserStatusActive,
		"1":             models.UserStatusActive,
		"true":          models.UserStatusActive,
		"habilitado":    models.UserStatusActive,
		"Inactivo":      models.UserStatusInactive,
		"0":             models.UserStatusInactive,
		"falso":         models.UserStatusInactive,
		"DESHABILITADO": models.UserStatusInactive,
		"Pending":       "PENDING",
	}
	for raw, want := range tests {
		if got := UserStatus(raw); got != want {
			t.Errorf("status %q: expected %q, got %q", raw, want, got)
		}
	}
}

func TestNormalizeUserStatusSources(t *testing.T) {
	tests := []struct {
		raw  map[string]any
		want string
	}{
		{map[string]any{"active": true}, models.UserStatusActive},
		{map[string]any{"is_active": false}, models.UserStatusInactive},
		{map[string]any{"status": 0.0}, models.UserStatusInactive},
		{map[string]any{}, models.UserStatusActive},
	}
	for _, tc := range tests {
		if got := NormalizeUser(tc.raw).Status; got != tc.want {
			t.Errorf("%v: expected %q, got %q", tc.raw, tc.want, got)
		}
	}
}

func TestRoleLabel(t *testing.T) {
	tests := map[string]string{
		"admin":         "Administrador",
		"SUPER_ADMIN":   "Administrador",
		"supervisor":    "Supervisor",
		"agente":        "Agente",
		"AGENT":         "Agente",
		"user":          "Usuario",
		"Usuario final": "Usuario",
		"doctor":        "doctor",
	}
	for role, want := range tests {
		if got := RoleLabel(role); got != want {
			t.Errorf("role %q: expected %q, got %q", role, want, got)
		}
	}
}

func TestRoleFromLabelIsLeftInverse(t *testing.T) {
	for _, role := range []string{models.RoleAdmin, models.RoleUser, models.RoleSupervisor, models.RoleAgent} {
		if got := RoleFromLabel(RoleLabel(role)); got != role {
			t.Errorf("expected %q, got %q", role, got)
		}
	}
	if got := RoleFromLabel("doctor"); got != "DOCTOR" {
		t.Fatalf("expected DOCTOR, got %q", got)
	}
}

func TestNormalizeUserIDFallback(t *testing.T) {
	restore := fallbackUserID
	fallbackUserID = func() string { return "tmp-1-abc" }
	t.Cleanup(func() { fallbackUserID = restore })

	tests := []struct {
		raw  map[string]any
		want string
	}{
		{map[string]any{"id": 42.0, "email": "a@b.c"}, "42"},
		{map[string]any{"userId": "u-7"}, "u-7"},
		{map[string]any{"email": "a@b.c"}, "a@b.c"},
		{map[string]any{"name": "Nadie"}, "tmp-1-abc"},
	}
	for _, tc := range tests {
		if got := NormalizeUser(tc.raw).ID; got != tc.want {
			t.Errorf("%v: expected id %q, got %q", tc.raw, tc.want, got)
		}
	}
}

func TestFallbackUserIDIsDistinct(t *testing.T) {
	a := NormalizeUser(map[string]any{}).ID
	b := NormalizeUser(map[string]any{}).ID
	if a == b {
		t.Fatalf("expected distinct fallback ids, got %q twice", a)
	}
	if !strings.Contains(a, "tmp-") {
		t.Fatalf("unexpected fallback id: %q", a)
	}
}

func TestNormalizeUserDigits(t *testing.T) {
	user := NormalizeUser(map[string]any{
		"id":         1.0,
		"phone":      "(044) 555-1234",
		"company_id": "C-0012",
		"age":        "34",
		"role":       "agente",
	})
	if user.Phone != "0445551234" {
		t.Fatalf("unexpected phone: %q", user.Phone)
	}
	if user.CompanyID == nil || *user.CompanyID != 12 {
		t.Fatalf("unexpected company id: %v", user.CompanyID)
	}
	if user.Age == nil || *user.Age != 34 {
		t.Fatalf("unexpected age: %v", user.Age)
	}
	if user.Role != "AGENTE" {
		t.Fatalf("unexpected role: %q", user.Role)
	}
}

func TestBuildUserPayloadRoundTrip(t *testing.T) {
	user := NormalizeUser(map[string]any{
		"id":        5.0,
		"name":      "Lucía",
		"email":     "lucia@example.com",
		"role":      "Administrador",
		"companyId": 3.0,
		"status":    "activo",
	})

	payload := BuildUserPayload(user, &user)
	if payload["role"] != models.RoleAdmin {
		t.Fatalf("unexpected role: %v", payload["role"])
	}
	if payload["companyId"] != int64(3) {
		t.Fatalf("unexpected companyId: %v", payload["companyId"])
	}
	if _, ok := payload["name"]; ok {
		t.Fatalf("unchanged name should be omitted")
	}
	if _, ok := payload["email"]; ok {
		t.Fatalf("unchanged email should be omitted")
	}
}

func TestBuildUserPayloadPartialUpdateKeepsRoleAndCompany(t *testing.T) {
	company := int64(3)
	prev := NormalizeUser(map[string]any{"id": 8.0, "name": "Ana", "role": "AGENT", "companyId": 3.0})
	if prev.CompanyID == nil || *prev.CompanyID != company {
		t.Fatalf("unexpected previous company: %v", prev.CompanyID)
	}

	payload := BuildUserPayload(models.UserAccount{Name: "Ana Maria"}, &prev)
	want := map[string]any{
		"name":      "Ana Maria",
		"role":      models.RoleAgent,
		"companyId": company,
	}
	if !reflect.DeepEqual(payload, want) {
		t.Fatalf("expected %v, got %v", want, payload)
	}
}

func TestBuildUserPayloadChangedFields(t *testing.T) {
	prev := models.UserAccount{ID: "1", Name: "Ana", Email: "ana@example.com", Phone: "555", Role: "USER", Status: "ACTIVE"}
	next := prev
	next.Name = "Ana María"
	next.Phone = "(555) 000"
	next.Status = "inactivo"
	next.LastName = ""

	payload := BuildUserPayload(next, &prev)
	want := map[string]any{
		"name":   "Ana María",
		"phone":  "555000",
		"status": models.UserStatusInactive,
		"role":   models.RoleUser,
	}
	if !reflect.DeepEqual(payload, want) {
		t.Fatalf("expected %v, got %v", want, payload)
	}
}

func TestBuildUserPayloadCreate(t *testing.T) {
	age := 30
	payload := BuildUserPayload(models.UserAccount{Name: "Luis", Email: "l@x.io", Role: "Supervisor", Age: &age}, nil)
	if payload["name"] != "Luis" || payload["email"] != "l@x.io" {
		t.Fatalf("unexpected identity fields: %v", payload)
	}
	if payload["role"] != models.RoleSupervisor {
		t.Fatalf("unexpected role: %v", payload["role"])
	}
	if payload["age"] != 30 {
		t.Fatalf("unexpected age: %v", payload["age"])
	}
	if _, ok := payload["companyId"]; ok {
		t.Fatalf("companyId should be omitted on create without one")
	}
}
