package service

import (
	"context"
	"fmt"
	"strings"

	"turnon/internal/models"
	"turnon/internal/normalize"
)

// SessionStore persists the signed-in session between CLI invocations.
type SessionStore interface {
	Save(token string, user models.SessionUser) error
	Clear() error
}

type Auth struct {
	api      Backend
	sessions SessionStore
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterInput struct {
	Name      string `json:"name"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
	CompanyID *int64 `json:"companyId"`
}

// NewAuth wires the auth operations. sessions may be nil, in which case
// nothing is persisted (the gateway hands the token back to the caller).
func NewAuth(api Backend, sessions SessionStore) *Auth {
	return &Auth{api: api, sessions: sessions}
}

func (a *Auth) Login(ctx context.Context, creds Credentials) (models.Session, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return models.Session{}, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	raw, err := a.api.Post(ctx, "/api/auth/login", creds)
	if err != nil {
		return models.Session{}, err
	}
	token, user := normalize.LoginSession(raw)
	if token == "" {
		return models.Session{}, ErrNoToken
	}
	if user.Email == "" {
		user.Email = creds.Email
	}

	if a.sessions != nil {
		if err := a.sessions.Save(token, user); err != nil {
			return models.Session{}, fmt.Errorf("save session: %w", err)
		}
	}
	return models.Session{Token: token, User: user}, nil
}

func (a *Auth) Register(ctx context.Context, input RegisterInput) (models.UserAccount, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	switch {
	case input.Name == "":
		return models.UserAccount{}, fmt.Errorf("%w: name is required", ErrValidation)
	case input.Email == "" || input.Password == "":
		return models.UserAccount{}, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	raw, err := a.api.Post(ctx, "/api/auth/register", input)
	if err != nil {
		return models.UserAccount{}, err
	}
	return normalize.RegisteredUser(raw), nil
}

func (a *Auth) Logout() error {
	if a.sessions == nil {
		return nil
	}
	return a.sessions.Clear()
}
