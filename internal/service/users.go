package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"turnon/internal/models"
	"turnon/internal/normalize"
)

type Users struct {
	api Backend
}

type CreateUserInput struct {
	User     models.UserAccount
	Password string
}

func NewUsers(api Backend) *Users {
	return &Users{api: api}
}

func (s *Users) List(ctx context.Context) ([]models.UserAccount, error) {
	raw, err := s.api.Get(ctx, "/api/users", nil)
	if err != nil {
		return nil, err
	}
	return normalize.NormalizeUsers(normalize.Unwrap(raw)), nil
}

func (s *Users) Get(ctx context.Context, id string) (models.UserAccount, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.UserAccount{}, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	raw, err := s.api.Get(ctx, "/api/users/"+url.PathEscape(id), nil)
	if err != nil {
		return models.UserAccount{}, err
	}
	record := normalize.First(raw)
	if record == nil {
		return models.UserAccount{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return normalize.NormalizeUser(record), nil
}

func (s *Users) Create(ctx context.Context, input CreateUserInput) (models.UserAccount, error) {
	user := input.User
	switch {
	case strings.TrimSpace(user.Name) == "":
		return models.UserAccount{}, fmt.Errorf("%w: name is required", ErrValidation)
	case strings.TrimSpace(user.Email) == "":
		return models.UserAccount{}, fmt.Errorf("%w: email is required", ErrValidation)
	case input.Password == "":
		return models.UserAccount{}, fmt.Errorf("%w: password is required", ErrValidation)
	}

	payload := normalize.BuildUserPayload(user, nil)
	payload["password"] = input.Password

	raw, err := s.api.Post(ctx, "/api/users", payload)
	if err != nil {
		return models.UserAccount{}, err
	}
	if record := normalize.First(raw); record != nil {
		return normalize.NormalizeUser(record), nil
	}
	return normalize.NormalizeUser(payload), nil
}

// Update sends only the fields of updated that differ from previous. A nil
// previous sends every non-empty field.
func (s *Users) Update(ctx context.Context, id string, updated models.UserAccount, previous *models.UserAccount) (models.UserAccount, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.UserAccount{}, fmt.Errorf("%w: user id is required", ErrValidation)
	}

	payload := normalize.BuildUserPayload(updated, previous)
	raw, err := s.api.Put(ctx, "/api/users/"+url.PathEscape(id), payload)
	if err != nil {
		return models.UserAccount{}, err
	}
	if record := normalize.First(raw); record != nil {
		return normalize.NormalizeUser(record), nil
	}
	updated.ID = id
	return updated, nil
}
