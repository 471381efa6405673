package service

import (
	"context"

	"turnon/internal/models"
	"turnon/internal/normalize"
)

type Doctors struct {
	api Backend
}

func NewDoctors(api Backend) *Doctors {
	return &Doctors{api: api}
}

// WithServices lists doctors together with the services they offer.
func (s *Doctors) WithServices(ctx context.Context) ([]models.Doctor, error) {
	raw, err := s.api.Get(ctx, "/api/doctors/with-services", nil)
	if err != nil {
		return nil, err
	}
	return normalize.NormalizeDoctors(normalize.Unwrap(raw)), nil
}
