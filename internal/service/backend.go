// Package service holds the TurnOn operations built on the REST backend:
// turns, users, doctors, authentication and the dashboard chart. Every
// response is unwrapped and normalized before it leaves this package.
package service

import (
	"context"
	"net/url"
)

// Backend is the subset of *apiclient.Client the services use.
type Backend interface {
	Get(ctx context.Context, path string, query url.Values) (any, error)
	Post(ctx context.Context, path string, body any) (any, error)
	Put(ctx context.Context, path string, body any) (any, error)
	Patch(ctx context.Context, path string, body any) (any, error)
}

const dateLayout = "2006-01-02"
