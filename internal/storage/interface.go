package storage

import (
	"context"
	"errors"

	"github.com/julianstephens/weeklit/internal/service"
)

// ErrPreferenceNotFound is returned when a preference key has never been written
var ErrPreferenceNotFound = errors.New("preference not found")

// Preferences is a small key/value store for client convenience state
type Preferences interface {
	GetPreference(ctx context.Context, key string) (string, error)
	SetPreference(ctx context.Context, key, value string) error
}

// Provider is a local database that serves as an Activity Service
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	service.Service
	Preferences

	// Utils
	GetConfigPath() string
}
