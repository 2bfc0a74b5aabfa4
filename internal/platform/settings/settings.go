package settings

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// DefaultHospitalName is shown until a Master sets a name.
const DefaultHospitalName = "Central City Hospital"

var ErrEmptyName = errors.New("hospital name must not be empty")

// Settings is the hospital branding shown on every screen. Logo is a data URI;
// nil means no logo.
type Settings struct {
	HospitalName string  `json:"hospital_name"`
	HospitalLogo *string `json:"hospital_logo"`
}

// Store keeps the hospital settings across restarts.
type Store interface {
	Get(ctx context.Context) (Settings, error)
	SetHospitalName(ctx context.Context, name string) error
	// SetHospitalLogo replaces the logo; nil removes it.
	SetHospitalLogo(ctx context.Context, logo *string) error
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

// MemoryStore is the Store used when no Redis is configured. Settings are lost
// on restart.
type MemoryStore struct {
	mu   sync.RWMutex
	name string
	logo *string
}

func NewMemoryStore(defaultName string) *MemoryStore {
	if strings.TrimSpace(defaultName) == "" {
		defaultName = DefaultHospitalName
	}
	return &MemoryStore{name: defaultName}
}

func (s *MemoryStore) Get(context.Context) (Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := Settings{HospitalName: s.name}
	if s.logo != nil {
		logo := *s.logo
		out.HospitalLogo = &logo
	}
	return out, nil
}

func (s *MemoryStore) SetHospitalName(_ context.Context, name string) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.name = name
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) SetHospitalLogo(_ context.Context, logo *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if logo == nil {
		s.logo = nil
		return nil
	}
	v := *logo
	s.logo = &v
	return nil
}
