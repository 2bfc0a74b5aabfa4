package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/domain/hospital"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/metrics"
	"github.com/hms/hms/internal/platform/settings"
)

var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrNoSession is returned for missing, expired, logged-out or orphaned
	// sessions.
	ErrNoSession = errors.New("no active session")
)

const tokenIssuer = "hms"

// Claims is the signed token handed to clients. The token id is the server
// side session id, so logging out invalidates the token immediately.
type Claims struct {
	jwt.RegisteredClaims
	Role hospital.Role `json:"role"`
}

// Config controls token signing and lifetime.
type Config struct {
	SigningKey []byte
	TTL        time.Duration
}

// Session is one signed-in identity. Member never carries the password hash.
type Session struct {
	ID        string               `json:"id"`
	Member    hospital.StaffMember `json:"member"`
	IssuedAt  time.Time            `json:"issued_at"`
	ExpiresAt time.Time            `json:"expires_at"`
}

// Principal projects the session onto the identity the auth middleware puts
// in the request context.
func (s Session) Principal() auth.Principal {
	return auth.Principal{
		SessionID: s.ID,
		UserID:    s.Member.ID,
		Username:  s.Member.Username,
		Name:      s.Member.Name,
		Role:      s.Member.Role,
	}
}

// Manager owns the session table and the hospital settings. Sessions live in
// memory only; a restart signs everybody out.
type Manager struct {
	store    *hospital.Store
	settings settings.Store
	hasher   *auth.PasswordHasher
	cfg      Config
	logger   zerolog.Logger
	metrics  *metrics.Collector
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]Session
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for login and session events.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithMetrics records login attempts and audit events on c. A nil collector
// is allowed.
func WithMetrics(c *metrics.Collector) Option {
	return func(m *Manager) { m.metrics = c }
}

// WithClock overrides the time source for token issue and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager with an empty session table. A non-positive
// TTL falls back to 12 hours.
func NewManager(store *hospital.Store, st settings.Store, hasher *auth.PasswordHasher, cfg Config, opts ...Option) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = 12 * time.Hour
	}
	m := &Manager{
		store:    store,
		settings: st,
		hasher:   hasher,
		cfg:      cfg,
		logger:   zerolog.Nop(),
		now:      time.Now,
		sessions: make(map[string]Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Login checks the credentials against the store and opens a new session.
// A failed attempt leaves every existing session as it was.
func (m *Manager) Login(ctx context.Context, username, password string) (string, Session, error) {
	member, err := m.store.StaffByUsername(username)
	if err != nil {
		m.metrics.RecordAuthAttempt(false)
		if errors.Is(err, hospital.ErrNotFound) {
			return "", Session{}, ErrInvalidCredentials
		}
		return "", Session{}, err
	}
	ok, err := m.hasher.Verify(member.PasswordHash, password)
	if err != nil {
		m.logger.Error().Err(err).Str("staff_id", member.ID).Msg("password verification failed")
	}
	if !ok {
		m.metrics.RecordAuthAttempt(false)
		return "", Session{}, ErrInvalidCredentials
	}

	now := m.now().UTC()
	sess := Session{
		ID:        uuid.NewString(),
		Member:    member.Public(),
		IssuedAt:  now,
		ExpiresAt: now.Add(m.cfg.TTL),
	}
	token, err := m.sign(sess)
	if err != nil {
		return "", Session{}, err
	}

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	m.metrics.RecordAuthAttempt(true)
	if _, err := m.store.AppendAuditLog(ctx, hospital.AuditLog{
		StaffID:   member.ID,
		StaffName: member.Name,
		StaffRole: member.Role,
		Username:  member.Username,
		Action:    "Logged in",
	}); err != nil {
		m.logger.Warn().Err(err).Msg("audit login")
	} else {
		m.metrics.RecordAuditEvent(string(member.Role))
	}
	m.logger.Info().Str("staff_id", member.ID).Str("role", string(member.Role)).Msg("login")
	return token, sess, nil
}

func (m *Manager) sign(s Session) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID,
			Subject:   s.Member.ID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(s.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
		Role: s.Member.Role,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.cfg.SigningKey)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// Logout ends the session. Unknown ids are ignored.
func (m *Manager) Logout(sessionID string) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
}

// Session returns the live session with id.
func (m *Manager) Session(id string) (Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return Session{}, ErrNoSession
	}
	if !m.now().Before(s.ExpiresAt) {
		m.Logout(id)
		return Session{}, ErrNoSession
	}
	return s, nil
}

// Resolve verifies token and returns the principal of its live session, built
// from the member's current stored record. It satisfies auth.Resolver.
func (m *Manager) Resolve(_ context.Context, token string) (auth.Principal, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return m.cfg.SigningKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return auth.Principal{}, ErrNoSession
	}
	s, err := m.Session(claims.ID)
	if err != nil {
		return auth.Principal{}, err
	}
	return m.refresh(s)
}

// refresh reloads the session's member from the store so role changes take
// effect on the next request. A member who is no longer active loses the
// session.
func (m *Manager) refresh(s Session) (auth.Principal, error) {
	cur, err := m.store.StaffMember(s.Member.ID)
	if err != nil {
		m.Logout(s.ID)
		m.logger.Info().Str("staff_id", s.Member.ID).Str("session_id", s.ID).Msg("session closed, staff member no longer active")
		return auth.Principal{}, ErrNoSession
	}
	s.Member = cur.Public()
	m.mu.Lock()
	if _, ok := m.sessions[s.ID]; ok {
		m.sessions[s.ID] = s
	}
	m.mu.Unlock()
	return s.Principal(), nil
}

// ProfilePatch holds the profile fields a user may change about themselves.
// Nil fields are left alone; Password is hashed before it is stored.
type ProfilePatch struct {
	Name           *string `json:"name,omitempty"`
	Email          *string `json:"email,omitempty"`
	Gender         *string `json:"gender,omitempty"`
	Contact        *string `json:"contact,omitempty"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
	Password       *string `json:"password,omitempty"`
}

// UpdateIdentity merges patch into the current stored record of the session's
// member, so edits made by others since login are kept, then refreshes the
// session from the result.
func (m *Manager) UpdateIdentity(ctx context.Context, sessionID string, patch ProfilePatch) (hospital.StaffMember, error) {
	sess, err := m.Session(sessionID)
	if err != nil {
		return hospital.StaffMember{}, err
	}
	var hash string
	if patch.Password != nil && *patch.Password != "" {
		if hash, err = m.hasher.Hash(*patch.Password); err != nil {
			return hospital.StaffMember{}, err
		}
	}
	updated, err := m.store.MutateStaff(ctx, sess.Member.ID, func(s *hospital.StaffMember) error {
		if patch.Name != nil {
			s.Name = *patch.Name
		}
		if patch.Email != nil {
			s.Email = *patch.Email
		}
		if patch.Gender != nil {
			s.Gender = *patch.Gender
		}
		if patch.Contact != nil {
			s.Contact = *patch.Contact
		}
		if patch.ProfilePicture != nil {
			s.ProfilePicture = *patch.ProfilePicture
		}
		if hash != "" {
			s.PasswordHash = hash
		}
		return nil
	})
	if err != nil {
		return hospital.StaffMember{}, err
	}

	m.mu.Lock()
	if cur, ok := m.sessions[sessionID]; ok {
		cur.Member = updated.Public()
		m.sessions[sessionID] = cur
	}
	m.mu.Unlock()
	return updated.Public(), nil
}

// Settings returns the hospital branding.
func (m *Manager) Settings(ctx context.Context) (settings.Settings, error) {
	return m.settings.Get(ctx)
}

// SetHospitalName stores the display name shown on every page.
func (m *Manager) SetHospitalName(ctx context.Context, name string) error {
	return m.settings.SetHospitalName(ctx, name)
}

// SetHospitalLogo stores the logo data URL. nil clears it.
func (m *Manager) SetHospitalLogo(ctx context.Context, logo *string) error {
	return m.settings.SetHospitalLogo(ctx, logo)
}

// ActiveSessions counts live sessions.
func (m *Manager) ActiveSessions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
