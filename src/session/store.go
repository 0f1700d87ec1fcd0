// Package session holds the identity of the user a client acts for. The
// in-memory session and its persisted copy are always written together.
package session

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/theleywin/SkillShare/src/api"
	"github.com/theleywin/SkillShare/src/logging"
	"github.com/theleywin/SkillShare/src/models"
)

// Session is the authenticated user as the client remembers it.
type Session struct {
	UserID          string `json:"userId"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	ProfilePhotoURL string `json:"profilePhotoUrl,omitempty"`
	Bio             string `json:"bio,omitempty"`
}

func FromUser(u models.UserDto) Session {
	return Session{
		UserID:          u.ID,
		Name:            u.Name,
		Email:           u.Email,
		ProfilePhotoURL: u.ProfilePhotoURL,
		Bio:             u.Bio,
	}
}

// Persister stores a single session. Load returns nil when nothing is stored.
type Persister interface {
	Load() (*Session, error)
	Save(Session) error
	Clear() error
}

// Backend is the part of the API client the store drives. *api.Client
// implements it.
type Backend interface {
	CurrentUser(ctx context.Context) (*models.UserDto, error)
	Login(ctx context.Context, email, password string) (*models.UserDto, error)
	Register(ctx context.Context, name, email, password string) (*models.UserDto, error)
	Logout(ctx context.Context) error
	ProviderLoginURL(provider string) string
	ClearCookies()
	UpdateProfile(ctx context.Context, id string, req models.ProfileRequest) (*models.UserDto, error)
	UploadProfilePhoto(ctx context.Context, id, filename string, body io.Reader) (*models.UserDto, error)
}

// Redirector sends the user to an external login page.
type Redirector func(url string) error

var ErrNoRedirector = errors.New("no redirector configured for external login")

type Option func(*Store)

func WithRedirector(r Redirector) Option {
	return func(s *Store) { s.redirect = r }
}

func WithLogger(entry *logrus.Entry) Option {
	return func(s *Store) { s.log = entry }
}

// Store owns the current session. It is safe for concurrent use; listeners
// run on the goroutine that changed the session.
type Store struct {
	backend  Backend
	persist  Persister
	redirect Redirector
	log      *logrus.Entry

	mu        sync.RWMutex
	current   *Session
	listeners []func(*Session)
}

func New(backend Backend, persist Persister, opts ...Option) *Store {
	s := &Store{backend: backend, persist: persist}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logging.For("session")
	}
	return s
}

// Current returns a copy of the session and whether one is live.
func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}

func (s *Store) Authenticated() bool {
	_, ok := s.Current()
	return ok
}

// UserID returns the id of the session user, or "" when unauthenticated.
func (s *Store) UserID() string {
	current, _ := s.Current()
	return current.UserID
}

// OnChange registers fn to be called with the new session (nil on logout)
// after every change.
func (s *Store) OnChange(fn func(*Session)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// set replaces the session and writes it through. Persistence failures are
// logged; memory stays authoritative.
func (s *Store) set(next *Session) {
	s.mu.Lock()
	s.current = next
	var err error
	if next == nil {
		err = s.persist.Clear()
	} else {
		err = s.persist.Save(*next)
	}
	listeners := append([]func(*Session){}, s.listeners...)
	s.mu.Unlock()

	if err != nil {
		s.log.WithError(err).Warn("Failed to persist session")
	}
	for _, fn := range listeners {
		if next == nil {
			fn(nil)
			continue
		}
		copied := *next
		fn(&copied)
	}
}

// Restore brings back the previous session: first from storage, then by
// asking the backend with whatever cookie credentials the client holds. Any
// failure leaves the store unauthenticated.
func (s *Store) Restore(ctx context.Context) {
	stored, err := s.persist.Load()
	if err != nil {
		s.log.WithError(err).Warn("Ignoring unreadable session")
	}
	if err == nil && stored != nil && stored.UserID != "" {
		s.set(stored)
		return
	}

	user, err := s.backend.CurrentUser(ctx)
	if err != nil || user == nil {
		s.log.WithError(err).Debug("No session to restore")
		s.set(nil)
		return
	}
	s.set(sessionOf(user))
}

// LoginWithCredentials logs in with email and password. Malformed input is
// rejected before any request. A rejected login ends any previous session.
func (s *Store) LoginWithCredentials(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if err := api.Validate(models.LoginRequest{Email: email, Password: password}); err != nil {
		return Session{}, err
	}
	user, err := s.backend.Login(ctx, email, password)
	return s.establish(user, err)
}

// Register creates an account and logs into it, with the same contract as
// LoginWithCredentials.
func (s *Store) Register(ctx context.Context, name, email, password string) (Session, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if err := api.Validate(models.RegisterRequest{Name: name, Email: email, Password: password}); err != nil {
		return Session{}, err
	}
	user, err := s.backend.Register(ctx, name, email, password)
	return s.establish(user, err)
}

func (s *Store) establish(user *models.UserDto, err error) (Session, error) {
	if err != nil {
		if api.IsAuthentication(err) {
			s.set(nil)
		}
		return Session{}, err
	}
	if user == nil {
		return Session{}, &api.AuthenticationError{Message: "empty login response"}
	}
	session := sessionOf(user)
	s.set(session)
	return *session, nil
}

// LoginWithExternalProvider hands the provider's authorization URL to the
// redirector. The session itself arrives later through Restore.
func (s *Store) LoginWithExternalProvider(provider string) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return &api.ValidationError{Message: "provider is required"}
	}
	if s.redirect == nil {
		return ErrNoRedirector
	}
	return s.redirect(s.backend.ProviderLoginURL(provider))
}

// Logout always ends unauthenticated. The backend error, if any, is returned
// for information only.
func (s *Store) Logout(ctx context.Context) error {
	err := s.backend.Logout(ctx)
	if err != nil {
		s.log.WithError(err).Warn("Logout request failed, clearing session anyway")
	}
	s.backend.ClearCookies()
	s.set(nil)
	return err
}

// Invalidate drops the session without contacting the backend, for when a
// request reported that the credentials are no longer accepted.
func (s *Store) Invalidate() {
	if !s.Authenticated() {
		return
	}
	s.backend.ClearCookies()
	s.set(nil)
}

// UpdateProfile edits the session user and adopts the server's answer.
func (s *Store) UpdateProfile(ctx context.Context, req models.ProfileRequest) (Session, error) {
	current, ok := s.Current()
	if !ok {
		return Session{}, &api.AuthenticationError{Message: "not logged in"}
	}
	if err := api.Validate(req); err != nil {
		return Session{}, err
	}
	user, err := s.backend.UpdateProfile(ctx, current.UserID, req)
	return s.adopt(user, err)
}

// UploadPhoto replaces the profile photo of the session user.
func (s *Store) UploadPhoto(ctx context.Context, filename string, body io.Reader) (Session, error) {
	current, ok := s.Current()
	if !ok {
		return Session{}, &api.AuthenticationError{Message: "not logged in"}
	}
	user, err := s.backend.UploadProfilePhoto(ctx, current.UserID, filename, body)
	return s.adopt(user, err)
}

func (s *Store) adopt(user *models.UserDto, err error) (Session, error) {
	if err != nil {
		return Session{}, err
	}
	if user == nil {
		return Session{}, errors.New("empty profile response")
	}
	session := sessionOf(user)
	s.set(session)
	return *session, nil
}

func sessionOf(user *models.UserDto) *Session {
	session := FromUser(*user)
	return &session
}

// MemoryPersister keeps the session in memory only.
type MemoryPersister struct {
	mu      sync.Mutex
	session *Session
}

func (m *MemoryPersister) Load() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, nil
	}
	copied := *m.session
	return &copied, nil
}

func (m *MemoryPersister) Save(session Session) error {
	m.mu.Lock()
	m.session = &session
	m.mu.Unlock()
	return nil
}

func (m *MemoryPersister) Clear() error {
	m.mu.Lock()
	m.session = nil
	m.mu.Unlock()
	return nil
}
