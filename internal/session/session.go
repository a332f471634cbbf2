package session

import (
	"errors"
	"sync"

	"gorm.io/gorm"

	"trackiq_agent/internal/models"
)

// Store holds the bearer token and user email, persisted in a single row so
// the session survives restarts. All mutation funnels through the setters;
// writes persist before the in-memory copy is updated, so a read after a
// successful write always reflects the new value.
type Store struct {
	db    *gorm.DB
	mu    sync.RWMutex
	state models.AuthState
}

// Load reads the persisted auth state, creating the row on first launch.
func Load(db *gorm.DB) (*Store, error) {
	s := &Store{db: db}

	err := db.First(&s.state, 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.state = models.AuthState{ID: 1}
		if err := db.Create(&s.state).Error; err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CurrentToken returns the bearer token, empty when signed out.
func (s *Store) CurrentToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// Email returns the signed-in user's email, best-effort display only.
func (s *Store) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Email
}

// IsSignedIn is derived: true iff a non-empty token is present.
func (s *Store) IsSignedIn() bool {
	return s.CurrentToken() != ""
}

// SetSession stores token and email together after a successful login.
func (s *Store) SetSession(token, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	next.Token = token
	if email != "" {
		next.Email = email
	}
	return s.persist(next)
}

// SetToken replaces only the token, used when the backend rotates it.
func (s *Store) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	next.Token = token
	return s.persist(next)
}

// SetEmail replaces only the stored email.
func (s *Store) SetEmail(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	next.Email = email
	return s.persist(next)
}

// Clear removes token and email together; IsSignedIn is false afterwards.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.persist(models.AuthState{ID: 1})
}

// persist writes the row, then updates the in-memory copy. Caller holds mu.
func (s *Store) persist(next models.AuthState) error {
	if err := s.db.Save(&next).Error; err != nil {
		return err
	}
	s.state = next
	return nil
}
