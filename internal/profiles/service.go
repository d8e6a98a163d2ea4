// Package profiles manages viewer profiles and the active-profile marker.
package profiles

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/hectorm/xstreamify/internal/library"
	"github.com/hectorm/xstreamify/internal/models"
	"github.com/sirupsen/logrus"
)

// Service owns profile mutations. Like the library store, it writes through
// to the database before committing anything in memory.
type Service struct {
	db     *models.Database
	logger *logrus.Logger
	mu     sync.Mutex
}

// NewService creates a profile service backed by db
func NewService(db *models.Database, logger *logrus.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// List returns all profiles ordered by name
func (s *Service) List() ([]*models.Profile, error) {
	profiles, err := s.db.GetAllProfiles()
	if err != nil {
		return nil, err
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Name < profiles[j].Name
	})
	return profiles, nil
}

// Add creates a profile
func (s *Service) Add(name, avatar string, kids bool) (*models.Profile, error) {
	if name == "" {
		return nil, &library.ValidationError{Field: "name", Reason: "must not be empty"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profile := &models.Profile{
		ID:     uuid.NewString(),
		Name:   name,
		Avatar: avatar,
		Kids:   kids,
	}
	if err := s.db.InsertProfile(profile); err != nil {
		return nil, &library.PersistenceError{Op: "add profile", Err: err}
	}

	s.logger.WithField("name", name).Info("Profile added")
	return profile, nil
}

// Rename changes a profile's name
func (s *Service) Rename(id, name string) (*models.Profile, error) {
	if name == "" {
		return nil, &library.ValidationError{Field: "name", Reason: "must not be empty"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.db.GetProfileByID(id)
	if err != nil {
		if models.ErrNotFound(err) {
			return nil, &library.NotFoundError{ID: id}
		}
		return nil, err
	}

	profile.Name = name
	if err := s.db.UpdateProfile(profile); err != nil {
		return nil, &library.PersistenceError{Op: "rename profile", Err: err}
	}
	return profile, nil
}

// Remove deletes a profile. Removing the active profile clears the marker.
func (s *Service) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.GetProfileByID(id); err != nil {
		if models.ErrNotFound(err) {
			return &library.NotFoundError{ID: id}
		}
		return err
	}

	if err := s.db.DeleteProfile(id); err != nil {
		return &library.PersistenceError{Op: "remove profile", Err: err}
	}

	active, err := s.db.GetActiveProfileID()
	if err == nil && active == id {
		if err := s.db.SetActiveProfileID(""); err != nil {
			s.logger.WithError(err).Warn("Failed to clear active profile")
		}
	}

	s.logger.WithField("id", id).Info("Profile removed")
	return nil
}

// SetActive marks a profile as the selected one
func (s *Service) SetActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.GetProfileByID(id); err != nil {
		if models.ErrNotFound(err) {
			return &library.NotFoundError{ID: id}
		}
		return err
	}
	return s.db.SetActiveProfileID(id)
}

// Active returns the selected profile, or nil when none is selected or the
// marker points at a profile that no longer exists.
func (s *Service) Active() (*models.Profile, error) {
	id, err := s.db.GetActiveProfileID()
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, nil
	}

	profile, err := s.db.GetProfileByID(id)
	if err != nil {
		if models.ErrNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}
