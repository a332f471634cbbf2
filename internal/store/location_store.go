package store

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"trackiq_agent/internal/models"
)

// Event describes a store change, delivered to live-feed subscribers.
type Event struct {
	Kind   string                 // "append", "uploaded" or "reset"
	Sample *models.LocationSample // set for "append"
	IDs    []uint                 // set for "uploaded"
}

// LocationStore is the durable append-only collection of captured samples.
// Writes are serialized; reads may run concurrently.
type LocationStore struct {
	db *gorm.DB
	mu sync.Mutex

	subMu sync.Mutex
	subs  map[chan Event]struct{}
}

func New(db *gorm.DB) *LocationStore {
	return &LocationStore{
		db:   db,
		subs: make(map[chan Event]struct{}),
	}
}

// Append persists a new sample with uploaded=false and returns its id.
// A persistence failure here means a GPS fix is lost for good, so the error
// is both logged and returned.
func (s *LocationStore) Append(sample *models.LocationSample) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sample.Uploaded = false
	if err := s.db.Create(sample).Error; err != nil {
		logrus.WithError(err).Error("Failed to persist captured location. The fix is lost.")
		return 0, err
	}

	s.publish(Event{Kind: "append", Sample: sample})
	return sample.ID, nil
}

// ListPending returns all not-yet-uploaded samples, oldest first.
func (s *LocationStore) ListPending() ([]models.LocationSample, error) {
	var samples []models.LocationSample
	err := s.db.
		Where("uploaded = ?", false).
		Order("captured_at asc, id asc").
		Find(&samples).Error
	return samples, err
}

// PendingByID returns the sample if it exists and is still pending, nil
// otherwise.
func (s *LocationStore) PendingByID(id uint) (*models.LocationSample, error) {
	var sample models.LocationSample
	err := s.db.Where("id = ? AND uploaded = ?", id, false).First(&sample).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sample, nil
}

// MarkUploaded idempotently flips uploaded=true for the given ids. Unknown or
// already-uploaded ids are a no-op.
func (s *LocationStore) MarkUploaded(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Model(&models.LocationSample{}).
		Where("id IN ?", ids).
		Update("uploaded", true).Error
	if err != nil {
		return err
	}

	s.publish(Event{Kind: "uploaded", IDs: ids})
	return nil
}

// Snapshot returns every sample, newest first. Display only.
func (s *LocationStore) Snapshot() ([]models.LocationSample, error) {
	var samples []models.LocationSample
	err := s.db.Order("captured_at desc, id desc").Find(&samples).Error
	return samples, err
}

// Counts reports total and pending row counts.
func (s *LocationStore) Counts() (total, pending int64, err error) {
	if err = s.db.Model(&models.LocationSample{}).Count(&total).Error; err != nil {
		return
	}
	err = s.db.Model(&models.LocationSample{}).Where("uploaded = ?", false).Count(&pending).Error
	return
}

// ClearAll removes every row. Only used on explicit reset.
func (s *LocationStore) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Exec("DELETE FROM location_samples").Error; err != nil {
		return err
	}

	s.publish(Event{Kind: "reset"})
	return nil
}

// Subscribe registers a live-view listener. The returned function cancels the
// subscription. Slow subscribers drop events rather than blocking writes.
func (s *LocationStore) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	s.subMu.Lock()
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
		s.subMu.Unlock()
	}
	return ch, cancel
}

func (s *LocationStore) publish(ev Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- ev:
		default:
			logrus.Warn("Location event subscriber is slow, dropping event.")
		}
	}
}
