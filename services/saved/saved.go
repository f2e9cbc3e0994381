// Package saved stores named search presets so they can be re-run later.
// Only the query definition is stored; results are always recomputed.
package saved

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/meghashyamc/whereis/db/kvdb"
	"github.com/meghashyamc/whereis/logger"
	"github.com/meghashyamc/whereis/services/search"
)

var ErrNotFound = errors.New("saved search not found")

// Store represents the key-value operations needed to persist presets.
type Store interface {
	Set(bucket string, key string, value string) error
	Get(bucket string, key string) (string, error)
	Delete(bucket string, key string) error
	GetAll(bucket string) (map[string]string, error)
}

type Search struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Query     search.Query `json:"query"`
	CreatedAt time.Time    `json:"created_at"`
}

type Service struct {
	logger logger.Logger
	store  Store
}

func New(logger logger.Logger, store Store) *Service {
	return &Service{logger: logger, store: store}
}

func (s *Service) Create(name string, query search.Query) (*Search, error) {
	saved := &Search{
		ID:        uuid.New().String(),
		Name:      name,
		Query:     query,
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(saved)
	if err != nil {
		s.logger.Error("failed to marshal saved search", "name", name, "err", err.Error())
		return nil, fmt.Errorf("failed to marshal saved search: %w", err)
	}

	if err := s.store.Set(kvdb.SavedSearchesBucket, saved.ID, string(data)); err != nil {
		s.logger.Error("failed to store saved search", "id", saved.ID, "err", err.Error())
		return nil, err
	}

	return saved, nil
}

func (s *Service) Get(id string) (*Search, error) {
	value, err := s.store.Get(kvdb.SavedSearchesBucket, id)
	if err != nil {
		if errors.Is(err, kvdb.ErrNotFound) || errors.Is(err, kvdb.ErrInvalidKey) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}

	return s.decode(id, value)
}

// List returns every saved search, oldest first.
func (s *Service) List() ([]Search, error) {
	values, err := s.store.GetAll(kvdb.SavedSearchesBucket)
	if err != nil {
		return nil, err
	}

	searches := make([]Search, 0, len(values))
	for id, value := range values {
		saved, err := s.decode(id, value)
		if err != nil {
			continue
		}
		searches = append(searches, *saved)
	}
	sort.Slice(searches, func(i, j int) bool {
		if searches[i].CreatedAt.Equal(searches[j].CreatedAt) {
			return searches[i].ID < searches[j].ID
		}
		return searches[i].CreatedAt.Before(searches[j].CreatedAt)
	})

	return searches, nil
}

func (s *Service) Delete(id string) error {
	if err := s.store.Delete(kvdb.SavedSearchesBucket, id); err != nil {
		if errors.Is(err, kvdb.ErrNotFound) || errors.Is(err, kvdb.ErrInvalidKey) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return err
	}
	return nil
}

func (s *Service) decode(id string, value string) (*Search, error) {
	var saved Search
	if err := json.Unmarshal([]byte(value), &saved); err != nil {
		s.logger.Error("failed to unmarshal saved search", "id", id, "err", err.Error())
		return nil, fmt.Errorf("failed to unmarshal saved search %s: %w", id, err)
	}
	return &saved, nil
}
