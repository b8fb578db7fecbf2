package transect

import (
	"fmt"
	"sort"

	"github.com/bbernstein/shorewatch/internal/models"
	"github.com/rs/zerolog/log"
)

// Store holds the transects of one site in insertion order
type Store struct {
	transects []models.Transect
	index     map[string]int
}

func NewStore() *Store {
	return &Store{index: make(map[string]int)}
}

// Add validates and appends a transect. IDs must be unique.
func (s *Store) Add(t models.Transect) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if _, exists := s.index[t.ID]; exists {
		return models.NewInvalidTransectError(t.ID, "duplicate transect id")
	}
	s.index[t.ID] = len(s.transects)
	s.transects = append(s.transects, t)

	log.Debug().
		Str("transect", t.ID).
		Float64("length", t.Length()).
		Msg("Added transect")
	return nil
}

func (s *Store) Get(id string) (models.Transect, bool) {
	i, ok := s.index[id]
	if !ok {
		return models.Transect{}, false
	}
	return s.transects[i], true
}

// All returns a copy of the transects in insertion order
func (s *Store) All() []models.Transect {
	return append([]models.Transect(nil), s.transects...)
}

func (s *Store) IDs() []string {
	ids := make([]string, len(s.transects))
	for i, t := range s.transects {
		ids[i] = t.ID
	}
	return ids
}

func (s *Store) Len() int {
	return len(s.transects)
}

// FromCoordinates builds a store from literal origin/endpoint pairs, ordered by id
func FromCoordinates(coords map[string][2]models.Point) (*Store, error) {
	ids := make([]string, 0, len(coords))
	for id := range coords {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	s := NewStore()
	for _, id := range ids {
		pair := coords[id]
		t, err := models.NewTransect(id, pair[0], pair[1])
		if err != nil {
			return nil, fmt.Errorf("building transect %s: %w", id, err)
		}
		if err := s.Add(t); err != nil {
			return nil, err
		}
	}
	return s, nil
}
