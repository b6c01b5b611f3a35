// Package store keeps live games in memory. Games are transient by design:
// a finished or abandoned table is simply deleted.
package store

import (
	"errors"
	"sync"

	"sgbridge/internal/domain"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game id already in use")
)

type entry struct {
	mu   sync.Mutex
	game *domain.Game
}

// Store is a registry of live games. All actions against one game are
// serialized by a per-game lock, so domain state never sees concurrent
// writers.
type Store struct {
	mu    sync.RWMutex
	games map[string]*entry
}

func New() *Store {
	return &Store{games: make(map[string]*entry)}
}

// Put registers a new game under its id.
func (s *Store) Put(g *domain.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[g.ID]; ok {
		return ErrGameExists
	}
	s.games[g.ID] = &entry{game: g}
	return nil
}

// With runs fn while holding the game's lock. The game must not be retained
// past the callback.
func (s *Store) With(id string, fn func(*domain.Game) error) error {
	s.mu.RLock()
	e, ok := s.games[id]
	s.mu.RUnlock()
	if !ok {
		return ErrGameNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.game)
}

// Delete removes a game from the registry.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return ErrGameNotFound
	}
	delete(s.games, id)
	return nil
}

// Len reports how many games are live.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}
