package library

import (
	"github.com/xxxsen/retrolib/internal/catalog"
)

// Library is the ordered displayed-systems list. Real systems are loaded
// once; collection systems are removed and re-added whenever enablement changes.
type Library struct {
	systems []*System
}

func New() *Library {
	return &Library{}
}

// Add appends s to the displayed list.
func (l *Library) Add(s *System) {
	l.systems = append(l.systems, s)
}

// Systems returns the displayed systems in order.
func (l *Library) Systems() []*System {
	out := make([]*System, len(l.systems))
	copy(out, l.systems)
	return out
}

// GameSystems returns the real systems holding playable games.
func (l *Library) GameSystems() []*System {
	out := make([]*System, 0, len(l.systems))
	for _, s := range l.systems {
		if !s.IsCollection() && s.IsGameSystem() {
			out = append(out, s)
		}
	}
	return out
}

// RealSystems returns every non-collection system, game or not.
func (l *Library) RealSystems() []*System {
	out := make([]*System, 0, len(l.systems))
	for _, s := range l.systems {
		if !s.IsCollection() {
			out = append(out, s)
		}
	}
	return out
}

// Find returns the displayed system named name.
func (l *Library) Find(name string) *System {
	for _, s := range l.systems {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// RemoveCollections drops every collection system from the displayed list.
func (l *Library) RemoveCollections() {
	kept := make([]*System, 0, len(l.systems))
	for _, s := range l.systems {
		if !s.IsCollection() {
			kept = append(kept, s)
		}
	}
	l.systems = kept
}

// FindGame resolves path to its real system and entry.
func (l *Library) FindGame(path string) (*System, *catalog.FileData) {
	for _, s := range l.RealSystems() {
		if g := s.FindGame(path); g != nil {
			return s, g
		}
	}
	return nil, nil
}

// RebuildIndexes rebuilds the filter index of every real system.
func (l *Library) RebuildIndexes() {
	for _, s := range l.RealSystems() {
		s.RebuildIndex()
	}
}
