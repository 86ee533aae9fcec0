package filter

import (
	"context"
	"sort"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/retrolib/internal/catalog"
)

type indexedKey struct {
	typ Type
	key string
}

type selection struct {
	keys map[string]struct{}
}

func (s *selection) active() bool { return s != nil && len(s.keys) > 0 }

func (s *selection) has(key string) bool {
	if s == nil {
		return false
	}
	_, ok := s.keys[key]
	return ok
}

// Index keeps one reference-counted inverted index per dimension over the
// games of a single system, plus the active filter selection of that system.
//
// The keys a game was counted under are remembered by path, so removal stays
// balanced even when metadata changed after the game was added.
type Index struct {
	includeUnknown bool
	counts         map[Type]map[string]int
	tracked        map[string][]indexedKey
	selected       map[Type]*selection
}

// Option configures an Index.
type Option func(*Index)

// WithIncludeUnknown makes UNKNOWN a regular, indexable key.
func WithIncludeUnknown(v bool) Option {
	return func(idx *Index) { idx.includeUnknown = v }
}

func New(opts ...Option) *Index {
	idx := &Index{}
	for _, opt := range opts {
		opt(idx)
	}
	idx.reset()
	idx.selected = make(map[Type]*selection)
	return idx
}

func (idx *Index) reset() {
	idx.counts = make(map[Type]map[string]int, len(dimensions))
	for _, d := range dimensions {
		idx.counts[d.typ] = make(map[string]int)
	}
	idx.tracked = make(map[string][]indexedKey)
}

func (idx *Index) indexable(key string) bool {
	return key != UnknownLabel || idx.includeUnknown
}

func (idx *Index) keysFor(game *catalog.FileData) []indexedKey {
	md := game.Metadata()
	keys := make([]indexedKey, 0, len(dimensions)+2)
	for _, d := range dimensions {
		primary := d.derive(md, false)
		if idx.indexable(primary) {
			keys = append(keys, indexedKey{typ: d.typ, key: primary})
		}
		if !d.hasSecondary {
			continue
		}
		if secondary := secondaryKey(d, md); secondary != "" {
			keys = append(keys, indexedKey{typ: d.typ, key: secondary})
		}
	}
	return keys
}

// AddToIndex counts game under every key it derives. Non-game entries are ignored.
func (idx *Index) AddToIndex(game *catalog.FileData) {
	if game.Type() != catalog.TypeGame {
		return
	}
	path := game.Path()
	if _, ok := idx.tracked[path]; ok {
		logutil.GetLogger(context.Background()).Warn("game already indexed, refresh instead",
			zap.String("path", path))
		idx.RemoveFromIndex(game)
	}
	keys := idx.keysFor(game)
	for _, k := range keys {
		idx.counts[k.typ][k.key]++
	}
	idx.tracked[path] = keys
}

// RemoveFromIndex releases every key game was counted under, dropping keys
// whose count reaches zero.
func (idx *Index) RemoveFromIndex(game *catalog.FileData) {
	if game.Type() != catalog.TypeGame {
		return
	}
	path := game.Path()
	keys, ok := idx.tracked[path]
	if !ok {
		logutil.GetLogger(context.Background()).Warn("remove from index skipped, game not indexed",
			zap.String("path", path))
		return
	}
	delete(idx.tracked, path)
	for _, k := range keys {
		m := idx.counts[k.typ]
		n, ok := m[k.key]
		if !ok {
			logutil.GetLogger(context.Background()).Warn("index entry missing on removal",
				zap.String("dimension", k.typ.String()), zap.String("key", k.key), zap.String("path", path))
			continue
		}
		if n <= 1 {
			delete(m, k.key)
			continue
		}
		m[k.key] = n - 1
	}
}

// Refresh re-derives the keys of an already indexed game.
func (idx *Index) Refresh(game *catalog.FileData) {
	if _, ok := idx.tracked[game.Path()]; ok {
		idx.RemoveFromIndex(game)
	}
	idx.AddToIndex(game)
}

// Rebuild drops every count and indexes games from scratch. Selections are
// kept and narrowed to the keys that still exist.
func (idx *Index) Rebuild(games []*catalog.FileData) {
	idx.reset()
	for _, g := range games {
		idx.AddToIndex(g)
	}
	previous := idx.selected
	idx.selected = make(map[Type]*selection)
	for t, sel := range previous {
		values := make([]string, 0, len(sel.keys))
		for k := range sel.keys {
			values = append(values, k)
		}
		idx.SetFilter(t, values)
	}
}

// Len is the number of indexed games.
func (idx *Index) Len() int { return len(idx.tracked) }

// Count returns the reference count of key in dimension t.
func (idx *Index) Count(t Type, key string) int {
	return idx.counts[t][key]
}

// Keys lists the keys of dimension t in sorted order.
func (idx *Index) Keys(t Type) []string {
	m := idx.counts[t]
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetFilter replaces the selection of dimension t with the values that exist
// in its index; stale values are dropped. None clears every dimension.
func (idx *Index) SetFilter(t Type, values []string) {
	if t == None {
		idx.ClearAllFilters()
		return
	}
	m, ok := idx.counts[t]
	if !ok {
		return
	}
	sel := &selection{keys: make(map[string]struct{})}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if t == Rating {
			v = ratingValue(v)
		}
		if _, ok := m[v]; ok {
			sel.keys[v] = struct{}{}
			continue
		}
		if upper := strings.ToUpper(v); upper != v {
			if _, ok := m[upper]; ok {
				sel.keys[upper] = struct{}{}
			}
		}
	}
	if len(sel.keys) == 0 {
		delete(idx.selected, t)
		return
	}
	idx.selected[t] = sel
}

// ClearAllFilters drops every selection.
func (idx *Index) ClearAllFilters() {
	idx.selected = make(map[Type]*selection)
}

// IsFiltered reports whether any dimension has an active selection.
func (idx *Index) IsFiltered() bool {
	for _, sel := range idx.selected {
		if sel.active() {
			return true
		}
	}
	return false
}

// IsFilteredBy reports whether dimension t has an active selection.
func (idx *Index) IsFilteredBy(t Type) bool {
	return idx.selected[t].active()
}

// IsKeyBeingFilteredBy reports whether key is selected in dimension t.
func (idx *Index) IsKeyBeingFilteredBy(key string, t Type) bool {
	return idx.selected[t].has(key)
}

// ShowFile reports whether f is visible under the active selections. Folders
// are visible when any descendant is. A game must pass every active
// dimension; a dimension without a secondary key has no fallback.
func (idx *Index) ShowFile(f *catalog.FileData) bool {
	if !idx.IsFiltered() {
		return true
	}
	if f.Type() == catalog.TypeFolder {
		for _, c := range f.Children() {
			if idx.ShowFile(c) {
				return true
			}
		}
		return false
	}
	md := f.Metadata()
	for _, d := range dimensions {
		sel := idx.selected[d.typ]
		if !sel.active() {
			continue
		}
		if sel.has(d.derive(md, false)) {
			continue
		}
		if !d.hasSecondary {
			return false
		}
		if !sel.has(secondaryKey(d, md)) {
			return false
		}
	}
	return true
}

// secondaryKey is the fallback key of d, empty when the game has none of
// its own. UNKNOWN never serves as a fallback.
func secondaryKey(d dimension, md *catalog.MetaData) string {
	secondary := d.derive(md, true)
	if secondary == UnknownLabel || secondary == d.derive(md, false) {
		return ""
	}
	return secondary
}

// Decl describes one dimension for building a filter selection UI.
type Decl struct {
	Type         Type
	MenuLabel    string
	PrimaryKey   string
	HasSecondary bool
	SecondaryKey string
	FilteredBy   bool
	AllKeys      map[string]int
	Selected     []string
}

// Decls returns a snapshot of every dimension's keys and selection.
func (idx *Index) Decls() []Decl {
	out := make([]Decl, 0, len(declOrder))
	for _, t := range declOrder {
		d, _ := lookupDimension(t)
		all := make(map[string]int, len(idx.counts[t]))
		for k, n := range idx.counts[t] {
			all[k] = n
		}
		var selected []string
		if sel := idx.selected[t]; sel != nil {
			for k := range sel.keys {
				selected = append(selected, k)
			}
			sort.Strings(selected)
		}
		out = append(out, Decl{
			Type:         t,
			MenuLabel:    d.label,
			PrimaryKey:   d.primaryKey,
			HasSecondary: d.hasSecondary,
			SecondaryKey: d.secondaryKey,
			FilteredBy:   len(selected) > 0,
			AllKeys:      all,
			Selected:     selected,
		})
	}
	return out
}
