package library

import (
	"github.com/xxxsen/retrolib/internal/catalog"
	"github.com/xxxsen/retrolib/internal/filter"
)

// System is one entry of the displayed-systems list: either a real ROM
// directory backed by a gamelist.xml, or a virtual collection system whose
// games are aliases of real entries.
type System struct {
	name         string
	fullName     string
	themeFolder  string
	startPath    string
	gamelistPath string
	collection   bool
	gameSystem   bool

	root    *catalog.FileData
	index   *filter.Index
	deleted map[string]struct{}
}

// SystemConfig describes a system to create.
type SystemConfig struct {
	Name         string
	FullName     string
	ThemeFolder  string
	StartPath    string
	GamelistPath string
	Collection   bool
	// GameSystem marks systems whose entries are playable games. Utility
	// systems (e.g. a launcher menu) set it false and are never aggregated.
	GameSystem   bool
	IndexOptions []filter.Option
}

func NewSystem(c SystemConfig) *System {
	if c.FullName == "" {
		c.FullName = c.Name
	}
	if c.ThemeFolder == "" {
		c.ThemeFolder = c.Name
	}
	rootPath := c.StartPath
	if rootPath == "" {
		rootPath = c.Name
	}
	return &System{
		name:         c.Name,
		fullName:     c.FullName,
		themeFolder:  c.ThemeFolder,
		startPath:    c.StartPath,
		gamelistPath: c.GamelistPath,
		collection:   c.Collection,
		gameSystem:   c.GameSystem,
		root:         catalog.NewFolder(rootPath, c.Name),
		index:        filter.New(c.IndexOptions...),
		deleted:      make(map[string]struct{}),
	}
}

func (s *System) Name() string         { return s.name }
func (s *System) FullName() string     { return s.fullName }
func (s *System) ThemeFolder() string  { return s.themeFolder }
func (s *System) StartPath() string    { return s.startPath }
func (s *System) GamelistPath() string { return s.gamelistPath }
func (s *System) IsCollection() bool   { return s.collection }
func (s *System) IsGameSystem() bool   { return s.gameSystem }

// Root is the top folder of the system's catalog tree.
func (s *System) Root() *catalog.FileData { return s.root }

// Index is the filter index scoped to this system.
func (s *System) Index() *filter.Index { return s.index }

// Games lists every game of the system, depth first.
func (s *System) Games() []*catalog.FileData {
	return s.root.FilesRecursive(catalog.TypeGame)
}

// VisibleGames lists the games that pass the system's active filters.
func (s *System) VisibleGames() []*catalog.FileData {
	games := s.Games()
	if !s.index.IsFiltered() {
		return games
	}
	out := make([]*catalog.FileData, 0, len(games))
	for _, g := range games {
		if s.index.ShowFile(g) {
			out = append(out, g)
		}
	}
	return out
}

// FindGame looks a game up by full path anywhere in the tree.
func (s *System) FindGame(path string) *catalog.FileData {
	return findIn(s.root, path)
}

func findIn(folder *catalog.FileData, path string) *catalog.FileData {
	if c := folder.Child(path); c != nil {
		return c
	}
	for _, c := range folder.Children() {
		if c.Type() != catalog.TypeFolder {
			continue
		}
		if f := findIn(c, path); f != nil {
			return f
		}
	}
	return nil
}

// RemoveGame detaches game from the tree and the index. The removal is
// remembered so the next gamelist write drops the entry.
func (s *System) RemoveGame(game *catalog.FileData) bool {
	parent := game.Parent()
	if parent == nil || !parent.RemoveChild(game) {
		return false
	}
	s.index.RemoveFromIndex(game)
	s.deleted[game.Path()] = struct{}{}
	return true
}

// RebuildIndex reindexes every game from scratch, keeping live selections.
func (s *System) RebuildIndex() {
	s.index.Rebuild(s.Games())
}

func (s *System) hasChanges() bool {
	if len(s.deleted) > 0 {
		return true
	}
	for _, g := range s.Games() {
		if g.Metadata().WasChanged() {
			return true
		}
	}
	return false
}
