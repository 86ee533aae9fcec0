package collection

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/retrolib/internal/catalog"
)

const recentLimit = 50

func (m *Manager) ensurePopulated(ctx context.Context, cd *CollectionData) {
	if cd.Populated {
		return
	}
	if err := m.Populate(ctx, cd); err != nil {
		logutil.GetLogger(ctx).Error("populate collection failed, left empty",
			zap.String("collection", cd.Decl.Name), zap.Error(err))
	}
}

// Populate materializes the aliases of cd, replacing any it already holds.
// Auto collections scan every game system; custom collections read their
// membership file and resolve each path against All Games.
func (m *Manager) Populate(ctx context.Context, cd *CollectionData) error {
	cd.System.Root().ClearChildren()
	cd.System.Index().Rebuild(nil)
	cd.Populated = true
	if cd.Decl.IsCustom {
		return m.populateCustom(ctx, cd)
	}
	m.populateAuto(ctx, cd)
	return nil
}

func (m *Manager) populateAuto(ctx context.Context, cd *CollectionData) {
	root := cd.System.Root()
	idx := cd.System.Index()
	for _, sys := range m.lib.GameSystems() {
		for _, g := range sys.Games() {
			if !m.includes(cd.Decl.Type, g) {
				continue
			}
			alias := catalog.NewAlias(g, cd.Decl.Name)
			if root.AddChild(alias) {
				idx.AddToIndex(alias)
			}
		}
	}
	m.sortCollection(cd)
	if cd.Decl.Type == AutoLastPlayed {
		m.trimRecent(cd)
	}
	logutil.GetLogger(ctx).Debug("auto collection populated",
		zap.String("collection", cd.Decl.Name), zap.Int("games", len(root.Children())))
}

func (m *Manager) populateCustom(ctx context.Context, cd *CollectionData) error {
	logger := logutil.GetLogger(ctx)
	path := m.CustomCollectionPath(cd.Decl.Name)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Info("custom collection file not found, treat as empty",
			zap.String("collection", cd.Decl.Name), zap.String("path", path))
		return nil
	}
	if err != nil {
		return fmt.Errorf("read custom collection %s: %w", path, err)
	}

	all := m.AllGames(ctx).Root()
	root := cd.System.Root()
	idx := cd.System.Index()
	skipped := 0
	for _, line := range strings.Split(string(data), "\n") {
		key := strings.TrimRight(line, "\r")
		if strings.TrimSpace(key) == "" {
			continue
		}
		src := all.Child(key)
		if src == nil {
			logger.Warn("custom collection references unknown game, skip",
				zap.String("collection", cd.Decl.Name), zap.String("path", key))
			skipped++
			continue
		}
		alias := catalog.NewAlias(src, cd.Decl.Name)
		if root.AddChild(alias) {
			idx.AddToIndex(alias)
		}
	}
	m.sortCollection(cd)
	logger.Debug("custom collection populated",
		zap.String("collection", cd.Decl.Name), zap.Int("games", len(root.Children())), zap.Int("skipped", skipped))
	return nil
}

// includes is the membership predicate of an auto collection kind.
func (m *Manager) includes(t Type, game *catalog.FileData) bool {
	md := game.Metadata()
	switch t {
	case AutoAllGames:
		return m.includeInAuto(game)
	case AutoLastPlayed:
		return m.includeInAuto(game) && md.GetInt(catalog.MetaPlayCount) > 0
	case AutoFavorites:
		// favorited utility entries still show
		return md.GetBool(catalog.MetaFavorite)
	}
	return false
}

func (m *Manager) includeInAuto(game *catalog.FileData) bool {
	src := game.Source()
	if sys := m.lib.Find(src.SystemName()); sys != nil && !sys.IsGameSystem() {
		return false
	}
	if _, ok := m.excluded[strings.ToLower(src.Name())]; ok {
		return false
	}
	_, ok := m.excluded[strings.ToLower(catalog.Stem(src.Path()))]
	return !ok
}

func (m *Manager) sortCollection(cd *CollectionData) {
	root := cd.System.Root()
	root.Sort(catalog.SortTypeFromString(cd.Decl.DefaultSort))
	m.notify(cd.System, root, Sorted)
}

func (m *Manager) trimRecent(cd *CollectionData) {
	root := cd.System.Root()
	for len(root.Children()) > recentLimit {
		children := root.Children()
		m.removeAlias(cd, children[len(children)-1])
	}
}

func (m *Manager) removeAlias(cd *CollectionData, entry *catalog.FileData) {
	if !cd.System.Root().RemoveChild(entry) {
		return
	}
	cd.System.Index().RemoveFromIndex(entry)
	m.notify(cd.System, entry, Removed)
}

func (m *Manager) addAlias(cd *CollectionData, src *catalog.FileData) bool {
	alias := catalog.NewAlias(src, cd.Decl.Name)
	if !cd.System.Root().AddChild(alias) {
		return false
	}
	cd.System.Index().AddToIndex(alias)
	m.notify(cd.System, alias, MetadataChanged)
	return true
}

// Refresh brings every populated collection in line with the current
// metadata of game, and reindexes game in its real system.
func (m *Manager) Refresh(ctx context.Context, game *catalog.FileData) {
	src := game.Source()
	if src.Type() != catalog.TypeGame {
		return
	}
	if sys := m.lib.Find(src.SystemName()); sys != nil && !sys.IsCollection() && sys.FindGame(src.Path()) != nil {
		sys.Index().Refresh(src)
	}
	for _, cd := range m.collections() {
		if cd.Populated {
			m.refreshIn(cd, src)
		}
	}
	m.refreshBundleEntry(src)
	logutil.GetLogger(ctx).Debug("collections refreshed", zap.String("path", src.Path()))
}

func (m *Manager) refreshIn(cd *CollectionData, src *catalog.FileData) {
	entry := cd.System.Root().Child(src.Path())
	switch {
	case entry != nil && !cd.Decl.IsCustom && !m.includes(cd.Decl.Type, src):
		m.removeAlias(cd, entry)
		return
	case entry != nil:
		cd.System.Index().Refresh(entry)
		m.notify(cd.System, entry, MetadataChanged)
	case !cd.Decl.IsCustom && m.includes(cd.Decl.Type, src):
		m.addAlias(cd, src)
	default:
		return
	}
	m.sortCollection(cd)
	if cd.Decl.Type == AutoLastPlayed {
		m.trimRecent(cd)
	}
}

// refreshBundleEntry reindexes src in the bundle once, since the bundle index
// counts each game a single time, and notifies for the alias in every folder.
func (m *Manager) refreshBundleEntry(src *catalog.FileData) {
	refreshed := false
	for _, folder := range m.bundle.Root().Children() {
		alias := folder.Child(src.Path())
		if alias == nil {
			continue
		}
		if !refreshed {
			m.bundle.Index().Refresh(alias)
			refreshed = true
		}
		m.notify(m.bundle, alias, MetadataChanged)
	}
}

// DeleteAllTraces removes game from every populated collection regardless
// of its metadata. Custom collections that lose an entry need saving.
func (m *Manager) DeleteAllTraces(ctx context.Context, game *catalog.FileData) {
	path := game.Source().Path()
	removed := 0
	customChanged := false
	for _, cd := range m.collections() {
		if !cd.Populated {
			continue
		}
		entry := cd.System.Root().Child(path)
		if entry == nil {
			continue
		}
		m.removeAlias(cd, entry)
		removed++
		if cd.Decl.IsCustom {
			cd.NeedsSave = true
			customChanged = true
		}
	}
	if customChanged {
		m.refreshBundle()
	}
	logutil.GetLogger(ctx).Info("game removed from collections",
		zap.String("path", path), zap.Int("collections", removed))
}

// Toggle flips the membership of game in the named collection. For
// favorites the favorite flag is flipped and collections refreshed; for a
// custom collection the alias is added or removed directly. Non-game
// entries and collections that cannot be toggled are rejected.
func (m *Manager) Toggle(ctx context.Context, game *catalog.FileData, name string) bool {
	logger := logutil.GetLogger(ctx)
	if game.Type() != catalog.TypeGame {
		logger.Warn("toggle rejected, not a game", zap.String("path", game.Path()), zap.String("type", game.Type().String()))
		return false
	}
	src := game.Source()
	if name == NameFavorites {
		md := src.Metadata()
		value := "true"
		if md.GetBool(catalog.MetaFavorite) {
			value = "false"
		}
		md.Set(catalog.MetaFavorite, value)
		m.Refresh(ctx, src)
		logger.Info("favorite toggled", zap.String("game", src.Name()), zap.String("favorite", value))
		return true
	}
	cd, ok := m.custom[name]
	if !ok {
		logger.Warn("toggle rejected, not a custom collection", zap.String("collection", name))
		return false
	}
	m.ensurePopulated(ctx, cd)
	if entry := cd.System.Root().Child(src.Path()); entry != nil {
		m.removeAlias(cd, entry)
		logger.Info("game removed from collection", zap.String("game", src.Name()), zap.String("collection", name))
	} else {
		m.addAlias(cd, src)
		m.sortCollection(cd)
		logger.Info("game added to collection", zap.String("game", src.Name()), zap.String("collection", name))
	}
	cd.NeedsSave = true
	m.refreshBundle()
	return true
}

// ToggleGameInCollection toggles game in the collection under edit, or in
// favorites when none is.
func (m *Manager) ToggleGameInCollection(ctx context.Context, game *catalog.FileData) bool {
	name := m.editing
	if name == "" {
		name = NameFavorites
	}
	return m.Toggle(ctx, game, name)
}

// StartEditing selects the custom collection that ToggleGameInCollection targets.
func (m *Manager) StartEditing(ctx context.Context, name string) error {
	cd, ok := m.custom[name]
	if !ok {
		return fmt.Errorf("custom collection %q not found", name)
	}
	m.ensurePopulated(ctx, cd)
	m.editing = name
	logutil.GetLogger(ctx).Info("editing collection", zap.String("collection", name))
	return nil
}

func (m *Manager) ExitEditing() { m.editing = "" }

// Editing is the name of the collection under edit, empty when none.
func (m *Manager) Editing() string { return m.editing }
