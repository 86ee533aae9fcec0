package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/retrolib/internal/catalog"
	"github.com/xxxsen/retrolib/internal/constant"
	"github.com/xxxsen/retrolib/internal/filter"
	"github.com/xxxsen/retrolib/internal/metadata"
)

type loadOptions struct {
	indexOptions   []filter.Option
	nonGameSystems map[string]struct{}
}

// Option configures Discover and LoadSystem.
type Option func(*loadOptions)

// WithIndexOptions passes opts to every system's filter index.
func WithIndexOptions(opts ...filter.Option) Option {
	return func(o *loadOptions) { o.indexOptions = append(o.indexOptions, opts...) }
}

// WithNonGameSystems marks systems by name as utility systems.
func WithNonGameSystems(names ...string) Option {
	return func(o *loadOptions) {
		for _, n := range names {
			o.nonGameSystems[strings.ToLower(strings.TrimSpace(n))] = struct{}{}
		}
	}
}

func applyOptions(opts []Option) *loadOptions {
	o := &loadOptions{nonGameSystems: make(map[string]struct{})}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Discover loads every direct sub-directory of romDir that holds a
// gamelist.xml as a real system. A system whose gamelist cannot be read is
// logged and skipped.
func Discover(ctx context.Context, romDir string, opts ...Option) (*Library, error) {
	logger := logutil.GetLogger(ctx)
	entries, err := os.ReadDir(romDir)
	if err != nil {
		return nil, fmt.Errorf("read rom dir %s: %w", romDir, err)
	}
	lib := New()
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		dir := filepath.Join(romDir, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, constant.DefaultGamelistFile)); err != nil {
			continue
		}
		sys, err := LoadSystem(ctx, entry.Name(), dir, opts...)
		if err != nil {
			logger.Error("load system failed, skip", zap.String("system", entry.Name()), zap.Error(err))
			continue
		}
		lib.Add(sys)
	}
	logger.Info("discover systems finished", zap.String("rom_dir", romDir), zap.Int("systems", len(lib.systems)))
	return lib, nil
}

// LoadSystem builds a real system from dir/gamelist.xml. Every game is
// placed in the folder matching its relative path and added to the index.
func LoadSystem(ctx context.Context, name, dir string, opts ...Option) (*System, error) {
	o := applyOptions(opts)
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve system dir %s: %w", dir, err)
	}
	gamelistPath := filepath.Join(absDir, constant.DefaultGamelistFile)
	doc, err := metadata.ParseGamelistFile(gamelistPath)
	if err != nil {
		return nil, err
	}
	fullName := name
	if doc.Provider != nil && doc.Provider.System != "" {
		fullName = doc.Provider.System
	}
	_, nonGame := o.nonGameSystems[strings.ToLower(name)]
	sys := NewSystem(SystemConfig{
		Name:         name,
		FullName:     fullName,
		StartPath:    absDir,
		GamelistPath: gamelistPath,
		GameSystem:   !nonGame,
		IndexOptions: o.indexOptions,
	})

	for _, folder := range doc.Folders {
		f := ensureFolder(sys, resolvePath(absDir, folder.Path))
		if folder.Name != "" {
			f.Metadata().Set(catalog.MetaName, folder.Name)
			f.Metadata().ResetChanged()
		}
	}
	loaded := 0
	for i := range doc.Games {
		entry := &doc.Games[i]
		if entry.Path == "" {
			logutil.GetLogger(ctx).Warn("gamelist entry without path, skip",
				zap.String("system", name), zap.String("name", entry.Name))
			continue
		}
		path := resolvePath(absDir, entry.Path)
		md := catalog.NewMetaData()
		entryToMeta(entry, md)
		md.ResetChanged()
		game := catalog.NewGame(path, name, md)
		if !ensureFolder(sys, filepath.Dir(path)).AddChild(game) {
			logutil.GetLogger(ctx).Warn("duplicate gamelist entry, skip",
				zap.String("system", name), zap.String("path", path))
			continue
		}
		sys.Index().AddToIndex(game)
		loaded++
	}
	logutil.GetLogger(ctx).Debug("system loaded",
		zap.String("system", name), zap.Int("games", loaded), zap.Int("keys", sys.Index().Len()))
	return sys, nil
}

func resolvePath(base, p string) string {
	p = filepath.FromSlash(strings.TrimSpace(p))
	if !filepath.IsAbs(p) {
		p = filepath.Join(base, p)
	}
	return filepath.Clean(p)
}

func relativePath(base, p string) string {
	rel, err := filepath.Rel(base, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(p)
	}
	return "./" + filepath.ToSlash(rel)
}

// ensureFolder returns the folder for dir, creating the chain below the
// system root. Paths outside the root land in the root.
func ensureFolder(sys *System, dir string) *catalog.FileData {
	root := sys.Root()
	rel, err := filepath.Rel(root.Path(), dir)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return root
	}
	cur := root
	curPath := root.Path()
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		curPath = filepath.Join(curPath, part)
		next := cur.Child(curPath)
		if next == nil {
			next = catalog.NewFolder(curPath, sys.Name())
			cur.AddChild(next)
		}
		cur = next
	}
	return cur
}

func entryToMeta(e *metadata.GamelistEntry, md *catalog.MetaData) {
	set := func(key, value string) {
		if value != "" {
			md.Set(key, value)
		}
	}
	set(catalog.MetaName, e.Name)
	set(catalog.MetaDesc, e.Description)
	set(catalog.MetaGenre, e.Genre())
	set(catalog.MetaPlayers, e.Players)
	set(catalog.MetaPublisher, e.Publisher)
	set(catalog.MetaDeveloper, e.Developer)
	set(catalog.MetaRating, e.Rating)
	set(catalog.MetaReleaseDate, e.ReleaseDate)
	set(catalog.MetaPlayCount, e.PlayCount)
	set(catalog.MetaLastPlayed, e.LastPlayed)
	if e.Favorite {
		md.Set(catalog.MetaFavorite, "true")
	}
	if e.Hidden {
		md.Set(catalog.MetaHidden, "true")
	}
	if e.KidGame {
		md.Set(catalog.MetaKidGame, "true")
	}
}

func metaToEntry(md *catalog.MetaData, e *metadata.GamelistEntry) {
	for _, key := range md.Keys() {
		v := md.Get(key)
		switch key {
		case catalog.MetaName:
			e.Name = v
		case catalog.MetaDesc:
			e.Description = v
		case catalog.MetaGenre:
			// repeated <genre> nodes stay as they are unless the value moved
			if v == e.Genre() {
				continue
			}
			e.Genres = nil
			if v != "" {
				e.Genres = []string{v}
			}
		case catalog.MetaPlayers:
			e.Players = v
		case catalog.MetaPublisher:
			e.Publisher = v
		case catalog.MetaDeveloper:
			e.Developer = v
		case catalog.MetaRating:
			e.Rating = v
		case catalog.MetaReleaseDate:
			e.ReleaseDate = v
		case catalog.MetaPlayCount:
			e.PlayCount = v
		case catalog.MetaLastPlayed:
			e.LastPlayed = v
		case catalog.MetaFavorite:
			e.Favorite = md.GetBool(key)
		case catalog.MetaHidden:
			e.Hidden = md.GetBool(key)
		case catalog.MetaKidGame:
			e.KidGame = md.GetBool(key)
		}
	}
}

// SaveGamelist writes the changed entries of a real system back to its
// gamelist.xml, reporting whether anything was written. Unchanged systems
// are left alone; entries the library does not know are carried through.
func SaveGamelist(ctx context.Context, sys *System) (bool, error) {
	if sys.IsCollection() || sys.GamelistPath() == "" || !sys.hasChanges() {
		return false, nil
	}
	doc, err := metadata.ParseGamelistFile(sys.GamelistPath())
	if errors.Is(err, os.ErrNotExist) {
		doc, err = &metadata.GamelistDocument{}, nil
	}
	if err != nil {
		return false, err
	}

	base := sys.StartPath()
	positions := make(map[string]int, len(doc.Games))
	for i := range doc.Games {
		positions[resolvePath(base, doc.Games[i].Path)] = i
	}
	updated := 0
	for _, game := range sys.Games() {
		md := game.Metadata()
		pos, ok := positions[game.Path()]
		if !ok {
			doc.Games = append(doc.Games, metadata.GamelistEntry{Path: relativePath(base, game.Path())})
			pos = len(doc.Games) - 1
			positions[game.Path()] = pos
		} else if !md.WasChanged() {
			continue
		}
		metaToEntry(md, &doc.Games[pos])
		updated++
	}
	kept := doc.Games[:0]
	for _, e := range doc.Games {
		if _, gone := sys.deleted[resolvePath(base, e.Path)]; gone {
			continue
		}
		kept = append(kept, e)
	}
	removed := len(doc.Games) - len(kept)
	doc.Games = kept

	if err := metadata.WriteGamelistFile(sys.GamelistPath(), doc); err != nil {
		return false, err
	}
	for _, game := range sys.Games() {
		game.Metadata().ResetChanged()
	}
	sys.deleted = make(map[string]struct{})
	logutil.GetLogger(ctx).Info("gamelist saved",
		zap.String("system", sys.Name()), zap.Int("updated", updated), zap.Int("removed", removed))
	return true, nil
}

// SaveAll writes every changed real system, returning the names written.
func SaveAll(ctx context.Context, lib *Library) ([]string, error) {
	var saved []string
	var errs []error
	for _, sys := range lib.RealSystems() {
		ok, err := SaveGamelist(ctx, sys)
		if err != nil {
			errs = append(errs, fmt.Errorf("save system %s: %w", sys.Name(), err))
			continue
		}
		if ok {
			saved = append(saved, sys.Name())
		}
	}
	sort.Strings(saved)
	return saved, errors.Join(errs...)
}
