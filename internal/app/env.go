package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xxxsen/common/database"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/retrolib/internal/catalog"
	"github.com/xxxsen/retrolib/internal/collection"
	"github.com/xxxsen/retrolib/internal/config"
	"github.com/xxxsen/retrolib/internal/dat"
	appdb "github.com/xxxsen/retrolib/internal/db"
	"github.com/xxxsen/retrolib/internal/filter"
	"github.com/xxxsen/retrolib/internal/library"
	"github.com/xxxsen/retrolib/internal/model"
)

const themeDescriptorFile = "theme.xml"

var output io.Writer = os.Stdout

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(output, string(data))
	return err
}

// Environment is the loaded library plus the collection manager built on it.
type Environment struct {
	cfg      *config.Config
	settings *config.Settings
	Library  *library.Library
	Manager  *collection.Manager
	db       database.IDatabase
}

// openEnvironment loads every real system under the configured rom dir and
// initializes the collections according to the saved settings.
func openEnvironment(ctx context.Context) (*Environment, error) {
	cfg := config.Default()
	if cfg == nil {
		return nil, errors.New("config not loaded")
	}
	logger := logutil.GetLogger(ctx)
	indexOpts := []filter.Option{filter.WithIncludeUnknown(cfg.IncludeUnknown)}
	lib, err := library.Discover(ctx, cfg.RomDir,
		library.WithIndexOptions(indexOpts...),
		library.WithNonGameSystems(cfg.NonGameSystems...),
	)
	if err != nil {
		return nil, err
	}
	settings, err := config.LoadSettings(cfg.SettingsFile)
	if err != nil {
		return nil, err
	}
	themes, err := themeFolders(cfg.ThemeDir)
	if err != nil {
		logger.Warn("read theme dir failed, continue without theme folders",
			zap.String("theme_dir", cfg.ThemeDir), zap.Error(err))
	}
	env := &Environment{cfg: cfg, settings: settings, Library: lib}
	env.Manager = collection.NewManager(lib, collection.Options{
		CollectionsDir: cfg.CollectionsDir,
		ThemeFolders:   themes,
		ExcludeNames:   excludeNames(ctx, cfg),
		IndexOptions:   indexOpts,
		Listener:       logListener{ctx: ctx},
		SaveSettings:   env.saveSettings,
	})
	if err := env.Manager.Initialize(ctx, collection.Settings{
		AutoEnabled:   settings.AutoList(),
		CustomEnabled: settings.CustomList(),
		BundleCustom:  settings.UseCustomCollectionsSystem,
	}); err != nil {
		return nil, err
	}
	return env, nil
}

func (e *Environment) saveSettings(ctx context.Context, s collection.Settings) error {
	e.settings.SetLists(s.AutoEnabled, s.CustomEnabled)
	e.settings.UseCustomCollectionsSystem = s.BundleCustom
	if err := config.SaveSettings(e.cfg.SettingsFile, e.settings); err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("settings saved", zap.String("path", e.cfg.SettingsFile))
	return nil
}

// History opens the play history store on first use.
func (e *Environment) History(ctx context.Context) error {
	if e.db != nil {
		return nil
	}
	hdb, err := appdb.Open(ctx, e.cfg.DB.Path)
	if err != nil {
		return err
	}
	e.db = hdb
	appdb.SetDefault(hdb)
	return nil
}

// FindGame resolves path as given, then relative to the working directory
// and finally relative to the rom dir.
func (e *Environment) FindGame(path string) (*library.System, *catalog.FileData, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil, errors.New("empty game path")
	}
	candidates := []string{path}
	if abs, err := filepath.Abs(path); err == nil {
		candidates = append(candidates, abs)
	}
	if !filepath.IsAbs(path) {
		candidates = append(candidates, filepath.Join(e.cfg.RomDir, path))
	}
	for _, c := range candidates {
		if sys, game := e.Library.FindGame(c); game != nil {
			return sys, game, nil
		}
	}
	return nil, nil, fmt.Errorf("game %s not found in any system", path)
}

// FindSystem looks a displayed system up by name.
func (e *Environment) FindSystem(name string) (*library.System, error) {
	sys := e.Library.Find(name)
	if sys == nil {
		return nil, fmt.Errorf("system %s not found", name)
	}
	return sys, nil
}

// Close persists dirty custom collections and changed gamelists.
func (e *Environment) Close(ctx context.Context) error {
	var errs []error
	if err := e.Manager.SaveAll(ctx); err != nil {
		errs = append(errs, err)
	}
	saved, err := library.SaveAll(ctx, e.Library)
	if err != nil {
		errs = append(errs, err)
	}
	if len(saved) > 0 {
		logutil.GetLogger(ctx).Info("gamelists written", zap.Strings("systems", saved))
	}
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close history db: %w", err))
		}
		appdb.SetDefault(nil)
		e.db = nil
	}
	return errors.Join(errs...)
}

func excludeNames(ctx context.Context, cfg *config.Config) []string {
	names := append([]string(nil), cfg.ExcludeNames...)
	if cfg.MameDat == "" {
		return names
	}
	df, err := dat.ParseFile(cfg.MameDat)
	if err != nil {
		logutil.GetLogger(ctx).Warn("read mame dat failed, skip non-game exclusion",
			zap.String("path", cfg.MameDat), zap.Error(err))
		return names
	}
	extra := df.NonGameNames()
	logutil.GetLogger(ctx).Debug("non-game names loaded", zap.Int("count", len(extra)))
	return append(names, extra...)
}

// themeFolders lists the sub-directories of dir that carry a theme.xml.
func themeFolders(dir string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read theme dir %s: %w", dir, err)
	}
	var out []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, entry.Name(), themeDescriptorFile)); err == nil {
			out = append(out, entry.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

type logListener struct {
	ctx context.Context
}

func (l logListener) OnFileChanged(sys *library.System, file *catalog.FileData, change collection.ChangeType) {
	fields := []zap.Field{zap.String("system", sys.Name()), zap.String("change", change.String())}
	if file != nil {
		fields = append(fields, zap.String("path", file.Path()))
	}
	logutil.GetLogger(l.ctx).Debug("collection changed", fields...)
}

func gameItem(g *catalog.FileData) model.GameItem {
	return model.GameItem{Name: g.Name(), Path: g.Path(), System: g.Source().SystemName()}
}

func gameItems(games []*catalog.FileData) []model.GameItem {
	out := make([]model.GameItem, 0, len(games))
	for _, g := range games {
		out = append(out, gameItem(g))
	}
	return out
}
