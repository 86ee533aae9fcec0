package collection

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/retrolib/internal/catalog"
	"github.com/xxxsen/retrolib/internal/filter"
	"github.com/xxxsen/retrolib/internal/library"
)

// ChangeType tells a Listener what happened to an entry.
type ChangeType int

const (
	Removed ChangeType = iota
	MetadataChanged
	Sorted
)

func (c ChangeType) String() string {
	switch c {
	case Removed:
		return "removed"
	case MetadataChanged:
		return "metadata_changed"
	case Sorted:
		return "sorted"
	}
	return "unknown"
}

// Listener is notified whenever a collection view changes.
type Listener interface {
	OnFileChanged(sys *library.System, file *catalog.FileData, change ChangeType)
}

// Settings is the user-facing enablement state.
type Settings struct {
	AutoEnabled   []string
	CustomEnabled []string
	// BundleCustom shows custom collections without a theme folder as
	// folders of one umbrella system instead of as systems of their own.
	BundleCustom bool
}

type Options struct {
	CollectionsDir string
	ThemeFolders   []string
	ExcludeNames   []string
	IndexOptions   []filter.Option
	Listener       Listener
	SaveSettings   func(ctx context.Context, s Settings) error
}

// CollectionData is the runtime state of one collection.
type CollectionData struct {
	System    *library.System
	Decl      Decl
	Enabled   bool
	Populated bool
	NeedsSave bool
}

// Manager owns every collection system and keeps their aliases in step
// with the metadata of the real games they reference.
type Manager struct {
	lib          *library.Library
	opts         Options
	excluded     map[string]struct{}
	themes       map[string]struct{}
	auto         []*CollectionData
	custom       map[string]*CollectionData
	bundle       *library.System
	bundleCustom bool
	editing      string
}

func NewManager(lib *library.Library, opts Options) *Manager {
	m := &Manager{
		lib:      lib,
		opts:     opts,
		excluded: make(map[string]struct{}),
		themes:   make(map[string]struct{}),
		custom:   make(map[string]*CollectionData),
	}
	for _, n := range opts.ExcludeNames {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			m.excluded[n] = struct{}{}
		}
	}
	for _, f := range opts.ThemeFolders {
		m.themes[f] = struct{}{}
	}
	return m
}

// Initialize creates every collection system, applies the enablement of s
// and places the enabled collections in the displayed list.
func (m *Manager) Initialize(ctx context.Context, s Settings) error {
	m.auto = m.auto[:0]
	m.custom = make(map[string]*CollectionData)
	m.editing = ""
	for _, d := range Decls(false) {
		m.auto = append(m.auto, m.newCollection(d))
	}
	tmpl := MustLookup(NameCustom)
	m.bundle = library.NewSystem(library.SystemConfig{
		Name:         tmpl.Name,
		FullName:     tmpl.LongName,
		ThemeFolder:  tmpl.ThemeFolder,
		Collection:   true,
		GameSystem:   true,
		IndexOptions: m.opts.IndexOptions,
	})

	names, err := m.CollectionsFromConfigFolder()
	if err != nil {
		return err
	}
	names = append(names, m.UnusedThemeFolders()...)
	for _, name := range names {
		if _, ok := m.custom[name]; ok {
			continue
		}
		m.custom[name] = m.newCollection(tmpl.ForCustom(name))
	}
	m.LoadEnabled(s)
	m.UpdateSystemsList(ctx)
	logutil.GetLogger(ctx).Info("collections initialized",
		zap.Int("auto", len(m.auto)), zap.Int("custom", len(m.custom)),
		zap.Strings("auto_enabled", s.AutoEnabled), zap.Strings("custom_enabled", s.CustomEnabled))
	return nil
}

func (m *Manager) newCollection(d Decl) *CollectionData {
	return &CollectionData{
		Decl: d,
		System: library.NewSystem(library.SystemConfig{
			Name:         d.Name,
			FullName:     d.LongName,
			ThemeFolder:  d.ThemeFolder,
			Collection:   true,
			GameSystem:   true,
			IndexOptions: m.opts.IndexOptions,
		}),
	}
}

// LoadEnabled marks the collections named in s as enabled and all others disabled.
func (m *Manager) LoadEnabled(s Settings) {
	m.bundleCustom = s.BundleCustom
	autoSet := toSet(s.AutoEnabled)
	for _, cd := range m.auto {
		_, cd.Enabled = autoSet[cd.Decl.Name]
	}
	customSet := toSet(s.CustomEnabled)
	for name, cd := range m.custom {
		_, cd.Enabled = customSet[name]
	}
}

func toSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out[v] = struct{}{}
		}
	}
	return out
}

// Settings reports the current enablement.
func (m *Manager) Settings() Settings {
	s := Settings{BundleCustom: m.bundleCustom}
	for _, cd := range m.auto {
		if cd.Enabled {
			s.AutoEnabled = append(s.AutoEnabled, cd.Decl.Name)
		}
	}
	for _, cd := range m.CustomCollections() {
		if cd.Enabled {
			s.CustomEnabled = append(s.CustomEnabled, cd.Decl.Name)
		}
	}
	return s
}

// SetEnabled replaces the enabled sets, resyncs the displayed list and
// persists the settings.
func (m *Manager) SetEnabled(ctx context.Context, auto, custom []string) error {
	for _, name := range auto {
		if d, ok := Lookup(name); !ok || d.IsCustom {
			return fmt.Errorf("unknown auto collection %q", name)
		}
	}
	for _, name := range custom {
		if _, ok := m.custom[name]; !ok {
			return fmt.Errorf("unknown custom collection %q", name)
		}
	}
	m.LoadEnabled(Settings{AutoEnabled: auto, CustomEnabled: custom, BundleCustom: m.bundleCustom})
	m.UpdateSystemsList(ctx)
	return m.saveSettings(ctx)
}

// SetBundleCustom switches custom collection bundling.
func (m *Manager) SetBundleCustom(ctx context.Context, v bool) error {
	if m.bundleCustom == v {
		return nil
	}
	m.bundleCustom = v
	m.UpdateSystemsList(ctx)
	return m.saveSettings(ctx)
}

func (m *Manager) saveSettings(ctx context.Context) error {
	if m.opts.SaveSettings == nil {
		return nil
	}
	if err := m.opts.SaveSettings(ctx, m.Settings()); err != nil {
		return fmt.Errorf("save collection settings: %w", err)
	}
	return nil
}

// UpdateSystemsList removes every collection from the displayed list and
// re-adds the enabled ones: auto collections first, then custom ones or the
// custom bundle. Enabled collections are populated here.
func (m *Manager) UpdateSystemsList(ctx context.Context) {
	m.lib.RemoveCollections()
	for _, cd := range m.auto {
		if !cd.Enabled {
			continue
		}
		m.ensurePopulated(ctx, cd)
		m.lib.Add(cd.System)
	}
	for _, cd := range m.CustomCollections() {
		if !cd.Enabled {
			continue
		}
		m.ensurePopulated(ctx, cd)
		if m.IsBundled(cd) {
			continue
		}
		m.lib.Add(cd.System)
	}
	if m.refreshBundle() {
		m.lib.Add(m.bundle)
	}
}

// IsBundled reports whether cd is shown as a folder of the custom bundle.
func (m *Manager) IsBundled(cd *CollectionData) bool {
	return cd.Decl.IsCustom && cd.Enabled && m.bundleCustom && !m.themeFolderExists(cd.Decl.ThemeFolder)
}

// refreshBundle rebuilds the umbrella system from the bundled collections,
// reporting whether it holds any.
func (m *Manager) refreshBundle() bool {
	root := m.bundle.Root()
	root.ClearChildren()
	seen := make(map[string]struct{})
	var games []*catalog.FileData
	for _, cd := range m.CustomCollections() {
		if !m.IsBundled(cd) || !cd.Populated {
			continue
		}
		folder := catalog.NewFolder(filepath.Join(root.Path(), cd.Decl.Name), m.bundle.Name())
		folder.Metadata().Set(catalog.MetaName, cd.Decl.Name)
		folder.Metadata().ResetChanged()
		for _, g := range cd.System.Games() {
			alias := catalog.NewAlias(g, m.bundle.Name())
			folder.AddChild(alias)
			if _, ok := seen[alias.Path()]; !ok {
				seen[alias.Path()] = struct{}{}
				games = append(games, alias)
			}
		}
		root.AddChild(folder)
	}
	m.bundle.Index().Rebuild(games)
	root.Sort(catalog.SortTypeFromString(MustLookup(NameCustom).DefaultSort))
	return len(root.Children()) > 0
}

// Bundle is the umbrella system holding bundled custom collections.
func (m *Manager) Bundle() *library.System { return m.bundle }

// AllGames returns the All Games system, populating it on first use.
func (m *Manager) AllGames(ctx context.Context) *library.System {
	cd := m.autoData(NameAllGames)
	m.ensurePopulated(ctx, cd)
	return cd.System
}

func (m *Manager) autoData(name string) *CollectionData {
	for _, cd := range m.auto {
		if cd.Decl.Name == name {
			return cd
		}
	}
	panic(fmt.Sprintf("collection: auto collection %q not initialized", name))
}

// AutoCollections lists the auto collections in declaration order.
func (m *Manager) AutoCollections() []*CollectionData {
	out := make([]*CollectionData, len(m.auto))
	copy(out, m.auto)
	return out
}

// CustomCollections lists the custom collections by name.
func (m *Manager) CustomCollections() []*CollectionData {
	out := make([]*CollectionData, 0, len(m.custom))
	for _, cd := range m.custom {
		out = append(out, cd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Decl.Name < out[j].Decl.Name })
	return out
}

// Collection finds an auto or custom collection by name.
func (m *Manager) Collection(name string) (*CollectionData, bool) {
	for _, cd := range m.auto {
		if cd.Decl.Name == name {
			return cd, true
		}
	}
	cd, ok := m.custom[name]
	return cd, ok
}

func (m *Manager) collections() []*CollectionData {
	return append(m.AutoCollections(), m.CustomCollections()...)
}

// RebuildIndexes rebuilds the index of every real system, every populated
// collection and the bundle.
func (m *Manager) RebuildIndexes(ctx context.Context) {
	m.lib.RebuildIndexes()
	rebuilt := 0
	for _, cd := range m.collections() {
		if !cd.Populated {
			continue
		}
		cd.System.RebuildIndex()
		rebuilt++
	}
	m.refreshBundle()
	logutil.GetLogger(ctx).Info("indexes rebuilt",
		zap.Int("systems", len(m.lib.RealSystems())), zap.Int("collections", rebuilt))
}

func (m *Manager) notify(sys *library.System, file *catalog.FileData, change ChangeType) {
	if m.opts.Listener != nil {
		m.opts.Listener.OnFileChanged(sys, file, change)
	}
}

func (m *Manager) themeFolderExists(folder string) bool {
	_, ok := m.themes[folder]
	return ok
}

// IsThemeCollectionCompatible reports whether the theme has a folder for
// every declaration of the given class.
func (m *Manager) IsThemeCollectionCompatible(custom bool) bool {
	for _, f := range ThemeFolders(custom) {
		if !m.themeFolderExists(f) {
			return false
		}
	}
	return true
}

// UnusedThemeFolders lists theme folders claimed by no real system and no declaration.
func (m *Manager) UnusedThemeFolders() []string {
	inUse := make(map[string]struct{})
	for _, s := range m.lib.RealSystems() {
		inUse[s.ThemeFolder()] = struct{}{}
	}
	for _, f := range append(ThemeFolders(false), ThemeFolders(true)...) {
		inUse[f] = struct{}{}
	}
	var out []string
	for f := range m.themes {
		if _, ok := inUse[f]; !ok {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}
