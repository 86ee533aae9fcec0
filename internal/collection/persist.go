package collection

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/retrolib/internal/catalog"
	"github.com/xxxsen/retrolib/internal/constant"
)

const defaultCollectionName = "New Collection"

var invalidNameChars = regexp.MustCompile(`[^\p{L}\p{M}\p{N}\-\[\]() ]+`)

// CustomCollectionPath is the membership file of the named custom collection.
func (m *Manager) CustomCollectionPath(name string) string {
	return filepath.Join(m.opts.CollectionsDir, constant.CustomCollectionPrefix+name+constant.CustomCollectionSuffix)
}

// CollectionsFromConfigFolder lists the custom collections that have a
// membership file. A missing folder yields none.
func (m *Manager) CollectionsFromConfigFolder() ([]string, error) {
	entries, err := os.ReadDir(m.opts.CollectionsDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read collections dir %s: %w", m.opts.CollectionsDir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		fname := e.Name()
		if !strings.HasPrefix(fname, constant.CustomCollectionPrefix) || !strings.HasSuffix(fname, constant.CustomCollectionSuffix) {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(fname, constant.CustomCollectionPrefix), constant.CustomCollectionSuffix)
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Save writes the membership of a dirty custom collection, one path per line.
func (m *Manager) Save(ctx context.Context, cd *CollectionData) error {
	if !cd.Decl.IsCustom || !cd.NeedsSave {
		return nil
	}
	games := cd.System.Root().FilesRecursive(catalog.TypeGame)
	lines := make([]string, 0, len(games))
	for _, g := range games {
		lines = append(lines, g.Path())
	}
	sort.Strings(lines)
	var content string
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}

	path := m.CustomCollectionPath(cd.Decl.Name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure collections dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write custom collection %s: %w", path, err)
	}
	cd.NeedsSave = false
	logutil.GetLogger(ctx).Info("custom collection saved",
		zap.String("collection", cd.Decl.Name), zap.Int("games", len(lines)), zap.String("path", path))
	return nil
}

// SaveAll writes every populated, dirty custom collection.
func (m *Manager) SaveAll(ctx context.Context) error {
	var errs []error
	for _, cd := range m.CustomCollections() {
		if !cd.Populated {
			continue
		}
		if err := m.Save(ctx, cd); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) reservedNames() map[string]struct{} {
	out := make(map[string]struct{})
	add := func(v string) { out[strings.ToLower(v)] = struct{}{} }
	for _, d := range decls {
		add(d.Name)
		add(d.ThemeFolder)
	}
	for name := range m.custom {
		add(name)
	}
	for f := range m.themes {
		add(f)
	}
	for _, s := range m.lib.RealSystems() {
		add(s.Name())
		add(s.ThemeFolder())
	}
	return out
}

// GetValidNewCollectionName turns user input into a name that is safe as a
// file name and unused. It never fails: empty input becomes a default name
// and collisions get a " (n)" suffix.
func (m *Manager) GetValidNewCollectionName(input string) string {
	name := strings.TrimSpace(invalidNameChars.ReplaceAllString(input, ""))
	if name == "" {
		name = defaultCollectionName
	}
	reserved := m.reservedNames()
	candidate := name
	for n := 1; ; n++ {
		if _, taken := reserved[strings.ToLower(candidate)]; !taken {
			return candidate
		}
		candidate = fmt.Sprintf("%s (%d)", name, n)
	}
}

// AddNewCustomCollection creates an empty, enabled custom collection under
// a sanitized name, writes its membership file and the settings, and
// returns the final name.
func (m *Manager) AddNewCustomCollection(ctx context.Context, input string) (string, error) {
	name := m.GetValidNewCollectionName(input)
	cd := m.newCollection(MustLookup(NameCustom).ForCustom(name))
	cd.Enabled = true
	cd.Populated = true
	cd.NeedsSave = true
	m.custom[name] = cd
	logutil.GetLogger(ctx).Info("custom collection created", zap.String("input", input), zap.String("name", name))
	if err := m.Save(ctx, cd); err != nil {
		return name, err
	}
	m.UpdateSystemsList(ctx)
	return name, m.saveSettings(ctx)
}
