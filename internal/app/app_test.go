package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/retrolib/internal/config"
	"github.com/xxxsen/retrolib/internal/model"
	"github.com/xxxsen/retrolib/internal/storage"
)

const snesGamelist = `<?xml version="1.0"?>
<gameList>
  <provider><System>Super Nintendo</System></provider>
  <game>
    <path>./Chrono Trigger.sfc</path>
    <name>Chrono Trigger</name>
    <genre>Role Playing Game</genre>
    <players>1</players>
    <rating>0.9</rating>
    <publisher>Square</publisher>
  </game>
  <game>
    <path>./Super Mario World.sfc</path>
    <name>Super Mario World</name>
    <genre>Platform</genre>
    <players>1-2</players>
    <publisher>Nintendo</publisher>
  </game>
  <game>
    <path>./Kodi.sh</path>
    <name>Kodi</name>
  </game>
</gameList>`

type fixture struct {
	romDir string
	cfg    *config.Config
	out    *bytes.Buffer
}

func setup(t *testing.T, settings string) *fixture {
	t.Helper()
	root := t.TempDir()
	romDir := filepath.Join(root, "roms")
	require.NoError(t, os.MkdirAll(filepath.Join(romDir, "snes"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(romDir, "snes", "gamelist.xml"), []byte(snesGamelist), 0o644))

	cfgPath := filepath.Join(root, "config.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"rom_dir": "`+romDir+`", "s3": {"bucket": "retro", "prefix": "backup"}}`), 0o644))
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	if settings != "" {
		require.NoError(t, os.MkdirAll(cfg.CollectionsDir, 0o755))
		require.NoError(t, os.WriteFile(cfg.SettingsFile, []byte(settings), 0o644))
	}
	config.SetDefault(cfg)

	buf := &bytes.Buffer{}
	prev := output
	output = buf
	t.Cleanup(func() {
		output = prev
		config.SetDefault(nil)
		storage.SetDefaultClient(nil)
	})
	return &fixture{romDir: romDir, cfg: cfg, out: buf}
}

func (f *fixture) game(name string) string {
	return filepath.Join(f.romDir, "snes", name)
}

// run drives a runner the way the cli does and decodes its JSON output into v.
func (f *fixture) run(t *testing.T, r IRunner, v interface{}, args ...string) error {
	t.Helper()
	fs := pflag.NewFlagSet(r.Name(), pflag.ContinueOnError)
	r.Init(fs)
	require.NoError(t, fs.Parse(args))
	f.out.Reset()
	ctx := context.Background()
	if err := r.PreRun(ctx); err != nil {
		return err
	}
	runErr := r.Run(ctx)
	if err := r.PostRun(ctx); err != nil && runErr == nil {
		return err
	}
	if runErr == nil && v != nil {
		require.NoError(t, json.Unmarshal(f.out.Bytes(), v))
	}
	return runErr
}

func findState(states []model.CollectionState, name string) model.CollectionState {
	for _, s := range states {
		if s.Name == name {
			return s
		}
	}
	return model.CollectionState{}
}

func TestRunnersRegistered(t *testing.T) {
	want := []string{
		"backup-collections", "collections", "delete-game", "edit-collection", "enable",
		"favorite", "filter", "history", "new-collection", "play", "rebuild-index",
		"restore-collections", "search",
	}
	assert.Equal(t, want, RunnerList())
	_, err := ResolveRunner("missing")
	assert.Error(t, err)
}

func TestCollectionsReportsSettings(t *testing.T) {
	f := setup(t, `collection_systems_auto = "all,favorites"`)

	var report model.CollectionReport
	require.NoError(t, f.run(t, NewCollectionsCommand(), &report))
	require.Len(t, report.Auto, 3)
	all := findState(report.Auto, "all")
	assert.True(t, all.Enabled)
	assert.True(t, all.Populated)
	// kodi is excluded from auto collections by default
	assert.Equal(t, 2, all.Games)
	assert.False(t, findState(report.Auto, "recent").Enabled)
	assert.True(t, report.BundleCustom)
	assert.Empty(t, report.Custom)
}

func TestEnablePersistsSettings(t *testing.T) {
	f := setup(t, "")

	assert.Error(t, f.run(t, NewEnableCommand(), nil))

	var report model.CollectionReport
	require.NoError(t, f.run(t, NewEnableCommand(), &report, "--auto", "recent, favorites", "--bundle=false"))
	assert.True(t, findState(report.Auto, "recent").Enabled)
	assert.False(t, findState(report.Auto, "all").Enabled)

	s, err := config.LoadSettings(f.cfg.SettingsFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"recent", "favorites"}, s.AutoList())
	assert.False(t, s.UseCustomCollectionsSystem)

	assert.Error(t, f.run(t, NewEnableCommand(), nil, "--auto", "nope"))
}

func TestFilterBySystemAndGenre(t *testing.T) {
	f := setup(t, "")

	var res model.FilterResult
	require.NoError(t, f.run(t, NewFilterCommand(), &res, "--system", "snes", "--genre", "role playing game", "--decls"))
	assert.True(t, res.Filtered)
	assert.Equal(t, 3, res.Total)
	require.Len(t, res.Games, 1)
	assert.Equal(t, "Chrono Trigger", res.Games[0].Name)
	require.Len(t, res.Decls, 4)
	assert.Equal(t, "genre", res.Decls[0].Type)
	assert.Equal(t, []string{"ROLE PLAYING GAME"}, res.Decls[0].Selected)

	require.NoError(t, f.run(t, NewFilterCommand(), &res, "--system", "snes", "--players", "1-2"))
	require.Len(t, res.Games, 1)
	assert.Equal(t, "Super Mario World", res.Games[0].Name)

	assert.Error(t, f.run(t, NewFilterCommand(), nil))
	assert.Error(t, f.run(t, NewFilterCommand(), nil, "--system", "n64"))
}

func TestPlayUpdatesRecentAndHistory(t *testing.T) {
	f := setup(t, `collection_systems_auto = "recent"`)

	play := NewPlayCommand()
	play.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }
	var rec model.PlayRecord
	require.NoError(t, f.run(t, play, &rec, "--path", "snes/Chrono Trigger.sfc"))
	assert.Equal(t, 1, rec.PlayCount)
	assert.NotEmpty(t, rec.SessionID)
	assert.Equal(t, f.game("Chrono Trigger.sfc"), rec.Path)

	data, err := os.ReadFile(filepath.Join(f.romDir, "snes", "gamelist.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "<playcount>1</playcount>")
	assert.Contains(t, string(data), "<lastplayed>20240506T070809</lastplayed>")

	var report model.CollectionReport
	require.NoError(t, f.run(t, NewCollectionsCommand(), &report))
	assert.Equal(t, 1, findState(report.Auto, "recent").Games)

	var history []model.PlayRecord
	require.NoError(t, f.run(t, NewHistoryCommand(), &history, "--path", f.game("Chrono Trigger.sfc")))
	require.Len(t, history, 1)
	assert.Equal(t, "Chrono Trigger", history[0].Name)
	assert.Equal(t, "snes", history[0].System)

	assert.Error(t, f.run(t, NewPlayCommand(), nil, "--path", "snes/missing.sfc"))
}

func TestFavoriteToggleRoundTrip(t *testing.T) {
	f := setup(t, `collection_systems_auto = "favorites"`)

	var res model.ToggleResult
	require.NoError(t, f.run(t, NewFavoriteCommand(), &res, "--path", f.game("Super Mario World.sfc")))
	assert.True(t, res.Member)
	assert.True(t, res.Changed)

	var report model.CollectionReport
	require.NoError(t, f.run(t, NewCollectionsCommand(), &report))
	assert.Equal(t, 1, findState(report.Auto, "favorites").Games)

	require.NoError(t, f.run(t, NewFavoriteCommand(), &res, "--path", f.game("Super Mario World.sfc")))
	assert.False(t, res.Member)
	require.NoError(t, f.run(t, NewCollectionsCommand(), &report))
	assert.Equal(t, 0, findState(report.Auto, "favorites").Games)
}

func TestNewAndEditCollection(t *testing.T) {
	f := setup(t, "")

	var created struct {
		Name    string `json:"name"`
		File    string `json:"file"`
		Bundled bool   `json:"bundled"`
	}
	require.NoError(t, f.run(t, NewNewCollectionCommand(), &created, "--name", "My Shmups!"))
	assert.Equal(t, "My Shmups", created.Name)
	assert.True(t, created.Bundled)
	assert.FileExists(t, created.File)

	require.NoError(t, f.run(t, NewNewCollectionCommand(), &created, "--name", "My Shmups"))
	assert.Equal(t, "My Shmups (1)", created.Name)

	var results []model.ToggleResult
	require.NoError(t, f.run(t, NewEditCollectionCommand(), &results,
		"--name", "My Shmups", "--path", f.game("Super Mario World.sfc"), "--path", f.game("Chrono Trigger.sfc")))
	require.Len(t, results, 2)
	assert.True(t, results[0].Member)
	assert.True(t, results[1].Member)

	data, err := os.ReadFile(filepath.Join(f.cfg.CollectionsDir, "custom-My Shmups.cfg"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, []string{f.game("Chrono Trigger.sfc"), f.game("Super Mario World.sfc")}, lines)

	var report model.CollectionReport
	require.NoError(t, f.run(t, NewCollectionsCommand(), &report))
	shmups := findState(report.Custom, "My Shmups")
	assert.True(t, shmups.Enabled)
	assert.True(t, shmups.Bundled)
	assert.Equal(t, 2, shmups.Games)

	assert.Error(t, f.run(t, NewEditCollectionCommand(), nil, "--name", "nope", "--path", f.game("Chrono Trigger.sfc")))
}

func TestDeleteGameRemovesAllTraces(t *testing.T) {
	f := setup(t, `collection_systems_auto = "all,recent"`)
	target := f.game("Chrono Trigger.sfc")

	require.NoError(t, f.run(t, NewPlayCommand(), nil, "--path", target))
	require.NoError(t, f.run(t, NewNewCollectionCommand(), nil, "--name", "rpg"))
	require.NoError(t, f.run(t, NewEditCollectionCommand(), nil, "--name", "rpg", "--path", target))

	var item model.GameItem
	require.NoError(t, f.run(t, NewDeleteGameCommand(), &item, "--path", target))
	assert.Equal(t, target, item.Path)

	data, err := os.ReadFile(filepath.Join(f.romDir, "snes", "gamelist.xml"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Chrono Trigger.sfc")
	data, err = os.ReadFile(filepath.Join(f.cfg.CollectionsDir, "custom-rpg.cfg"))
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(string(data)))

	var history []model.PlayRecord
	require.NoError(t, f.run(t, NewHistoryCommand(), &history))
	assert.Empty(t, history)

	var report model.CollectionReport
	require.NoError(t, f.run(t, NewCollectionsCommand(), &report))
	assert.Equal(t, 1, findState(report.Auto, "all").Games)
	assert.Equal(t, 0, findState(report.Auto, "recent").Games)
}

func TestRebuildIndexSummaries(t *testing.T) {
	f := setup(t, `collection_systems_auto = "all"`)

	var sums []model.IndexSummary
	require.NoError(t, f.run(t, NewRebuildIndexCommand(), &sums))
	require.Len(t, sums, 2)
	byName := map[string]model.IndexSummary{}
	for _, s := range sums {
		byName[s.System] = s
	}
	assert.Equal(t, 3, byName["snes"].Games)
	assert.Equal(t, 1, byName["snes"].Keys["genre"]["PLATFORM"])
	assert.Equal(t, 2, byName["all"].Games)

	require.NoError(t, f.run(t, NewRebuildIndexCommand(), &sums, "--system", "snes"))
	assert.Len(t, sums, 1)
}

func TestSearchHonoursFilters(t *testing.T) {
	f := setup(t, "")

	var items []model.GameItem
	require.NoError(t, f.run(t, NewSearchCommand(), &items, "--query", "chrono"))
	require.Len(t, items, 1)
	assert.Equal(t, "Chrono Trigger", items[0].Name)

	require.NoError(t, f.run(t, NewSearchCommand(), &items, "--system", "snes", "--query", "super", "--genre", "role playing game"))
	assert.Empty(t, items)
}

type memStore struct {
	objects map[string][]byte
}

func (m *memStore) UploadFile(ctx context.Context, key, filePath string, contentType string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *memStore) DownloadToFile(ctx context.Context, key, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(destPath, m.objects[key], 0o644)
}

func (m *memStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func TestBackupAndRestoreCollections(t *testing.T) {
	f := setup(t, `collection_systems_custom = "rpg"`)
	store := &memStore{objects: map[string][]byte{}}
	storage.SetDefaultClient(store)

	require.NoError(t, f.run(t, NewNewCollectionCommand(), nil, "--name", "rpg"))
	require.NoError(t, f.run(t, NewEditCollectionCommand(), nil, "--name", "rpg", "--path", f.game("Chrono Trigger.sfc")))

	var report model.TransferReport
	require.NoError(t, f.run(t, NewBackupCollectionsCommand(), &report))
	assert.Equal(t, []string{"backup/custom-rpg.cfg", "backup/settings.toml"}, report.Files)

	store.objects["backup/notes.txt"] = []byte("ignored")
	store.objects["backup/nested/custom-x.cfg"] = []byte("ignored")
	require.NoError(t, os.RemoveAll(f.cfg.CollectionsDir))

	require.NoError(t, f.run(t, NewRestoreCollectionsCommand(), &report))
	assert.Len(t, report.Files, 2)
	data, err := os.ReadFile(filepath.Join(f.cfg.CollectionsDir, "custom-rpg.cfg"))
	require.NoError(t, err)
	assert.Equal(t, f.game("Chrono Trigger.sfc")+"\n", string(data))
	assert.FileExists(t, f.cfg.SettingsFile)
	assert.NoFileExists(t, filepath.Join(f.cfg.CollectionsDir, "custom-x.cfg"))
}

func TestBackupRequiresS3Host(t *testing.T) {
	setup(t, "")
	assert.Error(t, NewBackupCollectionsCommand().PreRun(context.Background()))
}

func TestFilterByStarCount(t *testing.T) {
	f := setup(t, "")

	var res model.FilterResult
	require.NoError(t, f.run(t, NewFilterCommand(), &res, "--system", "snes", "--rating", "5"))
	assert.True(t, res.Filtered)
	require.Len(t, res.Games, 1)
	assert.Equal(t, "Chrono Trigger", res.Games[0].Name)
}
