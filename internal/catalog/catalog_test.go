package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGame(path, name string) *FileData {
	md := NewMetaData()
	md.Set(MetaName, name)
	md.ResetChanged()
	return NewGame(path, "nes", md)
}

func TestMetaDataDefaultsAndChangedFlag(t *testing.T) {
	md := NewMetaData()
	assert.Equal(t, "false", md.Get(MetaFavorite))
	assert.Equal(t, "unknown", md.Get(MetaGenre))
	assert.Equal(t, "", md.Get(MetaName))
	assert.False(t, md.WasChanged())

	md.Set(MetaFavorite, "false")
	assert.False(t, md.WasChanged(), "setting the default value is not a change")

	md.Set(MetaFavorite, "true")
	assert.True(t, md.WasChanged())
	assert.True(t, md.GetBool(MetaFavorite))

	md.ResetChanged()
	md.Set(MetaPlayCount, "3")
	assert.Equal(t, 3, md.GetInt(MetaPlayCount))
	assert.True(t, md.WasChanged())
	assert.Equal(t, []string{MetaFavorite, MetaPlayCount}, md.Keys())
}

func TestAliasForwardsMetadata(t *testing.T) {
	game := newTestGame("/roms/nes/mario.nes", "Super Mario Bros.")
	alias := NewAlias(game, "favorites")
	nested := NewAlias(alias, "all")

	assert.True(t, alias.IsAlias())
	assert.Same(t, game, alias.Source())
	assert.Same(t, game, nested.Source())
	assert.Equal(t, game.Path(), alias.Path())
	assert.Equal(t, "favorites", alias.SystemName())
	assert.Equal(t, "nes", alias.Source().SystemName())

	alias.Metadata().Set(MetaGenre, "Platform")
	assert.Equal(t, "Platform", game.Metadata().Get(MetaGenre))
	assert.True(t, game.Metadata().WasChanged())
}

func TestTreeAddRemoveAndRecursion(t *testing.T) {
	root := NewFolder("/roms/nes", "nes")
	sub := NewFolder("/roms/nes/hacks", "nes")
	a := newTestGame("/roms/nes/a.nes", "A")
	b := newTestGame("/roms/nes/hacks/b.nes", "B")

	require.True(t, root.AddChild(a))
	require.True(t, root.AddChild(sub))
	require.True(t, sub.AddChild(b))
	assert.False(t, root.AddChild(newTestGame("/roms/nes/a.nes", "dup")), "duplicate path is rejected")

	assert.Same(t, root, a.Parent())
	assert.Same(t, a, root.Child("/roms/nes/a.nes"))
	assert.Len(t, root.FilesRecursive(TypeGame), 2)
	assert.Len(t, root.FilesRecursive(TypeFolder), 1)
	assert.Len(t, root.FilesRecursive(TypeGame|TypeFolder), 3)

	assert.True(t, sub.RemoveChild(b))
	assert.False(t, sub.RemoveChild(b))
	assert.Nil(t, b.Parent())
	assert.Len(t, root.FilesRecursive(TypeGame), 1)
}

func TestNameFallsBackToStem(t *testing.T) {
	g := NewGame("/roms/snes/Chrono Trigger (USA).sfc", "snes", nil)
	assert.Equal(t, "Chrono Trigger (USA)", g.Name())
	assert.Equal(t, "README", Stem("/x/README"))
}

func TestSortByNameUsesPinyin(t *testing.T) {
	root := NewFolder("/roms/fc", "fc")
	root.AddChild(newTestGame("/roms/fc/3.nes", "Zelda"))
	root.AddChild(newTestGame("/roms/fc/1.nes", "魂斗罗"))
	root.AddChild(newTestGame("/roms/fc/2.nes", "Contra"))

	root.Sort(SortTypeFromString("filename, ascending"))
	var names []string
	for _, c := range root.Children() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"Contra", "魂斗罗", "Zelda"}, names)

	root.Sort(SortTypeFromString("filename, descending"))
	assert.Equal(t, "Zelda", root.Children()[0].Name())
}

func TestSortByLastPlayedDescending(t *testing.T) {
	root := NewFolder("/c/recent", "recent")
	old := newTestGame("/roms/a", "Old")
	old.Metadata().Set(MetaLastPlayed, "20240101T100000")
	fresh := newTestGame("/roms/b", "Fresh")
	fresh.Metadata().Set(MetaLastPlayed, "20250301T100000")
	root.AddChild(old)
	root.AddChild(fresh)

	root.Sort(SortTypeFromString("Last Played, Descending"))
	assert.Equal(t, "Fresh", root.Children()[0].Name())
}

func TestSortTypeFromStringFallback(t *testing.T) {
	st := SortTypeFromString("no such order")
	assert.Equal(t, "filename, ascending", st.Description)
	assert.True(t, st.Ascending)
}

func TestMaxPlayers(t *testing.T) {
	assert.Equal(t, 4, maxPlayers("1-4"))
	assert.Equal(t, 2, maxPlayers("2"))
	assert.Equal(t, 0, maxPlayers("many"))
}
