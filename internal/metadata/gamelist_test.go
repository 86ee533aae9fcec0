package metadata

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGamelist = `<?xml version="1.0"?>
<gameList>
  <provider>
    <System>SNES</System>
    <software>Skraper</software>
  </provider>
  <folder>
    <path>./hacks</path>
    <name> Hacks </name>
  </folder>
  <game id="42" source="ScreenScraper.fr">
    <path> ./Chrono Trigger.sfc </path>
    <name>Chrono Trigger</name>
    <genre>Role Playing Game</genre>
    <genre> </genre>
    <players>1</players>
    <rating>0.95</rating>
    <favorite>true</favorite>
    <playcount>4</playcount>
    <lastplayed>20240105T203000</lastplayed>
    <image>./media/images/Chrono Trigger.png</image>
  </game>
  <game>
    <path>./hacks/Mario Hack.sfc</path>
  </game>
</gameList>`

func TestParseGamelistFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gamelist.xml")
	require.NoError(t, os.WriteFile(path, []byte(sampleGamelist), 0o644))

	doc, err := ParseGamelistFile(path)
	require.NoError(t, err)
	require.NotNil(t, doc.Provider)
	assert.Equal(t, "SNES", doc.Provider.System)
	require.Len(t, doc.Folders, 1)
	assert.Equal(t, "Hacks", doc.Folders[0].Name)
	require.Len(t, doc.Games, 2)

	game := doc.Games[0]
	assert.Equal(t, "./Chrono Trigger.sfc", game.Path)
	assert.Equal(t, "42", game.ID)
	assert.Equal(t, []string{"Role Playing Game"}, game.Genres)
	assert.Equal(t, "Role Playing Game", game.Genre())
	assert.True(t, game.Favorite)
	assert.Equal(t, "4", game.PlayCount)
	assert.False(t, doc.Games[1].Favorite)
}

func TestWriteGamelistFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "gamelist.xml")
	require.NoError(t, os.WriteFile(src, []byte(sampleGamelist), 0o644))
	doc, err := ParseGamelistFile(src)
	require.NoError(t, err)

	doc.Games[1].Favorite = true
	doc.Games[1].Name = "Mario Hack"
	out := filepath.Join(dir, "out", "gamelist.xml")
	require.NoError(t, WriteGamelistFile(out, doc))

	again, err := ParseGamelistFile(out)
	require.NoError(t, err)
	assert.Equal(t, doc.Games, again.Games)
	assert.Equal(t, doc.Folders, again.Folders)
	_, err = os.Stat(out + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestWriteGamelistFileRejectsBadInput(t *testing.T) {
	assert.Error(t, WriteGamelistFile(filepath.Join(t.TempDir(), "g.xml"), nil))
	assert.Error(t, WriteGamelistFile(" ", &GamelistDocument{}))
}

func TestParseGamelistFileMissing(t *testing.T) {
	_, err := ParseGamelistFile(filepath.Join(t.TempDir(), "nope.xml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteGamelistFileKeepsUnknownNodes(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "gamelist.xml")
	content := `<?xml version="1.0"?>
<gameList>
  <game>
    <path>./Gunstar Heroes.md</path>
    <genre>Shooter</genre>
    <genre>Platform</genre>
    <genreid>257</genreid>
    <fanart region="eu">./media/fanart/gunstar.jpg</fanart>
    <scrap name="ScreenScraper" date="20240101T000000"/>
  </game>
</gameList>`
	require.NoError(t, os.WriteFile(src, []byte(content), 0o644))
	doc, err := ParseGamelistFile(src)
	require.NoError(t, err)
	require.Len(t, doc.Games, 1)
	game := doc.Games[0]
	assert.Equal(t, []string{"Shooter", "Platform"}, game.Genres)
	assert.Equal(t, "257", game.GenreID)
	require.Len(t, game.Extra, 2)
	assert.Equal(t, "fanart", game.Extra[0].XMLName.Local)
	assert.Equal(t, "./media/fanart/gunstar.jpg", game.Extra[0].Inner)
	assert.Equal(t, "scrap", game.Extra[1].XMLName.Local)

	out := filepath.Join(dir, "out.xml")
	require.NoError(t, WriteGamelistFile(out, doc))
	again, err := ParseGamelistFile(out)
	require.NoError(t, err)
	require.Len(t, again.Games, 1)
	assert.Equal(t, game.Genres, again.Games[0].Genres)
	assert.Equal(t, "257", again.Games[0].GenreID)
	require.Len(t, again.Games[0].Extra, 2)
	assert.Equal(t, "./media/fanart/gunstar.jpg", again.Games[0].Extra[0].Inner)
	assert.Contains(t, again.Games[0].Extra[0].Attrs, xml.Attr{Name: xml.Name{Local: "region"}, Value: "eu"})
	assert.Contains(t, again.Games[0].Extra[1].Attrs, xml.Attr{Name: xml.Name{Local: "name"}, Value: "ScreenScraper"})
}
