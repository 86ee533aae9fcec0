package metadata

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GamelistDocument is the content of an EmulationStation gamelist.xml.
type GamelistDocument struct {
	XMLName  xml.Name         `xml:"gameList"`
	Provider *ProviderInfo    `xml:"provider,omitempty"`
	Folders  []GamelistFolder `xml:"folder,omitempty"`
	Games    []GamelistEntry  `xml:"game"`
}

// ProviderInfo describes the tool that produced the gamelist.
type ProviderInfo struct {
	System   string `xml:"System,omitempty"`
	Software string `xml:"software,omitempty"`
	Database string `xml:"database,omitempty"`
	Web      string `xml:"web,omitempty"`
}

// GamelistEntry is a single <game> node. Fields the library does not
// interpret are carried through unchanged on rewrite.
type GamelistEntry struct {
	ID          string         `xml:"id,attr,omitempty"`
	Source      string         `xml:"source,attr,omitempty"`
	Path        string         `xml:"path"`
	Name        string         `xml:"name,omitempty"`
	Description string         `xml:"desc,omitempty"`
	Image       string         `xml:"image,omitempty"`
	Thumbnail   string         `xml:"thumbnail,omitempty"`
	Marquee     string         `xml:"marquee,omitempty"`
	Video       string         `xml:"video,omitempty"`
	Rating      string         `xml:"rating,omitempty"`
	ReleaseDate string         `xml:"releasedate,omitempty"`
	Developer   string         `xml:"developer,omitempty"`
	Publisher   string         `xml:"publisher,omitempty"`
	Genres      []string       `xml:"genre,omitempty"`
	GenreID     string         `xml:"genreid,omitempty"`
	Players     string         `xml:"players,omitempty"`
	Favorite    bool           `xml:"favorite,omitempty"`
	Hidden      bool           `xml:"hidden,omitempty"`
	KidGame     bool           `xml:"kidgame,omitempty"`
	PlayCount   string         `xml:"playcount,omitempty"`
	LastPlayed  string         `xml:"lastplayed,omitempty"`
	SortName    string         `xml:"sortname,omitempty"`
	Region      string         `xml:"region,omitempty"`
	Lang        string         `xml:"lang,omitempty"`
	MD5         string         `xml:"md5,omitempty"`
	CRC32       string         `xml:"crc32,omitempty"`
	Extra       []ExtraElement `xml:",any"`
}

// ExtraElement is a child node with no dedicated field, such as <fanart> or a
// scraper specific tag. It is written back verbatim.
type ExtraElement struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Inner   string     `xml:",innerxml"`
}

// GamelistFolder is a single <folder> node.
type GamelistFolder struct {
	Path        string         `xml:"path"`
	Name        string         `xml:"name,omitempty"`
	Description string         `xml:"desc,omitempty"`
	Image       string         `xml:"image,omitempty"`
	Extra       []ExtraElement `xml:",any"`
}

// Genre joins repeated <genre> nodes into the single value the library works with.
func (e *GamelistEntry) Genre() string {
	return strings.Join(e.Genres, ", ")
}

func (e *GamelistEntry) trim() {
	for _, field := range []*string{
		&e.ID, &e.Source, &e.Path, &e.Name, &e.Description, &e.Image, &e.Thumbnail,
		&e.Marquee, &e.Video, &e.Rating, &e.ReleaseDate, &e.Developer, &e.Publisher,
		&e.GenreID, &e.Players, &e.PlayCount, &e.LastPlayed, &e.SortName, &e.Region, &e.Lang,
		&e.MD5, &e.CRC32,
	} {
		*field = strings.TrimSpace(*field)
	}
	genres := e.Genres[:0]
	for _, g := range e.Genres {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	e.Genres = genres
}

func (f *GamelistFolder) trim() {
	f.Path = strings.TrimSpace(f.Path)
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	f.Image = strings.TrimSpace(f.Image)
}

// ParseGamelistFile reads and normalises a gamelist.xml file.
func ParseGamelistFile(path string) (*GamelistDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gamelist %s: %w", path, err)
	}
	defer f.Close()

	var doc GamelistDocument
	decoder := xml.NewDecoder(f)
	decoder.Strict = false
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode gamelist %s: %w", path, err)
	}
	for i := range doc.Games {
		doc.Games[i].trim()
	}
	for i := range doc.Folders {
		doc.Folders[i].trim()
	}
	if doc.Provider != nil && *doc.Provider == (ProviderInfo{}) {
		doc.Provider = nil
	}
	return &doc, nil
}

// WriteGamelistFile serialises doc to path, replacing any existing file.
func WriteGamelistFile(path string, doc *GamelistDocument) error {
	if doc == nil {
		return fmt.Errorf("gamelist document is nil")
	}
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("invalid gamelist output path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure gamelist dir %s: %w", path, err)
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode gamelist xml: %w", err)
	}
	buf := make([]byte, 0, len(xml.Header)+len(data)+1)
	buf = append(buf, xml.Header...)
	buf = append(buf, data...)
	buf = append(buf, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return fmt.Errorf("write gamelist %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace gamelist %s: %w", path, err)
	}
	return nil
}
