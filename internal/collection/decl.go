package collection

import (
	"fmt"
)

// Type is the kind of a collection declaration.
type Type int

const (
	AutoAllGames Type = iota
	AutoLastPlayed
	AutoFavorites
	CustomCollection
)

func (t Type) String() string {
	switch t {
	case AutoAllGames:
		return "all_games"
	case AutoLastPlayed:
		return "last_played"
	case AutoFavorites:
		return "favorites"
	case CustomCollection:
		return "custom"
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// Names of the built-in declarations.
const (
	NameAllGames   = "all"
	NameLastPlayed = "recent"
	NameFavorites  = "favorites"
	NameCustom     = "collections"
)

// Decl is the immutable template of a collection kind.
type Decl struct {
	Type        Type
	Name        string
	LongName    string
	DefaultSort string
	ThemeFolder string
	IsCustom    bool
}

// ForCustom derives the declaration of one user collection from the custom template.
func (d Decl) ForCustom(name string) Decl {
	d.Name = name
	d.LongName = name
	d.ThemeFolder = name
	return d
}

var decls = []Decl{
	{Type: AutoAllGames, Name: NameAllGames, LongName: "all games", DefaultSort: "filename, ascending", ThemeFolder: "auto-allgames"},
	{Type: AutoLastPlayed, Name: NameLastPlayed, LongName: "last played", DefaultSort: "last played, descending", ThemeFolder: "auto-lastplayed"},
	{Type: AutoFavorites, Name: NameFavorites, LongName: "favorites", DefaultSort: "filename, ascending", ThemeFolder: "auto-favorites"},
	{Type: CustomCollection, Name: NameCustom, LongName: "collections", DefaultSort: "filename, ascending", ThemeFolder: "custom-collections", IsCustom: true},
}

// Lookup finds a built-in declaration by name.
func Lookup(name string) (Decl, bool) {
	for _, d := range decls {
		if d.Name == name {
			return d, true
		}
	}
	return Decl{}, false
}

// MustLookup is Lookup for names the caller controls; an unknown name panics.
func MustLookup(name string) Decl {
	d, ok := Lookup(name)
	if !ok {
		panic(fmt.Sprintf("collection: no declaration named %q", name))
	}
	return d
}

// Decls lists the built-in declarations whose custom flag equals custom.
func Decls(custom bool) []Decl {
	out := make([]Decl, 0, len(decls))
	for _, d := range decls {
		if d.IsCustom == custom {
			out = append(out, d)
		}
	}
	return out
}

// ThemeFolders lists the theme folders claimed by declarations of the given class.
func ThemeFolders(custom bool) []string {
	ds := Decls(custom)
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.ThemeFolder)
	}
	return out
}
