package catalog

import (
	"sort"
	"strconv"
	"strings"

	"github.com/mozillazg/go-pinyin"
)

// SortType is a named ordering of catalog children.
type SortType struct {
	Description string
	Ascending   bool
	less        func(a, b *FileData) bool
}

var pinyinArgs = func() pinyin.Args {
	a := pinyin.NewArgs()
	a.Fallback = func(r rune, _ pinyin.Args) []string {
		return []string{string(r)}
	}
	return a
}()

// SortKey folds a display name into a comparable key. Han characters are
// spelled out in pinyin so CJK titles interleave with latin ones.
func SortKey(name string) string {
	return strings.ToLower(strings.Join(pinyin.LazyPinyin(name, pinyinArgs), ""))
}

func compareName(a, b *FileData) bool {
	ka, kb := SortKey(a.Name()), SortKey(b.Name())
	if ka != kb {
		return ka < kb
	}
	return a.Path() < b.Path()
}

func compareMetaString(key string) func(a, b *FileData) bool {
	return func(a, b *FileData) bool {
		va := strings.ToLower(a.Metadata().Get(key))
		vb := strings.ToLower(b.Metadata().Get(key))
		if va != vb {
			return va < vb
		}
		return compareName(a, b)
	}
}

func compareMetaFloat(key string) func(a, b *FileData) bool {
	return func(a, b *FileData) bool {
		va, vb := a.Metadata().GetFloat(key), b.Metadata().GetFloat(key)
		if va != vb {
			return va < vb
		}
		return compareName(a, b)
	}
}

func compareMetaInt(key string) func(a, b *FileData) bool {
	return func(a, b *FileData) bool {
		va, vb := a.Metadata().GetInt(key), b.Metadata().GetInt(key)
		if va != vb {
			return va < vb
		}
		return compareName(a, b)
	}
}

// players holds values such as "1-4"; the upper bound orders them.
func compareNumPlayers(a, b *FileData) bool {
	va, vb := maxPlayers(a.Metadata().Get(MetaPlayers)), maxPlayers(b.Metadata().Get(MetaPlayers))
	if va != vb {
		return va < vb
	}
	return compareName(a, b)
}

func maxPlayers(v string) int {
	v = strings.TrimSpace(v)
	if idx := strings.LastIndex(v, "-"); idx >= 0 {
		v = v[idx+1:]
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return n
}

func compareSystem(a, b *FileData) bool {
	sa, sb := a.Source().SystemName(), b.Source().SystemName()
	if sa != sb {
		return sa < sb
	}
	return compareName(a, b)
}

func sortPair(desc string, less func(a, b *FileData) bool) []SortType {
	return []SortType{
		{Description: desc + ", ascending", Ascending: true, less: less},
		{Description: desc + ", descending", Ascending: false, less: less},
	}
}

// SortTypes lists every supported ordering. The first entry is the default.
var SortTypes = func() []SortType {
	var out []SortType
	out = append(out, sortPair("filename", compareName)...)
	out = append(out, sortPair("rating", compareMetaFloat(MetaRating))...)
	out = append(out, sortPair("times played", compareMetaInt(MetaPlayCount))...)
	out = append(out, sortPair("last played", compareMetaString(MetaLastPlayed))...)
	out = append(out, sortPair("number players", compareNumPlayers)...)
	out = append(out, sortPair("release date", compareMetaString(MetaReleaseDate))...)
	out = append(out, sortPair("genre", compareMetaString(MetaGenre))...)
	out = append(out, sortPair("developer", compareMetaString(MetaDeveloper))...)
	out = append(out, sortPair("publisher", compareMetaString(MetaPublisher))...)
	out = append(out, sortPair("system", compareSystem)...)
	return out
}()

// SortTypeFromString resolves a description such as "last played, descending",
// falling back to the default ordering for unknown input.
func SortTypeFromString(desc string) SortType {
	desc = strings.ToLower(strings.TrimSpace(desc))
	for _, st := range SortTypes {
		if st.Description == desc {
			return st
		}
	}
	return SortTypes[0]
}

// Sort orders the children of f, and of every folder below it, by st.
func (f *FileData) Sort(st SortType) {
	sort.SliceStable(f.children, func(i, j int) bool {
		if st.Ascending {
			return st.less(f.children[i], f.children[j])
		}
		return st.less(f.children[j], f.children[i])
	})
	for _, c := range f.children {
		if len(c.children) > 0 {
			c.Sort(st)
		}
	}
}
