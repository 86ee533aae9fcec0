package catalog

import (
	"sort"
	"strconv"
	"strings"
)

// Metadata keys understood by the library. They mirror the element names of gamelist.xml.
const (
	MetaName        = "name"
	MetaDesc        = "desc"
	MetaGenre       = "genre"
	MetaPlayers     = "players"
	MetaPublisher   = "publisher"
	MetaDeveloper   = "developer"
	MetaRating      = "rating"
	MetaReleaseDate = "releasedate"
	MetaFavorite    = "favorite"
	MetaHidden      = "hidden"
	MetaKidGame     = "kidgame"
	MetaPlayCount   = "playcount"
	MetaLastPlayed  = "lastplayed"
)

var metaDefaults = map[string]string{
	MetaGenre:     "unknown",
	MetaPlayers:   "1",
	MetaPublisher: "unknown",
	MetaDeveloper: "unknown",
	MetaRating:    "0",
	MetaFavorite:  "false",
	MetaHidden:    "false",
	MetaKidGame:   "false",
	MetaPlayCount: "0",
}

// MetaData is the key/value record attached to a real game. Writes flip the
// changed flag so persistence can skip untouched entries.
type MetaData struct {
	values  map[string]string
	changed bool
}

// NewMetaData creates an empty record; unset keys read as their defaults.
func NewMetaData() *MetaData {
	return &MetaData{values: make(map[string]string)}
}

// Get returns the value for key, or its default when unset.
func (m *MetaData) Get(key string) string {
	if v, ok := m.values[key]; ok {
		return v
	}
	return metaDefaults[key]
}

// Set stores value under key. Setting the current value is a no-op.
func (m *MetaData) Set(key, value string) {
	if m.Get(key) == value {
		return
	}
	m.values[key] = value
	m.changed = true
}

// GetInt parses key as an integer, returning 0 when it is not a number.
func (m *MetaData) GetInt(key string) int {
	v, err := strconv.Atoi(strings.TrimSpace(m.Get(key)))
	if err != nil {
		return 0
	}
	return v
}

// GetFloat parses key as a float, returning 0 when it is not a number.
func (m *MetaData) GetFloat(key string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(m.Get(key)), 64)
	if err != nil {
		return 0
	}
	return v
}

// GetBool reports whether key holds "true".
func (m *MetaData) GetBool(key string) bool {
	return strings.EqualFold(strings.TrimSpace(m.Get(key)), "true")
}

func (m *MetaData) WasChanged() bool { return m.changed }

func (m *MetaData) ResetChanged() { m.changed = false }

// Keys lists the explicitly stored keys in sorted order.
func (m *MetaData) Keys() []string {
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
