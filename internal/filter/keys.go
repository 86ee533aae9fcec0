package filter

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/retrolib/internal/catalog"
)

// Type selects a filter dimension.
type Type int

const (
	None Type = iota
	Genre
	Players
	PubDev
	Rating
)

// UnknownLabel is the key assigned to games with no usable value for a dimension.
const UnknownLabel = "UNKNOWN"

func (t Type) String() string {
	switch t {
	case Genre:
		return "genre"
	case Players:
		return "players"
	case PubDev:
		return "pubdev"
	case Rating:
		return "rating"
	}
	return "none"
}

// ParseType maps a dimension name back to its Type.
func ParseType(name string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "genre":
		return Genre, nil
	case "players":
		return Players, nil
	case "pubdev", "publisher", "developer":
		return PubDev, nil
	case "rating", "ratings":
		return Rating, nil
	case "none", "":
		return None, nil
	}
	return None, fmt.Errorf("unknown filter dimension %q", name)
}

type dimension struct {
	typ          Type
	label        string
	primaryKey   string
	secondaryKey string
	hasSecondary bool
	derive       func(md *catalog.MetaData, secondary bool) string
}

// dimensions is kept in evaluation order for visibility checks: cheap,
// discriminating dimensions first.
var dimensions = []dimension{
	{typ: Players, label: "PLAYERS", primaryKey: catalog.MetaPlayers, derive: playersKey},
	{typ: Rating, label: "RATING", primaryKey: catalog.MetaRating, derive: ratingKey},
	{typ: Genre, label: "GENRE", primaryKey: catalog.MetaGenre, secondaryKey: catalog.MetaGenre, hasSecondary: true, derive: genreKey},
	{typ: PubDev, label: "PUBLISHER / DEVELOPER", primaryKey: catalog.MetaPublisher, secondaryKey: catalog.MetaDeveloper, hasSecondary: true, derive: pubDevKey},
}

// declOrder is the order dimensions are presented in.
var declOrder = []Type{Genre, Players, PubDev, Rating}

func lookupDimension(t Type) (dimension, bool) {
	for _, d := range dimensions {
		if d.typ == t {
			return d, true
		}
	}
	return dimension{}, false
}

// DeriveKey computes the index key of game for dimension t. Dimensions
// without a secondary key return UnknownLabel when asked for one.
func DeriveKey(game *catalog.FileData, t Type, secondary bool) string {
	d, ok := lookupDimension(t)
	if !ok {
		panic(fmt.Sprintf("filter: no dimension for type %d", t))
	}
	return d.derive(game.Metadata(), secondary)
}

func normalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" || strings.EqualFold(key, UnknownLabel) {
		return UnknownLabel
	}
	return key
}

func upperTrim(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}

func genreKey(md *catalog.MetaData, secondary bool) string {
	key := upperTrim(md.Get(catalog.MetaGenre))
	if key == "BIOS" {
		return UnknownLabel
	}
	if !secondary {
		return normalizeKey(key)
	}
	head, _, found := strings.Cut(key, "/")
	head = strings.TrimSpace(head)
	if !found || head == "" || head == key {
		return UnknownLabel
	}
	return normalizeKey(head)
}

func playersKey(md *catalog.MetaData, secondary bool) string {
	if secondary {
		return UnknownLabel
	}
	return normalizeKey(md.Get(catalog.MetaPlayers))
}

func pubDevKey(md *catalog.MetaData, secondary bool) string {
	pub := upperTrim(md.Get(catalog.MetaPublisher))
	dev := upperTrim(md.Get(catalog.MetaDeveloper))
	if pub == UnknownLabel {
		pub = ""
	}
	if dev == UnknownLabel {
		dev = ""
	}
	if !secondary {
		if pub != "" {
			return pub
		}
		return normalizeKey(dev)
	}
	// with no publisher the developer already served as primary
	if pub == "" || dev == pub {
		return UnknownLabel
	}
	return normalizeKey(dev)
}

func ratingKey(md *catalog.MetaData, secondary bool) string {
	if secondary {
		return UnknownLabel
	}
	raw := strings.TrimSpace(md.Get(catalog.MetaRating))
	if raw == "" {
		return UnknownLabel
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logutil.GetLogger(context.Background()).Error("parse rating failed, treat as unknown",
			zap.String("rating", raw), zap.String("game", md.Get(catalog.MetaName)), zap.Error(err))
		return UnknownLabel
	}
	stars := int(v*5 + 0.5)
	if stars <= 0 {
		return UnknownLabel
	}
	if stars > 5 {
		stars = 5
	}
	return fmt.Sprintf("%d STARS", stars)
}

// ratingValue accepts a bare star count ("3") as a rating selection.
func ratingValue(v string) string {
	if n, err := strconv.Atoi(v); err == nil {
		return fmt.Sprintf("%d STARS", n)
	}
	return v
}
