package search

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/xxxsen/retrolib/internal/catalog"
)

type titleDoc struct {
	Name      string `json:"name"`
	Genre     string `json:"genre"`
	Publisher string `json:"publisher"`
	Developer string `json:"developer"`
	System    string `json:"system"`
}

// TitleIndex is an in-memory full-text index over game titles and a few
// descriptive fields. Documents are keyed by game path.
type TitleIndex struct {
	index bleve.Index
	games map[string]*catalog.FileData
}

func NewTitleIndex() (*TitleIndex, error) {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create title index: %w", err)
	}
	return &TitleIndex{index: index, games: make(map[string]*catalog.FileData)}, nil
}

// IndexGames adds or replaces games in one batch.
func (t *TitleIndex) IndexGames(games []*catalog.FileData) error {
	batch := t.index.NewBatch()
	for _, g := range games {
		md := g.Metadata()
		doc := titleDoc{
			Name:      g.Name(),
			Genre:     md.Get(catalog.MetaGenre),
			Publisher: md.Get(catalog.MetaPublisher),
			Developer: md.Get(catalog.MetaDeveloper),
			System:    g.Source().SystemName(),
		}
		if err := batch.Index(g.Path(), doc); err != nil {
			return fmt.Errorf("index game %s: %w", g.Path(), err)
		}
		t.games[g.Path()] = g
	}
	return t.index.Batch(batch)
}

// Count is the number of indexed games.
func (t *TitleIndex) Count() (int, error) {
	c, err := t.index.DocCount()
	return int(c), err
}

// Search returns the best matching games. Plain text is matched fuzzily
// against every field; input containing a colon is read as a bleve query
// string, e.g. "genre:racing".
func (t *TitleIndex) Search(input string, limit int) ([]*catalog.FileData, error) {
	if limit <= 0 {
		limit = 20
	}
	input = strings.TrimSpace(input)
	var q bleveQuery.Query
	switch {
	case input == "":
		q = bleve.NewMatchAllQuery()
	case strings.Contains(input, ":"):
		q = bleve.NewQueryStringQuery(input)
	default:
		mq := bleve.NewMatchQuery(input)
		mq.SetFuzziness(1)
		q = mq
	}
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	res, err := t.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search titles %q: %w", input, err)
	}
	out := make([]*catalog.FileData, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if g, ok := t.games[hit.ID]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (t *TitleIndex) Close() error {
	return t.index.Close()
}
