package model

// PlayRecord is one launch of a game kept in the history store.
type PlayRecord struct {
	ID        int64  `json:"id"`
	SessionID string `json:"session_id"`
	Path      string `json:"path"`
	System    string `json:"system"`
	Name      string `json:"name"`
	PlayCount int    `json:"play_count"`
	PlayedAt  int64  `json:"played_at"`
}

type GameItem struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	System string `json:"system"`
}

type CollectionState struct {
	Name      string `json:"name"`
	LongName  string `json:"long_name"`
	Custom    bool   `json:"custom"`
	Enabled   bool   `json:"enabled"`
	Populated bool   `json:"populated"`
	Bundled   bool   `json:"bundled,omitempty"`
	Games     int    `json:"games"`
}

type CollectionReport struct {
	Auto         []CollectionState `json:"auto"`
	Custom       []CollectionState `json:"custom"`
	BundleCustom bool              `json:"bundle_custom"`
	Editing      string            `json:"editing,omitempty"`
}

type FilterDecl struct {
	Type      string         `json:"type"`
	Label     string         `json:"label"`
	Filtered  bool           `json:"filtered"`
	Keys      map[string]int `json:"keys"`
	Selected  []string       `json:"selected,omitempty"`
	Secondary string         `json:"secondary,omitempty"`
}

type FilterResult struct {
	System   string       `json:"system"`
	Filtered bool         `json:"filtered"`
	Total    int          `json:"total"`
	Visible  int          `json:"visible"`
	Games    []GameItem   `json:"games,omitempty"`
	Decls    []FilterDecl `json:"decls,omitempty"`
}

type IndexSummary struct {
	System string                    `json:"system"`
	Games  int                       `json:"games"`
	Keys   map[string]map[string]int `json:"keys"`
}

// ToggleResult reports the membership of a game after a toggle.
type ToggleResult struct {
	Game       GameItem `json:"game"`
	Collection string   `json:"collection"`
	Member     bool     `json:"member"`
	Changed    bool     `json:"changed"`
}

type TransferReport struct {
	Bucket string   `json:"bucket,omitempty"`
	Prefix string   `json:"prefix,omitempty"`
	Files  []string `json:"files"`
}
