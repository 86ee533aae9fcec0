package constant

const (
	DefaultGamelistFile = "gamelist.xml"

	CustomCollectionPrefix = "custom-"
	CustomCollectionSuffix = ".cfg"

	DefaultSettingsFile  = "settings.toml"
	DefaultHistoryDBFile = "history.db"
	DefaultCollectionDir = ".collections"

	// LastPlayedLayout is the timestamp layout used by the lastplayed field of gamelist.xml.
	LastPlayedLayout = "20060102T150405"
)
