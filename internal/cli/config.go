package cli

import (
	"github.com/xxxsen/retrolib/internal/config"
)

var defaultKeyList = []string{
	"./config.json",
	"/etc/retrolib.json",
}

func LoadConfig(explicit string) (*config.Config, error) {
	keyLists := append([]string{explicit}, defaultKeyList...)
	return config.LoadFirst(keyLists...)
}
