package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Settings is the user-mutable collection state kept in settings.toml.
// Lists are comma separated to keep the file hand editable.
type Settings struct {
	CollectionSystemsAuto      string `toml:"collection_systems_auto"`
	CollectionSystemsCustom    string `toml:"collection_systems_custom"`
	UseCustomCollectionsSystem bool   `toml:"use_custom_collections_system"`
}

// DefaultSettings is used when no settings file exists yet.
func DefaultSettings() *Settings {
	return &Settings{UseCustomCollectionsSystem: true}
}

// AutoList splits CollectionSystemsAuto.
func (s *Settings) AutoList() []string { return SplitList(s.CollectionSystemsAuto) }

// CustomList splits CollectionSystemsCustom.
func (s *Settings) CustomList() []string { return SplitList(s.CollectionSystemsCustom) }

// SetLists joins auto and custom back into their comma separated form.
func (s *Settings) SetLists(auto, custom []string) {
	s.CollectionSystemsAuto = strings.Join(auto, ",")
	s.CollectionSystemsCustom = strings.Join(custom, ",")
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// ReadSettings decodes settings from r on top of the defaults.
func ReadSettings(r io.Reader) (*Settings, error) {
	s := DefaultSettings()
	if _, err := toml.NewDecoder(r).Decode(s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}

// WriteSettings encodes s to w.
func WriteSettings(w io.Writer, s *Settings) error {
	if err := toml.NewEncoder(w).Encode(s); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return nil
}

// LoadSettings reads the settings file, falling back to the defaults when
// it does not exist.
func LoadSettings(path string) (*Settings, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open settings %s: %w", path, err)
	}
	defer f.Close()
	s, err := ReadSettings(f)
	if err != nil {
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}
	return s, nil
}

// SaveSettings replaces the settings file with s.
func SaveSettings(path string, s *Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create settings file: %w", err)
	}
	if err := WriteSettings(f, s); err != nil {
		f.Close()
		return fmt.Errorf("write settings %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close settings %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace settings %s: %w", path, err)
	}
	return nil
}
