// Package config loads and stores motor settings as JSON. Fields left
// out of the document get defaults, so a minimal config like
// {"frequency": 25000} is valid.
package config

import (
	"encoding/json"
	"os"

	"motordrive/core"
)

// Load parses a JSON settings document and validates the result.
// Decoding starts from the factory defaults, so only keys absent from
// the document default. A present zero stays zero (duty 0%, LED
// brightness 0 for a dark LED) and a zero where zero is out of range
// fails validation like any other bad value.
func Load(jsonData []byte) (*core.Settings, error) {
	s := core.DefaultSettings()

	if err := json.Unmarshal(jsonData, &s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Marshal serializes settings as indented JSON suitable for a config
// file.
func Marshal(s *core.Settings) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// LoadFile reads settings from path. A missing file is not an error:
// it returns the factory defaults, matching first-boot behavior.
func LoadFile(path string) (*core.Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s := core.DefaultSettings()
		return &s, nil
	}
	if err != nil {
		return nil, err
	}
	return Load(data)
}

// SaveFile writes settings to path as indented JSON.
func SaveFile(path string, s *core.Settings) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Store persists settings at a fixed path. It satisfies the settings
// store interface the command dispatcher expects.
type Store struct {
	Path string
}

func (st *Store) Load() (*core.Settings, error) {
	return LoadFile(st.Path)
}

func (st *Store) Save(s *core.Settings) error {
	return SaveFile(st.Path, s)
}
