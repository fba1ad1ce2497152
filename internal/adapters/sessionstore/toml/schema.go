package toml

import "fmt"

const currentSchemaVersion = 1

// fileSchema is the persisted session layout: both tokens as plain strings
// and the identity as a JSON-serialized record under "user".
type fileSchema struct {
	Version      int    `toml:"version"`
	AccessToken  string `toml:"access_token,omitempty"`
	RefreshToken string `toml:"refresh_token,omitempty"`
	User         string `toml:"user,omitempty"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported session schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}
