package config

import (
	"bytes"

	"github.com/pelletier/go-toml/v2"
)

type tomlConfigBackend struct{}

var _ configBackend = &tomlConfigBackend{}

func newTOMLConfigBackend() configBackend {
	return &tomlConfigBackend{}
}

func (b *tomlConfigBackend) Decode(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}

func (b *tomlConfigBackend) Encode(cfg *Config) ([]byte, error) {
	return toml.Marshal(cfg)
}
