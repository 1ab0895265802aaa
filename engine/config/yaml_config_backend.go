package config

import (
	"bytes"
	"errors"
	"io"

	"gopkg.in/yaml.v3"
)

type yamlConfigBackend struct{}

var _ configBackend = &yamlConfigBackend{}

func newYAMLConfigBackend() configBackend {
	return &yamlConfigBackend{}
}

func (b *yamlConfigBackend) Decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (b *yamlConfigBackend) Encode(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
