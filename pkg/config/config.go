// Package config provides YAML-based configuration loading with environment variable expansion.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// Load loads configuration from a YAML file into target. ${VAR} references
// are expanded from the environment before parsing, and keys that do not
// match a field of T are rejected. target is validated afterwards when it
// implements Validator.
func Load[T any](filename string, target *T) error {
	if err := decode(filename, target); err != nil {
		return err
	}
	return validate(target)
}

// LoadOptional behaves like Load but keeps target as is when filename does
// not exist. overrides run after decoding and before validation. It reports
// whether a file was read.
func LoadOptional[T any](filename string, target *T, overrides ...func(*T)) (bool, error) {
	found := true
	if err := decode(filename, target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return true, err
		}
		found = false
	}
	for _, o := range overrides {
		o(target)
	}
	return found, validate(target)
}

func decode[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	expanded := os.ExpandEnv(string(data))

	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	return nil
}

func validate(target any) error {
	if validator, ok := target.(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}
	return nil
}
