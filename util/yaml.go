package util

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// UnmarshalYamlFile unmarshals the given YAML file into out, rejecting unknown fields
func UnmarshalYamlFile(filepath string, out interface{}) error {
	content, rerr := os.ReadFile(filepath)
	if rerr != nil {
		return rerr
	}
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath, err)
	}
	return nil
}
