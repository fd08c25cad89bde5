package sink

import (
	"fmt"

	"github.com/relex/gotils/logger"
	"github.com/relex/logpipe/base"
	"gopkg.in/yaml.v3"
)

// Config provides an interface for the configuration of Sink(s)
//
// All the implementations should support YAML unmarshalling
type Config interface {
	// GetType returns the type name used in config files
	GetType() string

	// NewSink creates the configured sink
	NewSink(parentLogger logger.Logger, metricFactory *base.MetricFactory) (base.Sink, error)

	// VerifyConfig verifies the configuration
	VerifyConfig() error
}

// Header defines the common part of sink config implementations
type Header struct {
	Type string `yaml:"type"`
}

// GetType returns the type name
func (header *Header) GetType() string {
	return header.Type
}

var configConstructors = map[string]func() Config{
	"stdout": func() Config { return &StdoutSinkConfig{} },
	"file":   func() Config { return &FileSinkConfig{} },
	"memory": func() Config { return &MemorySinkConfig{} },
}

// ConfigHolder holds an interface to the actual sink Config to support YAML unmarshalling
type ConfigHolder struct {
	Value Config
}

// MarshalYAML provides custom marshalling to export a readable document
func (holder ConfigHolder) MarshalYAML() (interface{}, error) {
	return holder.Value, nil
}

// UnmarshalYAML provides custom unmarshalling dispatched on the "type" property
func (holder *ConfigHolder) UnmarshalYAML(value *yaml.Node) error {
	if len(value.Content) < 2 || value.Content[0].Kind != yaml.ScalarNode || value.Content[0].Value != "type" {
		return fmt.Errorf("yaml line %d: sink .type is not the first property", value.Line)
	}
	typeName := value.Content[1].Value
	createFunc, found := configConstructors[typeName]
	if !found {
		return fmt.Errorf("yaml line %d: unsupported sink type '%s'", value.Line, typeName)
	}
	config := createFunc()
	if err := value.Decode(config); err != nil {
		return err
	}
	holder.Value = config
	return nil
}
