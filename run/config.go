// Package run loads configuration and runs logpipe as a standalone process
package run

import (
	"fmt"

	"github.com/relex/logpipe/pipeline"
	"github.com/relex/logpipe/sink"
	"github.com/relex/logpipe/util"
)

// Config defines the root of the logpipe config file
type Config struct {
	Pipeline pipeline.Config     `yaml:"pipeline"`
	Sinks    []sink.ConfigHolder `yaml:"sinks"`
}

// LoadConfigFile loads config from the path and verifies all sections
func LoadConfigFile(filepath string) (*Config, error) {
	cref := &Config{}
	if err := util.UnmarshalYamlFile(filepath, cref); err != nil {
		return nil, err
	}
	if err := cref.VerifyConfig(); err != nil {
		return nil, err
	}
	return cref, nil
}

// VerifyConfig verifies all sections
func (cfg *Config) VerifyConfig() error {
	if err := cfg.Pipeline.VerifyConfig(); err != nil {
		return fmt.Errorf("pipeline%s", err.Error())
	}
	if len(cfg.Sinks) == 0 {
		return fmt.Errorf("sinks: no sink defined")
	}
	for i, holder := range cfg.Sinks {
		if err := holder.Value.VerifyConfig(); err != nil {
			return fmt.Errorf("sinks[%d]%s", i, err.Error())
		}
	}
	return nil
}
