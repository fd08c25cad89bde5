package pipeline

import (
	"fmt"
	"runtime"

	"github.com/relex/logpipe/backup"
	"github.com/relex/logpipe/defs"
)

// Config defines the construction parameters of a Pipeline
type Config struct {
	Formatters        int            `yaml:"formatters"`        // number of formatter workers, 0 = hardware parallelism, minimum 2
	TaskQueueCapacity int            `yaml:"taskQueueCapacity"` // capacity of the sealed-buffer queue, 0 = defs.TaskQueueCapacity
	Backup            *backup.Config `yaml:"backup"`            // optional ERROR+ forwarding
}

// VerifyConfig verifies the configuration
func (cfg *Config) VerifyConfig() error {
	if cfg.Formatters < 0 {
		return fmt.Errorf(".formatters cannot be negative: %d", cfg.Formatters)
	}
	if cfg.TaskQueueCapacity < 0 {
		return fmt.Errorf(".taskQueueCapacity cannot be negative: %d", cfg.TaskQueueCapacity)
	}
	if cfg.Backup != nil {
		if err := cfg.Backup.VerifyConfig(); err != nil {
			return fmt.Errorf(".backup%s", err.Error())
		}
	}
	return nil
}

// numFormatters resolves the effective formatter count: configured value or hardware
// parallelism, never below 2
func (cfg *Config) numFormatters() int {
	count := cfg.Formatters
	if count == 0 {
		count = runtime.GOMAXPROCS(0)
	}
	if count < 2 {
		count = 2
	}
	return count
}

func (cfg *Config) taskQueueCapacity() int {
	if cfg.TaskQueueCapacity == 0 {
		return defs.TaskQueueCapacity
	}
	return cfg.TaskQueueCapacity
}
