// Package backup forwards formatted ERROR+ records to a remote receiver over the fluentd Forward
// protocol, fire-and-forget
package backup

import (
	"fmt"

	"github.com/gobwas/glob"
	"github.com/relex/gotils/logger"
	"github.com/relex/logpipe/base"
	"github.com/relex/logpipe/defs"
)

// Config defines the configuration of the backup Forwarder
type Config struct {
	Address       string `yaml:"address"`       // host:port of the upstream Forward receiver
	Tag           string `yaml:"tag"`           // Forward message tag, default "logpipe.backup"
	Secret        string `yaml:"secret"`        // shared key for Forward handshake, empty to skip
	Workers       int    `yaml:"workers"`       // number of sender goroutines, default 1
	QueueCapacity int    `yaml:"queueCapacity"` // submit queue capacity, default defs.BackupQueueCapacity
	LoggerGlob    string `yaml:"loggerGlob"`    // optional glob on logger names; unmatched records are not forwarded
}

// VerifyConfig verifies the configuration
func (cfg *Config) VerifyConfig() error {
	if len(cfg.Address) == 0 {
		return fmt.Errorf(".address is unspecified")
	}
	if cfg.Workers < 0 {
		return fmt.Errorf(".workers cannot be negative: %d", cfg.Workers)
	}
	if cfg.QueueCapacity < 0 {
		return fmt.Errorf(".queueCapacity cannot be negative: %d", cfg.QueueCapacity)
	}
	if len(cfg.LoggerGlob) > 0 {
		if _, err := glob.Compile(cfg.LoggerGlob); err != nil {
			return fmt.Errorf(".loggerGlob: %w", err)
		}
	}
	return nil
}

// NewForwarder creates a Forwarder from the configuration; the caller launches and shuts it down
func (cfg *Config) NewForwarder(parentLogger logger.Logger, metricFactory *base.MetricFactory) (*Forwarder, error) {
	if err := cfg.VerifyConfig(); err != nil {
		return nil, err
	}

	var matcher glob.Glob
	if len(cfg.LoggerGlob) > 0 {
		matcher = glob.MustCompile(cfg.LoggerGlob)
	}

	tag := cfg.Tag
	if len(tag) == 0 {
		tag = "logpipe.backup"
	}
	numWorkers := cfg.Workers
	if numWorkers <= 0 {
		numWorkers = 1
	}
	queueCapacity := cfg.QueueCapacity
	if queueCapacity <= 0 {
		queueCapacity = defs.BackupQueueCapacity
	}

	return newForwarder(parentLogger, forwarderSettings{
		address:       cfg.Address,
		tag:           tag,
		secret:        cfg.Secret,
		numWorkers:    numWorkers,
		queueCapacity: queueCapacity,
		matcher:       matcher,
	}, metricFactory), nil
}
