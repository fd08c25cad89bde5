package run

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/relex/gotils/logger"
	"github.com/relex/logpipe/base"
	"github.com/relex/logpipe/format"
	"github.com/relex/logpipe/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, contents string) string {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.Nil(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadSampleConfigFile(t *testing.T) {
	config, err := LoadConfigFile("../testdata/config_sample.yml")
	require.Nil(t, err)
	assert.Equal(t, 4, config.Pipeline.Formatters)
	assert.Equal(t, 64, config.Pipeline.TaskQueueCapacity)
	require.Equal(t, 2, len(config.Sinks))

	fileConfig, ok := config.Sinks[0].Value.(*sink.FileSinkConfig)
	require.True(t, ok)
	assert.Equal(t, "/tmp/logpipe/app.log", fileConfig.Path)
	assert.Equal(t, 64*datasize.MB, fileConfig.MaxSize)
	assert.Equal(t, 24, fileConfig.RotateHours)
	assert.True(t, fileConfig.Compress)
	assert.Equal(t, "stdout", config.Sinks[1].Value.GetType())
}

func TestLoadConfigFileErrors(t *testing.T) {
	_, err := LoadConfigFile(writeTestConfig(t, `
pipeline:
  formatters: 2
sinks: []
`))
	assert.EqualError(t, err, "sinks: no sink defined")

	_, err = LoadConfigFile(writeTestConfig(t, `
pipeline:
  formatters: -2
sinks:
  - type: stdout
`))
	assert.EqualError(t, err, "pipeline.formatters cannot be negative: -2")

	_, err = LoadConfigFile(writeTestConfig(t, `
pipeline: {}
sinks:
  - type: file
`))
	assert.EqualError(t, err, "sinks[0].path is unspecified")

	_, err = LoadConfigFile(writeTestConfig(t, `
pipeline: {}
sinks:
  - type: syslog
`))
	assert.NotNil(t, err)
}

func TestLoaderStartPipeline(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "out.log")
	loader, lerr := NewLoaderFromConfigFile(writeTestConfig(t, `
pipeline:
  formatters: 2
sinks:
  - type: file
    path: `+logPath+`
`), "testloaderstart_")
	require.Nil(t, lerr)

	pipe, sinks, serr := loader.StartPipeline(logger.Root())
	require.Nil(t, serr)
	require.Equal(t, 1, len(sinks))

	pipe.Push(&base.Record{
		Level:     base.LevelInfo,
		Timestamp: 0,
		ThreadTag: "g1",
		Logger:    "loader",
		File:      "l.go",
		Line:      1,
		Payload:   "through the config file",
	})
	pipe.Stop()
	for _, s := range sinks {
		require.Nil(t, s.Close())
	}

	content, rerr := os.ReadFile(logPath)
	require.Nil(t, rerr)
	lines := format.SplitLines(content)
	require.Equal(t, 1, len(lines))
	parsed, perr := format.ParseLine(lines[0])
	require.Nil(t, perr)
	assert.Equal(t, "through the config file", parsed.Payload)
}
