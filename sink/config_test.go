package sink

import (
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfigHolderDispatch(t *testing.T) {
	doc := `
- type: stdout
- type: file
  path: /tmp/app.log
  maxSize: 64MB
  compress: true
- type: memory
`
	var holders []ConfigHolder
	require.Nil(t, yaml.Unmarshal([]byte(doc), &holders))
	require.Equal(t, 3, len(holders))

	assert.Equal(t, "stdout", holders[0].Value.GetType())

	fileConfig, ok := holders[1].Value.(*FileSinkConfig)
	require.True(t, ok)
	assert.Equal(t, "/tmp/app.log", fileConfig.Path)
	assert.Equal(t, 64*datasize.MB, fileConfig.MaxSize)
	assert.True(t, fileConfig.Compress)

	assert.Equal(t, "memory", holders[2].Value.GetType())
}

func TestConfigHolderErrors(t *testing.T) {
	var holder ConfigHolder
	assert.NotNil(t, yaml.Unmarshal([]byte(`type: carrier-pigeon`), &holder))
	assert.NotNil(t, yaml.Unmarshal([]byte(`path: /tmp/x`), &holder))
}
