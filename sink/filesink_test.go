package sink

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/klauspost/compress/gzip"
	"github.com/relex/gotils/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSinkWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	fsink, err := NewFileSink(logger.Root(), &FileSinkConfig{Path: path})
	require.Nil(t, err)

	assert.Nil(t, fsink.Write([]byte("first\n")))
	assert.Nil(t, fsink.Write([]byte("second\n")))
	assert.Nil(t, fsink.Close())

	content, rerr := os.ReadFile(path)
	assert.Nil(t, rerr)
	assert.Equal(t, "first\nsecond\n", string(content))
}

func TestFileSinkAppendsToExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.Nil(t, os.WriteFile(path, []byte("old\n"), 0o644))

	fsink, err := NewFileSink(logger.Root(), &FileSinkConfig{Path: path})
	require.Nil(t, err)
	assert.Nil(t, fsink.Write([]byte("new\n")))
	assert.Nil(t, fsink.Close())

	content, _ := os.ReadFile(path)
	assert.Equal(t, "old\nnew\n", string(content))
}

func TestFileSinkRotationBySize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	fsink, err := NewFileSink(logger.Root(), &FileSinkConfig{Path: path, MaxSize: 10 * datasize.B})
	require.Nil(t, err)

	assert.Nil(t, fsink.Write([]byte("0123456789\n"))) // fills beyond the limit
	assert.Nil(t, fsink.Write([]byte("next\n")))       // must land in a fresh file
	assert.Nil(t, fsink.Close())

	content, _ := os.ReadFile(path)
	assert.Equal(t, "next\n", string(content))

	entries, _ := os.ReadDir(dir)
	rotated := make([]string, 0, 1)
	for _, entry := range entries {
		if entry.Name() != "app.log" {
			rotated = append(rotated, entry.Name())
		}
	}
	require.Equal(t, 1, len(rotated))
	rotatedContent, _ := os.ReadFile(filepath.Join(dir, rotated[0]))
	assert.Equal(t, "0123456789\n", string(rotatedContent))
}

func TestFileSinkCompressedRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	fsink, err := NewFileSink(logger.Root(), &FileSinkConfig{Path: path, MaxSize: 4 * datasize.B, Compress: true})
	require.Nil(t, err)

	assert.Nil(t, fsink.Write([]byte("aaaaa\n")))
	assert.Nil(t, fsink.Write([]byte("b\n")))
	assert.Nil(t, fsink.Close()) // waits for background compression

	entries, _ := os.ReadDir(dir)
	var gzName string
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".gz" {
			gzName = entry.Name()
		}
	}
	require.NotEmpty(t, gzName, "compressed rotation missing")

	fd, oerr := os.Open(filepath.Join(dir, gzName))
	require.Nil(t, oerr)
	defer fd.Close()
	unzipper, zerr := gzip.NewReader(fd)
	require.Nil(t, zerr)
	original := &bytes.Buffer{}
	_, cerr := io.Copy(original, unzipper)
	assert.Nil(t, cerr)
	assert.Equal(t, "aaaaa\n", original.String())
}

func TestFileSinkConfigErrors(t *testing.T) {
	assert.EqualError(t, (&FileSinkConfig{}).VerifyConfig(), ".path is unspecified")
	assert.NotNil(t, (&FileSinkConfig{Path: "x", RotateHours: -1}).VerifyConfig())
}
