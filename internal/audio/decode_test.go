package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtOf(t *testing.T) {
	assert.Equal(t, ".wav", extOf("song.wav"))
	assert.Equal(t, ".mp3", extOf("/a/b/c.mp3"))
	assert.Equal(t, "", extOf("noext"))
}

func TestDecodeFileRejectsUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.ogg")
	require.NoError(t, os.WriteFile(path, []byte("not audio"), 0o644))

	_, err := DecodeFile(path)
	assert.ErrorContains(t, err, "unsupported file extension")
}

func TestDecodeFileRejectsMissingFile(t *testing.T) {
	_, err := DecodeFile("/nonexistent/path/song.wav")
	assert.Error(t, err)
}
