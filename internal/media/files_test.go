package media

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsVideoFile(t *testing.T) {
	assert.True(t, IsVideoFile("clip.MP4"))
	assert.True(t, IsVideoFile("/a/b/clip.webm"))
	assert.False(t, IsVideoFile("notes.txt"))
	assert.False(t, IsVideoFile("mp4"))
}

func TestListVideos(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"b.mov", "a.mp4", "readme.md", "nested/c.mkv"} {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}

	flat, err := ListVideos(root, false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a.mp4"), filepath.Join(root, "b.mov")}, flat)

	deep, err := ListVideos(root, true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.mp4"),
		filepath.Join(root, "b.mov"),
		filepath.Join(root, "nested", "c.mkv"),
	}, deep)

	_, err = ListVideos(filepath.Join(root, "missing"), false)
	assert.Error(t, err)
}
