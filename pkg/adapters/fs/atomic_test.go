package fs

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	t.Run("Creates Parents", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "out", "images", "1.png")
		require.NoError(t, WriteFile(filename, []byte{0x89}))

		got, err := os.ReadFile(filename)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x89}, got)
	})

	t.Run("Replaces Existing Document", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "quiz.xml")
		require.NoError(t, os.WriteFile(filename, []byte("initial"), 0644))

		require.NoError(t, WriteFile(filename, []byte("<quiz/>")))
		got, err := os.ReadFile(filename)
		require.NoError(t, err)
		assert.Equal(t, "<quiz/>", string(got))
	})

	t.Run("Keeps Permissions", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("permission bits are not portable")
		}
		filename := filepath.Join(t.TempDir(), "quiz.tex")
		require.NoError(t, os.WriteFile(filename, []byte("a"), 0600))

		require.NoError(t, WriteFile(filename, []byte("b")))
		info, err := os.Stat(filename)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("Leaves No Temp Files", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, WriteFile(filepath.Join(dir, "a.tex"), []byte("a")))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.False(t, strings.HasPrefix(e.Name(), TempFilePrefix), "temp file left behind: %s", e.Name())
		}
	})

	t.Run("Atomic Write Needs Directory", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "missing", "quiz.tex")
		assert.Error(t, writeFileAtomic(filename, []byte("x")))
	})
}
