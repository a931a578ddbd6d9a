package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRoot(t *testing.T) {
	// base/
	//   course/ (.qtex)
	//     week1/
	//       exam.tex
	//   other/ (qtex.yml)
	//     exams/
	//   empty/
	base := t.TempDir()
	course := filepath.Join(base, "course")
	week := filepath.Join(course, "week1")
	other := filepath.Join(base, "other")
	exams := filepath.Join(other, "exams")
	empty := filepath.Join(base, "empty")

	for _, dir := range []string{week, exams, empty} {
		require.NoError(t, os.MkdirAll(dir, 0755))
	}
	require.NoError(t, os.Mkdir(filepath.Join(course, ".qtex"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(other, "qtex.yml"), []byte("render_engine: tex\n"), 0644))
	doc := filepath.Join(week, "exam.tex")
	require.NoError(t, os.WriteFile(doc, []byte(`\question{Q}`), 0644))

	tests := []struct {
		name  string
		start string
		want  string
	}{
		{"Start at Root", course, course},
		{"Start in Subdir", week, course},
		{"Start at Document", doc, course},
		{"Config File Marker", exams, other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindRoot(tt.start)
			require.NoError(t, err)
			assert.Equal(t, filepath.Clean(tt.want), filepath.Clean(got))
		})
	}

	t.Run("No Root Found", func(t *testing.T) {
		if _, err := FindRoot(filepath.Dir(base)); err == nil {
			t.Skip("temp directory sits inside a qtex project")
		}
		_, err := FindRoot(empty)
		assert.ErrorIs(t, err, ErrNoRoot)
	})
}
