package metadata

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFileStore(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "reference.txt"), "eoir_form_26: Notice of Appeal\nuscis_form_i589: Asylum\n")
	writeFile(t, filepath.Join(dir, "EOIR", "eoir_form_26_meta.json"), `{"fields":[{"name":"1","label":"Name"}]}`)
	writeFile(t, filepath.Join(dir, "EOIR", "eoir_form_26.pdf"), "%PDF-1.4")
	writeFile(t, filepath.Join(dir, "all", "uscis_form_i589_meta.json"), `not json`)
	ctx := context.Background()
	s := NewFileStore(dir)

	c, err := s.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	fields, err := s.Fields(ctx, "eoir_form_26")
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "Name", fields[0].Label)

	fields, err = s.Fields(ctx, "uscis_form_i589")
	require.NoError(t, err)
	assert.Empty(t, fields)

	fields, err = s.Fields(ctx, "cbp_form_1300")
	require.NoError(t, err)
	assert.Empty(t, fields)

	_, err = s.Fields(ctx, "../secrets")
	assert.Error(t, err)

	path, ok := s.Template("eoir_form_26")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "EOIR", "eoir_form_26.pdf"), path)
	_, ok = s.Template("uscis_form_i589")
	assert.False(t, ok)
}

func TestFileStoreMissingReference(t *testing.T) {
	t.Parallel()
	s := NewFileStore(t.TempDir(), WithReferenceFile("/does/not/exist.txt"))
	c, err := s.Catalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}
