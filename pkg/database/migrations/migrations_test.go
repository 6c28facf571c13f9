package migrations

import (
	"io/fs"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_ContainsSessionTable(t *testing.T) {
	files, err := fs.ReadDir(FS, ".")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "00001_evex_sessions.sql", files[0].Name())
}

func TestFS_GooseCollects(t *testing.T) {
	goose.SetBaseFS(FS)
	t.Cleanup(func() { goose.SetBaseFS(nil) })

	found, err := goose.CollectMigrations(".", 0, goose.MaxVersion)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.EqualValues(t, 1, found[0].Version)
}
