package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMigrations(t *testing.T) {
	dir := fstest.MapFS{
		"migrations/000002_add_index.up.sql":        {Data: []byte("CREATE INDEX ...")},
		"migrations/000001_create_ledgers.up.sql":   {Data: []byte("CREATE TABLE ...")},
		"migrations/000001_create_ledgers.down.sql": {Data: []byte("DROP TABLE ...")},
		"migrations/README.md":                      {Data: []byte("docs")},
	}

	names, err := ListMigrations(dir, "migrations")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"000001_create_ledgers.up.sql",
		"000002_add_index.up.sql",
	}, names)
}

func TestListMigrations_MissingDir(t *testing.T) {
	_, err := ListMigrations(fstest.MapFS{}, "missing")
	assert.Error(t, err)
}

func TestIsUpMigration(t *testing.T) {
	assert.True(t, isUpMigration("000001_create_ledgers.up.sql"))
	assert.False(t, isUpMigration("000001_create_ledgers.down.sql"))
	assert.False(t, isUpMigration("notes.txt"))
}
