package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/yatube/config"
	"github.com/d60-Lab/yatube/internal/model"
)

func TestInitDB_SQLiteFile(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          filepath.Join(t.TempDir(), "nested", "yatube.db"),
		MaxOpenConns: 1,
		LogLevel:     "silent",
	}}

	db, err := InitDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	for _, table := range []string{"users", "groups", "posts", "comments", "follows"} {
		assert.True(t, db.Migrator().HasTable(table), "table %s missing", table)
	}
	assert.True(t, db.Migrator().HasIndex(&model.Follow{}, "idx_follow_pair"))
}

func TestInitDB_UnknownDriver(t *testing.T) {
	_, err := InitDB(&config.Config{Database: config.DatabaseConfig{Driver: "oracle"}})
	require.Error(t, err)
}
