package migration

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "Add Transparency Columns", "adds score columns to purchase_orders")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(mf.UpPath, "_add_transparency_columns.up.sql"))
	assert.True(t, strings.HasSuffix(mf.DownPath, "_add_transparency_columns.down.sql"))

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "Add Transparency Columns")
	assert.Contains(t, string(up), "adds score columns to purchase_orders")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "rollback")
}

func TestCreateMigration_MakesDirectory(t *testing.T) {
	dir := t.TempDir() + "/nested/migrations"

	_, err := CreateMigration(dir, "init", "initial schema")
	require.NoError(t, err)

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Len(t, migrations, 1)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Add Transparency Columns", "add_transparency_columns"},
		{"add-index--on--number", "add_index_on_number"},
		{"Trailing Separator ", "trailing_separator"},
		{"MiXeD CaSe 123", "mixed_case_123"},
		{"!!weird??chars", "weirdchars"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, slugify(tt.input))
		})
	}
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()

	_, err := CreateMigration(dir, "first", "")
	require.NoError(t, err)

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	require.Len(t, migrations, 1)
	assert.True(t, strings.HasSuffix(migrations[0], "_first"))
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	migrations, err := ListMigrations(t.TempDir() + "/does-not-exist")
	require.NoError(t, err)
	assert.Empty(t, migrations)
}
