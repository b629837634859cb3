package db

import (
	"io/fs"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func readMigrations(t *testing.T) (names []string, bodies map[string]string) {
	t.Helper()
	names, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	sort.Strings(names)
	bodies = make(map[string]string, len(names))
	for _, name := range names {
		body, err := migrations.ReadFile(name)
		require.NoError(t, err)
		bodies[name] = string(body)
	}
	return names, bodies
}

func createTable(t *testing.T, sql, table string) string {
	t.Helper()
	re := regexp.MustCompile(`(?s)CREATE TABLE IF NOT EXISTS ` + table + ` \((.*?)\n\);`)
	m := re.FindStringSubmatch(sql)
	require.NotNil(t, m, "table %s not declared", table)
	return m[1]
}

func TestMigrationsAreOrdered(t *testing.T) {
	names, _ := readMigrations(t)
	require.Equal(t, []string{"migrations/0001_init.sql", "migrations/0002_required_names.sql"}, names)
}

func TestMachineAndItemNamesRequired(t *testing.T) {
	_, bodies := readMigrations(t)
	initSQL := bodies["migrations/0001_init.sql"]
	for _, table := range []string{"machines", "items", "machine_types", "machine_manufacturers"} {
		cols := createTable(t, initSQL, table)
		require.Contains(t, cols, "name TEXT NOT NULL", table)
	}

	upgrade := bodies["migrations/0002_required_names.sql"]
	for _, table := range []string{"machines", "items"} {
		require.True(t, strings.Contains(upgrade, "ALTER TABLE "+table+" ALTER COLUMN name SET NOT NULL"), table)
	}
}
