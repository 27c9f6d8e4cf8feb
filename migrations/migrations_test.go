package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesAreOrdered(t *testing.T) {
	files, err := Files()
	require.NoError(t, err)
	assert.Equal(t, []string{"001_schema.sql", "002_row_level_security.sql"}, files)
}

func TestEveryTableIsTenantIsolated(t *testing.T) {
	schema, err := Content.ReadFile("001_schema.sql")
	require.NoError(t, err)
	rls, err := Content.ReadFile("002_row_level_security.sql")
	require.NoError(t, err)

	for _, line := range strings.Split(string(schema), "\n") {
		name, ok := strings.CutPrefix(line, "CREATE TABLE IF NOT EXISTS ")
		if !ok {
			continue
		}
		name = strings.TrimSuffix(name, " (")
		assert.Contains(t, string(rls), "'"+name+"'", name)
	}
}
