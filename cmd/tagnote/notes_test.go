package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/tagnote/internal/config"
)

func testLoader(t *testing.T) configLoader {
	t.Helper()
	conf := config.Default()
	conf.Database.Driver = config.DriverSQLite
	conf.Database.Dsn = filepath.Join(t.TempDir(), "tagnote.db")
	return func() (config.Config, error) {
		return conf, nil
	}
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCLINoteLifecycle(t *testing.T) {
	load := testLoader(t)

	out, err := run(t, newAddCmd(load), "buy", "milk", "--tags", "shopping, todo")
	require.NoError(t, err)
	assert.Equal(t, "ID 1: buy milk\n", out)

	out, err = run(t, newAddCmd(load), "call mom", "-t", "todo")
	require.NoError(t, err)
	assert.Equal(t, "ID 2: call mom\n", out)

	out, err = run(t, newListCmd(load))
	require.NoError(t, err)
	assert.Equal(t, "ID 1: buy milk\nID 2: call mom\n", out)

	out, err = run(t, newSearchCmd(load), "shopping")
	require.NoError(t, err)
	assert.Equal(t, "ID 1: buy milk\n", out)

	out, err = run(t, newSearchCmd(load), "missing")
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = run(t, newEditCmd(load), "2", "call", "dad")
	require.NoError(t, err)

	_, err = run(t, newDeleteCmd(load), "1")
	require.NoError(t, err)

	out, err = run(t, newListCmd(load))
	require.NoError(t, err)
	assert.Equal(t, "ID 2: call dad\n", out)

	out, err = run(t, newTagsCmd(load))
	require.NoError(t, err)
	assert.Equal(t, "shopping (0)\ntodo (1)\n", out)
}

func TestCLIMissingNote(t *testing.T) {
	load := testLoader(t)

	_, err := run(t, newEditCmd(load), "9", "text")
	assert.Error(t, err)

	_, err = run(t, newDeleteCmd(load), "9")
	assert.Error(t, err)

	_, err = run(t, newDeleteCmd(load), "abc")
	assert.Error(t, err)
}

func TestCLIAddRejectsBlankText(t *testing.T) {
	load := testLoader(t)

	_, err := run(t, newAddCmd(load), "   ")
	assert.Error(t, err)

	out, err := run(t, newListCmd(load))
	require.NoError(t, err)
	assert.True(t, strings.TrimSpace(out) == "")
}

func TestMigrateCommand(t *testing.T) {
	out, err := run(t, newMigrateCmd(testLoader(t)))
	require.NoError(t, err)
	assert.Contains(t, out, "migrated")
}
