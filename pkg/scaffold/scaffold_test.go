package scaffold_test

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dac/pkg/scaffold"
	"github.com/arthur-debert/dac/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	result, err := scaffold.Init(env.Root)
	require.NoError(t, err)

	assert.Equal(t, []string{"customers/", "rules/", ".env.example", "README.md", ".gitignore"}, result.Created)
	assert.Empty(t, result.Skipped)

	assert.True(t, testutil.DirExists(t, filepath.Join(env.Root, "customers")))
	assert.True(t, testutil.DirExists(t, filepath.Join(env.Root, "rules")))
	assert.Contains(t, testutil.ReadFile(t, filepath.Join(env.Root, ".env.example")), "ELASTIC_API_KEY=")
	assert.Contains(t, testutil.ReadFile(t, filepath.Join(env.Root, "README.md")), "in-scope-rules.yaml")
	assert.Contains(t, testutil.ReadFile(t, filepath.Join(env.Root, ".gitignore")), ".env")
}

func TestInit_KeepsExistingFiles(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	testutil.CreateFile(t, env.Root, "README.md", "my readme")
	testutil.CreateDir(t, env.Root, "customers")

	result, err := scaffold.Init(env.Root)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"customers/", "README.md"}, result.Skipped)
	testutil.AssertFileContent(t, filepath.Join(env.Root, "README.md"), "my readme")
	testutil.AssertNoFile(t, filepath.Join(env.Root, "customers", ".gitkeep"))

	again, err := scaffold.Init(env.Root)
	require.NoError(t, err)
	assert.Empty(t, again.Created)
	assert.Len(t, again.Skipped, 5)
}

func TestInit_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "new", "repo")
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	_, err := scaffold.Init(root)
	require.NoError(t, err)
	assert.True(t, testutil.DirExists(t, filepath.Join(root, "customers")))
}
