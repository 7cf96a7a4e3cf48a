package publish_test

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dac/pkg/errors"
	"github.com/arthur-debert/dac/pkg/models"
	"github.com/arthur-debert/dac/pkg/publish"
	"github.com/arthur-debert/dac/pkg/testutil"
	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSync(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	env.SetupBasicCustomer("acme", "enabled: [a, b]\ndisabled: [c]\n", "")

	result, err := publish.Sync(publish.Options{Root: env.Root, CustomerID: "acme"})
	require.NoError(t, err)

	outDir := filepath.Join(env.Root, "build", "acme-enabled-rules")
	assert.Equal(t, outDir, result.OutDir)
	assert.Equal(t, "example-org/acme-enabled-rules", result.TargetRepo)
	assert.True(t, result.Initialized)
	assert.Equal(t, []string{publish.EnablementFile, publish.ReadmeFile}, result.Staged)

	enablement := testutil.ReadFile(t, filepath.Join(outDir, publish.EnablementFile))
	assert.Contains(t, enablement, "# Generated by dac from customers/acme/in-scope-rules.yaml")
	assert.Contains(t, enablement, "# Target repository: example-org/acme-enabled-rules")

	m, errs := models.DecodeManifest([]byte(enablement))
	require.Empty(t, errs)
	assert.Equal(t, []string{"a", "b"}, m.Enabled)
	assert.Equal(t, []string{"c"}, m.Disabled)

	readme := testutil.ReadFile(t, filepath.Join(outDir, publish.ReadmeFile))
	assert.Contains(t, readme, "- Enabled rules: 2")

	repo, err := git.PlainOpen(outDir)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	status, err := wt.Status()
	require.NoError(t, err)
	assert.Equal(t, git.Added, status.File(publish.EnablementFile).Staging)
	assert.Equal(t, git.Added, status.File(publish.ReadmeFile).Staging)

	_, err = repo.Head()
	assert.Error(t, err, "nothing is committed")
}

func TestSync_ExistingRepository(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	env.SetupBasicCustomer("acme", "enabled: [a]\n", "")
	outDir := filepath.Join(t.TempDir(), "target")

	first, err := publish.Sync(publish.Options{Root: env.Root, CustomerID: "acme", OutDir: outDir})
	require.NoError(t, err)
	assert.True(t, first.Initialized)

	env.SetupBasicCustomer("acme", "enabled: [a, b]\n", "")
	second, err := publish.Sync(publish.Options{Root: env.Root, CustomerID: "acme", OutDir: outDir})
	require.NoError(t, err)
	assert.False(t, second.Initialized)
	assert.Contains(t, testutil.ReadFile(t, filepath.Join(outDir, publish.EnablementFile)), "- b")
}

func TestSync_Errors(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	_, err := publish.Sync(publish.Options{Root: env.Root, CustomerID: "nobody"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))

	env.SetupCustomer("broken", testutil.CustomerFixture{Config: "name: x\n", Manifest: "enabled: []\n"})
	_, err = publish.Sync(publish.Options{Root: env.Root, CustomerID: "broken"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrValidation))
	testutil.AssertNoFile(t, publish.DefaultOutDir(env.Root, "broken"))
}
