package testutil

import (
	"path/filepath"
	"testing"
)

// CustomerFixture describes the files of one customer directory.
// Empty strings skip the corresponding file.
type CustomerFixture struct {
	Config    string
	Manifest  string
	Overrides map[string]string
}

// TestEnvironment is an isolated detections repository.
type TestEnvironment struct {
	// Root is the repository root (what --root / DAC_ROOT point at)
	Root string
	// StateHome receives the log file so tests never write to $HOME
	StateHome string

	t *testing.T
}

// NewTestEnvironment creates an empty repository in a temp directory and
// points DAC_ROOT and XDG_STATE_HOME at it.
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	tempDir := t.TempDir()
	env := &TestEnvironment{
		Root:      filepath.Join(tempDir, "detections"),
		StateHome: filepath.Join(tempDir, "state"),
		t:         t,
	}
	CreateDir(t, tempDir, "detections")
	CreateDir(t, tempDir, "state")

	t.Setenv("DAC_ROOT", env.Root)
	t.Setenv("XDG_STATE_HOME", env.StateHome)

	return env
}

// CustomerDir returns the directory of a customer.
func (env *TestEnvironment) CustomerDir(id string) string {
	return filepath.Join(env.Root, "customers", id)
}

// SetupCustomer writes a customer directory from a fixture.
func (env *TestEnvironment) SetupCustomer(id string, fixture CustomerFixture) string {
	env.t.Helper()

	dir := CreateDir(env.t, filepath.Join(env.Root, "customers"), id)
	if fixture.Config != "" {
		CreateFile(env.t, dir, "config.yaml", fixture.Config)
	}
	if fixture.Manifest != "" {
		CreateFile(env.t, dir, "in-scope-rules.yaml", fixture.Manifest)
	}
	for name, content := range fixture.Overrides {
		CreateFile(env.t, filepath.Join(dir, "overrides"), name, content)
	}
	return dir
}

// SetupBasicCustomer writes a valid customer with the given manifest and
// optional Kibana URL override.
func (env *TestEnvironment) SetupBasicCustomer(id, manifest, kibanaURL string) string {
	env.t.Helper()

	config := "name: " + id + "\nenabled_rules_repo: example-org/" + id + "-enabled-rules\n"
	if kibanaURL != "" {
		config += "kibana_url: " + kibanaURL + "\n"
	}
	return env.SetupCustomer(id, CustomerFixture{Config: config, Manifest: manifest})
}
