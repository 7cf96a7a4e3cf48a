package models_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dac/pkg/errors"
	"github.com/arthur-debert/dac/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeManifest_Empty(t *testing.T) {
	m, errs := models.DecodeManifest([]byte(""))
	require.Empty(t, errs)
	assert.Equal(t, []string{}, m.Enabled)
	assert.Equal(t, []string{}, m.Disabled)
	assert.True(t, m.IsEmpty())
}

func TestDecodeManifest_WithRules(t *testing.T) {
	m, errs := models.DecodeManifest([]byte(`
enabled:
  - rule-1
  - rule-2
disabled:
  - rule-3
`))
	require.Empty(t, errs)
	assert.Equal(t, []string{"rule-1", "rule-2"}, m.Enabled)
	assert.Equal(t, []string{"rule-3"}, m.Disabled)
	assert.False(t, m.IsEmpty())
}

func TestDecodeManifest_OnlyOneList(t *testing.T) {
	m, errs := models.DecodeManifest([]byte("disabled: [ff10d4d8-fea7-422d-afb1-e5a2702369a9]\n"))
	require.Empty(t, errs)
	assert.Empty(t, m.Enabled)
	assert.Len(t, m.Disabled, 1)
}

func TestDecodeManifest_CollectsAllErrors(t *testing.T) {
	_, errs := models.DecodeManifest([]byte(`
enabled:
  - a
  - ""
  - a
disabled:
  - a
  - b
  - b
`))

	require.Len(t, errs, 4)

	byField := map[string]models.FieldError{}
	for _, e := range errs {
		byField[e.Field] = e
	}

	assert.Equal(t, models.KindRequired, byField["enabled[1]"].Kind)
	assert.Equal(t, models.KindDuplicate, byField["enabled[2]"].Kind)
	assert.Equal(t, models.KindConflict, byField["disabled[0]"].Kind)
	assert.Equal(t, models.KindDuplicate, byField["disabled[2]"].Kind)
}

func TestDecodeManifest_UnknownKey(t *testing.T) {
	_, errs := models.DecodeManifest([]byte("enabled: [a]\nenable: [b]\n"))
	require.Len(t, errs, 1)
	assert.Equal(t, models.KindParse, errs[0].Kind)
	assert.Contains(t, errs[0].Message, "enable")
}

func TestDecodeManifest_SyntaxError(t *testing.T) {
	_, errs := models.DecodeManifest([]byte("enabled: [a\n"))
	require.Len(t, errs, 1)
	assert.Equal(t, models.KindParse, errs[0].Kind)
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid", func(t *testing.T) {
		path := filepath.Join(dir, "ok.yaml")
		require.NoError(t, os.WriteFile(path, []byte("enabled: [a]\n"), 0644))

		m, err := models.LoadManifest(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, m.Enabled)
	})

	t.Run("invalid", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("enabled: [a]\ndisabled: [a]\n"), 0644))

		_, err := models.LoadManifest(path)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrValidation))
		assert.Len(t, models.FieldErrorsOf(err), 1)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := models.LoadManifest(filepath.Join(dir, "nope.yaml"))
		assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	})
}

func TestWriteManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "enablement.yaml")
	m := &models.Manifest{Enabled: []string{"b", "a"}}

	require.NoError(t, models.WriteManifest(path, m, "# generated by dac"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# generated by dac\n")
	assert.Contains(t, string(data), "disabled: []")

	loaded, err := models.LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, loaded.Enabled, "order is preserved")
	assert.Empty(t, loaded.Disabled)
}
