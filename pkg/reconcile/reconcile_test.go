package reconcile_test

import (
	"context"
	"testing"

	"github.com/arthur-debert/dac/pkg/errors"
	"github.com/arthur-debert/dac/pkg/kibana"
	"github.com/arthur-debert/dac/pkg/models"
	"github.com/arthur-debert/dac/pkg/reconcile"
	"github.com/arthur-debert/dac/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bulkCall struct {
	action kibana.BulkActionType
	ids    []string
}

// memoryBackend keeps rules in memory and records bulk calls.
type memoryBackend struct {
	rules    []kibana.Rule
	calls    []bulkCall
	fetchErr error
	failOn   map[kibana.BulkActionType]error
}

func (m *memoryBackend) GetAllRules(ctx context.Context) ([]kibana.Rule, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	out := make([]kibana.Rule, len(m.rules))
	copy(out, m.rules)
	return out, nil
}

func (m *memoryBackend) BulkAction(ctx context.Context, action kibana.BulkActionType, ids []string, dryRun bool) (*kibana.BulkResult, error) {
	m.calls = append(m.calls, bulkCall{action: action, ids: ids})
	if err := m.failOn[action]; err != nil {
		return nil, err
	}
	for i := range m.rules {
		for _, id := range ids {
			if m.rules[i].ID == id {
				m.rules[i].Enabled = action == kibana.ActionEnable
			}
		}
	}
	return &kibana.BulkResult{Action: action, Requested: len(ids), Succeeded: len(ids)}, nil
}

func rule(ruleID string, enabled bool) kibana.Rule {
	return kibana.Rule{ID: "id-" + ruleID, RuleID: ruleID, Name: "Rule " + ruleID, Enabled: enabled}
}

func scenario() (*memoryBackend, *models.Manifest) {
	backend := &memoryBackend{rules: []kibana.Rule{
		rule("A", false), rule("B", true), rule("C", true), rule("D", false),
	}}
	manifest := &models.Manifest{Enabled: []string{"A", "B"}, Disabled: []string{"C"}}
	return backend, manifest
}

func TestReconcile_Preview(t *testing.T) {
	backend, manifest := scenario()

	result, err := reconcile.Reconcile(context.Background(), backend, manifest, reconcile.Preview)
	require.NoError(t, err)

	assert.Empty(t, backend.calls, "preview never calls bulk actions")
	assert.False(t, result.Applied)
	require.Len(t, result.Report.Enabled, 1)
	assert.Equal(t, "A", result.Report.Enabled[0].RuleID)
	require.Len(t, result.Report.Disabled, 1)
	assert.Equal(t, "C", result.Report.Disabled[0].RuleID)
	assert.Equal(t, 4, result.Report.RemoteTotal)
}

func TestReconcile_Apply(t *testing.T) {
	backend, manifest := scenario()

	result, err := reconcile.Reconcile(context.Background(), backend, manifest, reconcile.Apply)
	require.NoError(t, err)

	require.Len(t, backend.calls, 2)
	assert.Equal(t, bulkCall{action: kibana.ActionEnable, ids: []string{"id-A"}}, backend.calls[0])
	assert.Equal(t, bulkCall{action: kibana.ActionDisable, ids: []string{"id-C"}}, backend.calls[1])
	assert.True(t, result.Applied)
	require.NotNil(t, result.EnableResult)
	require.NotNil(t, result.DisableResult)
	assert.Equal(t, 1, result.EnableResult.Succeeded)
}

func TestReconcile_ReportSameInBothModes(t *testing.T) {
	previewBackend, manifest := scenario()
	applyBackend, _ := scenario()

	preview, err := reconcile.Reconcile(context.Background(), previewBackend, manifest, reconcile.Preview)
	require.NoError(t, err)
	applied, err := reconcile.Reconcile(context.Background(), applyBackend, manifest, reconcile.Apply)
	require.NoError(t, err)

	assert.Equal(t, preview.Report, applied.Report)
}

func TestReconcile_Idempotent(t *testing.T) {
	backend, manifest := scenario()

	_, err := reconcile.Reconcile(context.Background(), backend, manifest, reconcile.Apply)
	require.NoError(t, err)
	require.Len(t, backend.calls, 2)

	second, err := reconcile.Reconcile(context.Background(), backend, manifest, reconcile.Apply)
	require.NoError(t, err)
	assert.Len(t, backend.calls, 2, "second run makes no bulk calls")
	assert.False(t, second.Report.HasChanges())
	assert.Len(t, second.Report.Satisfied, 3)
}

func TestReconcile_NoChanges(t *testing.T) {
	tests := []struct {
		name     string
		manifest *models.Manifest
	}{
		{name: "empty manifest", manifest: &models.Manifest{}},
		{name: "already satisfied", manifest: &models.Manifest{Enabled: []string{"B"}, Disabled: []string{"D"}}},
		{name: "only missing rules", manifest: &models.Manifest{Enabled: []string{"Z"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, _ := scenario()
			result, err := reconcile.Reconcile(context.Background(), backend, tt.manifest, reconcile.Apply)
			require.NoError(t, err)
			assert.Empty(t, backend.calls)
			assert.False(t, result.Report.HasChanges())
			assert.Nil(t, result.EnableResult)
			assert.Nil(t, result.DisableResult)
		})
	}
}

func TestReconcile_OnlyDisable(t *testing.T) {
	backend, _ := scenario()
	manifest := &models.Manifest{Disabled: []string{"B", "C"}}

	_, err := reconcile.Reconcile(context.Background(), backend, manifest, reconcile.Apply)
	require.NoError(t, err)
	require.Len(t, backend.calls, 1)
	assert.Equal(t, kibana.ActionDisable, backend.calls[0].action)
	assert.Equal(t, []string{"id-B", "id-C"}, backend.calls[0].ids)
}

func TestReconcile_FetchError(t *testing.T) {
	backend, manifest := scenario()
	backend.fetchErr = errors.New(errors.ErrBackend, "unreachable")

	result, err := reconcile.Reconcile(context.Background(), backend, manifest, reconcile.Apply)
	assert.Nil(t, result)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBackend))
	assert.Empty(t, backend.calls)
}

func TestReconcile_EnableFails(t *testing.T) {
	backend, manifest := scenario()
	backend.failOn = map[kibana.BulkActionType]error{
		kibana.ActionEnable: errors.New(errors.ErrBackend, "enable failed"),
	}

	result, err := reconcile.Reconcile(context.Background(), backend, manifest, reconcile.Apply)
	assert.Nil(t, result)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBackend))
	assert.Len(t, backend.calls, 1, "disable is not attempted after enable fails")
}

func TestReconcile_PartialFailure(t *testing.T) {
	backend, manifest := scenario()
	backend.failOn = map[kibana.BulkActionType]error{
		kibana.ActionDisable: errors.New(errors.ErrBackend, "disable failed"),
	}

	result, err := reconcile.Reconcile(context.Background(), backend, manifest, reconcile.Apply)
	require.Error(t, err)
	assert.Equal(t, errors.ErrBackendPartial, errors.GetErrorCode(err))
	assert.Equal(t, errors.ExitBackend, errors.ExitCode(err))

	require.NotNil(t, result)
	assert.False(t, result.Applied)
	require.NotNil(t, result.EnableResult)
	assert.Nil(t, result.DisableResult)

	// Enable stays applied
	assert.True(t, backend.rules[0].Enabled)
}

func TestReconcile_AgainstFakeKibana(t *testing.T) {
	fk := testutil.NewFakeKibana(t,
		testutil.FakeRule{RuleID: "A"},
		testutil.FakeRule{RuleID: "B", Enabled: true},
		testutil.FakeRule{RuleID: "C", Enabled: true},
		testutil.FakeRule{RuleID: "D"},
	)
	client := kibana.New(kibana.Options{KibanaURL: fk.URL(), APIKey: "secret", PageSize: 2})
	defer client.Close()

	manifest := &models.Manifest{Enabled: []string{"A", "B", "Z"}, Disabled: []string{"C"}}
	result, err := reconcile.Reconcile(context.Background(), client, manifest, reconcile.Apply)
	require.NoError(t, err)

	assert.True(t, result.Applied)
	require.Len(t, result.Report.NotFound, 1)
	assert.Equal(t, "Z", result.Report.NotFound[0].RuleID)

	calls := fk.BulkCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "enable", calls[0].Action)
	assert.Equal(t, []string{"id-A"}, calls[0].IDs)
	assert.Equal(t, "disable", calls[1].Action)
	assert.Equal(t, []string{"id-C"}, calls[1].IDs)
	assert.ElementsMatch(t, []string{"A", "B"}, fk.EnabledRuleIDs())
}
