package kibana_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/arthur-debert/dac/pkg/errors"
	"github.com/arthur-debert/dac/pkg/kibana"
	"github.com/arthur-debert/dac/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, fk *testutil.FakeKibana, space string, pageSize int) *kibana.Client {
	t.Helper()
	c := kibana.New(kibana.Options{
		KibanaURL: fk.URL(),
		Space:     space,
		APIKey:    "secret",
		Timeout:   5 * time.Second,
		PageSize:  pageSize,
	})
	t.Cleanup(c.Close)
	return c
}

func fakeRules(n int) []testutil.FakeRule {
	rules := make([]testutil.FakeRule, n)
	for i := range rules {
		rules[i] = testutil.FakeRule{RuleID: fmt.Sprintf("rule-%03d", i), Enabled: i%2 == 0}
	}
	return rules
}

func TestAPIURL(t *testing.T) {
	tests := []struct {
		url, space, want string
	}{
		{"https://kb.example.com", "default", "https://kb.example.com/api"},
		{"https://kb.example.com/", "", "https://kb.example.com/api"},
		{"https://kb.example.com", "security", "https://kb.example.com/s/security/api"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, kibana.APIURL(tt.url, tt.space))
	}
}

func TestClient_SendsAuthHeaders(t *testing.T) {
	fk := testutil.NewFakeKibana(t)
	c := newClient(t, fk, "default", 0)

	_, _, err := c.FindRules(context.Background(), 1, 10)
	require.NoError(t, err)

	h := fk.LastHeaders()
	assert.Equal(t, "ApiKey secret", h.Get("Authorization"))
	assert.Equal(t, "true", h.Get("kbn-xsrf"))
}

func TestClient_SpacePrefix(t *testing.T) {
	fk := testutil.NewFakeKibana(t)
	c := newClient(t, fk, "acme", 0)

	_, _, err := c.FindRules(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"/s/acme/api/detection_engine/rules/_find"}, fk.Paths())
}

func TestGetAllRules_PaginationCompleteness(t *testing.T) {
	tests := []struct {
		name          string
		rules         int
		pageSize      int
		maxPerPage    int
		ignorePage    bool
		totalOverride int
		wantPages     int
		wantErr       string
	}{
		{name: "empty backend", rules: 0, pageSize: 100, wantPages: 1},
		{name: "single partial page", rules: 7, pageSize: 100, wantPages: 1},
		{name: "exact multiple", rules: 20, pageSize: 5, wantPages: 4},
		{name: "short last page", rules: 23, pageSize: 5, wantPages: 5},
		{name: "page size one", rules: 4, pageSize: 1, wantPages: 4},
		{name: "backend caps page size", rules: 25, pageSize: 1000, maxPerPage: 10, wantPages: 3},
		{name: "backend ignores page", rules: 25, pageSize: 10, ignorePage: true, wantPages: 2, wantErr: "pagination returned duplicate rules"},
		{name: "more rules than reported", rules: 5, pageSize: 10, totalOverride: 3, wantPages: 1, wantErr: "pagination inconsistent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fk := testutil.NewFakeKibana(t, fakeRules(tt.rules)...)
			fk.MaxPerPage = tt.maxPerPage
			fk.IgnorePage = tt.ignorePage
			fk.TotalOverride = tt.totalOverride
			c := newClient(t, fk, "", tt.pageSize)

			rules, err := c.GetAllRules(context.Background())
			assert.Equal(t, tt.wantPages, fk.FindCalls())
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, errors.IsErrorCode(err, errors.ErrBackend))
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, rules)
				return
			}

			require.NoError(t, err)
			assert.Len(t, rules, tt.rules)

			seen := map[string]bool{}
			for _, r := range rules {
				assert.False(t, seen[r.RuleID], "duplicate %s", r.RuleID)
				seen[r.RuleID] = true
			}
		})
	}
}

func TestGetAllRules_StalledPagination(t *testing.T) {
	fk := testutil.NewFakeKibana(t, fakeRules(3)...)
	fk.TotalOverride = 10
	c := newClient(t, fk, "", 2)

	_, err := c.GetAllRules(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBackend))
	assert.Contains(t, err.Error(), "pagination stalled")
	assert.Equal(t, 3, fk.FindCalls())
}

func TestFindRules_BackendError(t *testing.T) {
	fk := testutil.NewFakeKibana(t)
	fk.FailStatus = map[string]int{"/_find": 401}
	c := newClient(t, fk, "", 0)

	_, _, err := c.FindRules(context.Background(), 1, 10)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBackend))
	assert.Equal(t, 401, kibana.StatusCode(err))
}

func TestClient_UnreachableHost(t *testing.T) {
	c := kibana.New(kibana.Options{KibanaURL: "http://127.0.0.1:1", APIKey: "x", Timeout: time.Second})
	defer c.Close()

	_, err := c.GetAllRules(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBackend))
	assert.Equal(t, 0, kibana.StatusCode(err))
}

func TestGetRule(t *testing.T) {
	fk := testutil.NewFakeKibana(t, testutil.FakeRule{RuleID: "abc", Name: "Suspicious Thing", Severity: "high"})
	c := newClient(t, fk, "", 0)

	doc, err := c.GetRule(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "Suspicious Thing", doc["name"])
	assert.Equal(t, "high", doc["severity"])

	_, err = c.GetRule(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, 404, kibana.StatusCode(err))
}

func TestCreateAndUpdateRule(t *testing.T) {
	fk := testutil.NewFakeKibana(t)
	c := newClient(t, fk, "", 0)
	ctx := context.Background()

	created, err := c.CreateRule(ctx, kibana.RuleDocument{"rule_id": "custom-1", "name": "Custom", "severity": "low"})
	require.NoError(t, err)
	assert.Equal(t, "id-custom-1", created["id"])

	_, err = c.CreateRule(ctx, kibana.RuleDocument{"rule_id": "custom-1", "name": "Custom"})
	assert.Equal(t, 409, kibana.StatusCode(err))

	_, err = c.UpdateRule(ctx, kibana.RuleDocument{"rule_id": "custom-1", "name": "Custom", "severity": "critical"})
	require.NoError(t, err)

	r, ok := fk.Rule("custom-1")
	require.True(t, ok)
	assert.Equal(t, "critical", r.Severity)
}

func TestBulkAction(t *testing.T) {
	ctx := context.Background()

	t.Run("single call for all ids", func(t *testing.T) {
		fk := testutil.NewFakeKibana(t, fakeRules(4)...)
		c := newClient(t, fk, "", 0)

		res, err := c.BulkAction(ctx, kibana.ActionEnable, []string{"id-rule-001", "id-rule-003"}, false)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Succeeded)
		assert.True(t, res.Summarized)

		calls := fk.BulkCalls()
		require.Len(t, calls, 1)
		assert.Equal(t, "enable", calls[0].Action)
		assert.Equal(t, []string{"id-rule-001", "id-rule-003"}, calls[0].IDs)
		assert.False(t, calls[0].DryRun)
		assert.Len(t, fk.EnabledRuleIDs(), 4)
	})

	t.Run("no ids no call", func(t *testing.T) {
		fk := testutil.NewFakeKibana(t)
		c := newClient(t, fk, "", 0)

		res, err := c.BulkAction(ctx, kibana.ActionDisable, nil, false)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Requested)
		assert.Empty(t, fk.BulkCalls())
	})

	t.Run("summary missing falls back to requested", func(t *testing.T) {
		fk := testutil.NewFakeKibana(t, fakeRules(2)...)
		fk.OmitSummary = true
		c := newClient(t, fk, "", 0)

		res, err := c.BulkAction(ctx, kibana.ActionDisable, []string{"id-rule-000", "id-nope"}, false)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Succeeded)
		assert.False(t, res.Summarized)
	})

	t.Run("dry run flag is forwarded", func(t *testing.T) {
		fk := testutil.NewFakeKibana(t, fakeRules(2)...)
		c := newClient(t, fk, "", 0)

		_, err := c.BulkAction(ctx, kibana.ActionDisable, []string{"id-rule-000"}, true)
		require.NoError(t, err)
		assert.True(t, fk.BulkCalls()[0].DryRun)
		r, _ := fk.Rule("rule-000")
		assert.True(t, r.Enabled, "dry run must not change state")
	})

	t.Run("failure", func(t *testing.T) {
		fk := testutil.NewFakeKibana(t, fakeRules(2)...)
		fk.FailBulkAction = map[string]int{"enable": 500}
		c := newClient(t, fk, "", 0)

		_, err := c.BulkAction(ctx, kibana.ActionEnable, []string{"id-rule-001"}, false)
		require.Error(t, err)
		assert.Equal(t, 500, kibana.StatusCode(err))
	})
}
