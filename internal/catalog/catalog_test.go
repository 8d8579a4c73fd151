package catalog

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groow/smoke/internal/domain/models"
)

func TestLoad_Embedded(t *testing.T) {
	suites, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, suites)

	for i := 1; i < len(suites); i++ {
		assert.Less(t, suites[i-1].Module, suites[i].Module, "suites must be sorted")
	}

	reports, err := Filter(suites, "reports")
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "Reports", reports[0].Category)

	var found bool
	for _, ep := range reports[0].Endpoints {
		if ep.Method == "GET" && ep.Path == "/reports/health" {
			found = true
		}
	}
	assert.True(t, found, "GET /reports/health must be catalogued")
	assert.Greater(t, Count(suites), 1000)
}

func TestLoadFS_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "bad method", body: "module: x\ncategory: X\nendpoints:\n  - method: HEAD\n    path: /x\n"},
		{name: "relative path", body: "module: x\ncategory: X\nendpoints:\n  - method: GET\n    path: x\n"},
		{name: "no endpoints", body: "module: x\ncategory: X\nendpoints: []\n"},
		{name: "duplicate", body: "module: x\ncategory: X\nendpoints:\n  - method: GET\n    path: /x\n  - method: GET\n    path: /x\n"},
		{name: "not yaml", body: "module: [unterminated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{"suites/x.yaml": {Data: []byte(tt.body)}}
			_, err := LoadFS(fsys, "suites")
			assert.Error(t, err)
		})
	}
}

func TestLoadFS_DuplicateModule(t *testing.T) {
	body := []byte("module: x\ncategory: X\nendpoints:\n  - method: GET\n    path: /x\n")
	fsys := fstest.MapFS{
		"suites/a.yaml": {Data: body},
		"suites/b.yaml": {Data: body},
	}
	_, err := LoadFS(fsys, "suites")
	assert.ErrorContains(t, err, "declared in both")
}

func TestFilter(t *testing.T) {
	suites := []models.Suite{{Module: "audit"}, {Module: "reports"}, {Module: "rfq"}}

	all, err := Filter(suites)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	some, err := Filter(suites, "RFQ", " audit ")
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, "audit", some[0].Module)
	assert.Equal(t, "rfq", some[1].Module)

	_, err = Filter(suites, "reports", "warp-drive")
	assert.True(t, errors.Is(err, ErrUnknownModule))
	assert.ErrorContains(t, err, "warp-drive")
}

func TestExpandPath(t *testing.T) {
	assert.Equal(t, "/audit/alerts/test-id/acknowledge", ExpandPath("/audit/alerts/{id}/acknowledge", "test-id"))
	assert.Equal(t, "/social/analytics/dashboards/42/data", ExpandPath("/social/analytics/dashboards/{dashboardId}/data", "42"))
	assert.Equal(t, "/a/x/b/x", ExpandPath("/a/{one}/b/{two}", "x"))
	assert.Equal(t, "/reports/health", ExpandPath("/reports/health", "test-id"))

	assert.True(t, RequiresParams("/rfq/{id}"))
	assert.False(t, RequiresParams("/rfq"))
}
