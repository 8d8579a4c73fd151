package smoke

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groow/smoke/internal/domain/models"
)

func TestParsePolicy(t *testing.T) {
	for _, name := range PolicyNames() {
		p, err := ParsePolicy(name)
		require.NoError(t, err)
		assert.Equal(t, name, p.Name())
	}

	p, err := ParsePolicy("  Fixed ")
	require.NoError(t, err)
	assert.Equal(t, PolicyFixed, p.Name())

	_, err = ParsePolicy("strict")
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestPolicies_Check(t *testing.T) {
	ep := models.Endpoint{Method: "GET", Path: "/reports/health"}
	baseline := models.Endpoint{Method: "GET", Path: "/reports/health", Expect: 404}

	tests := []struct {
		policy  string
		ep      models.Endpoint
		status  int
		success bool
		warning bool
	}{
		{PolicyPermissive, ep, 200, true, false},
		{PolicyPermissive, ep, 401, true, false},
		{PolicyPermissive, ep, 403, true, false},
		{PolicyPermissive, ep, 404, true, false},
		{PolicyPermissive, ep, 201, false, false},
		{PolicyPermissive, ep, 500, false, false},
		{PolicyPermissive, ep, 0, false, false},

		{PolicyFixed, ep, 200, true, false},
		{PolicyFixed, ep, 204, true, false},
		{PolicyFixed, ep, 299, true, false},
		{PolicyFixed, ep, 300, false, false},
		{PolicyFixed, ep, 401, false, false},
		{PolicyFixed, ep, 199, false, false},

		{PolicyExact, baseline, 404, true, false},
		{PolicyExact, baseline, 200, false, false},
		{PolicyExact, ep, 201, true, false},
		{PolicyExact, ep, 404, false, false},

		{PolicyTolerant, ep, 200, true, false},
		{PolicyTolerant, ep, 401, true, true},
		{PolicyTolerant, ep, 404, true, true},
		{PolicyTolerant, ep, 403, false, false},
		{PolicyTolerant, ep, 500, false, false},
	}

	for _, tt := range tests {
		p, err := ParsePolicy(tt.policy)
		require.NoError(t, err)

		v := p.Check(tt.ep, tt.status)
		assert.Equal(t, tt.success, v.Success, "%s %d", tt.policy, tt.status)
		assert.Equal(t, tt.warning, v.Warning != "", "%s %d warning", tt.policy, tt.status)
		assert.Equal(t, !tt.success, v.Error != "", "%s %d error text", tt.policy, tt.status)
	}
}

func TestPolicies_FailureMessages(t *testing.T) {
	ep := models.Endpoint{Method: "GET", Path: "/x"}

	assert.Equal(t, "Expected 200-series for GET /x, got 500", fixed{}.Check(ep, 500).Error)
	assert.Equal(t, "Expected one of [200|401|403|404] for GET /x, got 500", permissive{}.Check(ep, 500).Error)
	assert.Equal(t, "Expected 404 for GET /x, got 200", exact{}.Check(models.Endpoint{Method: "GET", Path: "/x", Expect: 404}, 200).Error)
}

func TestPolicies_Expected(t *testing.T) {
	ep := models.Endpoint{Method: "GET", Path: "/x"}

	assert.Equal(t, "2xx", fixed{}.Expected(ep))
	assert.Equal(t, "200|401|403|404", permissive{}.Expected(ep))
	assert.Equal(t, "2xx", exact{}.Expected(ep))
	assert.Equal(t, "404", exact{}.Expected(models.Endpoint{Method: "GET", Path: "/x", Expect: 404}))
}

func TestPolicies_SendsBody(t *testing.T) {
	post := models.Endpoint{Method: "POST", Path: "/bulk/import"}
	baseline := models.Endpoint{Method: "POST", Path: "/bulk/import", Expect: 400}
	get := models.Endpoint{Method: "GET", Path: "/bulk/jobs"}

	for _, p := range []Policy{permissive{}, fixed{}, tolerant{}} {
		assert.True(t, p.SendsBody(post), p.Name())
		assert.True(t, p.SendsBody(baseline), p.Name())
		assert.False(t, p.SendsBody(get), p.Name())
	}

	assert.True(t, exact{}.SendsBody(post), "no baseline behaves like fixed")
	assert.False(t, exact{}.SendsBody(baseline), "baselines were recorded without a body")
	assert.False(t, exact{}.SendsBody(get))
}
