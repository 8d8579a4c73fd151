package smoke

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/groow/smoke/internal/domain/models"
)

// ErrUnknownPolicy is returned by ParsePolicy for names it does not know.
var ErrUnknownPolicy = errors.New("unknown acceptance policy")

const (
	PolicyPermissive = "permissive"
	PolicyFixed      = "fixed"
	PolicyExact      = "exact"
	PolicyTolerant   = "tolerant"
)

// Verdict is the outcome of checking one status against a policy.
type Verdict struct {
	Success bool
	Warning string
	Error   string
}

// Policy decides whether a response status is acceptable for an endpoint.
type Policy interface {
	Name() string
	// Expected describes the accepted statuses for reports.
	Expected(ep models.Endpoint) string
	Check(ep models.Endpoint, status int) Verdict
	// SendsBody reports whether a mutating request carries GenericBody.
	SendsBody(ep models.Endpoint) bool
}

// ParsePolicy resolves a policy by name, case-insensitively.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case PolicyPermissive:
		return permissive{}, nil
	case PolicyFixed:
		return fixed{}, nil
	case PolicyExact:
		return exact{}, nil
	case PolicyTolerant:
		return tolerant{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
}

// PolicyNames lists every known policy, sorted.
func PolicyNames() []string {
	names := []string{PolicyPermissive, PolicyFixed, PolicyExact, PolicyTolerant}
	sort.Strings(names)
	return names
}

var permissiveStatuses = []int{http.StatusOK, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound}

type permissive struct{}

func (permissive) Name() string { return PolicyPermissive }

func (permissive) Expected(models.Endpoint) string {
	parts := make([]string, len(permissiveStatuses))
	for i, s := range permissiveStatuses {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, "|")
}

func (p permissive) Check(ep models.Endpoint, status int) Verdict {
	for _, s := range permissiveStatuses {
		if status == s {
			return Verdict{Success: true}
		}
	}
	return Verdict{Error: fmt.Sprintf("Expected one of [%s] for %s, got %d", p.Expected(ep), ep, status)}
}

func (permissive) SendsBody(ep models.Endpoint) bool { return ep.Mutating() }

type fixed struct{}

func (fixed) Name() string { return PolicyFixed }

func (fixed) Expected(models.Endpoint) string { return "2xx" }

func (fixed) Check(ep models.Endpoint, status int) Verdict {
	if is2xx(status) {
		return Verdict{Success: true}
	}
	return Verdict{Error: fmt.Sprintf("Expected 200-series for %s, got %d", ep, status)}
}

func (fixed) SendsBody(ep models.Endpoint) bool { return ep.Mutating() }

// exact compares against the recorded baseline and behaves like fixed when there is none.
type exact struct{}

func (exact) Name() string { return PolicyExact }

func (exact) Expected(ep models.Endpoint) string {
	if ep.Expect == 0 {
		return fixed{}.Expected(ep)
	}
	return strconv.Itoa(ep.Expect)
}

func (exact) Check(ep models.Endpoint, status int) Verdict {
	if ep.Expect == 0 {
		return fixed{}.Check(ep, status)
	}
	if status == ep.Expect {
		return Verdict{Success: true}
	}
	return Verdict{Error: fmt.Sprintf("Expected %d for %s, got %d", ep.Expect, ep, status)}
}

// Baselines were recorded from bodyless requests, so only endpoints without one get a body.
func (exact) SendsBody(ep models.Endpoint) bool { return ep.Expect == 0 && ep.Mutating() }

type tolerant struct{}

func (tolerant) Name() string { return PolicyTolerant }

func (tolerant) Expected(models.Endpoint) string { return "2xx|401|404" }

func (tolerant) Check(ep models.Endpoint, status int) Verdict {
	switch {
	case is2xx(status):
		return Verdict{Success: true}
	case status == http.StatusUnauthorized:
		return Verdict{Success: true, Warning: "401 Unauthorized (expected for protected endpoint without valid auth)"}
	case status == http.StatusNotFound:
		return Verdict{Success: true, Warning: "404 Not Found (endpoint may need data or params)"}
	}
	return Verdict{Error: fmt.Sprintf("Expected 200-series for %s, got %d", ep, status)}
}

func (tolerant) SendsBody(ep models.Endpoint) bool { return ep.Mutating() }

func is2xx(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}
