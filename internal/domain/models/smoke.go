package models

import "time"

// Endpoint is one documented REST operation. Path is a template whose {param}
// segments are replaced by a fixture id before the request is issued.
type Endpoint struct {
	Method string `json:"method" yaml:"method"`
	Path   string `json:"path" yaml:"path"`
	// Expect is the baseline status recorded for exact-status suites; zero when absent.
	Expect int `json:"expect,omitempty" yaml:"expect,omitempty"`
}

// String renders the endpoint as "METHOD /path".
func (e Endpoint) String() string {
	return e.Method + " " + e.Path
}

// Mutating reports whether the method carries a request body.
func (e Endpoint) Mutating() bool {
	switch e.Method {
	case "POST", "PUT", "PATCH":
		return true
	}
	return false
}

// Suite groups the endpoints of one REST module.
type Suite struct {
	Module    string     `json:"module" yaml:"module"`
	Category  string     `json:"category" yaml:"category"`
	Endpoints []Endpoint `json:"endpoints" yaml:"endpoints"`
}

// Result records the outcome of a single smoke request.
type Result struct {
	Endpoint     string    `json:"endpoint" bson:"endpoint"`
	Method       string    `json:"method" bson:"method"`
	StatusCode   int       `json:"statusCode" bson:"status_code"`
	Expected     string    `json:"expected" bson:"expected"`
	ResponseTime int64     `json:"responseTime" bson:"response_time_ms"`
	Success      bool      `json:"success" bson:"success"`
	Warning      string    `json:"warning,omitempty" bson:"warning,omitempty"`
	Error        string    `json:"error,omitempty" bson:"error,omitempty"`
	Timestamp    time.Time `json:"timestamp" bson:"timestamp"`
	Category     string    `json:"category" bson:"category"`
	Module       string    `json:"module" bson:"module"`
	RequiresAuth bool      `json:"requiresAuth" bson:"requires_auth"`
}

// CategoryStats aggregates results for one category.
type CategoryStats struct {
	Total  int `json:"total" bson:"total"`
	Passed int `json:"passed" bson:"passed"`
	Failed int `json:"failed" bson:"failed"`
}

// Summary is the outcome of a whole smoke run.
type Summary struct {
	RunID           string                   `json:"runId" bson:"run_id"`
	Policy          string                   `json:"policy" bson:"policy"`
	Role            string                   `json:"role" bson:"role"`
	Authenticated   bool                     `json:"authenticated" bson:"authenticated"`
	TotalTests      int                      `json:"totalTests" bson:"total_tests"`
	Passed          int                      `json:"passed" bson:"passed"`
	Failed          int                      `json:"failed" bson:"failed"`
	Skipped         int                      `json:"skipped" bson:"skipped"`
	Duration        time.Duration            `json:"duration" bson:"duration"`
	Timestamp       time.Time                `json:"timestamp" bson:"timestamp"`
	Results         []Result                 `json:"results,omitempty" bson:"results,omitempty"`
	CategorySummary map[string]CategoryStats `json:"categorySummary" bson:"category_summary"`
}

// Healthy reports whether every executed request passed.
func (s Summary) Healthy() bool {
	return s.Failed == 0
}

// Failures returns the failed results in recorded order.
func (s Summary) Failures() []Result {
	var out []Result
	for _, r := range s.Results {
		if !r.Success {
			out = append(out, r)
		}
	}
	return out
}

// WithoutResults returns a copy suitable for listings.
func (s Summary) WithoutResults() Summary {
	s.Results = nil
	return s
}
