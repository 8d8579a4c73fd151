package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groow/smoke/internal/catalog"
	"github.com/groow/smoke/internal/domain/models"
	"github.com/groow/smoke/internal/repository/memory"
	"github.com/groow/smoke/internal/server/handlers"
	"github.com/groow/smoke/internal/service/reporting"
	"github.com/groow/smoke/internal/service/runs"
	"github.com/groow/smoke/internal/smoke"
)

type fakeRuns struct {
	executed []runs.Options
	runErr   error
}

func (f *fakeRuns) Suites() []models.Suite {
	return []models.Suite{
		{Module: "reports", Category: "Reports", Endpoints: []models.Endpoint{{Method: "GET", Path: "/reports/health"}, {Method: "GET", Path: "/reports/{id}"}}},
		{Module: "audit", Category: "Audit", Endpoints: []models.Endpoint{{Method: "GET", Path: "/audit/logs"}}},
	}
}

func (f *fakeRuns) Validate(opts runs.Options) error {
	_, err := smoke.ParsePolicy(opts.Policy)
	if opts.Policy != "" && err != nil {
		return err
	}
	if _, err := catalog.Filter(f.Suites(), opts.Modules...); err != nil {
		return err
	}
	if opts.Role == "customer" {
		return fmt.Errorf("%w: %q", runs.ErrNoCredentials, opts.Role)
	}
	return nil
}

func (f *fakeRuns) Execute(_ context.Context, opts runs.Options) (runs.Run, error) {
	f.executed = append(f.executed, opts)
	return runs.Run{Summary: models.Summary{RunID: "run-1", Policy: "fixed", TotalTests: 3, Passed: 3}}, f.runErr
}

type fakeBackground struct {
	busy      bool
	triggered []runs.Options
}

func (f *fakeBackground) Trigger(opts runs.Options) bool {
	if f.busy {
		return false
	}
	f.triggered = append(f.triggered, opts)
	return true
}

func (f *fakeBackground) Running() bool { return f.busy }

type fakeMessaging struct{ payloads int }

func (f *fakeMessaging) VerifyWebhookToken(mode, token, challenge string) (string, error) {
	if token != "hush" {
		return "", errors.New("invalid verify token")
	}
	return challenge, nil
}

func (f *fakeMessaging) HandleWebhook(context.Context, models.WebhookPayload) error {
	f.payloads++
	return errors.New("reply failed")
}

func newTestServer(t *testing.T, svc *fakeRuns, bg *fakeBackground, messaging *fakeMessaging) (*httptest.Server, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	var webhook *handlers.WebhookHandler
	if messaging != nil {
		webhook = handlers.NewWebhookHandler(messaging, nil)
	}
	var background handlers.BackgroundRunner
	if bg != nil {
		background = bg
	}
	srv := httptest.NewServer(New(handlers.NewRunsHandler(svc, store, background, reporting.NewService(store, nil), nil), webhook, nil))
	t.Cleanup(srv.Close)
	return srv, store
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, &fakeRuns{}, nil, nil)

	var body map[string]string
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/healthz", &body))
	assert.Equal(t, "ok", body["status"])
}

func TestListSuites(t *testing.T) {
	srv, _ := newTestServer(t, &fakeRuns{}, nil, nil)

	var body struct {
		Suites []struct {
			Module    string `json:"module"`
			Endpoints int    `json:"endpoints"`
		} `json:"suites"`
		Endpoints int      `json:"endpoints"`
		Policies  []string `json:"policies"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/suites", &body))
	assert.Equal(t, 3, body.Endpoints)
	require.Len(t, body.Suites, 2)
	assert.Equal(t, 2, body.Suites[0].Endpoints)
	assert.ElementsMatch(t, []string{"fixed", "permissive", "exact", "tolerant"}, body.Policies)
}

func TestRuns_ListAndLatest(t *testing.T) {
	srv, store := newTestServer(t, &fakeRuns{}, nil, nil)

	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/runs/latest", nil))

	var empty struct {
		Runs []models.Summary `json:"runs"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/runs", &empty))
	assert.NotNil(t, empty.Runs)
	assert.Empty(t, empty.Runs)

	base := time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.SaveRun(context.Background(), models.Summary{
			RunID:     fmt.Sprintf("run-%d", i),
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Results:   []models.Result{{Endpoint: "/x"}},
		}))
	}

	var latest models.Summary
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/runs/latest", &latest))
	assert.Equal(t, "run-2", latest.RunID)
	assert.Len(t, latest.Results, 1)

	var list struct {
		Runs []models.Summary `json:"runs"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/runs?limit=2", &list))
	require.Len(t, list.Runs, 2)
	assert.Equal(t, "run-2", list.Runs[0].RunID)
	assert.Empty(t, list.Runs[0].Results)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/runs?limit=zero", nil))
}

func TestRunsTrend(t *testing.T) {
	srv, store := newTestServer(t, &fakeRuns{}, nil, nil)

	require.NoError(t, store.SaveRun(context.Background(), models.Summary{
		RunID: "recent", Timestamp: time.Now().UTC().Add(-time.Hour), TotalTests: 4, Passed: 3, Failed: 1,
	}))

	var trend reporting.Trend
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/runs/trend?days=1", &trend))
	assert.Equal(t, 1, trend.Runs)
	assert.InDelta(t, 75.0, trend.PassRate, 0.001)
	assert.Equal(t, "recent", trend.WorstRunID)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/runs/trend?days=400", nil))
}

func TestStartRun_Sync(t *testing.T) {
	svc := &fakeRuns{}
	srv, _ := newTestServer(t, svc, nil, nil)

	resp := postJSON(t, srv.URL+"/runs", map[string]any{"policy": "fixed", "modules": []string{"reports"}, "role": " Admin "})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Summary models.Summary `json:"summary"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "run-1", body.Summary.RunID)
	require.Len(t, svc.executed, 1)
	assert.Equal(t, runs.Options{Policy: "fixed", Modules: []string{"reports"}, Role: "admin"}, svc.executed[0])
}

func TestStartRun_EmptyBodyUsesDefaults(t *testing.T) {
	svc := &fakeRuns{}
	srv, _ := newTestServer(t, svc, nil, nil)

	resp, err := http.Post(srv.URL+"/runs", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, svc.executed, 1)
	assert.Equal(t, runs.Options{}, svc.executed[0])
}

func TestStartRun_Invalid(t *testing.T) {
	svc := &fakeRuns{}
	srv, _ := newTestServer(t, svc, nil, nil)

	cases := []map[string]any{
		{"policy": "lenient"},
		{"modules": []string{"nosuch"}},
		{"role": "customer"},
	}
	for _, body := range cases {
		resp := postJSON(t, srv.URL+"/runs", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "%v", body)
	}

	resp, err := http.Post(srv.URL+"/runs", "application/json", bytes.NewBufferString("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Empty(t, svc.executed)
}

func TestStartRun_Interrupted(t *testing.T) {
	srv, _ := newTestServer(t, &fakeRuns{runErr: context.Canceled}, nil, nil)

	resp := postJSON(t, srv.URL+"/runs", map[string]any{})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestStartRun_Async(t *testing.T) {
	bg := &fakeBackground{}
	svc := &fakeRuns{}
	srv, _ := newTestServer(t, svc, bg, nil)

	resp := postJSON(t, srv.URL+"/runs", map[string]any{"policy": "tolerant", "async": true})
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.Len(t, bg.triggered, 1)
	assert.Equal(t, "tolerant", bg.triggered[0].Policy)
	assert.Empty(t, svc.executed)

	bg.busy = true
	resp = postJSON(t, srv.URL+"/runs", map[string]any{"async": true})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var status map[string]bool
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/runs/status", &status))
	assert.True(t, status["running"])
}

func TestStartRun_AsyncWithoutBackground(t *testing.T) {
	srv, _ := newTestServer(t, &fakeRuns{}, nil, nil)

	resp := postJSON(t, srv.URL+"/runs", map[string]any{"async": true})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebhookRoutes(t *testing.T) {
	srv, _ := newTestServer(t, &fakeRuns{}, nil, nil)
	resp, err := http.Get(srv.URL + "/webhook?hub.mode=subscribe&hub.verify_token=hush&hub.challenge=1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "webhook disabled")

	messaging := &fakeMessaging{}
	srv, _ = newTestServer(t, &fakeRuns{}, nil, messaging)

	resp, err = http.Get(srv.URL + "/webhook?hub.mode=subscribe&hub.verify_token=hush&hub.challenge=1158201444")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	assert.Equal(t, "1158201444", buf.String())

	bad, err := http.Get(srv.URL + "/webhook?hub.mode=subscribe&hub.verify_token=nope&hub.challenge=1")
	require.NoError(t, err)
	bad.Body.Close()
	assert.Equal(t, http.StatusForbidden, bad.StatusCode)

	// processing errors are acknowledged so Meta does not redeliver
	ack := postJSON(t, srv.URL+"/webhook", models.WebhookPayload{Object: "whatsapp_business_account"})
	assert.Equal(t, http.StatusOK, ack.StatusCode)
	assert.Equal(t, 1, messaging.payloads)

	other := postJSON(t, srv.URL+"/webhook", models.WebhookPayload{Object: "page"})
	assert.Equal(t, http.StatusNotFound, other.StatusCode)
	assert.Equal(t, 1, messaging.payloads)
}
