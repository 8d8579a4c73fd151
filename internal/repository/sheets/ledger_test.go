package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/groow/smoke/internal/domain/models"
)

type fakeSheet struct {
	rows    [][]interface{}
	readErr error
	reads   int
}

func (f *fakeSheet) WriteRow(_ context.Context, _ string, values []interface{}) error {
	f.rows = append(f.rows, values)
	return nil
}

func (f *fakeSheet) ReadRange(_ context.Context, _ string) ([][]interface{}, error) {
	f.reads++
	if f.readErr != nil {
		return nil, f.readErr
	}
	if len(f.rows) == 0 {
		return nil, nil
	}
	return f.rows[:1], nil
}

func summaryFixture() models.Summary {
	return models.Summary{
		RunID:      "run-9",
		Policy:     "fixed",
		Role:       "admin",
		TotalTests: 5,
		Passed:     4,
		Failed:     1,
		Duration:   1234 * time.Millisecond,
		Timestamp:  time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRunLedger_HeaderOnce(t *testing.T) {
	sheet := &fakeSheet{}
	ledger := NewRunLedger(sheet)
	ctx := context.Background()

	require.NoError(t, ledger.AppendRun(ctx, summaryFixture()))
	require.NoError(t, ledger.AppendRun(ctx, summaryFixture()))

	require.Len(t, sheet.rows, 3)
	assert.Equal(t, ledgerHeader, sheet.rows[0])
	assert.Equal(t, []interface{}{"2026-07-01T12:00:00Z", "run-9", "fixed", "admin", false, 5, 4, 1, 0, "1.23"}, sheet.rows[1])
	assert.Equal(t, 1, sheet.reads)
}

func TestRunLedger_ExistingHeader(t *testing.T) {
	sheet := &fakeSheet{rows: [][]interface{}{{"Timestamp"}}}
	require.NoError(t, NewRunLedger(sheet).AppendRun(context.Background(), summaryFixture()))
	assert.Len(t, sheet.rows, 2)
}

func TestRunLedger_HeaderReadFailureRetried(t *testing.T) {
	sheet := &fakeSheet{readErr: errors.New("quota")}
	ledger := NewRunLedger(sheet)

	assert.Error(t, ledger.AppendRun(context.Background(), summaryFixture()))
	assert.Empty(t, sheet.rows)

	sheet.readErr = nil
	require.NoError(t, ledger.AppendRun(context.Background(), summaryFixture()))
	assert.Len(t, sheet.rows, 2)
}

func TestGoogleSheetRepository_WriteRow(t *testing.T) {
	var (
		mu    sync.Mutex
		path  string
		query string
		body  sheetsapi.ValueRange
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		path = r.URL.Path
		query = r.URL.RawQuery
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1"}`))
	}))
	defer srv.Close()

	repo, err := newRepository(context.Background(), "sheet-1", nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	require.NoError(t, repo.WriteRow(context.Background(), runsRange, []interface{}{"a", 1}))

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, strings.HasPrefix(path, "/v4/spreadsheets/sheet-1/values/"), path)
	assert.True(t, strings.HasSuffix(path, ":append"), path)
	assert.Contains(t, query, "valueInputOption=USER_ENTERED")
	require.Len(t, body.Values, 1)
	assert.Equal(t, "a", body.Values[0][0])

	assert.Error(t, repo.WriteRow(context.Background(), "", nil))
}
