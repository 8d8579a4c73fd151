package main

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// commerceBackend serves the alerts, cart and orders routes and records the
// mutating calls it receives.
type commerceBackend struct {
	mu    sync.Mutex
	calls []string
}

func (b *commerceBackend) record(r *http.Request) {
	b.mu.Lock()
	b.calls = append(b.calls, r.Method+" "+r.URL.Path)
	b.mu.Unlock()
}

func (b *commerceBackend) seen() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func fakeCommerce(t *testing.T) (*commerceBackend, *httptest.Server) {
	t.Helper()
	b := &commerceBackend{}
	reply := func(w http.ResponseWriter, status int, body string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, `{"data":{"accessToken":"token-1"}}`)
	})
	mux.HandleFunc("GET /inventory/alerts", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-1" {
			reply(w, http.StatusUnauthorized, `{"message":"Unauthorized"}`)
			return
		}
		reply(w, http.StatusOK, `{"data":[
			{"id":"al-1","productSku":"SKU-RED","severity":"high","status":"active","currentStock":2,"threshold":10},
			{"id":"al-2","productSku":"SKU-BLUE","severity":"low","status":"acknowledged","currentStock":8,"threshold":10}]}`)
	})
	mux.HandleFunc("POST /inventory/alerts/{id}/{action}", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		reply(w, http.StatusOK, `{"data":{}}`)
	})
	mux.HandleFunc("GET /cart", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, `{"data":{"items":[
			{"id":"ci-1","productId":"p-1","productName":"Teapot","quantity":2,"unitPrice":"12.50"},
			{"id":"ci-2","productId":"p-2","productName":"Cups","quantity":1,"unitPrice":"5"}]}}`)
	})
	mux.HandleFunc("DELETE /cart", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("DELETE /cart/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /cart", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		reply(w, http.StatusCreated, `{"data":{"id":"ci-9","productId":"p-3","productName":"Kettle","quantity":1,"unitPrice":"30"}}`)
	})
	mux.HandleFunc("GET /orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		status := "delivered"
		if r.PathValue("id") == "ord-open" {
			status = "processing"
		}
		reply(w, http.StatusOK, `{"data":{"id":"`+r.PathValue("id")+`","status":"`+status+`","items":[
			{"productId":"p-3","productName":"Kettle","quantity":1,"unitPrice":"30"}]}}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return b, srv
}

func setCommerceEnv(t *testing.T, baseURL string) {
	t.Helper()
	setEnv(t, baseURL)
	t.Setenv("VENDOR_EMAIL", "vendor@groow.test")
	t.Setenv("VENDOR_PASSWORD", "pw")
	t.Setenv("CUSTOMER_EMAIL", "shopper@groow.test")
	t.Setenv("CUSTOMER_PASSWORD", "pw")
}

func TestAlertsCommand_List(t *testing.T) {
	_, srv := fakeCommerce(t)
	setCommerceEnv(t, srv.URL)

	out, err := execute("alerts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "SKU-RED")
	assert.Contains(t, out, "2/10")
	assert.NotContains(t, out, "SKU-BLUE")

	out, err = execute("alerts", "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "SKU-BLUE")
}

func TestAlertsCommand_Triage(t *testing.T) {
	backend, srv := fakeCommerce(t)
	setCommerceEnv(t, srv.URL)

	out, err := execute("alerts", "ack", "al-1", "--reason", "restock ordered")
	require.NoError(t, err)
	assert.Equal(t, "alert al-1 acknowledged\n", out)

	// al-2 is already acknowledged, so no call goes out.
	_, err = execute("alerts", "ack", "al-2")
	require.NoError(t, err)

	out, err = execute("alerts", "dismiss", "al-1")
	require.NoError(t, err)
	assert.Equal(t, "alert al-1 dismissed, 0 active left\n", out)

	_, err = execute("alerts", "resolve", "al-2", "--resolution", "restocked")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"POST /inventory/alerts/al-1/acknowledge",
		"POST /inventory/alerts/al-1/dismiss",
		"POST /inventory/alerts/al-2/resolve",
	}, backend.seen())
}

func TestAlertsCommand_RequiresCredentials(t *testing.T) {
	_, srv := fakeCommerce(t)
	setEnv(t, srv.URL)

	_, err := execute("alerts", "list")
	assert.ErrorContains(t, err, "no credentials")

	_, err = execute("alerts", "ack")
	assert.Error(t, err)
}

func TestCartCommand_ShowAndClear(t *testing.T) {
	backend, srv := fakeCommerce(t)
	setCommerceEnv(t, srv.URL)

	out, err := execute("cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Teapot")
	assert.Contains(t, out, "total 30.00")

	out, err = execute("cart", "remove", "ci-2")
	require.NoError(t, err)
	assert.NotContains(t, out, "Cups")
	assert.Contains(t, out, "total 25.00")

	out, err = execute("cart", "clear")
	require.NoError(t, err)
	assert.Equal(t, "cart cleared\n", out)

	assert.Equal(t, []string{"DELETE /cart/ci-2", "DELETE /cart"}, backend.seen())
}

func TestCartCommand_Reorder(t *testing.T) {
	backend, srv := fakeCommerce(t)
	setCommerceEnv(t, srv.URL)

	out, err := execute("cart", "reorder", "ord-7")
	require.NoError(t, err)
	assert.Equal(t, "1 lines added from order ord-7\n", out)
	assert.Equal(t, []string{"POST /cart"}, backend.seen())

	out, err = execute("cart", "reorder", "ord-open")
	assert.ErrorContains(t, err, "Only delivered orders can be reordered")
	assert.Contains(t, out, "0 lines added")
}
