package httpapi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cwhuang-tw/camreview/internal/camreview/cache"
	notifymem "github.com/cwhuang-tw/camreview/internal/camreview/notify/memory"
	"github.com/cwhuang-tw/camreview/internal/camreview/service"
	storemem "github.com/cwhuang-tw/camreview/internal/camreview/store/memory"
	"github.com/cwhuang-tw/camreview/internal/camreview/types"
	"github.com/cwhuang-tw/camreview/internal/httpapi"
)

const (
	approver1 = "alice@example.com"
	approver2 = "bob@example.com"
	activator = "carol@example.com"
	submitter = "dave@example.com"
	outsider  = "mallory@example.com"

	identityHeader = "X-Authenticated-User"
)

type testServer struct {
	handler  http.Handler
	requests *storemem.RequestStore
	roster   *storemem.RosterStore
	catalog  *storemem.CatalogStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	requests := storemem.NewRequestStore()
	roster := storemem.NewRosterStore()
	roster.SetMembers(types.RoleApprover1, approver1)
	roster.SetMembers(types.RoleApprover2, approver2)
	roster.SetMembers(types.RoleActivator, activator)

	directory := storemem.NewDirectoryStore()
	catalog := storemem.NewCatalogStore()

	roles := service.NewRoleResolver(roster, cache.New[[]string](time.Now), logger)
	names := service.NewDirectoryResolver(directory, cache.New[map[string]string](time.Now), logger)

	workflow := service.NewWorkflow(requests, roles, names, notifymem.New(), logger)
	queries := service.NewQueryService(requests, roles, names, time.UTC)
	legacy := service.NewLegacyService(requests, roles, logger, time.UTC)

	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:         logger,
		IdentityHeader: identityHeader,
		Workflow:       workflow,
		Queries:        queries,
		Legacy:         legacy,
		Catalog:        service.NewCatalogService(catalog, logger),
		Roles:          roles,
		Directory:      names,
	})

	return &testServer{
		handler:  srv.Handler(),
		requests: requests,
		roster:   roster,
		catalog:  catalog,
	}
}

func (ts *testServer) do(method, path, identity, body string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if identity != "" {
		req.Header.Set(identityHeader, identity)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeOutcome(t *testing.T, rec *httptest.ResponseRecorder) types.Outcome {
	t.Helper()
	var o types.Outcome
	if err := json.NewDecoder(rec.Body).Decode(&o); err != nil {
		t.Fatalf("decoding outcome body: %v", err)
	}
	return o
}

func (ts *testServer) submitOne(t *testing.T) int64 {
	t.Helper()
	rec := ts.do(http.MethodPost, "/v1/requests", submitter,
		`{"requester":"陳小明","camera":"大門","reason":"跌倒事件","activation_days":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding submit response: %v", err)
	}
	return resp.ID
}

func TestMissingIdentityHeaderIsRejected(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/v1/tasks", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSubmit(t *testing.T) {
	ts := newTestServer(t)

	id := ts.submitOne(t)
	if id != 1 {
		t.Errorf("expected first record id 1, got %d", id)
	}

	req, err := ts.requests.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if req.Status != types.StatusAwaitingApproval1 {
		t.Errorf("expected awaiting_approval1, got %s", req.Status)
	}
}

func TestSubmit_BadJSON(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/v1/requests", submitter, `{"requester":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSubmit_MissingFields(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/v1/requests", submitter,
		`{"requester":"","camera":"大門","reason":"r","activation_days":3}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if o := decodeOutcome(t, rec); o.Code != types.OutcomeInvalidInput {
		t.Errorf("expected invalid_input, got %s", o.Code)
	}
}

func TestApprove_StatusMapping(t *testing.T) {
	ts := newTestServer(t)
	id := ts.submitOne(t)

	cases := []struct {
		name     string
		path     string
		identity string
		want     int
	}{
		{"wrong role", "/v1/requests/1/approve", approver2, http.StatusForbidden},
		{"unknown record", "/v1/requests/99/approve", approver1, http.StatusNotFound},
		{"malformed id", "/v1/requests/zero/approve", approver1, http.StatusBadRequest},
		{"right role", "/v1/requests/1/approve", approver1, http.StatusOK},
		{"already advanced", "/v1/requests/1/approve", approver1, http.StatusForbidden},
	}
	for _, tc := range cases {
		rec := ts.do(http.MethodPost, tc.path, tc.identity, "")
		if rec.Code != tc.want {
			t.Errorf("%s: expected %d, got %d: %s", tc.name, tc.want, rec.Code, rec.Body.String())
		}
	}

	req, err := ts.requests.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if req.Status != types.StatusAwaitingApproval2 {
		t.Errorf("expected awaiting_approval2 after first approval, got %s", req.Status)
	}
}

func TestFullChainOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	id := ts.submitOne(t)

	for _, identity := range []string{approver1, approver2, activator} {
		rec := ts.do(http.MethodPost, "/v1/requests/1/approve", identity, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("approve as %s: expected 200, got %d: %s", identity, rec.Code, rec.Body.String())
		}
	}

	req, err := ts.requests.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if req.Status != types.StatusActivated {
		t.Errorf("expected activated, got %s", req.Status)
	}
}

func TestBatchApprove(t *testing.T) {
	ts := newTestServer(t)
	ts.submitOne(t)
	ts.submitOne(t)

	rec := ts.do(http.MethodPost, "/v1/requests/approve", outsider, `{"ids":[1,2]}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-reviewer batch: expected 403, got %d", rec.Code)
	}

	rec = ts.do(http.MethodPost, "/v1/requests/approve", approver1, `{"ids":[1,2,99]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("reviewer batch: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Result service.BatchResult `json:"result"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding batch response: %v", err)
	}
	if resp.Result.Succeeded != 2 || resp.Result.Failed != 1 {
		t.Errorf("expected 2 succeeded / 1 failed, got %+v", resp.Result)
	}
}

func TestTasks_ScopedToCaller(t *testing.T) {
	ts := newTestServer(t)
	ts.submitOne(t)

	rec := ts.do(http.MethodGet, "/v1/tasks", outsider, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var empty types.Table
	if err := json.NewDecoder(rec.Body).Decode(&empty); err != nil {
		t.Fatalf("decoding table: %v", err)
	}
	if len(empty.Rows) != 0 {
		t.Errorf("non-reviewer must see no tasks, got %d rows", len(empty.Rows))
	}

	rec = ts.do(http.MethodGet, "/v1/tasks", approver1, "")
	var table types.Table
	if err := json.NewDecoder(rec.Body).Decode(&table); err != nil {
		t.Fatalf("decoding table: %v", err)
	}
	if len(table.Rows) != 1 {
		t.Errorf("first approver should see 1 task, got %d", len(table.Rows))
	}
}

func TestLegacyReviewed_EmptySelection(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/v1/legacy/reviewed", approver1, `{"ids":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCatalog(t *testing.T) {
	ts := newTestServer(t)
	ts.catalog.AddCamera("陳小明", "大門")
	ts.catalog.AddCamera("陳小明", "側門")

	rec := ts.do(http.MethodGet, "/v1/catalog", submitter, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var m map[string][]string
	if err := json.NewDecoder(rec.Body).Decode(&m); err != nil {
		t.Fatalf("decoding catalog: %v", err)
	}
	if len(m["陳小明"]) != 2 {
		t.Errorf("expected 2 cameras for requester, got %v", m)
	}
}

func TestInvalidateCaches_ReviewerOnly(t *testing.T) {
	ts := newTestServer(t)

	if rec := ts.do(http.MethodPost, "/v1/admin/caches/invalidate", outsider, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("outsider: expected 403, got %d", rec.Code)
	}
	if rec := ts.do(http.MethodPost, "/v1/admin/caches/invalidate", approver1, ""); rec.Code != http.StatusOK {
		t.Fatalf("reviewer: expected 200, got %d", rec.Code)
	}
}
