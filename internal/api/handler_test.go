package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"SportsCatalog/internal/memstore"
	"SportsCatalog/internal/metrics"
	"SportsCatalog/internal/model"
	"SportsCatalog/internal/service"

	"github.com/gin-gonic/gin"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

func newTestRouter(t *testing.T) (*gin.Engine, *memstore.MemStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger, _ := logtest.NewNullLogger()
	store := memstore.NewMemStore()
	m := metrics.New()
	p := service.NewStatusPropagator(store, m, logger)
	h := Handlers{
		Sports:     NewSportHandler(service.NewSportService(store, m, logger), logger),
		Events:     NewEventHandler(service.NewEventService(store, store, p, m, logger), logger),
		Selections: NewSelectionHandler(service.NewSelectionService(store, store, p, m, logger), logger),
	}
	return NewRouter(logger, m, h), store
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

// seed 创建 football -> e1 -> home/away
func seed(t *testing.T, r http.Handler) {
	t.Helper()
	steps := []struct {
		path string
		body string
	}{
		{"/sports/", `{"name":"Football","slug":"football","active":true}`},
		{"/events/", `{"name":"Final","slug":"final","active":true,"type":"preplay","sport_id":1,"status":"Pending","scheduled_start":"2024-06-01T18:00:00"}`},
		{"/selections/", `{"name":"Home","event_id":2,"price":1.5,"active":true,"outcome":"Unsettled"}`},
		{"/selections/", `{"name":"Away","event_id":2,"price":"2.755","active":true,"outcome":"Unsettled"}`},
	}
	for _, s := range steps {
		if rec := do(t, r, http.MethodPost, s.path, s.body); rec.Code != http.StatusCreated {
			t.Fatalf("POST %s = %d %s", s.path, rec.Code, rec.Body.String())
		}
	}
}

func TestCreateAndGet(t *testing.T) {
	r, _ := newTestRouter(t)
	seed(t, r)

	rec := do(t, r, http.MethodGet, "/selections/4", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET selection = %d %s", rec.Code, rec.Body.String())
	}
	sel := decode[model.Selection](t, rec)
	if sel.Price.String() != "2.76" {
		t.Fatalf("price = %s, want 2.76", sel.Price)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatalf("missing %s header", RequestIDHeader)
	}
}

func TestPriceHasTwoDecimals(t *testing.T) {
	r, _ := newTestRouter(t)
	seed(t, r)

	rec := do(t, r, http.MethodGet, "/selections/3", "")
	if !strings.Contains(rec.Body.String(), `"price":"1.50"`) {
		t.Fatalf("selection body = %s, want price 1.50", rec.Body.String())
	}
	rec = do(t, r, http.MethodGet, "/events", "")
	if !strings.Contains(rec.Body.String(), `"price":"1.50"`) || !strings.Contains(rec.Body.String(), `"price":"2.76"`) {
		t.Fatalf("nested selections = %s, want fixed two-decimal prices", rec.Body.String())
	}
}

func TestRequestIDEchoed(t *testing.T) {
	r, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("request id = %q, want abc-123", got)
	}
}

func TestListSportsNested(t *testing.T) {
	r, _ := newTestRouter(t)
	seed(t, r)

	rec := do(t, r, http.MethodGet, "/sports", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /sports = %d", rec.Code)
	}
	sports := decode[[]model.Sport](t, rec)
	if len(sports) != 1 || len(sports[0].Events) != 1 || len(sports[0].Events[0].Selections) != 2 {
		t.Fatalf("nested list = %+v", sports)
	}
}

func TestListEmptyIsArray(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := do(t, r, http.MethodGet, "/events", "")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("body = %q, want []", rec.Body.String())
	}
}

func TestStatusMapping(t *testing.T) {
	r, _ := newTestRouter(t)
	seed(t, r)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"missing field", http.MethodPost, "/sports/", `{"name":"x","slug":"x"}`, http.StatusBadRequest},
		{"malformed json", http.MethodPost, "/sports/", `{"name":`, http.StatusBadRequest},
		{"duplicate slug", http.MethodPost, "/sports/", `{"name":"F","slug":"football","active":true}`, http.StatusConflict},
		{"unknown sport", http.MethodPost, "/events/", `{"name":"x","slug":"x","active":true,"type":"preplay","sport_id":99,"status":"Pending","scheduled_start":"2024-06-01T18:00:00"}`, http.StatusBadRequest},
		{"bad datetime", http.MethodPost, "/events/", `{"name":"x","slug":"x","active":true,"type":"preplay","sport_id":1,"status":"Pending","scheduled_start":"tomorrow"}`, http.StatusBadRequest},
		{"unknown event", http.MethodPost, "/selections/", `{"name":"x","event_id":99,"price":1,"active":true,"outcome":"Unsettled"}`, http.StatusBadRequest},
		{"not found", http.MethodPut, "/sports/99", `{"name":"x"}`, http.StatusNotFound},
		{"bad id", http.MethodGet, "/events/abc", "", http.StatusBadRequest},
		{"get missing", http.MethodGet, "/selections/99", "", http.StatusNotFound},
		{"invalid regex", http.MethodPost, "/sports/search", `{"name_regex":"("}`, http.StatusBadRequest},
		{"range arity", http.MethodPost, "/events/search", `{"scheduled_start":["2024-06-01T00:00:00"]}`, http.StatusBadRequest},
		{"inverted range", http.MethodPost, "/events/search", `{"scheduled_start":["2024-06-02T00:00:00","2024-06-01T00:00:00"]}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, r, tc.method, tc.path, tc.body)
			if rec.Code != tc.want {
				t.Fatalf("%s %s = %d, want %d (%s)", tc.method, tc.path, rec.Code, tc.want, rec.Body.String())
			}
			if rec.Code >= 400 {
				body := decode[map[string]string](t, rec)
				if body["error"] == "" {
					t.Fatalf("error body = %v", body)
				}
			}
		})
	}
}

func TestUpdateSelectionCascades(t *testing.T) {
	r, store := newTestRouter(t)
	seed(t, r)

	for _, id := range []string{"3", "4"} {
		rec := do(t, r, http.MethodPut, "/selections/"+id, `{"active":false}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("PUT selection %s = %d %s", id, rec.Code, rec.Body.String())
		}
	}

	event := decode[model.Event](t, do(t, r, http.MethodGet, "/events/2", ""))
	if event.Active {
		t.Fatalf("event still active")
	}
	sport := decode[model.Sport](t, do(t, r, http.MethodGet, "/sports/1", ""))
	if sport.Active {
		t.Fatalf("sport still active")
	}
	if n := len(store.StatusChanges()); n != 2 {
		t.Fatalf("status changes = %d, want 2", n)
	}
}

func TestUpdateEventClearsActualStart(t *testing.T) {
	r, _ := newTestRouter(t)
	seed(t, r)

	rec := do(t, r, http.MethodPut, "/events/2", `{"actual_start":"2024-06-01T18:02:00Z","status":"Started"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT event = %d %s", rec.Code, rec.Body.String())
	}
	event := decode[model.Event](t, rec)
	if event.ActualStart == nil || event.Status != "Started" {
		t.Fatalf("event = %+v", event)
	}

	rec = do(t, r, http.MethodPut, "/events/2", `{"actual_start":null}`)
	event = decode[model.Event](t, rec)
	if event.ActualStart != nil {
		t.Fatalf("actual_start = %v, want null", event.ActualStart)
	}
	if event.Status != "Started" {
		t.Fatalf("status changed by unrelated update: %s", event.Status)
	}
}

func TestSearchEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)
	seed(t, r)

	cases := []struct {
		path string
		body string
		want int
	}{
		{"/sports/search", "", 1},
		{"/sports/search", `{"name_regex":"^Foot"}`, 1},
		{"/sports/search", `{"min_active_events":2}`, 0},
		{"/events/search", `{"min_active_selections":2}`, 1},
		{"/events/search", `{"scheduled_start":["2024-06-01T00:00:00","2024-06-01T23:59:59"]}`, 1},
		{"/selections/search", `{"name_regex":"^H"}`, 1},
		{"/selections/search", `{"min_active_events":0}`, 2},
		{"/selections/search", `{"scheduled_start":["2024-07-01T00:00:00Z","2024-07-02T00:00:00Z"]}`, 0},
	}
	for _, tc := range cases {
		rec := do(t, r, http.MethodPost, tc.path, tc.body)
		if rec.Code != http.StatusOK {
			t.Fatalf("POST %s %s = %d %s", tc.path, tc.body, rec.Code, rec.Body.String())
		}
		var rows []json.RawMessage
		if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(rows) != tc.want {
			t.Fatalf("POST %s %s returned %d rows, want %d", tc.path, tc.body, len(rows), tc.want)
		}
	}
}

func TestMetricsAndHealth(t *testing.T) {
	r, _ := newTestRouter(t)
	do(t, r, http.MethodPost, "/sports/search", `{}`)

	if rec := do(t, r, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d", rec.Code)
	}
	rec := do(t, r, http.MethodGet, "/metrics", "")
	if !bytes.Contains(rec.Body.Bytes(), []byte(`catalog_searches_total{entity="sports",result="ok"} 1`)) {
		t.Fatalf("metrics missing search counter:\n%s", rec.Body.String())
	}
}
