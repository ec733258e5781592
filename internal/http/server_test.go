package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"flux/internal/core"
	"flux/internal/ledger"
	"flux/internal/storage/memory"
)

var fixedNow = time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)

type testServer struct {
	*Server
	repo *memory.Repository
}

func newTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	repo := memory.New()
	registry := ledger.NewRegistry(repo,
		ledger.WithClock(func() time.Time { return fixedNow }),
		ledger.WithUserName("Ana"))
	if opts.RateLimitRPS == 0 {
		opts.RateLimitRPS = 1000
		opts.RateLimitBurst = 1000
	}
	s := NewServer(":0", registry, nil, opts)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return &testServer{Server: s, repo: repo}
}

func (ts *testServer) do(t *testing.T, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		r.Header.Set(HeaderUserID, user)
	}
	rec := httptest.NewRecorder()
	ts.Handler.ServeHTTP(rec, r)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

const rentBody = `{"type":"expense","amount":1500,"date":"2024-05-10","description":"Aluguel","payer":"Ana","category":"Moradia"}`

func TestServerLimits(t *testing.T) {
	ts := newTestServer(t, Options{})
	tests := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"read header", ts.ReadHeaderTimeout, 10 * time.Second},
		{"read", ts.ReadTimeout, 30 * time.Second},
		{"write", ts.WriteTimeout, 30 * time.Second},
		{"idle", ts.IdleTimeout, 120 * time.Second},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s timeout = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
	if ts.MaxHeaderBytes != 1<<16 {
		t.Errorf("MaxHeaderBytes = %d, want %d", ts.MaxHeaderBytes, 1<<16)
	}
}

func TestMissingUserHeader(t *testing.T) {
	ts := newTestServer(t, Options{})
	rec := ts.do(t, http.MethodGet, "/api/transactions", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCreateAndListTransactions(t *testing.T) {
	ts := newTestServer(t, Options{})

	rec := ts.do(t, http.MethodPost, "/api/transactions", "u1", rentBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decode[transactionJSON](t, rec)
	if created.ID == "" || created.Status != "planned" || created.PaymentMethod != "other" {
		t.Errorf("created = %+v", created)
	}
	if created.Amount.Cents != 150000 {
		t.Errorf("amount = %d cents, want 150000", created.Amount.Cents)
	}

	rec = ts.do(t, http.MethodGet, "/api/transactions?type=expense", "u1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	if list := decode[[]transactionJSON](t, rec); len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("list = %+v", list)
	}

	rec = ts.do(t, http.MethodGet, "/api/transactions?type=income", "u1", "")
	if list := decode[[]transactionJSON](t, rec); len(list) != 0 {
		t.Errorf("income list = %+v, want empty", list)
	}

	rec = ts.do(t, http.MethodGet, "/api/transactions?scope=week", "u1", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad scope status = %d, want 422", rec.Code)
	}
}

func TestTransactionErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		want  int
		field string
	}{
		{
			name: "date outside selected month",
			body: `{"type":"expense","amount":10,"date":"2024-06-10","description":"x","payer":"Ana","category":"Moradia"}`,
			want: http.StatusUnprocessableEntity,
		},
		{
			name:  "unknown payer",
			body:  `{"type":"expense","amount":10,"date":"2024-05-10","description":"x","payer":"Bia","category":"Moradia"}`,
			want:  http.StatusUnprocessableEntity,
			field: "payer",
		},
		{
			name:  "missing description",
			body:  `{"type":"expense","amount":10,"date":"2024-05-10","payer":"Ana","category":"Moradia"}`,
			want:  http.StatusUnprocessableEntity,
			field: "description",
		},
		{
			name:  "bad date",
			body:  `{"type":"expense","amount":10,"date":"10/05/2024","description":"x","payer":"Ana","category":"Moradia"}`,
			want:  http.StatusUnprocessableEntity,
			field: "date",
		},
		{
			name: "not json",
			body: `{"type":`,
			want: http.StatusBadRequest,
		},
		{
			name: "unknown field",
			body: `{"type":"expense","colour":"red"}`,
			want: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, Options{})
			rec := ts.do(t, http.MethodPost, "/api/transactions", "u1", tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
			if tt.field != "" {
				if got := decode[errorResponse](t, rec); got.Field != tt.field {
					t.Errorf("field = %q, want %q", got.Field, tt.field)
				}
			}
		})
	}
}

func TestInstallmentPlan(t *testing.T) {
	ts := newTestServer(t, Options{})
	body := `{"type":"expense","amount":"100.00","date":"2024-05-20","description":"TV","payer":"Ana","category":"Moradia","installments":3}`

	rec := ts.do(t, http.MethodPost, "/api/transactions", "u1", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	rows := decode[[]transactionJSON](t, rec)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	var total int64
	for i, row := range rows {
		if row.Installment == nil || row.Installment.Current != i+1 || row.Installment.Total != 3 {
			t.Errorf("row %d installment = %+v", i, row.Installment)
		}
		total += row.Amount.Cents
	}
	if total != 10000 {
		t.Errorf("total = %d cents, want 10000", total)
	}
	if rows[2].Date.String() != "2024-07-20" {
		t.Errorf("last date = %s, want 2024-07-20", rows[2].Date)
	}

	rec = ts.do(t, http.MethodDelete, "/api/transactions/"+rows[1].ID, "u1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = ts.do(t, http.MethodGet, "/api/transactions?scope=all", "u1", "")
	if list := decode[[]transactionJSON](t, rec); len(list) != 0 {
		t.Errorf("after group delete = %d rows, want 0", len(list))
	}
}

func TestUpdateTransaction(t *testing.T) {
	ts := newTestServer(t, Options{})
	created := decode[transactionJSON](t, ts.do(t, http.MethodPost, "/api/transactions", "u1", rentBody))

	update := strings.Replace(rentBody, `"amount":1500`, `"amount":1600`, 1)
	rec := ts.do(t, http.MethodPut, "/api/transactions/"+created.ID, "u1", update)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := decode[transactionJSON](t, rec); got.Amount.Cents != 160000 {
		t.Errorf("amount = %d, want 160000", got.Amount.Cents)
	}

	rec = ts.do(t, http.MethodPut, "/api/transactions/missing", "u1", update)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", rec.Code)
	}

	rec = ts.do(t, http.MethodDelete, "/api/transactions/missing", "u1", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete unknown status = %d, want 204", rec.Code)
	}
}

func TestCardStatement(t *testing.T) {
	ts := newTestServer(t, Options{})
	rec := ts.do(t, http.MethodPost, "/api/cards", "u1",
		`{"bank_name":"Nubank","holder_name":"Ana","limit":5000,"closing_day":5,"due_day":12}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create card status = %d, body %s", rec.Code, rec.Body.String())
	}
	card := decode[cardJSON](t, rec)

	rec = ts.do(t, http.MethodGet, "/api/cards/"+card.ID+"/statement", "u1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("statement status = %d", rec.Code)
	}
	if st := decode[statementJSON](t, rec); st.Available.Cents != 500000 {
		t.Errorf("available = %d, want 500000", st.Available.Cents)
	}

	rec = ts.do(t, http.MethodGet, "/api/cards/nope/statement", "u1", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown card status = %d, want 404", rec.Code)
	}
}

func TestCategoriesSeededAndDuplicatesRejected(t *testing.T) {
	ts := newTestServer(t, Options{})
	rec := ts.do(t, http.MethodGet, "/api/categories", "u1", "")
	if cats := decode[[]categoryJSON](t, rec); len(cats) == 0 {
		t.Fatal("expected default categories")
	}

	rec = ts.do(t, http.MethodPost, "/api/categories", "u1", `{"name":"moradia","type":"expense"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("duplicate status = %d, want 422", rec.Code)
	}
	rec = ts.do(t, http.MethodPost, "/api/categories", "u1", `{"name":"Pets","type":"expense"}`)
	if rec.Code != http.StatusCreated {
		t.Errorf("create status = %d, want 201", rec.Code)
	}
}

func TestRepositoryFailureIsBadGateway(t *testing.T) {
	ts := newTestServer(t, Options{})
	if rec := ts.do(t, http.MethodGet, "/api/month", "u1", ""); rec.Code != http.StatusOK {
		t.Fatalf("warm-up status = %d", rec.Code)
	}
	ts.repo.FailWith(errors.New("connection reset"))

	rec := ts.do(t, http.MethodPost, "/api/transactions", "u1", rentBody)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if got := decode[errorResponse](t, rec); got.Error != "storage unavailable" {
		t.Errorf("error = %q", got.Error)
	}

	ts.repo.FailWith(nil)
	rec = ts.do(t, http.MethodGet, "/api/transactions", "u1", "")
	if list := decode[[]transactionJSON](t, rec); len(list) != 0 {
		t.Errorf("failed write was applied: %+v", list)
	}
}

func TestAccessGate(t *testing.T) {
	ts := newTestServer(t, Options{})
	_, err := ts.repo.SaveProfile(context.Background(), core.Profile{
		ID:       "u2",
		UserName: "Bia",
		Mode:     core.Individual,
		Theme:    core.LightTheme,
		Plan:     core.FreePlan,
	})
	if err != nil {
		t.Fatal(err)
	}

	if rec := ts.do(t, http.MethodGet, "/api/dashboard", "u2", ""); rec.Code != http.StatusForbidden {
		t.Errorf("dashboard status = %d, want 403", rec.Code)
	}
	rec := ts.do(t, http.MethodGet, "/api/profile", "u2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("profile status = %d, want 200", rec.Code)
	}
	if p := decode[profileJSON](t, rec); p.HasAccess || p.UserName != "Bia" {
		t.Errorf("profile = %+v", p)
	}
}

func TestUpdateProfileKeepsPlan(t *testing.T) {
	ts := newTestServer(t, Options{})
	rec := ts.do(t, http.MethodPut, "/api/profile", "u1",
		`{"user_name":"Ana","partner_name":"Bia","mode":"couple","theme":"light"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	p := decode[profileJSON](t, rec)
	if p.Plan != "pro" || !p.HasAccess {
		t.Errorf("plan/access changed: %+v", p)
	}
	if len(p.Payers) != 2 || p.Payers[1] != "Bia" {
		t.Errorf("payers = %v", p.Payers)
	}

	rec = ts.do(t, http.MethodPut, "/api/profile", "u1", `{"user_name":"Ana","mode":"trio","theme":"light"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad mode status = %d, want 422", rec.Code)
	}
}

func TestSelectMonth(t *testing.T) {
	ts := newTestServer(t, Options{})
	rec := ts.do(t, http.MethodGet, "/api/month", "u1", "")
	if m := decode[monthJSON](t, rec); m.Month != "2024-05" {
		t.Errorf("initial month = %q, want 2024-05", m.Month)
	}

	rec = ts.do(t, http.MethodPut, "/api/month", "u1", `{"year":2024,"month":6}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if m := decode[monthJSON](t, rec); m.Month != "2024-06" || m.Num != 6 {
		t.Errorf("month = %+v", m)
	}

	rec = ts.do(t, http.MethodPut, "/api/month", "u1", `{"year":2024,"month":13}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("month 13 status = %d, want 422", rec.Code)
	}
}

func TestNotifications(t *testing.T) {
	ts := newTestServer(t, Options{})
	body := `{"type":"expense","amount":80,"date":"2024-05-15","description":"Luz","payer":"Ana","category":"Moradia"}`
	if rec := ts.do(t, http.MethodPost, "/api/transactions", "u1", body); rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}

	rec := ts.do(t, http.MethodGet, "/api/notifications", "u1", "")
	var due *notificationJSON
	for _, n := range decode[[]notificationJSON](t, rec) {
		if n.Type == "due" {
			due = &n
			break
		}
	}
	if due == nil {
		t.Fatalf("no due notification in %s", rec.Body.String())
	}

	rec = ts.do(t, http.MethodPost, "/api/notifications/"+due.ID+"/read", "u1", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("mark read status = %d, want 204", rec.Code)
	}
	rec = ts.do(t, http.MethodPost, "/api/notifications/nope/read", "u1", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown notification status = %d, want 404", rec.Code)
	}
}

func TestDashboardAndOverview(t *testing.T) {
	ts := newTestServer(t, Options{})
	salary := `{"type":"income","amount":5000,"date":"2024-05-05","description":"Salário","payer":"Ana","category":"Salário","status":"completed"}`
	ts.do(t, http.MethodPost, "/api/transactions", "u1", salary)
	ts.do(t, http.MethodPost, "/api/transactions", "u1", strings.Replace(rentBody, `"Moradia"}`, `"Moradia","status":"completed"}`, 1))

	rec := ts.do(t, http.MethodGet, "/api/dashboard", "u1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d", rec.Code)
	}
	d := decode[dashboardJSON](t, rec)
	if d.Totals.Income.Cents != 500000 || d.Totals.Expense.Cents != 150000 || d.Totals.Result.Cents != 350000 {
		t.Errorf("totals = %+v", d.Totals)
	}
	if len(d.Annual) != 12 {
		t.Errorf("annual points = %d, want 12", len(d.Annual))
	}

	rec = ts.do(t, http.MethodGet, "/api/overview?month=2024-04", "u1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("overview status = %d", rec.Code)
	}
	ov := decode[overviewJSON](t, rec)
	if ov.Totals.Income.Cents != 0 || ov.Month.String() != "2024-04" {
		t.Errorf("april overview = %+v", ov)
	}

	rec = ts.do(t, http.MethodGet, "/api/overview?month=abril", "u1", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad month status = %d, want 422", rec.Code)
	}
}

func TestPreviewInstallments(t *testing.T) {
	ts := newTestServer(t, Options{})
	rec := ts.do(t, http.MethodPost, "/api/installments/preview", "u1",
		`{"amount":100,"installments":3,"date":"2024-01-15"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	p := decode[previewJSON](t, rec)
	if p.Total.Cents != 10000 || len(p.Parts) != 3 {
		t.Fatalf("preview = %+v", p)
	}
	if p.Parts[2].Amount.Cents != 3334 {
		t.Errorf("last part = %d cents, want 3334", p.Parts[2].Amount.Cents)
	}
	if p.Parts[1].Date.String() != "2024-02-15" {
		t.Errorf("second date = %s, want 2024-02-15", p.Parts[1].Date)
	}
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, Options{RateLimitRPS: 0.01, RateLimitBurst: 1})
	if rec := ts.do(t, http.MethodGet, "/api/month", "u1", ""); rec.Code != http.StatusOK {
		t.Fatalf("first status = %d", rec.Code)
	}
	rec := ts.do(t, http.MethodGet, "/api/month", "u1", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
	if rec := ts.do(t, http.MethodGet, "/api/month", "u2", ""); rec.Code != http.StatusOK {
		t.Errorf("other user status = %d, want 200", rec.Code)
	}
}

func TestHealthAndReadiness(t *testing.T) {
	ts := newTestServer(t, Options{Checks: map[string]ReadyCheck{
		"repository": func(context.Context) error { return nil },
	}})
	if rec := ts.do(t, http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz = %d", rec.Code)
	}
	if rec := ts.do(t, http.MethodGet, "/readyz", "", ""); rec.Code != http.StatusOK {
		t.Errorf("readyz = %d", rec.Code)
	}

	failing := newTestServer(t, Options{Checks: map[string]ReadyCheck{
		"broker": func(context.Context) error { return errors.New("closed") },
	}})
	rec := failing.do(t, http.MethodGet, "/readyz", "", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "failed: closed") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	ts := newTestServer(t, Options{})
	rec := ts.do(t, http.MethodGet, "/api/month", "u1", "")
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing nosniff header")
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing request id")
	}
	if rec := ts.do(t, "TRACE", "/api/month", "u1", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("TRACE status = %d, want 405", rec.Code)
	}
}
