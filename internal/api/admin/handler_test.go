package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"academy-app/internal/domain/billing"
	"academy-app/internal/domain/enrollments"
	"academy-app/internal/repo/postgres"
	"academy-app/internal/services/payments"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type storeStub struct {
	payments   []billing.Payment
	lastStatus enrollments.Status
	lastPage   postgres.Page
	err        error
}

func (s *storeStub) ListPayments(_ context.Context, page postgres.Page) ([]billing.Payment, int64, error) {
	s.lastPage = page
	return s.payments, int64(len(s.payments)), s.err
}

func (s *storeStub) ListEnrollments(_ context.Context, status enrollments.Status, page postgres.Page) ([]enrollments.Enrollment, int64, error) {
	s.lastStatus, s.lastPage = status, page
	return nil, 0, s.err
}

func (s *storeStub) Stats(context.Context) (postgres.Stats, error) {
	return postgres.Stats{Payments: 3, Revenue: 1497, ActiveEnrollments: 2, Orphans: 1}, s.err
}

type reconcilerStub struct {
	fix   bool
	limit int
}

func (r *reconcilerStub) Run(_ context.Context, fix bool, limit int) (payments.ReconcileReport, error) {
	r.fix, r.limit = fix, limit
	return payments.ReconcileReport{Scanned: 1, Repaired: 1, Orphans: []string{"p1"}, DryRun: !fix}, nil
}

func newHandler(t *testing.T, store *storeStub, rec *reconcilerStub) *Handler {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return NewHandler(store, rec, LoginConfig{
		Email:        "admin@example.com",
		PasswordHash: string(hash),
		JWTSecret:    "jwt-secret",
	}, nil)
}

func do(h gin.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	r := gin.New()
	path := strings.SplitN(target, "?", 2)[0]
	r.Handle(method, path, h)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestLogin(t *testing.T) {
	h := newHandler(t, &storeStub{}, &reconcilerStub{})

	rec := do(h.Login, http.MethodPost, "/admin/login", `{"email":"Admin@Example.com","password":"correct horse"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct{ Token string }
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if strings.Count(body.Token, ".") != 2 {
		t.Fatalf("expected a jwt, got %q", body.Token)
	}

	if rec := do(h.Login, http.MethodPost, "/admin/login", `{"email":"admin@example.com","password":"wrong"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", rec.Code)
	}
	if rec := do(h.Login, http.MethodPost, "/admin/login", `{"email":"other@example.com","password":"correct horse"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong email, got %d", rec.Code)
	}
	if rec := do(h.Login, http.MethodPost, "/admin/login", `{"email":"not-an-email"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLoginNotConfigured(t *testing.T) {
	h := NewHandler(&storeStub{}, &reconcilerStub{}, LoginConfig{}, nil)
	rec := do(h.Login, http.MethodPost, "/admin/login", `{"email":"admin@example.com","password":"x"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestListAllPayments(t *testing.T) {
	store := &storeStub{payments: []billing.Payment{{
		ID: "p1", PurchaserID: "u1", ItemID: "c1", Amount: 499, Currency: "INR",
		Status: billing.StatusCompleted, CreatedAt: time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC),
	}}}
	h := newHandler(t, store, &reconcilerStub{})

	rec := do(h.ListAllPayments, http.MethodGet, "/admin/payments?limit=10&offset=20", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if store.lastPage != (postgres.Page{Limit: 10, Offset: 20}) {
		t.Fatalf("unexpected page %+v", store.lastPage)
	}
	if !strings.Contains(rec.Body.String(), `"created_at":"2025-02-01 09:30"`) || !strings.Contains(rec.Body.String(), `"total":1`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	store.err = errors.New("db down")
	if rec := do(h.ListAllPayments, http.MethodGet, "/admin/payments", ""); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestListAllEnrollmentsStatusFilter(t *testing.T) {
	store := &storeStub{}
	h := newHandler(t, store, &reconcilerStub{})

	if rec := do(h.ListAllEnrollments, http.MethodGet, "/admin/enrollments?status=active", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if store.lastStatus != enrollments.StatusActive {
		t.Fatalf("unexpected status filter %q", store.lastStatus)
	}
	if rec := do(h.ListAllEnrollments, http.MethodGet, "/admin/enrollments?status=refunded", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetStats(t *testing.T) {
	h := newHandler(t, &storeStub{}, &reconcilerStub{})
	rec := do(h.GetStats, http.MethodGet, "/admin/stats", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"orphan_payments":1`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestReconcile(t *testing.T) {
	rs := &reconcilerStub{}
	h := newHandler(t, &storeStub{}, rs)

	rec := do(h.Reconcile, http.MethodPost, "/admin/reconcile?fix=true&limit=25", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !rs.fix || rs.limit != 25 {
		t.Fatalf("unexpected reconcile args fix=%v limit=%d", rs.fix, rs.limit)
	}

	do(h.Reconcile, http.MethodPost, "/admin/reconcile", "")
	if rs.fix {
		t.Fatalf("reconcile must default to a dry run")
	}
}
