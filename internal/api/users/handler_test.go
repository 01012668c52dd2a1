package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"academy-app/internal/app/http/middleware"
	"academy-app/internal/domain/enrollments"
)

const jwtSecret = "jwt-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type readerStub struct {
	rows []enrollments.Enrollment
}

func (r readerStub) FindEnrollment(_ context.Context, purchaserID, itemID string) (*enrollments.Enrollment, error) {
	for i := range r.rows {
		if r.rows[i].ID == enrollments.Key(purchaserID, itemID) {
			return &r.rows[i], nil
		}
	}
	return nil, enrollments.ErrNotFound
}

func (r readerStub) ListEnrollmentsByPurchaser(_ context.Context, purchaserID string) ([]enrollments.Enrollment, error) {
	var out []enrollments.Enrollment
	for _, e := range r.rows {
		if e.PurchaserID == purchaserID {
			out = append(out, e)
		}
	}
	return out, nil
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newRouter(reader EnrollmentReader) *gin.Engine {
	h := NewHandler(reader, nil)
	h.now = func() time.Time { return fixedNow }

	r := gin.New()
	auth := r.Group("/", middleware.NewAuthenticator(jwtSecret, nil, nil).Middleware())
	auth.GET("/me/enrollments", h.GetMyEnrollments)
	auth.GET("/me/enrollments/:itemId", h.GetMyEnrollment)
	auth.GET("/items/:itemId/access", middleware.RequireActiveEnrollment(reader), h.ItemAccess)
	return r
}

func getAs(t *testing.T, r *gin.Engine, path, purchaserID string) *httptest.ResponseRecorder {
	t.Helper()
	token, err := middleware.SignAppToken(jwtSecret, purchaserID, middleware.RolePurchaser, "", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func fixtures() readerStub {
	expiresIn := fixedNow.Add(72 * time.Hour)
	return readerStub{rows: []enrollments.Enrollment{
		{ID: "u1_c1", PurchaserID: "u1", ItemID: "c1", Status: enrollments.StatusActive, Amount: 499, EnrolledAt: fixedNow.Add(-time.Hour)},
		{ID: "u1_c2", PurchaserID: "u1", ItemID: "c2", Status: enrollments.StatusActive, AccessExpiresAt: &expiresIn},
		{ID: "u2_c1", PurchaserID: "u2", ItemID: "c1", Status: enrollments.StatusCancelled},
	}}
}

func TestGetMyEnrollments(t *testing.T) {
	rec := getAs(t, newRouter(fixtures()), "/me/enrollments", "u1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got MeEnrollmentsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Enrollments) != 2 {
		t.Fatalf("expected 2 enrollments, got %d", len(got.Enrollments))
	}
	if !got.Enrollments[0].Access.Lifetime || got.Enrollments[0].Access.State != "granted" {
		t.Fatalf("expected lifetime access, got %+v", got.Enrollments[0].Access)
	}
	if d := got.Enrollments[1].Access.DaysLeft; d == nil || *d != 3 {
		t.Fatalf("expected 3 days left, got %v", d)
	}
}

func TestGetMyEnrollmentNotFound(t *testing.T) {
	rec := getAs(t, newRouter(fixtures()), "/me/enrollments/c9", "u1")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestItemAccess(t *testing.T) {
	r := newRouter(fixtures())

	if rec := getAs(t, r, "/items/c1/access", "u1"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for active enrollment, got %d", rec.Code)
	}
	if rec := getAs(t, r, "/items/c1/access", "u2"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for cancelled enrollment, got %d", rec.Code)
	}
	if rec := getAs(t, r, "/items/c3/access", "u1"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without enrollment, got %d", rec.Code)
	}
}
