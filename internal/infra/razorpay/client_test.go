package razorpay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"academy-app/internal/services/payments"
)

func TestCreateOrderPostsMinorUnits(t *testing.T) {
	var got orderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "rzp_test_key" || pass != "rzp_test_secret" {
			t.Errorf("unexpected basic auth %q/%q", user, pass)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_Nx1","entity":"order","amount":49900,"currency":"INR","receipt":"course_c1_1","status":"created"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/v1", "rzp_test_key", "rzp_test_secret")
	order, err := client.CreateOrder(context.Background(), payments.GatewayOrderRequest{
		Amount:   49900,
		Currency: "INR",
		Receipt:  "course_c1_1",
		Notes:    map[string]string{"itemId": "c1", "purchaseType": "course"},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if order.ID != "order_Nx1" || order.Amount != 49900 || order.Currency != "INR" {
		t.Fatalf("unexpected order %+v", order)
	}
	if got.Amount != 49900 || got.Receipt != "course_c1_1" || got.Notes["itemId"] != "c1" {
		t.Fatalf("unexpected request body %+v", got)
	}
}

func TestCreateOrderSurfacesGatewayDescription(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"Order amount less than minimum amount allowed"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "k", "s")
	_, err := client.CreateOrder(context.Background(), payments.GatewayOrderRequest{Amount: 1, Currency: "INR", Receipt: "r"})

	var gwErr *payments.GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected *GatewayError, got %v", err)
	}
	if !errors.Is(err, payments.ErrGateway) {
		t.Fatalf("expected error to match ErrGateway")
	}
	if gwErr.Description != "Order amount less than minimum amount allowed" || gwErr.Code != "BAD_REQUEST_ERROR" {
		t.Fatalf("unexpected gateway error %+v", gwErr)
	}
	if gwErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", gwErr.StatusCode)
	}
	if calls != 1 {
		t.Fatalf("order creation must not be retried, got %d calls", calls)
	}
}
