package payments

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestOrderService(g Gateway) *OrderService {
	svc := NewOrderService(g, nil)
	svc.now = func() time.Time { return time.UnixMilli(1767225600000) }
	return svc
}

func TestCreateOrderConvertsToMinorUnits(t *testing.T) {
	gw := &gatewayStub{}
	svc := newTestOrderService(gw)

	order, err := svc.Create(context.Background(), CreateOrderInput{ItemID: "course_1", Amount: 499, Currency: "INR"})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Amount != 49900 {
		t.Fatalf("expected 49900 minor units, got %d", order.Amount)
	}
	if order.OrderID != "order_stub_1" || order.Currency != "INR" {
		t.Fatalf("unexpected order: %+v", order)
	}
	if gw.lastReq.Receipt != "course_course_1_1767225600000" {
		t.Fatalf("unexpected receipt %q", gw.lastReq.Receipt)
	}
	if gw.lastReq.Notes["itemId"] != "course_1" || gw.lastReq.Notes["purchaseType"] != "course" {
		t.Fatalf("unexpected notes: %+v", gw.lastReq.Notes)
	}
}

func TestCreateOrderRoundsFractionalAmounts(t *testing.T) {
	gw := &gatewayStub{}
	svc := newTestOrderService(gw)

	order, err := svc.Create(context.Background(), CreateOrderInput{ItemID: "prod_9", Amount: 19.99, PurchaseType: "product"})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Amount != 1999 {
		t.Fatalf("expected rounded 1999, got %d", order.Amount)
	}
	if order.Currency != DefaultCurrency {
		t.Fatalf("expected default currency, got %q", order.Currency)
	}
	if !strings.HasPrefix(gw.lastReq.Receipt, "product_prod_9_") {
		t.Fatalf("unexpected receipt %q", gw.lastReq.Receipt)
	}
}

func TestCreateOrderRejectsInvalidInputWithoutCallingGateway(t *testing.T) {
	cases := []CreateOrderInput{
		{ItemID: "course_1", Amount: 0},
		{ItemID: "course_1", Amount: -10},
		{ItemID: "", Amount: 499},
		{ItemID: "   ", Amount: 499},
		{ItemID: "course_1", Amount: 0.001},
	}

	for _, in := range cases {
		gw := &gatewayStub{}
		svc := newTestOrderService(gw)

		_, err := svc.Create(context.Background(), in)
		if !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("input %+v: expected ErrInvalidRequest, got %v", in, err)
		}
		if gw.calls != 0 {
			t.Fatalf("input %+v: gateway must not be called", in)
		}
	}
}

func TestCreateOrderWithoutGatewayIsConfigurationError(t *testing.T) {
	svc := newTestOrderService(nil)

	_, err := svc.Create(context.Background(), CreateOrderInput{ItemID: "course_1", Amount: 499})
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("configuration error must not look like a client error")
	}
}

func TestCreateOrderSurfacesGatewayDescription(t *testing.T) {
	gw := &gatewayStub{err: &GatewayError{StatusCode: 400, Code: "BAD_REQUEST_ERROR", Description: "Order amount less than minimum amount allowed"}}
	svc := newTestOrderService(gw)

	_, err := svc.Create(context.Background(), CreateOrderInput{ItemID: "course_1", Amount: 499})
	if !errors.Is(err, ErrGateway) {
		t.Fatalf("expected ErrGateway, got %v", err)
	}
	var gwErr *GatewayError
	if !errors.As(err, &gwErr) || gwErr.Description != "Order amount less than minimum amount allowed" {
		t.Fatalf("expected gateway description to survive, got %v", err)
	}
	if gw.calls != 1 {
		t.Fatalf("order creation must not be retried, got %d calls", gw.calls)
	}
}

func TestCreateOrderWrapsUntypedGatewayErrors(t *testing.T) {
	gw := &gatewayStub{err: errors.New("dial tcp: connection refused")}
	svc := newTestOrderService(gw)

	_, err := svc.Create(context.Background(), CreateOrderInput{ItemID: "course_1", Amount: 499})
	if !errors.Is(err, ErrGateway) {
		t.Fatalf("expected untyped error to be classified as ErrGateway, got %v", err)
	}
}
