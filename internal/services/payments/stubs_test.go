package payments

import (
	"context"
	"errors"
	"sync"

	"academy-app/internal/domain/billing"
	"academy-app/internal/domain/enrollments"
)

type gatewayStub struct {
	calls   int
	lastReq GatewayOrderRequest
	err     error
}

// CreateOrder echoes the requested amount back like the real gateway does.
func (g *gatewayStub) CreateOrder(_ context.Context, req GatewayOrderRequest) (GatewayOrder, error) {
	g.calls++
	g.lastReq = req
	if g.err != nil {
		return GatewayOrder{}, g.err
	}
	return GatewayOrder{ID: "order_stub_1", Amount: req.Amount, Currency: req.Currency}, nil
}

type enrollmentStoreStub struct {
	mu          sync.Mutex
	enrollments map[string]enrollments.Enrollment
	payments    []billing.Payment
	commits     int
	err         error
}

func newEnrollmentStoreStub() *enrollmentStoreStub {
	return &enrollmentStoreStub{enrollments: make(map[string]enrollments.Enrollment)}
}

func (s *enrollmentStoreStub) CommitEnrollment(_ context.Context, e *enrollments.Enrollment, p *billing.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.commits++
	if s.err != nil {
		return s.err
	}
	if e == nil || p == nil {
		return errors.New("nil commit payload")
	}

	for _, existing := range s.payments {
		if existing.GatewayOrderID == p.GatewayOrderID && existing.GatewayPaymentID == p.GatewayPaymentID {
			if existing.PurchaserID != p.PurchaserID || existing.ItemID != p.ItemID {
				return billing.ErrPaymentConflict
			}
			s.enrollments[e.ID] = *e
			return nil
		}
	}
	s.payments = append(s.payments, *p)
	s.enrollments[e.ID] = *e
	return nil
}

func (s *enrollmentStoreStub) PaymentsWithoutEnrollment(_ context.Context, limit int) ([]billing.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]billing.Payment, 0)
	for _, p := range s.payments {
		if _, ok := s.enrollments[enrollments.Key(p.PurchaserID, p.ItemID)]; ok {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
