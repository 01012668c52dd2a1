package payments

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"academy-app/internal/domain/billing"
	"academy-app/internal/domain/enrollments"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EnrollmentStore commits an enrollment and its payment audit row together.
// Implementations must upsert the enrollment by ID and skip a payment whose
// gateway order/payment pair already exists. If that pair belongs to another
// purchaser or item they return billing.ErrPaymentConflict without writing.
type EnrollmentStore interface {
	CommitEnrollment(ctx context.Context, e *enrollments.Enrollment, p *billing.Payment) error
}

type VerifyInput struct {
	OrderID     string
	PaymentID   string
	Signature   string
	PurchaserID string
	ItemID      string
	Amount      *float64
	Currency    string
}

type VerifyResult struct {
	EnrollmentID string
	PaymentID    string
}

// VerifiedPayment is a payment whose authenticity was already established,
// either by the HMAC check or by another signed channel.
type VerifiedPayment struct {
	OrderID     string
	PaymentID   string
	Signature   string
	PurchaserID string
	ItemID      string
	Amount      float64
	Currency    string
}

type Verifier struct {
	secret string
	store  EnrollmentStore
	log    *zap.Logger
	now    func() time.Time
	newID  func() string
}

func NewVerifier(secret string, store EnrollmentStore, log *zap.Logger) *Verifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Verifier{
		secret: secret,
		store:  store,
		log:    log,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

func (v *Verifier) VerifyAndEnroll(ctx context.Context, in VerifyInput) (VerifyResult, error) {
	if err := validateVerifyInput(in); err != nil {
		return VerifyResult{}, err
	}

	if v.secret == "" {
		v.log.Error("payment signature secret missing",
			zap.String("kind", "configuration"),
			zap.String("order_id", in.OrderID),
		)
		return VerifyResult{}, ErrConfiguration
	}

	if !ValidSignature(v.secret, in.OrderID, in.PaymentID, in.Signature) {
		v.log.Warn("payment signature mismatch",
			zap.String("security", "signature_mismatch"),
			zap.String("order_id", in.OrderID),
			zap.String("payment_id", in.PaymentID),
			zap.String("purchaser_id", in.PurchaserID),
			zap.String("item_id", in.ItemID),
		)
		return VerifyResult{}, ErrSignatureInvalid
	}

	return v.EnrollVerified(ctx, VerifiedPayment{
		OrderID:     in.OrderID,
		PaymentID:   in.PaymentID,
		Signature:   in.Signature,
		PurchaserID: in.PurchaserID,
		ItemID:      in.ItemID,
		Amount:      *in.Amount,
		Currency:    in.Currency,
	})
}

// EnrollVerified performs the unpaid -> enrolled transition. Callers must have
// authenticated the payment; VerifyAndEnroll is the only public HTTP path into it
// besides the signed Stripe webhook.
func (v *Verifier) EnrollVerified(ctx context.Context, p VerifiedPayment) (VerifyResult, error) {
	if p.OrderID == "" || p.PaymentID == "" || p.PurchaserID == "" || p.ItemID == "" {
		return VerifyResult{}, invalid("verified payment is missing identifiers")
	}
	if v.store == nil {
		return VerifyResult{}, fmt.Errorf("enrollment store is nil")
	}

	currency := strings.ToUpper(strings.TrimSpace(p.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}

	now := v.now().UTC()
	enrollmentID := enrollments.Key(p.PurchaserID, p.ItemID)

	enrollment := &enrollments.Enrollment{
		ID:              enrollmentID,
		PurchaserID:     p.PurchaserID,
		ItemID:          p.ItemID,
		EnrolledAt:      now,
		Status:          enrollments.StatusActive,
		PaymentID:       p.PaymentID,
		OrderID:         p.OrderID,
		Amount:          p.Amount,
		AccessExpiresAt: nil,
		DeviceCount:     0,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	payment := &billing.Payment{
		ID:               v.newID(),
		PurchaserID:      p.PurchaserID,
		ItemID:           p.ItemID,
		Amount:           p.Amount,
		Currency:         currency,
		GatewayOrderID:   p.OrderID,
		GatewayPaymentID: p.PaymentID,
		GatewaySignature: p.Signature,
		Status:           billing.StatusCompleted,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	// A started commit runs to completion even if the client goes away.
	if err := v.store.CommitEnrollment(context.WithoutCancel(ctx), enrollment, payment); err != nil {
		if errors.Is(err, billing.ErrPaymentConflict) {
			v.log.Warn("payment replayed for another purchase",
				zap.String("security", "payment_replay"),
				zap.String("enrollment_id", enrollmentID),
				zap.String("order_id", p.OrderID),
				zap.String("payment_id", p.PaymentID),
			)
			return VerifyResult{}, fmt.Errorf("%w: %w", ErrSignatureInvalid, err)
		}
		v.log.Error("enrollment commit failed",
			zap.String("kind", "store"),
			zap.String("enrollment_id", enrollmentID),
			zap.String("order_id", p.OrderID),
			zap.String("payment_id", p.PaymentID),
			zap.Error(err),
		)
		return VerifyResult{}, fmt.Errorf("commit enrollment %s: %w", enrollmentID, err)
	}

	v.log.Info("enrollment committed",
		zap.String("enrollment_id", enrollmentID),
		zap.String("order_id", p.OrderID),
		zap.String("payment_id", p.PaymentID),
	)

	return VerifyResult{EnrollmentID: enrollmentID, PaymentID: p.PaymentID}, nil
}

func validateVerifyInput(in VerifyInput) error {
	missing := make([]string, 0, 6)
	if strings.TrimSpace(in.OrderID) == "" {
		missing = append(missing, "orderId")
	}
	if strings.TrimSpace(in.PaymentID) == "" {
		missing = append(missing, "paymentId")
	}
	if strings.TrimSpace(in.Signature) == "" {
		missing = append(missing, "signature")
	}
	if strings.TrimSpace(in.PurchaserID) == "" {
		missing = append(missing, "purchaserId")
	}
	if strings.TrimSpace(in.ItemID) == "" {
		missing = append(missing, "itemId")
	}
	if in.Amount == nil {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return invalid("missing required fields: %s", strings.Join(missing, ", "))
	}
	if math.IsNaN(*in.Amount) || math.IsInf(*in.Amount, 0) || *in.Amount < 0 {
		return invalid("amount must be a non-negative number")
	}
	return nil
}
