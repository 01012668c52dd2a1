package payments

import (
	"context"
	"fmt"

	"academy-app/internal/domain/billing"

	"go.uber.org/zap"
)

const defaultReconcileLimit = 500

// OrphanFinder lists completed payments whose enrollment row is missing,
// the state left behind by a crash between the two writes of older releases.
type OrphanFinder interface {
	PaymentsWithoutEnrollment(ctx context.Context, limit int) ([]billing.Payment, error)
}

type ReconcileReport struct {
	Scanned  int      `json:"scanned"`
	Repaired int      `json:"repaired"`
	Failed   int      `json:"failed"`
	Orphans  []string `json:"orphans"`
	DryRun   bool     `json:"dry_run"`
}

type Reconciler struct {
	finder   OrphanFinder
	verifier *Verifier
	log      *zap.Logger
}

func NewReconciler(finder OrphanFinder, verifier *Verifier, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{finder: finder, verifier: verifier, log: log}
}

// Run reports orphaned payments and, when fix is set, replays the enrollment
// commit for each of them.
func (r *Reconciler) Run(ctx context.Context, fix bool, limit int) (ReconcileReport, error) {
	if r.finder == nil {
		return ReconcileReport{}, fmt.Errorf("reconcile store is nil")
	}
	if limit <= 0 {
		limit = defaultReconcileLimit
	}

	orphans, err := r.finder.PaymentsWithoutEnrollment(ctx, limit)
	if err != nil {
		return ReconcileReport{}, fmt.Errorf("find orphaned payments: %w", err)
	}

	report := ReconcileReport{
		Scanned: len(orphans),
		Orphans: make([]string, 0, len(orphans)),
		DryRun:  !fix,
	}

	for _, p := range orphans {
		report.Orphans = append(report.Orphans, p.ID)
		if !fix {
			continue
		}

		_, err := r.verifier.EnrollVerified(ctx, VerifiedPayment{
			OrderID:     p.GatewayOrderID,
			PaymentID:   p.GatewayPaymentID,
			Signature:   p.GatewaySignature,
			PurchaserID: p.PurchaserID,
			ItemID:      p.ItemID,
			Amount:      p.Amount,
			Currency:    p.Currency,
		})
		if err != nil {
			report.Failed++
			r.log.Error("reconcile payment failed", zap.String("payment_id", p.ID), zap.Error(err))
			continue
		}
		report.Repaired++
	}

	r.log.Info("reconcile finished",
		zap.Int("scanned", report.Scanned),
		zap.Int("repaired", report.Repaired),
		zap.Int("failed", report.Failed),
		zap.Bool("dry_run", report.DryRun),
	)

	return report, nil
}
