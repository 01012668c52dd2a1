package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"academy-app/internal/domain/billing"
	"academy-app/internal/domain/enrollments"
)

// EnrollmentRepo stores enrollments and their payment audit rows.
type EnrollmentRepo struct {
	db *gorm.DB
}

func NewEnrollmentRepo(db *gorm.DB) *EnrollmentRepo {
	return &EnrollmentRepo{db: db}
}

// CommitEnrollment appends the payment and upserts the enrollment in one
// transaction. Replays of the same gateway order/payment pair leave a single
// payment row; a replay for a different purchaser or item fails with
// billing.ErrPaymentConflict and writes nothing.
func (r *EnrollmentRepo) CommitEnrollment(ctx context.Context, e *enrollments.Enrollment, p *billing.Payment) error {
	if e == nil || p == nil {
		return fmt.Errorf("enrollment and payment are required")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := insertPayment(tx).Create(p)
		if res.Error != nil {
			return fmt.Errorf("insert payment: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			if err := checkRecordedPayment(tx, p); err != nil {
				return err
			}
		}
		if err := upsertEnrollment(tx).Create(e).Error; err != nil {
			return fmt.Errorf("upsert enrollment: %w", err)
		}
		return nil
	})
}

func checkRecordedPayment(tx *gorm.DB, p *billing.Payment) error {
	var existing billing.Payment
	err := tx.Where("gateway_order_id = ? AND gateway_payment_id = ?", p.GatewayOrderID, p.GatewayPaymentID).
		First(&existing).Error
	if err != nil {
		return fmt.Errorf("load recorded payment: %w", err)
	}
	if !samePurchase(existing, *p) {
		return fmt.Errorf("%w: order %s payment %s belongs to %s",
			billing.ErrPaymentConflict, p.GatewayOrderID, p.GatewayPaymentID,
			enrollments.Key(existing.PurchaserID, existing.ItemID))
	}
	return nil
}

func samePurchase(a, b billing.Payment) bool {
	return a.PurchaserID == b.PurchaserID && a.ItemID == b.ItemID
}

func upsertEnrollment(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "payment_id", "order_id", "amount",
			"access_expires_at", "device_count", "updated_at",
		}),
	})
}

func insertPayment(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "gateway_order_id"}, {Name: "gateway_payment_id"}},
		DoNothing: true,
	})
}

func (r *EnrollmentRepo) PaymentsWithoutEnrollment(ctx context.Context, limit int) ([]billing.Payment, error) {
	var out []billing.Payment
	err := r.db.WithContext(ctx).
		Table("payments AS p").
		Select("p.*").
		Joins("LEFT JOIN enrollments e ON e.id = p.purchaser_id || '_' || p.item_id").
		Where("e.id IS NULL AND p.status = ?", billing.StatusCompleted).
		Order("p.created_at ASC").
		Limit(limit).
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("find orphan payments: %w", err)
	}
	return out, nil
}

func (r *EnrollmentRepo) FindEnrollment(ctx context.Context, purchaserID, itemID string) (*enrollments.Enrollment, error) {
	var e enrollments.Enrollment
	err := r.db.WithContext(ctx).Where("id = ?", enrollments.Key(purchaserID, itemID)).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, enrollments.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &e, nil
}

func (r *EnrollmentRepo) ListEnrollmentsByPurchaser(ctx context.Context, purchaserID string) ([]enrollments.Enrollment, error) {
	var out []enrollments.Enrollment
	if err := r.db.WithContext(ctx).
		Where("purchaser_id = ?", purchaserID).
		Order("enrolled_at DESC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return out, nil
}

func (r *EnrollmentRepo) ListPaymentsByPurchaser(ctx context.Context, purchaserID string) ([]billing.Payment, error) {
	var out []billing.Payment
	if err := r.db.WithContext(ctx).
		Where("purchaser_id = ?", purchaserID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return out, nil
}

type Page struct {
	Limit  int
	Offset int
}

func (p Page) normalize() Page {
	if p.Limit <= 0 || p.Limit > 200 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

func (r *EnrollmentRepo) ListPayments(ctx context.Context, page Page) ([]billing.Payment, int64, error) {
	page = page.normalize()
	q := r.db.WithContext(ctx).Model(&billing.Payment{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	var out []billing.Payment
	if err := q.Order("created_at DESC").Limit(page.Limit).Offset(page.Offset).Find(&out).Error; err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}
	return out, total, nil
}

func (r *EnrollmentRepo) ListEnrollments(ctx context.Context, status enrollments.Status, page Page) ([]enrollments.Enrollment, int64, error) {
	page = page.normalize()
	q := r.db.WithContext(ctx).Model(&enrollments.Enrollment{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}

	var out []enrollments.Enrollment
	if err := q.Order("enrolled_at DESC").Limit(page.Limit).Offset(page.Offset).Find(&out).Error; err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}
	return out, total, nil
}

type Stats struct {
	Payments          int64   `json:"payments"`
	Revenue           float64 `json:"revenue"`
	Enrollments       int64   `json:"enrollments"`
	ActiveEnrollments int64   `json:"active_enrollments"`
	Orphans           int64   `json:"orphan_payments"`
}

func (r *EnrollmentRepo) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	db := r.db.WithContext(ctx)

	var agg struct {
		Count   int64
		Revenue float64
	}
	if err := db.Model(&billing.Payment{}).
		Select("COUNT(*) AS count, COALESCE(SUM(amount), 0) AS revenue").
		Where("status = ?", billing.StatusCompleted).
		Scan(&agg).Error; err != nil {
		return s, fmt.Errorf("payment stats: %w", err)
	}
	s.Payments, s.Revenue = agg.Count, agg.Revenue

	if err := db.Model(&enrollments.Enrollment{}).Count(&s.Enrollments).Error; err != nil {
		return s, fmt.Errorf("count enrollments: %w", err)
	}
	if err := db.Model(&enrollments.Enrollment{}).
		Where("status = ?", enrollments.StatusActive).
		Count(&s.ActiveEnrollments).Error; err != nil {
		return s, fmt.Errorf("count active enrollments: %w", err)
	}
	if err := db.Table("payments AS p").
		Joins("LEFT JOIN enrollments e ON e.id = p.purchaser_id || '_' || p.item_id").
		Where("e.id IS NULL AND p.status = ?", billing.StatusCompleted).
		Count(&s.Orphans).Error; err != nil {
		return s, fmt.Errorf("count orphan payments: %w", err)
	}
	return s, nil
}
