package users

import (
	"time"

	"academy-app/internal/domain/access"
	"academy-app/internal/domain/enrollments"
)

func BuildAccessDTO(p access.Policy) AccessDTO {
	return AccessDTO{
		State:     string(p.State),
		Lifetime:  p.Lifetime,
		ExpiresAt: p.ExpiresAt,
		DaysLeft:  p.DaysLeft,
	}
}

func BuildEnrollmentDTO(now time.Time, e enrollments.Enrollment) EnrollmentDTO {
	return EnrollmentDTO{
		ID:         e.ID,
		ItemID:     e.ItemID,
		Status:     string(e.Status),
		EnrolledAt: e.EnrolledAt,
		Amount:     e.Amount,
		OrderID:    e.OrderID,
		PaymentID:  e.PaymentID,
		Access:     BuildAccessDTO(access.ComputePolicy(now, &e)),
	}
}
