package users

import "time"

type MeEnrollmentsResponse struct {
	PurchaserID string          `json:"purchaser_id"`
	Enrollments []EnrollmentDTO `json:"enrollments"`
}

/* ---------- ENROLLMENT ---------- */

type EnrollmentDTO struct {
	ID         string    `json:"id"`
	ItemID     string    `json:"item_id"`
	Status     string    `json:"status"`
	EnrolledAt time.Time `json:"enrolled_at"`
	Amount     float64   `json:"amount"`
	OrderID    string    `json:"order_id"`
	PaymentID  string    `json:"payment_id"`
	Access     AccessDTO `json:"access"`
}

/* ---------- ACCESS ---------- */

type AccessDTO struct {
	State     string     `json:"state"`
	Lifetime  bool       `json:"lifetime"`
	ExpiresAt *time.Time `json:"expires_at"`
	DaysLeft  *int       `json:"days_left"`
}
