package access

import (
	"time"

	"academy-app/internal/domain/enrollments"
)

// Effective access for an enrollment: granted|expired|cancelled|none
func ComputeAccessState(now time.Time, e *enrollments.Enrollment) AccessState {
	if e == nil {
		return AccessNone
	}

	switch e.Status {
	case enrollments.StatusActive:
		// Lifetime access when no expiry is recorded
		if e.AccessExpiresAt == nil || now.Before(*e.AccessExpiresAt) {
			return AccessGranted
		}
		return AccessExpired

	case enrollments.StatusExpired:
		return AccessExpired

	case enrollments.StatusCancelled:
		return AccessCancelled

	default:
		return AccessNone
	}
}
