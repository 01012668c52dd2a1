package access

import (
	"time"

	"academy-app/internal/domain/enrollments"
)

type Policy struct {
	State     AccessState
	Lifetime  bool
	ExpiresAt *time.Time
	DaysLeft  *int
}

func ComputePolicy(now time.Time, e *enrollments.Enrollment) Policy {
	state := ComputeAccessState(now, e)

	p := Policy{State: state}
	if e == nil {
		return p
	}

	if e.AccessExpiresAt == nil {
		p.Lifetime = state == AccessGranted
		return p
	}

	p.ExpiresAt = e.AccessExpiresAt
	d := 0
	if now.Before(*e.AccessExpiresAt) {
		d = int(e.AccessExpiresAt.Sub(now).Hours() / 24)
	}
	p.DaysLeft = &d

	return p
}
