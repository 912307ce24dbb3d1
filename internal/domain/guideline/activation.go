package guideline

import "time"

// StatusChange is the transition produced when a guideline reaches unanimous
// approval.
type StatusChange struct {
	Status      Status
	ActivatedAt time.Time
	ExpiresAt   *time.Time
}

// EvaluateActivation decides whether a guideline moves to ACTIVE. Terminal
// statuses (ACTIVE, RETIRED) never transition again through this path, so
// repeated evaluation is a no-op. A non-empty approval set where every member
// has approved activates the guideline; RULE guidelines additionally get an
// expiry of now plus the configured window.
func EvaluateActivation(g Guideline, approvals []Approval, now time.Time, window time.Duration) (StatusChange, bool) {
	if g.Status == StatusActive || g.Status == StatusRetired {
		return StatusChange{}, false
	}
	if len(approvals) == 0 {
		return StatusChange{}, false
	}
	for _, approval := range approvals {
		if !approval.Approved {
			return StatusChange{}, false
		}
	}

	change := StatusChange{
		Status:      StatusActive,
		ActivatedAt: now,
	}
	if g.Type == TypeRule {
		expires := now.Add(window)
		change.ExpiresAt = &expires
	}
	return change, true
}
