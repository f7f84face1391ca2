package enrollment

import (
	"strings"
	"time"

	"github.com/dermocrm/crm/internal/platform/apperr"
)

// TransitionInput carries the caller-supplied parts of a status change.
type TransitionInput struct {
	Target        Status
	Comment       string
	ScheduledDate *time.Time
	CompletedDate *time.Time
}

// Apply computes the post-transition field values for a status change. It is
// pure: it never touches storage, and the same inputs always yield the same
// output.
//
// Field rules per target status:
//   - scheduled: scheduled_date required; done_date and completed_date cleared.
//   - done: done_date and completed_date both set to the supplied completion
//     time, or now; scheduled_date cleared.
//   - problem, cancelled: comment required; completed_date set to the supplied
//     completion time, or now; scheduled_date cleared.
//   - pending: everything cleared.
//
// Recovery rule: when leaving cancelled or problem for done, scheduled or
// pending, the stale comment is cleared before the target's own comment rule
// runs, so comments never leak across a recovery.
func Apply(old Status, current Fields, in TransitionInput, now time.Time) (Fields, error) {
	if !validStatuses[in.Target] {
		return Fields{}, apperr.Validation("invalid status: %s", in.Target)
	}

	next := current
	if (old == StatusCancelled || old == StatusProblem) && isRecoveryTarget(in.Target) {
		next.Comment = nil
	}

	switch in.Target {
	case StatusScheduled:
		if in.ScheduledDate == nil {
			return Fields{}, apperr.Validation("scheduled_date is required for status scheduled")
		}
		next.ScheduledDate = in.ScheduledDate
		next.DoneDate = nil
		next.CompletedDate = nil

	case StatusDone:
		when := now
		if in.CompletedDate != nil {
			when = *in.CompletedDate
		}
		next.DoneDate = &when
		next.CompletedDate = &when
		next.ScheduledDate = nil

	case StatusProblem, StatusCancelled:
		if strings.TrimSpace(in.Comment) == "" {
			return Fields{}, apperr.Validation("comment is required for status %s", in.Target)
		}
		comment := in.Comment
		next.Comment = &comment
		when := now
		if in.CompletedDate != nil {
			when = *in.CompletedDate
		}
		next.CompletedDate = &when
		next.ScheduledDate = nil

	case StatusPending:
		next = Fields{}
	}

	return next, nil
}

func isRecoveryTarget(s Status) bool {
	return s == StatusDone || s == StatusScheduled || s == StatusPending
}
