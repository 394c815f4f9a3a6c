package invoice

import "time"

// Totals are the derived fields of an invoice.
type Totals struct {
	AmountPaid int64
	AmountDue  int64
	Status     Status
}

// RecomputeInput is everything the derived fields depend on.
type RecomputeInput struct {
	Payments    []*Payment
	TotalAmount int64
	DueDate     time.Time
	SentAt      *time.Time
	ViewedAt    *time.Time
	Now         time.Time
}

// Recompute derives paid, due and status from the ledger. It has no other
// inputs, so the status shown anywhere always agrees with the ledger rows.
func Recompute(in RecomputeInput) Totals {
	var paid int64
	for _, p := range in.Payments {
		paid += p.Amount
	}
	due := in.TotalAmount - paid
	if due < 0 {
		due = 0
	}

	return Totals{
		AmountPaid: paid,
		AmountDue:  due,
		Status:     deriveStatus(paid, due, in.TotalAmount, in.DueDate, in.SentAt, in.ViewedAt, in.Now),
	}
}

func deriveStatus(paid, due, total int64, dueDate time.Time, sentAt, viewedAt *time.Time, now time.Time) Status {
	sent := sentAt != nil
	switch {
	case due == 0 && total > 0:
		return StatusPaid
	case isPastDue(dueDate, now) && (sent || paid > 0):
		return StatusOverdue
	case paid > 0:
		return StatusPartiallyPaid
	case sent && viewedAt != nil:
		return StatusViewed
	case sent:
		return StatusSent
	default:
		return StatusDraft
	}
}

func isPastDue(dueDate, now time.Time) bool {
	return !dueDate.IsZero() && now.After(dueDate)
}
