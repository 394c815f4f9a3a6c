package invoice

// Status is the derived display status of an invoice.
type Status string

const (
	StatusDraft         Status = "DRAFT"
	StatusSent          Status = "SENT"
	StatusViewed        Status = "VIEWED"
	StatusPartiallyPaid Status = "PARTIALLY_PAID"
	StatusPaid          Status = "PAID"
	StatusOverdue       Status = "OVERDUE"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusViewed, StatusPartiallyPaid, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// AwaitingPayment reports whether the invoice went out and nothing has been paid.
func (s Status) AwaitingPayment() bool {
	return s == StatusSent || s == StatusViewed
}

// PaymentMethod is how a ledger entry was paid.
type PaymentMethod string

const (
	MethodCheck  PaymentMethod = "check"
	MethodACH    PaymentMethod = "ach"
	MethodWire   PaymentMethod = "wire"
	MethodCard   PaymentMethod = "card"
	MethodCash   PaymentMethod = "cash"
	MethodOther  PaymentMethod = "other"
	MethodRefund PaymentMethod = "refund"
)

// IsRecordable reports whether a caller may record a payment with this method.
// Refund entries are only written by reversals.
func (m PaymentMethod) IsRecordable() bool {
	switch m {
	case MethodCheck, MethodACH, MethodWire, MethodCard, MethodCash, MethodOther:
		return true
	}
	return false
}
