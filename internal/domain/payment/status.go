package payment

// IntentStatus is the local lifecycle of a PaymentIntent.
type IntentStatus string

const (
	IntentStatusPending           IntentStatus = "PENDING"
	IntentStatusAuthorized        IntentStatus = "AUTHORIZED"
	IntentStatusCaptured          IntentStatus = "CAPTURED"
	IntentStatusPartiallyRefunded IntentStatus = "PARTIALLY_REFUNDED"
	IntentStatusRefunded          IntentStatus = "REFUNDED"
	IntentStatusFailed            IntentStatus = "FAILED"
)

// rank orders the forward path. FAILED sits outside it.
var rank = map[IntentStatus]int{
	IntentStatusPending:           0,
	IntentStatusAuthorized:        1,
	IntentStatusCaptured:          2,
	IntentStatusPartiallyRefunded: 3,
	IntentStatusRefunded:          4,
}

// legalTransitions is the complete transition graph. PENDING may jump to
// CAPTURED when the processor captures automatically on confirmation.
var legalTransitions = map[IntentStatus][]IntentStatus{
	IntentStatusPending:           {IntentStatusAuthorized, IntentStatusCaptured, IntentStatusFailed},
	IntentStatusAuthorized:        {IntentStatusCaptured, IntentStatusFailed},
	IntentStatusCaptured:          {IntentStatusPartiallyRefunded, IntentStatusRefunded},
	IntentStatusPartiallyRefunded: {IntentStatusPartiallyRefunded, IntentStatusRefunded},
}

// IsValid checks if the status is a known IntentStatus
func (s IntentStatus) IsValid() bool {
	switch s {
	case IntentStatusPending, IntentStatusAuthorized, IntentStatusCaptured,
		IntentStatusPartiallyRefunded, IntentStatusRefunded, IntentStatusFailed:
		return true
	}
	return false
}

func (s IntentStatus) String() string {
	return string(s)
}

// IsRefundable reports whether refunds may be issued from this status.
func (s IntentStatus) IsRefundable() bool {
	return s == IntentStatusCaptured || s == IntentStatusPartiallyRefunded
}

// IsCancellable reports whether the intent can still be cancelled.
func (s IntentStatus) IsCancellable() bool {
	return s == IntentStatusPending || s == IntentStatusAuthorized
}

// IsSettled reports whether money has moved for this intent.
func (s IntentStatus) IsSettled() bool {
	_, onPath := rank[s]
	return onPath && rank[s] >= rank[IntentStatusCaptured]
}

// CanTransition reports whether from -> to is an edge of the graph.
func CanTransition(from, to IntentStatus) bool {
	for _, s := range legalTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// NextStatus resolves an externally reported status against the current one.
// It returns the status to move to and whether a move happens. A target that
// is earlier than or equal to the current status is a no-op, as is any target
// the graph does not allow from current.
func NextStatus(current, target IntentStatus) (IntentStatus, bool) {
	if current == target || current == IntentStatusFailed {
		return current, false
	}
	if target == IntentStatusFailed {
		if current.IsCancellable() {
			return IntentStatusFailed, true
		}
		return current, false
	}
	tr, ok := rank[target]
	if !ok || tr <= rank[current] {
		return current, false
	}
	if !CanTransition(current, target) {
		return current, false
	}
	return target, true
}

// Processor-side intent statuses.
const (
	ExternalRequiresPaymentMethod = "requires_payment_method"
	ExternalRequiresConfirmation  = "requires_confirmation"
	ExternalRequiresAction        = "requires_action"
	ExternalProcessing            = "processing"
	ExternalRequiresCapture       = "requires_capture"
	ExternalSucceeded             = "succeeded"
	ExternalCanceled              = "canceled"
)

// MapExternalStatus maps every processor status onto the local enum.
// Unknown values map to PENDING, which NextStatus never treats as progress.
func MapExternalStatus(external string) IntentStatus {
	switch external {
	case ExternalRequiresCapture:
		return IntentStatusAuthorized
	case ExternalSucceeded:
		return IntentStatusCaptured
	case ExternalCanceled:
		return IntentStatusFailed
	default:
		return IntentStatusPending
	}
}

// CaptureMethod controls whether authorization and capture are separate steps.
type CaptureMethod string

const (
	CaptureMethodManual    CaptureMethod = "manual"
	CaptureMethodAutomatic CaptureMethod = "automatic"
)

// IsValid checks if the capture method is supported
func (c CaptureMethod) IsValid() bool {
	return c == CaptureMethodManual || c == CaptureMethodAutomatic
}
