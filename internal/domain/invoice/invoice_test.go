package invoice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transitpay/settlement/internal/domain/shared"
)

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func sentInvoice(t *testing.T, total int64) *Invoice {
	t.Helper()
	inv, err := NewInvoice(NewInvoiceInput{
		InvoiceNumber: "INV-2026-0042",
		FacilityRef:   "fac-7",
		FacilityName:  "Riverside Dialysis",
		BillingEmail:  "ap@riverside.example",
		Currency:      "usd",
		TotalAmount:   total,
		DueDate:       testNow.AddDate(0, 0, 30),
	})
	require.NoError(t, err)
	require.True(t, inv.MarkSent(nil, testNow))
	inv.ClearDomainEvents()
	return inv
}

func sum(entries []*Payment) int64 {
	var s int64
	for _, p := range entries {
		s += p.Amount
	}
	return s
}

func TestNewInvoice_Validation(t *testing.T) {
	base := NewInvoiceInput{InvoiceNumber: "INV-1", FacilityRef: "fac-1", Currency: "usd", TotalAmount: 100, DueDate: testNow}
	tests := []struct {
		name   string
		mutate func(*NewInvoiceInput)
	}{
		{"missing number", func(in *NewInvoiceInput) { in.InvoiceNumber = " " }},
		{"missing facility", func(in *NewInvoiceInput) { in.FacilityRef = "" }},
		{"zero total", func(in *NewInvoiceInput) { in.TotalAmount = 0 }},
		{"missing due date", func(in *NewInvoiceInput) { in.DueDate = time.Time{} }},
		{"bad email", func(in *NewInvoiceInput) { in.BillingEmail = "not-an-email" }},
		{"bad currency", func(in *NewInvoiceInput) { in.Currency = "dollars" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			_, err := NewInvoice(in)
			assert.Equal(t, shared.KindValidation, shared.KindOf(err))
		})
	}

	inv, err := NewInvoice(base)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, inv.Status)
	assert.Equal(t, int64(100), inv.AmountDue)
}

func TestInvoice_PaidInFull(t *testing.T) {
	inv := sentInvoice(t, 405000)
	assert.Equal(t, StatusSent, inv.Status)
	assert.Equal(t, int64(405000), inv.AmountDue)

	p, all, err := inv.AddPayment(NewPaymentInput{Amount: 405000, Method: MethodCheck, Reference: "chk-1001"}, nil, testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(405000), p.Amount)
	assert.Equal(t, StatusPaid, inv.Status)
	assert.Equal(t, int64(0), inv.AmountDue)
	assert.Equal(t, sum(all), inv.AmountPaid)

	events := inv.GetDomainEvents()
	require.Len(t, events, 1)
	ev := events[0].(*PaymentReceivedEvent)
	assert.Equal(t, EventTypePaymentReceived, ev.EventType())
	assert.Equal(t, int64(0), ev.RemainingBalance)
	assert.Equal(t, "ap@riverside.example", ev.BillingEmail)
}

func TestInvoice_PartialThenRest(t *testing.T) {
	inv := sentInvoice(t, 405000)

	_, all, err := inv.AddPayment(NewPaymentInput{Amount: 200000, Method: MethodACH}, nil, testNow)
	require.NoError(t, err)
	assert.Equal(t, StatusPartiallyPaid, inv.Status)
	assert.Equal(t, int64(205000), inv.AmountDue)

	_, all, err = inv.AddPayment(NewPaymentInput{Amount: 205000, Method: MethodACH}, all, testNow)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, inv.Status)
	assert.Equal(t, sum(all), inv.AmountPaid)
	assert.Len(t, inv.GetDomainEvents(), 2)
}

func TestInvoice_RejectsBadPayments(t *testing.T) {
	inv := sentInvoice(t, 405000)

	tests := []struct {
		name string
		in   NewPaymentInput
	}{
		{"zero", NewPaymentInput{Amount: 0, Method: MethodCheck}},
		{"negative", NewPaymentInput{Amount: -5, Method: MethodCheck}},
		{"overpayment", NewPaymentInput{Amount: 405001, Method: MethodCheck}},
		{"refund method reserved", NewPaymentInput{Amount: 100, Method: MethodRefund}},
		{"unknown method", NewPaymentInput{Amount: 100, Method: "barter"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, all, err := inv.AddPayment(tt.in, nil, testNow)
			assert.Equal(t, shared.KindValidation, shared.KindOf(err))
			assert.Empty(t, all)
			assert.Equal(t, int64(405000), inv.AmountDue)
		})
	}
	assert.Empty(t, inv.GetDomainEvents())
}

func TestInvoice_CapturedOverpaymentIsRecorded(t *testing.T) {
	inv := sentInvoice(t, 1000)

	p, all, err := inv.AddPayment(NewPaymentInput{Amount: 1200, Method: MethodCard, Reference: "pi_1", AllowOverpayment: true}, nil, testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(1200), p.Amount)
	assert.Equal(t, sum(all), inv.AmountPaid)
	assert.Equal(t, int64(0), inv.AmountDue)
	assert.Equal(t, StatusPaid, inv.Status)
}

func TestInvoice_ReverseRestoresBalance(t *testing.T) {
	inv := sentInvoice(t, 405000)
	p, all, err := inv.AddPayment(NewPaymentInput{Amount: 150000, Method: MethodWire}, nil, testNow)
	require.NoError(t, err)

	rev, all, err := inv.ReversePayment(p, "entered twice", all, testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(-150000), rev.Amount)
	assert.Equal(t, p.ID, *rev.ReversesPaymentID)
	assert.True(t, p.IsReversed())
	assert.Equal(t, int64(0), inv.AmountPaid)
	assert.Equal(t, int64(405000), inv.AmountDue)
	assert.Equal(t, StatusSent, inv.Status)
	assert.Equal(t, sum(all), inv.AmountPaid)

	_, _, err = inv.ReversePayment(p, "", all, testNow)
	assert.Equal(t, shared.KindInvalidState, shared.KindOf(err))
	_, _, err = inv.ReversePayment(rev, "", all, testNow)
	assert.Equal(t, shared.KindInvalidState, shared.KindOf(err))

	foreign := &Payment{InvoiceID: [16]byte{9}, Amount: 10}
	_, _, err = inv.ReversePayment(foreign, "", all, testNow)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestInvoice_RefundReversal(t *testing.T) {
	inv := sentInvoice(t, 405000)
	_, all, err := inv.AddPayment(NewPaymentInput{Amount: 405000, Method: MethodCard, Reference: "pi_1"}, nil, testNow)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, inv.Status)

	rev, all, err := inv.AddRefundReversal(8550, "re_1", "fare adjustment", all, testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(-8550), rev.Amount)
	assert.Equal(t, MethodRefund, rev.Method)
	assert.Equal(t, int64(8550), inv.AmountDue)
	assert.Equal(t, StatusPartiallyPaid, inv.Status)
	assert.Equal(t, sum(all), inv.AmountPaid)

	rev, _, err = inv.AddRefundReversal(500000, "re_2", "", all, testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(-396450), rev.Amount)
	assert.Equal(t, int64(0), inv.AmountPaid)
}

func TestInvoice_SendAndView(t *testing.T) {
	inv, err := NewInvoice(NewInvoiceInput{
		InvoiceNumber: "INV-9", FacilityRef: "fac-1", Currency: "usd", TotalAmount: 1000, DueDate: testNow.AddDate(0, 0, 10),
	})
	require.NoError(t, err)

	assert.Error(t, inv.MarkViewed(nil, testNow))
	assert.True(t, inv.MarkSent(nil, testNow))
	assert.False(t, inv.MarkSent(nil, testNow.Add(time.Hour)))
	assert.Len(t, inv.GetDomainEvents(), 1)
	assert.Equal(t, StatusSent, inv.Status)

	require.NoError(t, inv.MarkViewed(nil, testNow))
	assert.Equal(t, StatusViewed, inv.Status)
}

func TestInvoice_ReminderWindow(t *testing.T) {
	inv := sentInvoice(t, 1000)
	due := inv.DueDate

	assert.False(t, inv.DueForReminder(due.AddDate(0, 0, -4), 3))
	assert.True(t, inv.DueForReminder(due.AddDate(0, 0, -3), 3))
	assert.True(t, inv.DueForReminder(due, 3))
	assert.False(t, inv.DueForReminder(due.Add(time.Minute), 3))

	inv.MarkReminderSent(due.AddDate(0, 0, -3))
	assert.False(t, inv.DueForReminder(due.AddDate(0, 0, -2), 3))
	ev := inv.GetDomainEvents()[0].(*InvoiceReminderDueEvent)
	assert.Equal(t, 3, ev.DaysUntilDue)
}

func TestInvoice_OverdueNotice(t *testing.T) {
	inv := sentInvoice(t, 1000)
	late := inv.DueDate.AddDate(0, 0, 2)

	inv.Refresh(nil, late)
	require.Equal(t, StatusOverdue, inv.Status)
	assert.True(t, inv.DueForOverdueNotice())

	inv.MarkOverdueNotified(late)
	assert.False(t, inv.DueForOverdueNotice())
	ev := inv.GetDomainEvents()[0].(*InvoiceOverdueEvent)
	assert.Equal(t, 2, ev.DaysOverdue)
}

func TestInvoice_Age(t *testing.T) {
	inv := sentInvoice(t, 10000)
	require.Equal(t, StatusSent, inv.Status)

	assert.Equal(t, StatusSent, inv.Age(inv.DueDate), "due today is not yet overdue")
	assert.Equal(t, StatusOverdue, inv.Age(inv.DueDate.Add(time.Second)))
	assert.Equal(t, StatusOverdue, inv.Status)

	t.Run("agrees with a full recompute", func(t *testing.T) {
		inv := sentInvoice(t, 10000)
		_, entries, err := inv.AddPayment(NewPaymentInput{Amount: 4000, Method: MethodCheck, PaymentDate: testNow}, nil, testNow)
		require.NoError(t, err)
		later := inv.DueDate.AddDate(0, 0, 3)
		aged := inv.Age(later)
		assert.Equal(t, inv.Refresh(entries, later).Status, aged)
		assert.Equal(t, StatusOverdue, aged)
	})

	t.Run("unsent draft stays draft", func(t *testing.T) {
		draft, err := NewInvoice(NewInvoiceInput{InvoiceNumber: "INV-9", FacilityRef: "fac-1", Currency: "usd", TotalAmount: 100, DueDate: testNow})
		require.NoError(t, err)
		assert.Equal(t, StatusDraft, draft.Age(testNow.AddDate(1, 0, 0)))
	})
}
