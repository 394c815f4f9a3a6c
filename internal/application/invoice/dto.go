package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/transitpay/settlement/internal/domain/invoice"
	"github.com/transitpay/settlement/internal/domain/shared/valueobject"
)

// CreateInvoiceRequest is the booking collaborator's invoice payload.
type CreateInvoiceRequest struct {
	InvoiceNumber string    `json:"invoice_number" binding:"required,min=1,max=50"`
	FacilityRef   string    `json:"facility_ref" binding:"required,min=1,max=100"`
	FacilityName  string    `json:"facility_name" binding:"max=200"`
	BillingEmail  string    `json:"billing_email" binding:"omitempty,email,max=320"`
	Currency      string    `json:"currency" binding:"required,currency"`
	TotalAmount   int64     `json:"total_amount" binding:"required,gt=0"`
	DueDate       time.Time `json:"due_date" binding:"required"`
}

// RecordPaymentRequest records money received outside the processor.
type RecordPaymentRequest struct {
	Amount      int64      `json:"amount" binding:"required,gt=0"`
	Method      string     `json:"method" binding:"required,oneof=check ach wire card cash other"`
	Reference   string     `json:"reference" binding:"max=255"`
	PaymentDate *time.Time `json:"payment_date"`
	Notes       string     `json:"notes" binding:"max=1000"`
}

// RemovePaymentRequest carries the reason a ledger entry is reversed.
type RemovePaymentRequest struct {
	Notes string `json:"notes" binding:"max=1000"`
}

// ListInvoicesRequest is the query of an invoice listing.
type ListInvoicesRequest struct {
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Status      string `form:"status" binding:"omitempty,oneof=DRAFT SENT VIEWED PARTIALLY_PAID PAID OVERDUE"`
	FacilityRef string `form:"facility_ref" binding:"max=100"`
	OrderBy     string `form:"order_by" binding:"omitempty,oneof=created_at due_date invoice_number amount_due"`
	OrderDir    string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// InvoiceResponse is an invoice in API responses.
type InvoiceResponse struct {
	ID                uuid.UUID  `json:"id"`
	InvoiceNumber     string     `json:"invoice_number"`
	FacilityRef       string     `json:"facility_ref"`
	FacilityName      string     `json:"facility_name,omitempty"`
	BillingEmail      string     `json:"billing_email,omitempty"`
	Currency          string     `json:"currency"`
	TotalAmount       int64      `json:"total_amount"`
	AmountPaid        int64      `json:"amount_paid"`
	AmountDue         int64      `json:"amount_due"`
	AmountDueDisplay  string     `json:"amount_due_display"`
	Status            string     `json:"status"`
	DueDate           time.Time  `json:"due_date"`
	SentAt            *time.Time `json:"sent_at,omitempty"`
	ViewedAt          *time.Time `json:"viewed_at,omitempty"`
	ReminderSentAt    *time.Time `json:"reminder_sent_at,omitempty"`
	OverdueNotifiedAt *time.Time `json:"overdue_notified_at,omitempty"`
	Version           int        `json:"version"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// PaymentResponse is a ledger entry in API responses.
type PaymentResponse struct {
	ID                uuid.UUID  `json:"id"`
	InvoiceID         uuid.UUID  `json:"invoice_id"`
	Amount            int64      `json:"amount"`
	AmountDisplay     string     `json:"amount_display"`
	Method            string     `json:"method"`
	Reference         string     `json:"reference,omitempty"`
	ReversesPaymentID *uuid.UUID `json:"reverses_payment_id,omitempty"`
	ReversedAt        *time.Time `json:"reversed_at,omitempty"`
	PaymentDate       time.Time  `json:"payment_date"`
	Notes             string     `json:"notes,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// ToInvoiceResponse converts an invoice.
func ToInvoiceResponse(inv *invoice.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:                inv.ID,
		InvoiceNumber:     inv.InvoiceNumber,
		FacilityRef:       inv.FacilityRef,
		FacilityName:      inv.FacilityName,
		BillingEmail:      inv.BillingEmail,
		Currency:          string(inv.Currency),
		TotalAmount:       inv.TotalAmount,
		AmountPaid:        inv.AmountPaid,
		AmountDue:         inv.AmountDue,
		AmountDueDisplay:  valueobject.NewMoney(inv.AmountDue, inv.Currency).Display(),
		Status:            string(inv.Status),
		DueDate:           inv.DueDate,
		SentAt:            inv.SentAt,
		ViewedAt:          inv.ViewedAt,
		ReminderSentAt:    inv.ReminderSentAt,
		OverdueNotifiedAt: inv.OverdueNotifiedAt,
		Version:           inv.Version,
		CreatedAt:         inv.CreatedAt,
		UpdatedAt:         inv.UpdatedAt,
	}
}

// ToPaymentResponse converts a ledger entry.
func ToPaymentResponse(p *invoice.Payment, currency valueobject.Currency) PaymentResponse {
	return PaymentResponse{
		ID:                p.ID,
		InvoiceID:         p.InvoiceID,
		Amount:            p.Amount,
		AmountDisplay:     valueobject.NewMoney(p.Amount, currency).Display(),
		Method:            string(p.Method),
		Reference:         p.ExternalReference,
		ReversesPaymentID: p.ReversesPaymentID,
		ReversedAt:        p.ReversedAt,
		PaymentDate:       p.PaymentDate,
		Notes:             p.Notes,
		CreatedAt:         p.CreatedAt,
	}
}

// ToPaymentResponses converts a ledger.
func ToPaymentResponses(entries []*invoice.Payment, currency valueobject.Currency) []PaymentResponse {
	out := make([]PaymentResponse, len(entries))
	for i, p := range entries {
		out[i] = ToPaymentResponse(p, currency)
	}
	return out
}
