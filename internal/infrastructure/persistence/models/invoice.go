package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/transitpay/settlement/internal/domain/invoice"
	"github.com/transitpay/settlement/internal/domain/shared/valueobject"
)

// InvoiceModel maps invoices. amount_paid, amount_due and status are a
// snapshot of the last recompute and are refreshed on every ledger write.
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber     string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	FacilityRef       string     `gorm:"type:varchar(100);not null;index"`
	FacilityName      string     `gorm:"type:varchar(200)"`
	BillingEmail      string     `gorm:"type:varchar(320)"`
	Currency          string     `gorm:"type:varchar(3);not null"`
	TotalAmount       int64      `gorm:"not null"`
	AmountPaid        int64      `gorm:"not null;default:0"`
	AmountDue         int64      `gorm:"not null"`
	Status            string     `gorm:"type:varchar(20);not null;index"`
	DueDate           time.Time  `gorm:"not null;index"`
	SentAt            *time.Time
	ViewedAt          *time.Time
	ReminderSentAt    *time.Time
	OverdueNotifiedAt *time.Time
}

func (InvoiceModel) TableName() string { return "invoices" }

// ToDomain converts the model to an Invoice.
func (m *InvoiceModel) ToDomain() *invoice.Invoice {
	return &invoice.Invoice{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		InvoiceNumber:     m.InvoiceNumber,
		FacilityRef:       m.FacilityRef,
		FacilityName:      m.FacilityName,
		BillingEmail:      m.BillingEmail,
		Currency:          valueobject.Currency(m.Currency),
		TotalAmount:       m.TotalAmount,
		AmountPaid:        m.AmountPaid,
		AmountDue:         m.AmountDue,
		Status:            invoice.Status(m.Status),
		DueDate:           m.DueDate,
		SentAt:            m.SentAt,
		ViewedAt:          m.ViewedAt,
		ReminderSentAt:    m.ReminderSentAt,
		OverdueNotifiedAt: m.OverdueNotifiedAt,
	}
}

// InvoiceModelFromDomain converts an Invoice to its model.
func InvoiceModelFromDomain(inv *invoice.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		InvoiceNumber:     inv.InvoiceNumber,
		FacilityRef:       inv.FacilityRef,
		FacilityName:      inv.FacilityName,
		BillingEmail:      inv.BillingEmail,
		Currency:          string(inv.Currency),
		TotalAmount:       inv.TotalAmount,
		AmountPaid:        inv.AmountPaid,
		AmountDue:         inv.AmountDue,
		Status:            string(inv.Status),
		DueDate:           inv.DueDate,
		SentAt:            inv.SentAt,
		ViewedAt:          inv.ViewedAt,
		ReminderSentAt:    inv.ReminderSentAt,
		OverdueNotifiedAt: inv.OverdueNotifiedAt,
	}
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	return m
}

// InvoicePaymentModel maps invoice_payments, the append-only ledger.
type InvoicePaymentModel struct {
	BaseModel
	InvoiceID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	Amount            int64      `gorm:"not null"`
	Method            string     `gorm:"type:varchar(20);not null"`
	ExternalReference string     `gorm:"type:varchar(255);index"`
	ReversesPaymentID *uuid.UUID `gorm:"type:uuid;index"`
	ReversedAt        *time.Time
	PaymentDate       time.Time `gorm:"not null"`
	Notes             string    `gorm:"type:text"`
}

func (InvoicePaymentModel) TableName() string { return "invoice_payments" }

// ToDomain converts the model to a ledger Payment.
func (m *InvoicePaymentModel) ToDomain() *invoice.Payment {
	return &invoice.Payment{
		BaseEntity:        m.BaseModel.ToDomain(),
		InvoiceID:         m.InvoiceID,
		Amount:            m.Amount,
		Method:            invoice.PaymentMethod(m.Method),
		ExternalReference: m.ExternalReference,
		ReversesPaymentID: m.ReversesPaymentID,
		ReversedAt:        m.ReversedAt,
		PaymentDate:       m.PaymentDate,
		Notes:             m.Notes,
	}
}

// InvoicePaymentModelFromDomain converts a ledger Payment to its model.
func InvoicePaymentModelFromDomain(p *invoice.Payment) *InvoicePaymentModel {
	m := &InvoicePaymentModel{
		InvoiceID:         p.InvoiceID,
		Amount:            p.Amount,
		Method:            string(p.Method),
		ExternalReference: p.ExternalReference,
		ReversesPaymentID: p.ReversesPaymentID,
		ReversedAt:        p.ReversedAt,
		PaymentDate:       p.PaymentDate,
		Notes:             p.Notes,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}
