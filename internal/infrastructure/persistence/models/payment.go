package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/transitpay/settlement/internal/domain/payment"
	"github.com/transitpay/settlement/internal/domain/shared/valueobject"
)

// PaymentIntentModel maps payment_intents.
type PaymentIntentModel struct {
	AggregateModel
	ExternalReference *string           `gorm:"type:varchar(255);uniqueIndex"`
	ClientSecret      string            `gorm:"type:varchar(255)"`
	Amount            int64             `gorm:"not null"`
	Currency          string            `gorm:"type:varchar(3);not null"`
	Status            string            `gorm:"type:varchar(30);not null;index"`
	CaptureMethod     string            `gorm:"type:varchar(20);not null"`
	TripRef           string            `gorm:"type:varchar(100);index"`
	CustomerRef       string            `gorm:"type:varchar(100);index"`
	PaymentMethodRef  string            `gorm:"type:varchar(255)"`
	InvoiceID         *uuid.UUID        `gorm:"type:uuid;index"`
	Metadata          map[string]string `gorm:"type:jsonb;serializer:json"`
	CapturedAmount    int64             `gorm:"not null;default:0"`
	RefundedAmount    int64             `gorm:"not null;default:0"`
	FailureReason     string            `gorm:"type:text"`
}

func (PaymentIntentModel) TableName() string { return "payment_intents" }

// ToDomain converts the model to a PaymentIntent.
func (m *PaymentIntentModel) ToDomain() *payment.PaymentIntent {
	p := &payment.PaymentIntent{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ClientSecret:      m.ClientSecret,
		Amount:            m.Amount,
		Currency:          valueobject.Currency(m.Currency),
		Status:            payment.IntentStatus(m.Status),
		CaptureMethod:     payment.CaptureMethod(m.CaptureMethod),
		TripRef:           m.TripRef,
		CustomerRef:       m.CustomerRef,
		PaymentMethodRef:  m.PaymentMethodRef,
		InvoiceID:         m.InvoiceID,
		Metadata:          m.Metadata,
		CapturedAmount:    m.CapturedAmount,
		RefundedAmount:    m.RefundedAmount,
		FailureReason:     m.FailureReason,
	}
	if m.ExternalReference != nil {
		p.ExternalReference = *m.ExternalReference
	}
	return p
}

// PaymentIntentModelFromDomain converts a PaymentIntent to its model.
func PaymentIntentModelFromDomain(p *payment.PaymentIntent) *PaymentIntentModel {
	m := &PaymentIntentModel{
		ExternalReference: nullable(p.ExternalReference),
		ClientSecret:      p.ClientSecret,
		Amount:            p.Amount,
		Currency:          string(p.Currency),
		Status:            string(p.Status),
		CaptureMethod:     string(p.CaptureMethod),
		TripRef:           p.TripRef,
		CustomerRef:       p.CustomerRef,
		PaymentMethodRef:  p.PaymentMethodRef,
		InvoiceID:         p.InvoiceID,
		Metadata:          p.Metadata,
		CapturedAmount:    p.CapturedAmount,
		RefundedAmount:    p.RefundedAmount,
		FailureReason:     p.FailureReason,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}

// RefundModel maps refunds.
type RefundModel struct {
	BaseModel
	SourceIntentID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ExternalReference *string   `gorm:"type:varchar(255);uniqueIndex"`
	Amount            int64     `gorm:"not null"`
	Currency          string    `gorm:"type:varchar(3);not null"`
	Reason            string    `gorm:"type:text"`
	Status            string    `gorm:"type:varchar(20);not null"`
	External          bool      `gorm:"not null;default:false"`
}

func (RefundModel) TableName() string { return "refunds" }

// ToDomain converts the model to a Refund.
func (m *RefundModel) ToDomain() *payment.Refund {
	r := &payment.Refund{
		BaseEntity:     m.BaseModel.ToDomain(),
		SourceIntentID: m.SourceIntentID,
		Amount:         m.Amount,
		Currency:       valueobject.Currency(m.Currency),
		Reason:         m.Reason,
		Status:         payment.RefundStatus(m.Status),
		External:       m.External,
	}
	if m.ExternalReference != nil {
		r.ExternalReference = *m.ExternalReference
	}
	return r
}

// RefundModelFromDomain converts a Refund to its model.
func RefundModelFromDomain(r *payment.Refund) *RefundModel {
	m := &RefundModel{
		SourceIntentID:    r.SourceIntentID,
		ExternalReference: nullable(r.ExternalReference),
		Amount:            r.Amount,
		Currency:          string(r.Currency),
		Reason:            r.Reason,
		Status:            string(r.Status),
		External:          r.External,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}

// PaymentMethodModel maps payment_methods.
type PaymentMethodModel struct {
	BaseModel
	OwnerID           string `gorm:"type:varchar(100);not null;index"`
	ExternalReference string `gorm:"type:varchar(255);not null"`
	Brand             string `gorm:"type:varchar(30)"`
	Last4             string `gorm:"type:varchar(4)"`
	ExpMonth          int
	ExpYear           int
	IsDefault         bool `gorm:"not null;default:false"`
}

func (PaymentMethodModel) TableName() string { return "payment_methods" }

// ToDomain converts the model to a PaymentMethod.
func (m *PaymentMethodModel) ToDomain() *payment.PaymentMethod {
	return &payment.PaymentMethod{
		BaseEntity:        m.BaseModel.ToDomain(),
		OwnerID:           m.OwnerID,
		ExternalReference: m.ExternalReference,
		Brand:             m.Brand,
		Last4:             m.Last4,
		ExpMonth:          m.ExpMonth,
		ExpYear:           m.ExpYear,
		IsDefault:         m.IsDefault,
	}
}

// PaymentMethodModelFromDomain converts a PaymentMethod to its model.
func PaymentMethodModelFromDomain(pm *payment.PaymentMethod) *PaymentMethodModel {
	m := &PaymentMethodModel{
		OwnerID:           pm.OwnerID,
		ExternalReference: pm.ExternalReference,
		Brand:             pm.Brand,
		Last4:             pm.Last4,
		ExpMonth:          pm.ExpMonth,
		ExpYear:           pm.ExpYear,
		IsDefault:         pm.IsDefault,
	}
	m.FromDomainBaseEntity(pm.BaseEntity)
	return m
}

// ProcessedWebhookEventModel maps processed_webhook_events, the durable
// at-most-once record of applied webhook events.
type ProcessedWebhookEventModel struct {
	ExternalEventID string    `gorm:"type:varchar(255);primaryKey"`
	EventType       string    `gorm:"type:varchar(100);not null"`
	ProcessedAt     time.Time `gorm:"not null"`
}

func (ProcessedWebhookEventModel) TableName() string { return "processed_webhook_events" }

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
