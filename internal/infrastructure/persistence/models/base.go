package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/transitpay/settlement/internal/domain/shared"
)

// BaseModel maps shared.BaseEntity onto id, created_at and updated_at.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	*m = BaseModel{ID: e.ID, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt}
}

// AggregateModel adds the version column used for optimistic locking on
// intents and invoices.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

func (m *AggregateModel) ToDomainAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{BaseEntity: m.BaseModel.ToDomain(), Version: m.Version}
}

// All lists every table model for AutoMigrate in tests, parents first.
func All() []any {
	return []any{
		&InvoiceModel{},
		&InvoicePaymentModel{},
		&PaymentIntentModel{},
		&RefundModel{},
		&PaymentMethodModel{},
		&ProcessedWebhookEventModel{},
		&NotificationLogModel{},
		&OutboxEntryModel{},
	}
}
