package persistence

import (
	"context"

	"github.com/transitpay/settlement/internal/application/uow"
	"github.com/transitpay/settlement/internal/domain/invoice"
	"github.com/transitpay/settlement/internal/domain/payment"
	"github.com/transitpay/settlement/internal/domain/shared"
	"github.com/transitpay/settlement/internal/infrastructure/event"
	"gorm.io/gorm"
)

// GormTransactionScope implements uow.TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db        *gorm.DB
	publisher *event.OutboxPublisher
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB, publisher *event.OutboxPublisher) *GormTransactionScope {
	return &GormTransactionScope{db: db, publisher: publisher}
}

// Execute runs fn within a database transaction. The transaction rolls back
// when fn returns an error or panics.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(ctx context.Context, repos uow.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewRepositories(tx, s.publisher))
	})
}

// NewRepositories binds every repository to db, which may be a transaction.
// Reads outside a transaction use the pool directly.
func NewRepositories(db *gorm.DB, publisher *event.OutboxPublisher) uow.Repositories {
	return &gormRepositories{db: db, publisher: publisher}
}

type gormRepositories struct {
	db        *gorm.DB
	publisher *event.OutboxPublisher
}

func (r *gormRepositories) Intents() payment.IntentRepository {
	return NewGormIntentRepository(r.db)
}

func (r *gormRepositories) Refunds() payment.RefundRepository {
	return NewGormRefundRepository(r.db)
}

func (r *gormRepositories) Methods() payment.MethodRepository {
	return NewGormMethodRepository(r.db)
}

func (r *gormRepositories) ProcessedEvents() payment.ProcessedEventRepository {
	return NewGormProcessedEventRepository(r.db)
}

func (r *gormRepositories) Invoices() invoice.Repository {
	return NewGormInvoiceRepository(r.db)
}

func (r *gormRepositories) Payments() invoice.PaymentRepository {
	return NewGormInvoicePaymentRepository(r.db)
}

func (r *gormRepositories) Events() uow.EventRecorder {
	return &outboxRecorder{db: r.db, publisher: r.publisher}
}

// outboxRecorder writes events through the connection the repositories are
// bound to, so they commit or roll back with the settlement change.
type outboxRecorder struct {
	db        *gorm.DB
	publisher *event.OutboxPublisher
}

func (o *outboxRecorder) Record(ctx context.Context, events ...shared.DomainEvent) error {
	return o.publisher.PublishWithTx(ctx, o.db, events...)
}

var (
	_ uow.TransactionScope = (*GormTransactionScope)(nil)
	_ uow.Repositories     = (*gormRepositories)(nil)
)
