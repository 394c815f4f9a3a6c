// Package models holds the GORM persistence models. Domain types stay free of
// ORM tags; each model converts to and from its domain type.
//
// Files:
//   - base.go: shared id, timestamp and version columns
//   - payment.go: payment_intents, refunds, payment_methods, processed_webhook_events
//   - invoice.go: invoices, invoice_payments
//   - notification.go: notification_logs
//   - outbox.go: outbox_events
package models
