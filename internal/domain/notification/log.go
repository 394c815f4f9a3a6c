package notification

import (
	"context"
	"time"

	"github.com/transitpay/settlement/internal/domain/shared"
)

type Channel string

const ChannelEmail Channel = "email"

type DeliveryStatus string

const (
	DeliverySent   DeliveryStatus = "sent"
	DeliveryFailed DeliveryStatus = "failed"
)

// Log is the audit record of one delivery attempt.
type Log struct {
	shared.BaseEntity
	Recipient          string
	Channel            Channel
	Type               TemplateKey
	Subject            string
	Content            string
	Status             DeliveryStatus
	Error              string
	SentAt             *time.Time
	TransportMessageID string
}

// LogFilter narrows a log listing.
type LogFilter struct {
	shared.Filter
	Recipient string
	Type      TemplateKey
	Status    DeliveryStatus
}

// LogRepository persists delivery logs.
type LogRepository interface {
	Create(ctx context.Context, log *Log) error
	List(ctx context.Context, filter LogFilter) ([]*Log, int64, error)
}
