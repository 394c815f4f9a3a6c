package notification

import (
	"time"

	"github.com/google/uuid"
	"github.com/transitpay/settlement/internal/domain/notification"
)

// ListLogsRequest is the query of a notification log listing.
type ListLogsRequest struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Recipient string `form:"recipient" binding:"omitempty,max=320"`
	Type      string `form:"type" binding:"omitempty,oneof=INVOICE_SENT INVOICE_REMINDER INVOICE_OVERDUE PAYMENT_RECEIVED PAYMENT_REFUNDED"`
	Status    string `form:"status" binding:"omitempty,oneof=sent failed"`
}

// LogResponse is a delivery record in API responses. The rendered body is
// left out.
type LogResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Recipient          string     `json:"recipient"`
	Channel            string     `json:"channel"`
	Type               string     `json:"type"`
	Subject            string     `json:"subject"`
	Status             string     `json:"status"`
	Error              string     `json:"error,omitempty"`
	SentAt             *time.Time `json:"sent_at,omitempty"`
	TransportMessageID string     `json:"transport_message_id,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

func ToLogResponse(l *notification.Log) LogResponse {
	return LogResponse{
		ID:                 l.ID,
		Recipient:          l.Recipient,
		Channel:            string(l.Channel),
		Type:               string(l.Type),
		Subject:            l.Subject,
		Status:             string(l.Status),
		Error:              l.Error,
		SentAt:             l.SentAt,
		TransportMessageID: l.TransportMessageID,
		CreatedAt:          l.CreatedAt,
	}
}
