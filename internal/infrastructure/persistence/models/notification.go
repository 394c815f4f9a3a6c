package models

import (
	"time"

	"github.com/transitpay/settlement/internal/domain/notification"
)

// NotificationLogModel maps notification_logs.
type NotificationLogModel struct {
	BaseModel
	Recipient          string     `gorm:"type:varchar(320);not null;index"`
	Channel            string     `gorm:"type:varchar(20);not null"`
	Type               string     `gorm:"type:varchar(50);not null;index"`
	Subject            string     `gorm:"type:varchar(500)"`
	Content            string     `gorm:"type:text"`
	Status             string     `gorm:"type:varchar(20);not null;index"`
	Error              string     `gorm:"type:text"`
	SentAt             *time.Time
	TransportMessageID string `gorm:"type:varchar(255)"`
}

func (NotificationLogModel) TableName() string { return "notification_logs" }

// ToDomain converts the model to a delivery Log.
func (m *NotificationLogModel) ToDomain() *notification.Log {
	return &notification.Log{
		BaseEntity:         m.BaseModel.ToDomain(),
		Recipient:          m.Recipient,
		Channel:            notification.Channel(m.Channel),
		Type:               notification.TemplateKey(m.Type),
		Subject:            m.Subject,
		Content:            m.Content,
		Status:             notification.DeliveryStatus(m.Status),
		Error:              m.Error,
		SentAt:             m.SentAt,
		TransportMessageID: m.TransportMessageID,
	}
}

// NotificationLogModelFromDomain converts a delivery Log to its model.
func NotificationLogModelFromDomain(l *notification.Log) *NotificationLogModel {
	m := &NotificationLogModel{
		Recipient:          l.Recipient,
		Channel:            string(l.Channel),
		Type:               string(l.Type),
		Subject:            l.Subject,
		Content:            l.Content,
		Status:             string(l.Status),
		Error:              l.Error,
		SentAt:             l.SentAt,
		TransportMessageID: l.TransportMessageID,
	}
	m.FromDomainBaseEntity(l.BaseEntity)
	return m
}
