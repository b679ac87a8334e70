package models

import "time"

// ProcessedMessage records a bus message id whose side effect has already
// been applied, so a redelivery can be acknowledged without reapplying it.
type ProcessedMessage struct {
	MessageID   string    `gorm:"primaryKey" json:"message_id"`
	Topic       string    `gorm:"not null" json:"topic"`
	ProcessedAt time.Time `gorm:"not null" json:"processed_at"`
}
