package models

import "time"

// Message represents one anonymous note sent to a user. Nothing about the
// sender is captured or stored. A message is never mutated after creation and
// is removed only by its owner's explicit delete.
type Message struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"-" gorm:"index;type:varchar(36)"`
	Content   string    `json:"content" gorm:"type:varchar(500)" validate:"required,min=10,max=500"`
	CreatedAt time.Time `json:"createdAt"`
}
