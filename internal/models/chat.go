package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatRoom is the single conversation between a vendor and a supplier.
type ChatRoom struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	VendorID   string    `json:"vendor_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_chat_rooms_pair,priority:1"`
	SupplierID string    `json:"supplier_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_chat_rooms_pair,priority:2;index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (r *ChatRoom) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (r *ChatRoom) HasParticipant(profileID string) bool {
	return r.VendorID == profileID || r.SupplierID == profileID
}

// ChatRoomView is a room joined with both parties.
type ChatRoomView struct {
	ChatRoom
	Vendor   PartySummary `json:"vendor"`
	Supplier PartySummary `json:"supplier"`
}

const MessageTypeText = "text"

// Message is persisted with a server-assigned timestamp, which defines its order in the room.
type Message struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ChatRoomID  string    `json:"chat_room_id" gorm:"type:varchar(36);index:idx_messages_room_created,priority:1;not null"`
	SenderID    string    `json:"sender_id" gorm:"type:varchar(36);index;not null"`
	Body        string    `json:"message" gorm:"column:message;type:text;not null"`
	MessageType string    `json:"message_type" gorm:"type:varchar(16)"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at" gorm:"index:idx_messages_room_created,priority:2"`
}

func (m *Message) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.MessageType == "" {
		m.MessageType = MessageTypeText
	}
	return nil
}
