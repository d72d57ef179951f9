package repositories

import (
	"context"

	"mandi/internal/models"
)

// ChatRepository stores chat rooms and their messages.
type ChatRepository interface {
	// OpenRoom returns the room of the pair, creating it when missing. created reports
	// whether this call inserted it. Concurrent callers always end up with the same room.
	OpenRoom(ctx context.Context, vendorID, supplierID string) (room *models.ChatRoom, created bool, err error)
	GetRoom(ctx context.Context, id string) (*models.ChatRoom, error)
	ListRooms(ctx context.Context, profileID string) ([]models.ChatRoom, error)
	// CreateMessage stores msg and bumps the room's updated_at.
	CreateMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context, roomID string) ([]models.Message, error)
	// MarkRead flags every message in the room not sent by readerID as read.
	MarkRead(ctx context.Context, roomID, readerID string) (int64, error)
}
