package repositories

import (
	"context"
	"errors"

	"mandi/internal/errs"
	"mandi/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GORMChatRepository struct {
	db *gorm.DB
}

func NewGORMChatRepository(db *gorm.DB) *GORMChatRepository {
	return &GORMChatRepository{db: db}
}

func (r *GORMChatRepository) OpenRoom(ctx context.Context, vendorID, supplierID string) (*models.ChatRoom, bool, error) {
	db := r.db.WithContext(ctx)
	room := models.ChatRoom{VendorID: vendorID, SupplierID: supplierID}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "vendor_id"}, {Name: "supplier_id"}},
		DoNothing: true,
	}).Create(&room)
	if res.Error != nil {
		return nil, false, storeErr("open chat room", res.Error)
	}

	var stored models.ChatRoom
	if err := db.First(&stored, "vendor_id = ? AND supplier_id = ?", vendorID, supplierID).Error; err != nil {
		return nil, false, storeErr("load chat room", err)
	}
	return &stored, res.RowsAffected == 1, nil
}

func (r *GORMChatRepository) GetRoom(ctx context.Context, id string) (*models.ChatRoom, error) {
	var room models.ChatRoom
	if err := r.db.WithContext(ctx).First(&room, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("chat room with ID %s not found", id)
		}
		return nil, storeErr("get chat room", err)
	}
	return &room, nil
}

// ListRooms returns the rooms the profile takes part in, most recently active first.
func (r *GORMChatRepository) ListRooms(ctx context.Context, profileID string) ([]models.ChatRoom, error) {
	var rooms []models.ChatRoom
	err := r.db.WithContext(ctx).
		Where("vendor_id = ? OR supplier_id = ?", profileID, profileID).
		Order("updated_at DESC").Order("id ASC").
		Find(&rooms).Error
	if err != nil {
		return nil, storeErr("list chat rooms", err)
	}
	return rooms, nil
}

func (r *GORMChatRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return storeErr("create message", err)
		}
		res := tx.Model(&models.ChatRoom{}).Where("id = ?", msg.ChatRoomID).Update("updated_at", msg.CreatedAt)
		if res.Error != nil {
			return storeErr("touch chat room", res.Error)
		}
		if res.RowsAffected == 0 {
			return errs.NotFound("chat room with ID %s not found", msg.ChatRoomID)
		}
		return nil
	})
}

// ListMessages returns the room's history in send order.
func (r *GORMChatRepository) ListMessages(ctx context.Context, roomID string) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.WithContext(ctx).
		Where("chat_room_id = ?", roomID).
		Order("created_at ASC").Order("id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, storeErr("list messages", err)
	}
	return msgs, nil
}

func (r *GORMChatRepository) MarkRead(ctx context.Context, roomID, readerID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("chat_room_id = ? AND sender_id <> ? AND is_read = ?", roomID, readerID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, storeErr("mark messages read", res.Error)
	}
	return res.RowsAffected, nil
}
