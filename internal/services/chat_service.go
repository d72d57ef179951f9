package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"mandi/internal/errs"
	"mandi/internal/metrics"
	"mandi/internal/models"
	"mandi/internal/realtime"
	"mandi/internal/repositories"

	"go.uber.org/zap"
)

type messageCreated struct {
	MessageID  string `json:"message_id"`
	ChatRoomID string `json:"chat_room_id"`
	SenderID   string `json:"sender_id"`
}

// ChatService runs the vendor/supplier conversations.
type ChatService struct {
	chats     repositories.ChatRepository
	profiles  repositories.ProfileRepository
	hub       *realtime.Hub
	events    *Events
	metrics   *metrics.Metrics
	log       *zap.Logger
	maxLength int
}

func NewChatService(
	chats repositories.ChatRepository,
	profiles repositories.ProfileRepository,
	hub *realtime.Hub,
	events *Events,
	m *metrics.Metrics,
	log *zap.Logger,
	maxLength int,
) *ChatService {
	if log == nil {
		log = zap.NewNop()
	}
	if hub == nil {
		hub = realtime.NewHub()
	}
	return &ChatService{
		chats:     chats,
		profiles:  profiles,
		hub:       hub,
		events:    events,
		metrics:   m,
		log:       log,
		maxLength: maxLength,
	}
}

// OpenRoom returns the caller's room with supplierID, creating it on first contact.
func (s *ChatService) OpenRoom(ctx context.Context, userID, supplierID string) (*models.ChatRoomView, bool, error) {
	vendor, err := currentProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, false, err
	}
	if vendor.Role != models.RoleVendor {
		return nil, false, errs.Forbidden("only vendors can start a conversation")
	}
	supplier, err := s.profiles.GetByID(ctx, supplierID)
	if err != nil {
		return nil, false, err
	}
	if supplier.Role != models.RoleSupplier {
		return nil, false, errs.NotFound("supplier with ID %s not found", supplierID)
	}

	room, created, err := s.chats.OpenRoom(ctx, vendor.ID, supplier.ID)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.log.Info("chat room opened", zap.String("chat_room_id", room.ID))
	}
	return &models.ChatRoomView{ChatRoom: *room, Vendor: vendor.Summary(), Supplier: supplier.Summary()}, created, nil
}

// ListRooms returns the caller's rooms with both parties, most recently active first.
func (s *ChatService) ListRooms(ctx context.Context, userID string) ([]models.ChatRoomView, error) {
	caller, err := currentProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	rooms, err := s.chats.ListRooms(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, 2*len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.VendorID, r.SupplierID)
	}
	parties, err := summaries(ctx, s.profiles, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.ChatRoomView, len(rooms))
	for i, r := range rooms {
		out[i] = models.ChatRoomView{ChatRoom: r, Vendor: parties[r.VendorID], Supplier: parties[r.SupplierID]}
	}
	return out, nil
}

// SendMessage appends body to a room the caller takes part in and fans it out to the
// room's live subscribers.
func (s *ChatService) SendMessage(ctx context.Context, userID, roomID, body string) (*models.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, errs.Fields("validation failed", map[string]string{"message": "is required"})
	}
	if s.maxLength > 0 && utf8.RuneCountInString(body) > s.maxLength {
		return nil, errs.Fields("validation failed", map[string]string{"message": "is too long"})
	}
	if strings.TrimSpace(roomID) == "" {
		return nil, errs.Fields("validation failed", map[string]string{"chatRoomId": "is required"})
	}

	sender, room, err := s.participantRoom(ctx, userID, roomID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ChatRoomID:  room.ID,
		SenderID:    sender.ID,
		Body:        body,
		MessageType: models.MessageTypeText,
	}
	if err := s.chats.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	if _, dropped := s.hub.Publish(*msg); dropped > 0 {
		s.log.Warn("slow chat subscribers missed a message",
			zap.String("chat_room_id", room.ID),
			zap.Int("dropped", dropped),
		)
	}
	s.metrics.MessageSent()
	s.events.Emit(ctx, EventMessageCreated, messageCreated{
		MessageID:  msg.ID,
		ChatRoomID: msg.ChatRoomID,
		SenderID:   msg.SenderID,
	})
	return msg, nil
}

func (s *ChatService) ListMessages(ctx context.Context, userID, roomID string) ([]models.Message, error) {
	if _, _, err := s.participantRoom(ctx, userID, roomID); err != nil {
		return nil, err
	}
	return s.chats.ListMessages(ctx, roomID)
}

// MarkRead flags the counterpart's messages in the room as read by the caller.
func (s *ChatService) MarkRead(ctx context.Context, userID, roomID string) (int64, error) {
	caller, _, err := s.participantRoom(ctx, userID, roomID)
	if err != nil {
		return 0, err
	}
	return s.chats.MarkRead(ctx, roomID, caller.ID)
}

// Subscribe opens a live feed of a room for the caller. Release it with Unsubscribe.
func (s *ChatService) Subscribe(ctx context.Context, userID, roomID string) (*realtime.Subscription, error) {
	if _, _, err := s.participantRoom(ctx, userID, roomID); err != nil {
		return nil, err
	}
	return s.hub.Subscribe(roomID), nil
}

func (s *ChatService) Unsubscribe(sub *realtime.Subscription) {
	s.hub.Unsubscribe(sub)
}

// participantRoom hides rooms the caller is not part of behind NotFound.
func (s *ChatService) participantRoom(ctx context.Context, userID, roomID string) (*models.Profile, *models.ChatRoom, error) {
	caller, err := currentProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, nil, err
	}
	room, err := s.chats.GetRoom(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	if !room.HasParticipant(caller.ID) {
		return nil, nil, errs.NotFound("chat room with ID %s not found", roomID)
	}
	return caller, room, nil
}
