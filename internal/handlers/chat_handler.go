package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"mandi/internal/middleware"
	"mandi/internal/services"
	"mandi/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const streamKeepAlive = 25 * time.Second

// ChatHandler serves chat rooms, messages and the live room stream.
type ChatHandler struct {
	service *services.ChatService
	limiter *middleware.SenderLimiter
}

// NewChatHandler creates a ChatHandler. limiter bounds how fast a user can send; nil
// disables it.
func NewChatHandler(service *services.ChatService, limiter *middleware.SenderLimiter) *ChatHandler {
	return &ChatHandler{service: service, limiter: limiter}
}

// RegisterRoutes mounts the chat endpoints on an authenticated router.
func (h *ChatHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/chat-rooms", h.HandleListRooms)
	router.Post("/chat-rooms", h.HandleOpenRoom)
	router.Get("/chat-rooms/:id/messages", h.HandleListMessages)
	router.Post("/chat-rooms/:id/read", h.HandleMarkRead)
	router.Get("/chat-rooms/:id/stream", h.HandleStream)
	router.Post("/send-message", middleware.RateLimit(h.limiter), h.HandleSendMessage)
}

// HandleListRooms answers {"chatRooms": [...]}.
func (h *ChatHandler) HandleListRooms(c *fiber.Ctx) error {
	rooms, err := h.service.ListRooms(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"chatRooms": rooms})
}

type openRoomRequest struct {
	SupplierID string `json:"supplier_id"`
}

func (h *ChatHandler) HandleOpenRoom(c *fiber.Ctx) error {
	var req openRoomRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if req.SupplierID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "validation failed",
			"errors": fiber.Map{"supplier_id": "is required"},
		})
	}
	room, created, err := h.service.OpenRoom(c.UserContext(), middleware.UserID(c), req.SupplierID)
	if err != nil {
		return respondError(c, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"chatRoom": room})
}

type sendMessageRequest struct {
	ChatRoomID string `json:"chatRoomId"`
	Message    string `json:"message"`
}

// HandleSendMessage answers {"message": <stored message>}.
func (h *ChatHandler) HandleSendMessage(c *fiber.Ctx) error {
	var req sendMessageRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	msg, err := h.service.SendMessage(c.UserContext(), middleware.UserID(c), req.ChatRoomID, req.Message)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": msg})
}

func (h *ChatHandler) HandleListMessages(c *fiber.Ctx) error {
	msgs, err := h.service.ListMessages(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"messages": msgs})
}

func (h *ChatHandler) HandleMarkRead(c *fiber.Ctx) error {
	n, err := h.service.MarkRead(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"updated": n})
}

// HandleStream pushes new messages of a room as server-sent events until the client
// goes away.
func (h *ChatHandler) HandleStream(c *fiber.Ctx) error {
	roomID := c.Params("id")
	sub, err := h.service.Subscribe(c.UserContext(), middleware.UserID(c), roomID)
	if err != nil {
		return respondError(c, err)
	}
	log := logger.FromContext(c).With(zap.String("chat_room_id", roomID))

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer h.service.Unsubscribe(sub)
		log.Debug("chat stream opened")

		fmt.Fprint(w, ": connected\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		ticker := time.NewTicker(streamKeepAlive)
		defer ticker.Stop()
		for {
			select {
			case msg, ok := <-sub.C:
				if !ok {
					return
				}
				data, err := json.Marshal(msg)
				if err != nil {
					log.Error("failed to encode chat message", zap.Error(err))
					continue
				}
				fmt.Fprintf(w, "id: %s\nevent: message\ndata: %s\n\n", msg.ID, data)
			case <-ticker.C:
				fmt.Fprint(w, ": ping\n\n")
			}
			if err := w.Flush(); err != nil {
				log.Debug("chat stream closed", zap.Error(err))
				return
			}
		}
	}))
	return nil
}
