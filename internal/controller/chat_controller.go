// FILE: internal/controller/chat_controller.go
// Controller for the in-progress consultation chat
package controller

import (
	"pm-assistant-be/internal/dto"
	"pm-assistant-be/internal/pkg/serverutils"
	"pm-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ChatController interface {
	RegisterRoutes(api fiber.Router, streamHandler fiber.Handler)
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) ChatController {
	return &chatController{
		chatService: chatService,
	}
}

// RegisterRoutes mounts the REST endpoints and, when given, the websocket stream.
func (c *chatController) RegisterRoutes(api fiber.Router, streamHandler fiber.Handler) {
	r := api.Group("/chat")
	r.Get("/messages", c.History)
	r.Post("/messages", c.SendMessage)
	if streamHandler != nil {
		r.Get("/ws", streamHandler)
	}
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	history, err := c.chatService.History(ctx.UserContext(), serverutils.SessionID(ctx))
	if err != nil {
		return writeServiceError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Chat history", history))
}

// SendMessage answers one chat turn without streaming
// @Summary Send chat message
// @Tags Chat
// @Accept json
// @Produce json
// @Param body body dto.SendChatRequest true "Message"
// @Success 200 {object} dto.ChatReplyResponse
// @Router /api/chat/messages [post]
func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.SendMessage(ctx.UserContext(), serverutils.SessionID(ctx), req.Message)
	if err != nil {
		return writeServiceError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Message sent", res))
}
