package controller

import (
	"errors"
	"strings"

	"voice-assistant-be/internal/dto"
	"voice-assistant-be/internal/mapper"
	"voice-assistant-be/internal/pkg/serverutils"
	"voice-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Process(ctx *fiber.Ctx) error
	Clear(ctx *fiber.Ctx) error
	ShowSession(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
	mapper      *mapper.ChatMapper
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
		mapper:      mapper.NewChatMapper(),
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	r.Post("/process", c.Process)
	r.Post("/clear/:session_id", c.Clear)
	r.Get("/sessions/:session_id", c.ShowSession)
	r.Get("/health", c.Health)
}

func (c *chatController) Process(ctx *fiber.Ctx) error {
	var req dto.ProcessRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Command) == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "command is blank"))
	}

	res, err := c.chatService.HandleTurn(ctx.UserContext(), req.SessionId, req.Command)
	if errors.Is(err, service.ErrEmptyUtterance) {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Turn processed", c.mapper.TurnResultToResponse(res)))
}

func (c *chatController) Clear(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("session_id")
	existed := c.chatService.ClearSession(ctx.UserContext(), sessionId)

	return ctx.JSON(serverutils.SuccessResponse("Session cleared", dto.ClearSessionResponse{
		SessionId: sessionId,
		Existed:   existed,
	}))
}

func (c *chatController) ShowSession(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("session_id")
	sess, ok := c.chatService.Session(sessionId)
	if !ok {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "session not found"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Session", c.mapper.SessionToResponse(sess)))
}

func (c *chatController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.HealthResponse{
		Status:    "healthy",
		MlEnabled: c.chatService.ClassifierEnabled(),
	})
}
