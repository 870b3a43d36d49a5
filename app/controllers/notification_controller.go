package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/fintech-masoori/masoori/app/repository"
	"github.com/fintech-masoori/masoori/internal/pkg/metrics/counter"
	"github.com/fintech-masoori/masoori/internal/pkg/notify"
)

// HandleSubscribe opens the live notification stream for a user identity
func HandleSubscribe(c *fiber.Ctx) error {
	return notify.SSEHandler(notify.GetRegistry())(c)
}

// HandleListUnreadNotifications returns a user's persisted unread
// notifications, the catch-up surface for users who were offline.
func HandleListUnreadNotifications(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || userID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid user id"})
	}

	notifications, err := repository.GetGlobalFactory().GetNotificationRepository().GetUnreadByUserID(c.UserContext(), uint(userID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load notifications"})
	}

	return c.JSON(fiber.Map{"notifications": notifications})
}

// HandlePipelineStats exposes the pipeline counters for operators
func HandlePipelineStats(c *fiber.Ctx) error {
	stats, err := counter.Snapshot()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load counters"})
	}
	return c.JSON(fiber.Map{"counters": stats})
}
