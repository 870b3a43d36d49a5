package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/fintech-masoori/masoori/app/models"
	"github.com/fintech-masoori/masoori/app/repository"
)

const cardPageSize = 20

// HandleListUserCards returns a user's cards as JSON. This is the poll path a
// client falls back to when it missed the live notification: everything the
// pipeline persisted shows up here regardless of push delivery.
func HandleListUserCards(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || userID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid user id"})
	}

	if _, err := repository.GetGlobalFactory().GetUserRepository().GetByID(c.UserContext(), uint(userID)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load user"})
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * cardPageSize

	cardRepo := repository.GetGlobalFactory().GetCardRepository()

	var cards []models.Card
	cardType := c.Query("type")
	switch cardType {
	case "":
		cards, err = cardRepo.GetByUserID(c.UserContext(), uint(userID), offset, cardPageSize)
	case models.CARD_TYPE_BASIC, models.CARD_TYPE_SPECIAL:
		cards, err = cardRepo.GetByUserIDAndType(c.UserContext(), uint(userID), cardType, offset, cardPageSize)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Unknown card type"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load cards"})
	}

	total, err := cardRepo.CountByUserID(c.UserContext(), uint(userID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to count cards"})
	}

	return c.JSON(fiber.Map{
		"cards": cards,
		"page":  page,
		"total": total,
	})
}
