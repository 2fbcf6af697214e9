package http

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ledger-sync/internal/application/dto"
	"github.com/jhoicas/ledger-sync/internal/domain/entity"
)

// validate es seguro para uso concurrente y cachea la estructura de cada tipo.
var validate = validator.New(validator.WithRequiredStructEnabled())

// validationError devuelve 400 VALIDATION con los campos que fallaron.
func validationError(c *fiber.Ctx, err error) error {
	msg := err.Error()
	if verrs, ok := err.(validator.ValidationErrors); ok {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
		}
		msg = strings.Join(parts, "; ")
	}
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: msg})
}

// entityParam resuelve :entity (customers | vendors).
func entityParam(c *fiber.Ctx) (entity.PartyKind, bool) {
	switch c.Params("entity") {
	case "customers":
		return entity.PartyCustomer, true
	case "vendors":
		return entity.PartyVendor, true
	default:
		return "", false
	}
}

func unknownEntity(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "UNKNOWN_ENTITY", Message: "entity debe ser customers o vendors"})
}
