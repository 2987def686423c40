package handler

import (
	"github.com/gofiber/fiber/v2"

	"aidkit/internal/repository/schema"
	"aidkit/internal/service"
)

// ListStocks serves GET /medications/:id/stock.
func ListStocks(svc service.StockService, page service.Pagination) fiber.Handler {
	return func(c *fiber.Ctx) error {
		medID, err := idParam(c, "id")
		if err != nil {
			return writeRequestError(c, err)
		}
		limit, offset, err := pageParams(c, page)
		if err != nil {
			return writeRequestError(c, err)
		}
		fm, err := parseFilters(c, stockFilters)
		if err != nil {
			return writeRequestError(c, err)
		}

		items, err := svc.ListByMedication(c.UserContext(), medID, limit, offset, fm)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(items)
	}
}

// AddStock serves POST /medications/:id/stock. The medication comes from the path.
func AddStock(svc service.StockService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		medID, err := idParam(c, "id")
		if err != nil {
			return writeRequestError(c, err)
		}
		fields, err := decodeFields(c, schema.Stocks)
		if err != nil {
			return writeRequestError(c, err)
		}
		item, err := svc.AddToMedication(c.UserContext(), medID, fields)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	}
}

// GetStock serves GET /medications/:id/stock/:stockId.
func GetStock(svc service.StockService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		medID, stockID, err := stockPath(c)
		if err != nil {
			return writeRequestError(c, err)
		}
		item, err := svc.GetInMedication(c.UserContext(), medID, stockID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(item)
	}
}

// RemoveStock serves DELETE /medications/:id/stock/:stockId.
func RemoveStock(svc service.StockService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		medID, stockID, err := stockPath(c)
		if err != nil {
			return writeRequestError(c, err)
		}
		deleted, err := svc.RemoveFromMedication(c.UserContext(), medID, stockID)
		if err != nil {
			return writeServiceError(c, err)
		}
		if !deleted {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "stock item not found")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ConsumeStock serves POST /medications/:id/stock/:stockId/consume with
// {"amount": n}. It answers 200 with the remaining stock, or 204 once the
// item is used up and removed.
func ConsumeStock(svc service.StockService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		medID, stockID, err := stockPath(c)
		if err != nil {
			return writeRequestError(c, err)
		}
		var req consumeRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "body must be {\"amount\": <integer>}")
		}

		item, err := svc.Consume(c.UserContext(), medID, stockID, req.Amount)
		if err != nil {
			return writeServiceError(c, err)
		}
		if item == nil {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.JSON(item)
	}
}

func stockPath(c *fiber.Ctx) (medID, stockID int64, err error) {
	if medID, err = idParam(c, "id"); err != nil {
		return 0, 0, err
	}
	if stockID, err = idParam(c, "stockId"); err != nil {
		return 0, 0, err
	}
	return medID, stockID, nil
}
