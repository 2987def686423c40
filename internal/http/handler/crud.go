package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"aidkit/internal/repository/schema"
	"aidkit/internal/service"
)

// TotalEstimateHeader carries the engine's row estimate on list responses.
const TotalEstimateHeader = "X-Total-Estimate"

// ListItems serves GET /<collection> with limit, offset and the collection's filters.
func ListItems[T any](svc service.Service[T], page service.Pagination, filters []queryFilter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pageParams(c, page)
		if err != nil {
			return writeRequestError(c, err)
		}
		fm, err := parseFilters(c, filters)
		if err != nil {
			return writeRequestError(c, err)
		}

		items, err := svc.ListItems(c.UserContext(), limit, offset, fm)
		if err != nil {
			return writeServiceError(c, err)
		}
		setTotalEstimate(c, svc)
		return c.JSON(items)
	}
}

// setTotalEstimate adds the row estimate header. The estimate is advisory,
// so a failed lookup leaves the header out instead of failing the list.
func setTotalEstimate[T any](c *fiber.Ctx, svc service.Service[T]) {
	if n, err := svc.Count(c.UserContext()); err == nil {
		c.Set(TotalEstimateHeader, strconv.FormatInt(n, 10))
	}
}

// CreateItem serves POST /<collection> with a JSON object body.
func CreateItem[T any](svc service.Service[T], table *schema.Table) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fields, err := decodeFields(c, table)
		if err != nil {
			return writeRequestError(c, err)
		}
		item, err := svc.Create(c.UserContext(), fields)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	}
}

// GetItem serves GET /<collection>/:id.
func GetItem[T any](svc service.Service[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return writeRequestError(c, err)
		}
		item, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(item)
	}
}

// UpdateItem serves PATCH /<collection>/:id with a partial JSON object body.
func UpdateItem[T any](svc service.Service[T], table *schema.Table) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return writeRequestError(c, err)
		}
		fields, err := decodeFields(c, table)
		if err != nil {
			return writeRequestError(c, err)
		}
		item, err := svc.Update(c.UserContext(), id, fields)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(item)
	}
}

// DeleteItem serves DELETE /<collection>/:id: 204 when a row was removed, 404 otherwise.
func DeleteItem[T any](svc service.Service[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return writeRequestError(c, err)
		}
		deleted, err := svc.Delete(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		if !deleted {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
