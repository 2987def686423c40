package handler

import (
	"github.com/gofiber/fiber/v2"

	"aidkit/internal/service"
)

// ListAidKits serves GET /aidkits. Each kit carries stock_count and a window
// of its stock selected by stockLimit and stockOffset.
func ListAidKits(svc service.AidKitService, page service.Pagination) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pageParams(c, page)
		if err != nil {
			return writeRequestError(c, err)
		}
		w, err := stockWindow(c, page)
		if err != nil {
			return writeRequestError(c, err)
		}
		fm, err := parseFilters(c, aidKitFilters)
		if err != nil {
			return writeRequestError(c, err)
		}

		kits, err := svc.ListWithStocks(c.UserContext(), limit, offset, fm, w)
		if err != nil {
			return writeServiceError(c, err)
		}
		setTotalEstimate(c, svc)
		return c.JSON(kits)
	}
}

// GetAidKit serves GET /aidkits/:id with the same stock window parameters.
func GetAidKit(svc service.AidKitService, page service.Pagination) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return writeRequestError(c, err)
		}
		w, err := stockWindow(c, page)
		if err != nil {
			return writeRequestError(c, err)
		}
		kit, err := svc.GetWithStocks(c.UserContext(), id, w)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(kit)
	}
}

// ExportAidKit serves POST /aidkits/:id/export.
func ExportAidKit(svc service.ExportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return writeRequestError(c, err)
		}
		res, err := svc.ExportAidKit(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// DownloadExport serves GET /aidkits/:id/exports/:exportId by streaming the
// stored snapshot through the API.
func DownloadExport(svc service.ExportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return writeRequestError(c, err)
		}
		rc, info, err := svc.OpenExport(c.UserContext(), id, c.Params("exportId"))
		if err != nil {
			return writeServiceError(c, err)
		}
		contentType := info.ContentType
		if contentType == "" {
			contentType = fiber.MIMEApplicationJSON
		}
		c.Set(fiber.HeaderContentType, contentType)
		if info.ETag != "" {
			c.Set(fiber.HeaderETag, `"`+info.ETag+`"`)
		}
		size := -1
		if info.Size > 0 {
			size = int(info.Size)
		}
		return c.SendStream(rc, size)
	}
}
