package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"aidkit/internal/model"
	"aidkit/internal/repository/schema"
	"aidkit/internal/service"
)

// Services bundles the use cases exposed over HTTP.
type Services struct {
	Producers   service.Service[model.Producer]
	Categories  service.Service[model.Category]
	Medications service.Service[model.Medication]
	AidKits     service.AidKitService
	Stocks      service.StockService
	Export      service.ExportService
}

// Options configures RegisterRoutes.
type Options struct {
	Page service.Pagination
	// OpenAPIPath is the file served at /openapi.yaml.
	OpenAPIPath string
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers only translate HTTP to service calls and back.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc Services, opts Options) {
	if opts.OpenAPIPath == "" {
		opts.OpenAPIPath = "openapi.yaml"
	}
	app.Get("/openapi.yaml", OpenAPISpec(opts.OpenAPIPath))
	app.Get("/docs", Docs())

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	registerCRUD(app.Group("/producers"), svc.Producers, schema.Producers, opts.Page, producerFilters)
	registerCRUD(app.Group("/categories"), svc.Categories, schema.Categories, opts.Page, categoryFilters)

	meds := app.Group("/medications")
	registerCRUD(meds, svc.Medications, schema.Medications, opts.Page, medicationFilters)

	stock := meds.Group("/:id/stock")
	stock.Get("/", ListStocks(svc.Stocks, opts.Page))
	stock.Post("/", AddStock(svc.Stocks))
	stock.Get("/:stockId", GetStock(svc.Stocks))
	stock.Delete("/:stockId", RemoveStock(svc.Stocks))
	stock.Post("/:stockId/consume", ConsumeStock(svc.Stocks))

	kits := app.Group("/aidkits")
	kits.Get("/", ListAidKits(svc.AidKits, opts.Page))
	kits.Post("/", CreateItem[model.AidKit](svc.AidKits, schema.AidKits))
	kits.Get("/:id", GetAidKit(svc.AidKits, opts.Page))
	kits.Patch("/:id", UpdateItem[model.AidKit](svc.AidKits, schema.AidKits))
	kits.Delete("/:id", DeleteItem[model.AidKit](svc.AidKits))
	kits.Post("/:id/export", ExportAidKit(svc.Export))
	kits.Get("/:id/exports/:exportId", DownloadExport(svc.Export))
}

func registerCRUD[T any](r fiber.Router, svc service.Service[T], table *schema.Table, page service.Pagination, filters []queryFilter) {
	r.Get("/", ListItems(svc, page, filters))
	r.Post("/", CreateItem(svc, table))
	r.Get("/:id", GetItem(svc))
	r.Patch("/:id", UpdateItem(svc, table))
	r.Delete("/:id", DeleteItem(svc))
}
