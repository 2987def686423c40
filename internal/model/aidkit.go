package model

import "time"

// AidKit is a first-aid kit together with a page of its stock.
// StockCount is the total number of stock rows in the kit and is always
// computed at read time; len(Stocks) is bounded by the requested window.
type AidKit struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	Location   *string     `json:"location"`
	StockCount int64       `json:"stock_count"`
	Stocks     []StockItem `json:"stocks"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// StockItem is the read-only view of a stock row loaded together with its kit.
type StockItem struct {
	ID             int64             `json:"id"`
	Quantity       int64             `json:"quantity"`
	MeasureUnit    MeasureUnit       `json:"measure_unit"`
	ProductionDate time.Time         `json:"production_date"`
	BestBefore     time.Time         `json:"best_before"`
	OpenedAt       *time.Time        `json:"opened_at"`
	CreatedAt      time.Time         `json:"created_at"`
	Medication     MedicationSummary `json:"medication"`
}

// MedicationSummary carries only the medication columns the kit view displays.
type MedicationSummary struct {
	ID          int64      `json:"id"`
	BrandName   string     `json:"brand_name"`
	GenericName string     `json:"generic_name"`
	DosageForm  DosageForm `json:"dosage_form"`
	Producer    *Ref       `json:"producer"`
	Category    *Ref       `json:"category"`
}

// Ref is an id + name reference to a shared row.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
