package model

import "time"

// Producer is a medication manufacturer. Shared by many medications.
type Producer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Category groups medications (e.g. "antipyretic"). Shared by many medications.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Medication is a catalogue entry. ProducerID and CategoryID are cleared,
// not cascaded, when the referenced row is deleted.
type Medication struct {
	ID          int64      `json:"id"`
	BrandName   string     `json:"brand_name"`
	GenericName string     `json:"generic_name"`
	DosageForm  DosageForm `json:"dosage_form"`
	ProducerID  *int64     `json:"producer_id"`
	CategoryID  *int64     `json:"category_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// MedicationStock is a concrete package of a medication stored in a kit.
type MedicationStock struct {
	ID             int64       `json:"id"`
	Quantity       int64       `json:"quantity"`
	MeasureUnit    MeasureUnit `json:"measure_unit"`
	ProductionDate time.Time   `json:"production_date"`
	BestBefore     time.Time   `json:"best_before"`
	OpenedAt       *time.Time  `json:"opened_at"`
	MedicationID   int64       `json:"medication_id"`
	AidKitID       int64       `json:"aidkit_id"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}
