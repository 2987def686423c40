package sqldb

import (
	"database/sql"

	"aidkit/internal/model"
	"aidkit/internal/repository"
	"aidkit/internal/repository/dialect"
	"aidkit/internal/repository/schema"
)

// NewProducers returns the producer repository.
func NewProducers(db *sql.DB, d dialect.Dialect) repository.ProducerRepository {
	return NewTable(db, d, Descriptor[model.Producer]{Table: schema.Producers, Scan: scanProducer})
}

// NewCategories returns the category repository.
func NewCategories(db *sql.DB, d dialect.Dialect) repository.CategoryRepository {
	return NewTable(db, d, Descriptor[model.Category]{Table: schema.Categories, Scan: scanCategory})
}

// NewMedications returns the medication repository.
func NewMedications(db *sql.DB, d dialect.Dialect) repository.MedicationRepository {
	return NewTable(db, d, Descriptor[model.Medication]{Table: schema.Medications, Scan: scanMedication})
}

func scanProducer(s scanner) (model.Producer, error) {
	var (
		p                model.Producer
		created, updated nullTime
	)
	if err := s.Scan(&p.ID, &p.Name, &created, &updated); err != nil {
		return p, err
	}
	p.CreatedAt, p.UpdatedAt = created.Time, updated.Time
	return p, nil
}

func scanCategory(s scanner) (model.Category, error) {
	var (
		c                model.Category
		created, updated nullTime
	)
	if err := s.Scan(&c.ID, &c.Name, &created, &updated); err != nil {
		return c, err
	}
	c.CreatedAt, c.UpdatedAt = created.Time, updated.Time
	return c, nil
}

func scanMedication(s scanner) (model.Medication, error) {
	var (
		m                    model.Medication
		form                 string
		producerID, category sql.NullInt64
		created, updated     nullTime
	)
	if err := s.Scan(&m.ID, &m.BrandName, &m.GenericName, &form, &producerID, &category, &created, &updated); err != nil {
		return m, err
	}
	m.DosageForm = model.DosageForm(form)
	m.ProducerID, m.CategoryID = int64Ptr(producerID), int64Ptr(category)
	m.CreatedAt, m.UpdatedAt = created.Time, updated.Time
	return m, nil
}

func scanStock(s scanner) (model.MedicationStock, error) {
	var (
		st                             model.MedicationStock
		unit                           string
		produced, bestBefore, openedAt nullTime
		created, updated               nullTime
	)
	err := s.Scan(&st.ID, &st.Quantity, &unit, &produced, &bestBefore, &openedAt,
		&st.MedicationID, &st.AidKitID, &created, &updated)
	if err != nil {
		return st, err
	}
	st.MeasureUnit = model.MeasureUnit(unit)
	st.ProductionDate, st.BestBefore = produced.Time, bestBefore.Time
	st.OpenedAt = openedAt.ptr()
	st.CreatedAt, st.UpdatedAt = created.Time, updated.Time
	return st, nil
}

// scanAidKit reads the base aidkits columns; stock_count and stocks are
// filled by the aggregate loader.
func scanAidKit(s scanner) (model.AidKit, error) {
	var (
		k                model.AidKit
		location         sql.NullString
		created, updated nullTime
	)
	if err := s.Scan(&k.ID, &k.Name, &location, &created, &updated); err != nil {
		return k, err
	}
	k.Location = stringPtr(location)
	k.CreatedAt, k.UpdatedAt = created.Time, updated.Time
	k.Stocks = []model.StockItem{}
	return k, nil
}
