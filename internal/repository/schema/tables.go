package schema

import "aidkit/internal/model"

var (
	Producers = NewTable("producers",
		Column{Name: "name", Kind: String},
	)

	Categories = NewTable("categories",
		Column{Name: "name", Kind: String},
	)

	Medications = NewTable("medications",
		Column{Name: "brand_name", Kind: String},
		Column{Name: "generic_name", Kind: String},
		Column{Name: "dosage_form", Kind: Enum, Enum: enumValues(model.DosageForms)},
		Column{Name: "producer_id", Kind: Int, Nullable: true},
		Column{Name: "category_id", Kind: Int, Nullable: true},
	)

	Stocks = NewTable("stocks",
		Column{Name: "quantity", Kind: Int},
		Column{Name: "measure_unit", Kind: Enum, Enum: enumValues(model.MeasureUnits)},
		Column{Name: "production_date", Kind: Date},
		Column{Name: "best_before", Kind: Date},
		Column{Name: "opened_at", Kind: Date, Nullable: true},
		Column{Name: "medication_id", Kind: Int},
		Column{Name: "aidkit_id", Kind: Int},
	)

	AidKits = NewTable("aidkits",
		Column{Name: "name", Kind: String},
		Column{Name: "location", Kind: String, Nullable: true},
	)
)

// All lists the tables in dependency order: referenced tables first.
var All = []*Table{Producers, Categories, Medications, AidKits, Stocks}

func enumValues[E ~string](vs []E) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v)
	}
	return out
}
