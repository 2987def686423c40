package model

// DosageForm is the pharmaceutical form a medication is supplied in.
type DosageForm string

const (
	DosageTablet    DosageForm = "tablet"
	DosageCapsule   DosageForm = "capsule"
	DosageSyrup     DosageForm = "syrup"
	DosageDrops     DosageForm = "drops"
	DosageOintment  DosageForm = "ointment"
	DosageInjection DosageForm = "injection"
	DosagePowder    DosageForm = "powder"
	DosageSpray     DosageForm = "spray"
)

// DosageForms lists every accepted DosageForm in declaration order.
var DosageForms = []DosageForm{
	DosageTablet, DosageCapsule, DosageSyrup, DosageDrops,
	DosageOintment, DosageInjection, DosagePowder, DosageSpray,
}

func (d DosageForm) String() string { return string(d) }

// MeasureUnit is the unit a stock quantity is expressed in.
type MeasureUnit string

const (
	UnitMilligram  MeasureUnit = "mg"
	UnitGram       MeasureUnit = "g"
	UnitKilogram   MeasureUnit = "kg"
	UnitMilliliter MeasureUnit = "ml"
	UnitPiece      MeasureUnit = "pcs"
)

// MeasureUnits lists every accepted MeasureUnit in declaration order.
var MeasureUnits = []MeasureUnit{UnitMilligram, UnitGram, UnitKilogram, UnitMilliliter, UnitPiece}

func (u MeasureUnit) String() string { return string(u) }
