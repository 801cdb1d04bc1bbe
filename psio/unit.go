package psio

import "fmt"

// Unit is a numbered file unit.
type Unit int

// Well-known units.
const (
	UnitLibTransDPD Unit = 61

	UnitCCInfo  Unit = 100
	UnitCCOEI   Unit = 102
	UnitCCAInts Unit = 103
	UnitCCBInts Unit = 104
	UnitCCCInts Unit = 105
	UnitCCDInts Unit = 106
	UnitCCEInts Unit = 107
	UnitCCFInts Unit = 108
	UnitCCDenom Unit = 109
	UnitCCTAmps Unit = 110
	UnitCCGamma Unit = 111
	UnitCCMisc  Unit = 112
	UnitCCHBar  Unit = 113
	UnitCCLAmps Unit = 114
	UnitCCLR    Unit = 115
	UnitCCTmp   Unit = 127
	UnitCCTmp0  Unit = 128
	UnitCCTmp1  Unit = 129
	UnitCCTmp2  Unit = 130
	UnitCCTmp11 Unit = 139
	UnitCCMax   Unit = 160

	// MaxUnit is the highest valid unit number.
	MaxUnit Unit = 400
)

// Category groups units by retention.
type Category uint8

const (
	CategoryOther   Category = iota
	CategoryOEI              // one-electron and amplitude units, kept
	CategoryScratch          // CC_TMP..CC_TMP11, deleted when the computation ends
)

func (c Category) String() string {
	switch c {
	case CategoryOEI:
		return "oei"
	case CategoryScratch:
		return "scratch"
	default:
		return "other"
	}
}

// CategoryOf classifies u.
func CategoryOf(u Unit) Category {
	switch {
	case u >= UnitCCOEI && u < UnitCCTmp:
		return CategoryOEI
	case IsScratch(u):
		return CategoryScratch
	default:
		return CategoryOther
	}
}

// IsScratch reports whether u is a CC scratch unit.
func IsScratch(u Unit) bool {
	return u >= UnitCCTmp && u <= UnitCCTmp11
}

// Valid reports whether u is in range.
func (u Unit) Valid() bool {
	return u > 0 && u <= MaxUnit
}

func (u Unit) String() string {
	return fmt.Sprintf("unit %d", int(u))
}

// Mode selects how Open treats existing contents.
type Mode uint8

const (
	// ModeNew truncates the unit file.
	ModeNew Mode = iota
	// ModeOld preserves the unit file and its table of contents.
	ModeOld
)

func (m Mode) String() string {
	if m == ModeOld {
		return "old"
	}
	return "new"
}
