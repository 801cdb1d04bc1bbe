// Package psio manages numbered, paged file units.
//
// A unit is a file "<prefix>.<number>" holding named entries. While a unit
// is open its table of contents lives in memory; Close(u, true) appends it
// to the file with a checksummed trailer, and Open(u, ModeOld) reads it back.
// Close(u, false) deletes the file.
//
//	m, err := psio.NewManager(psio.Config{Dir: scratch})
//	if err := m.Open(psio.UnitCCTmp, psio.ModeNew); err != nil { ... }
//	defer m.Close(psio.UnitCCTmp, false)
//
// Every open unit holds an exclusive advisory lock, so a second manager
// opening the same file fails with ErrUnitBusy.
package psio
