// Package symtensor provides symmetry-blocked tensors backed by paged,
// disk-resident buffers.
//
// A Context is one computation. It owns the numbered unit files (package
// psio), the tile store holding File2 and Buf4 buffers (package dpd), the
// cache list deciding which blocks stay resident, and a memory and I/O
// budget. In-memory tensors and their contractions live in package linalg.
//
// # Quick Start
//
//	err := symtensor.Run([]symtensor.Option{
//		symtensor.WithScratchDir("/scratch"),
//		symtensor.WithIrreps(4),
//		symtensor.WithMemory(1 << 30),
//	}, func(c *symtensor.Context) error {
//		if err := c.PsioOn(); err != nil {
//			return err
//		}
//		st := c.Store()
//		occ, _ := st.AddSpace("O", linalg.NewDimension(3, 0, 1, 1), false)
//		vir, _ := st.AddSpace("V", linalg.NewDimension(1, 0, 0, 1), true)
//		d, err := dpd.InitBuf4[float64](st, psio.UnitCCDInts, "D <ij|ab>", occ, occ, vir, vir, 0)
//		...
//		return c.PsioOff()
//	})
//
// # Teardown
//
// Close (and Run) write back resident tiles, delete the cache list and
// close every open unit. Scratch units UnitCCTmp..UnitCCTmp11 are deleted;
// all others are kept for later computations using the same file prefix.
// Teardown runs exactly once.
//
// # Errors
//
// Unit lifecycle violations (double open, use of a closed unit, a unit held
// by another computation) are reported wrapped in ErrFatal.
//
// # Archives
//
// Archive and Restore copy retained unit files to and from a
// blobstore.Store, e.g. a directory, S3 or MinIO.
package symtensor
