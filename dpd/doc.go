// Package dpd stores symmetry-blocked two- and four-index buffers in psio
// units and pages their blocks through a bounded tile cache.
//
// A Store owns orbital spaces and a tile cache. File2 and Buf4 handles
// address blocks by irrep:
//
//	occ, _ := st.AddSpace("O", linalg.NewDimension(2, 1), false)
//	vir, _ := st.AddSpace("V", linalg.NewDimension(4, 3), true)
//	t1, _ := dpd.InitFile2[float64](st, psio.UnitCCTAmps, "tIA", occ, vir, 0)
//	blk, _ := t1.Block(ctx, 0)
//
// Whether a block stays resident is decided by the CacheList. Resident
// blocks are written back when evicted, when their unit is closed with keep,
// and by File2CacheClose, File4CacheClose and Close. Other blocks are
// written through on every change.
package dpd
