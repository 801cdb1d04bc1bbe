// Package codec defines the on-disk format of buffer tiles.
//
// A tile is one symmetry block of a buffer:
//
//	[magic u16][version u8][kind u8][compression u8][pad u8]
//	[rows u32][cols u32][crc32c u32][block]
//
// and block is [rawSize u32][packedSize u32][bytes], with packedSize 0 for
// payloads stored raw. Elements are little-endian IEEE 754.
//
// Changing this layout breaks every unit file written before the change.
package codec
