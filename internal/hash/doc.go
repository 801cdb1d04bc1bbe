// Package hash provides the CRC32-Castagnoli checksum used by unit file
// trailers and encoded tiles.
//
//	sum := hash.CRC32C(data)
//
// Go's crc32 package uses SSE4.2 or the ARM CRC extension when available.
package hash
