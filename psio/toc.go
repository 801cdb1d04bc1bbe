package psio

import (
	"encoding/binary"
	"fmt"
	"io"
	"slices"

	"github.com/hupe1980/symtensor/internal/fs"
	"github.com/hupe1980/symtensor/internal/hash"
)

// On-disk layout of a closed unit:
//
//	[payload ...][toc][tocOffset u64][crc32c(toc) u32][magic u32]
//
// toc is [count u32] followed by count records of
// [keyLen u16][key][offset u64][length u64][capacity u64].
const (
	trailerSize = 16
	unitMagic   = 0x4f495350 // "PSIO"
	maxKeyLen   = 1<<16 - 1
)

// extent locates an entry's payload. capacity >= length is the space
// reserved at offset, so shorter rewrites stay in place.
type extent struct {
	offset   int64
	length   int64
	capacity int64
}

func encodeTOC(toc map[string]extent) []byte {
	keys := make([]string, 0, len(toc))
	size := 4
	for k := range toc {
		keys = append(keys, k)
		size += 2 + len(k) + 24
	}
	slices.Sort(keys)

	buf := make([]byte, size)
	binary.LittleEndian.PutUint32(buf, uint32(len(keys)))
	off := 4
	for _, k := range keys {
		e := toc[k]
		binary.LittleEndian.PutUint16(buf[off:], uint16(len(k)))
		off += 2
		off += copy(buf[off:], k)
		binary.LittleEndian.PutUint64(buf[off:], uint64(e.offset))
		binary.LittleEndian.PutUint64(buf[off+8:], uint64(e.length))
		binary.LittleEndian.PutUint64(buf[off+16:], uint64(e.capacity))
		off += 24
	}
	return buf
}

func decodeTOC(buf []byte, limit int64) (map[string]extent, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("%w: short toc", ErrCorrupt)
	}
	n := int(binary.LittleEndian.Uint32(buf))
	toc := make(map[string]extent, n)
	off := 4
	for i := 0; i < n; i++ {
		if off+2 > len(buf) {
			return nil, fmt.Errorf("%w: toc record %d truncated", ErrCorrupt, i)
		}
		kl := int(binary.LittleEndian.Uint16(buf[off:]))
		off += 2
		if off+kl+24 > len(buf) {
			return nil, fmt.Errorf("%w: toc record %d truncated", ErrCorrupt, i)
		}
		key := string(buf[off : off+kl])
		off += kl
		e := extent{
			offset:   int64(binary.LittleEndian.Uint64(buf[off:])),
			length:   int64(binary.LittleEndian.Uint64(buf[off+8:])),
			capacity: int64(binary.LittleEndian.Uint64(buf[off+16:])),
		}
		off += 24
		if e.offset < 0 || e.length < 0 || e.length > e.capacity || e.offset+e.capacity > limit {
			return nil, fmt.Errorf("%w: entry %q out of bounds", ErrCorrupt, key)
		}
		toc[key] = e
	}
	return toc, nil
}

// readTOC loads the table of contents of a closed unit file. An empty file
// has an empty TOC. It returns the TOC and the end of the payload region.
func readTOC(f fs.File) (map[string]extent, int64, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, 0, err
	}
	size := info.Size()
	if size == 0 {
		return map[string]extent{}, 0, nil
	}
	if size < trailerSize {
		return nil, 0, fmt.Errorf("%w: %d bytes, no trailer", ErrCorrupt, size)
	}

	var tr [trailerSize]byte
	if _, err := f.ReadAt(tr[:], size-trailerSize); err != nil && err != io.EOF {
		return nil, 0, err
	}
	if binary.LittleEndian.Uint32(tr[12:]) != unitMagic {
		return nil, 0, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	tocOff := int64(binary.LittleEndian.Uint64(tr[0:]))
	if tocOff < 0 || tocOff > size-trailerSize {
		return nil, 0, fmt.Errorf("%w: toc offset %d", ErrCorrupt, tocOff)
	}

	raw := make([]byte, size-trailerSize-tocOff)
	if _, err := f.ReadAt(raw, tocOff); err != nil && err != io.EOF {
		return nil, 0, err
	}
	if !hash.Verify(raw, binary.LittleEndian.Uint32(tr[8:])) {
		return nil, 0, fmt.Errorf("%w: toc checksum mismatch", ErrCorrupt)
	}
	toc, err := decodeTOC(raw, tocOff)
	if err != nil {
		return nil, 0, err
	}
	return toc, tocOff, nil
}

// writeTOC appends the TOC and trailer at end and truncates the file after them.
func writeTOC(f fs.File, toc map[string]extent, end int64) error {
	raw := encodeTOC(toc)
	buf := make([]byte, len(raw)+trailerSize)
	copy(buf, raw)
	binary.LittleEndian.PutUint64(buf[len(raw):], uint64(end))
	binary.LittleEndian.PutUint32(buf[len(raw)+8:], hash.CRC32C(raw))
	binary.LittleEndian.PutUint32(buf[len(raw)+12:], unitMagic)

	if _, err := f.WriteAt(buf, end); err != nil {
		return err
	}
	if err := f.Truncate(end + int64(len(buf))); err != nil {
		return err
	}
	return f.Sync()
}
