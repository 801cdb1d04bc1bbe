package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/symtensor/internal/hash"
	"github.com/hupe1980/symtensor/linalg"
)

// ErrCorrupt is returned for tiles that fail validation.
var ErrCorrupt = errors.New("codec: corrupt tile")

// ErrKindMismatch is returned when a tile is decoded as the wrong element type.
var ErrKindMismatch = errors.New("codec: element kind mismatch")

const (
	tileMagic   = 0x5444 // "DT"
	tileVersion = 1

	// magic u16, version u8, kind u8, compression u8, pad u8, rows u32, cols u32, crc u32
	tileHeaderSize = 20
)

// Header describes an encoded tile.
type Header struct {
	Kind        linalg.Kind
	Compression Compression
	Rows, Cols  int
}

// Bytes returns the decoded payload size.
func (h Header) Bytes() int {
	return h.Rows * h.Cols * h.Kind.Size()
}

// EncodeTile serializes a rows x cols row-major block.
func EncodeTile[T linalg.Real](rows, cols int, data []T, c Compression) ([]byte, error) {
	if rows < 0 || cols < 0 || rows*cols != len(data) {
		return nil, fmt.Errorf("codec: %d elements for a %dx%d tile", len(data), rows, cols)
	}
	kind := linalg.KindOf[T]()
	raw := make([]byte, len(data)*kind.Size())
	putReals(raw, data)

	body, err := Compress(raw, c)
	if err != nil {
		return nil, err
	}

	out := make([]byte, tileHeaderSize+len(body))
	binary.LittleEndian.PutUint16(out[0:], tileMagic)
	out[2] = tileVersion
	out[3] = byte(kind)
	out[4] = byte(c)
	binary.LittleEndian.PutUint32(out[6:], uint32(rows))
	binary.LittleEndian.PutUint32(out[10:], uint32(cols))
	binary.LittleEndian.PutUint32(out[14:], hash.CRC32C(body))
	copy(out[tileHeaderSize:], body)
	return out, nil
}

// ReadHeader validates and returns the header of an encoded tile.
func ReadHeader(buf []byte) (Header, error) {
	if len(buf) < tileHeaderSize {
		return Header{}, fmt.Errorf("%w: short header", ErrCorrupt)
	}
	if binary.LittleEndian.Uint16(buf[0:]) != tileMagic || buf[2] != tileVersion {
		return Header{}, fmt.Errorf("%w: bad magic or version", ErrCorrupt)
	}
	h := Header{
		Kind:        linalg.Kind(buf[3]),
		Compression: Compression(buf[4]),
		Rows:        int(binary.LittleEndian.Uint32(buf[6:])),
		Cols:        int(binary.LittleEndian.Uint32(buf[10:])),
	}
	if h.Kind != linalg.KindFloat32 && h.Kind != linalg.KindFloat64 {
		return Header{}, fmt.Errorf("%w: element kind %d", ErrCorrupt, buf[3])
	}
	return h, nil
}

// DecodeTile deserializes a tile written by EncodeTile with the same T.
func DecodeTile[T linalg.Real](buf []byte) (Header, []T, error) {
	h, err := ReadHeader(buf)
	if err != nil {
		return Header{}, nil, err
	}
	if want := linalg.KindOf[T](); h.Kind != want {
		return Header{}, nil, fmt.Errorf("%w: tile holds %v, want %v", ErrKindMismatch, h.Kind, want)
	}
	body := buf[tileHeaderSize:]
	if !hash.Verify(body, binary.LittleEndian.Uint32(buf[14:])) {
		return Header{}, nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}
	raw, err := Decompress(body, h.Compression)
	if err != nil {
		return Header{}, nil, err
	}
	if len(raw) != h.Bytes() {
		return Header{}, nil, fmt.Errorf("%w: payload %d bytes, want %d", ErrCorrupt, len(raw), h.Bytes())
	}
	data := make([]T, h.Rows*h.Cols)
	getReals(data, raw)
	return h, data, nil
}

func putReals[T linalg.Real](dst []byte, src []T) {
	switch s := any(src).(type) {
	case []float64:
		for i, v := range s {
			binary.LittleEndian.PutUint64(dst[i*8:], math.Float64bits(v))
		}
	case []float32:
		for i, v := range s {
			binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
		}
	}
}

func getReals[T linalg.Real](dst []T, src []byte) {
	switch d := any(dst).(type) {
	case []float64:
		for i := range d {
			d[i] = math.Float64frombits(binary.LittleEndian.Uint64(src[i*8:]))
		}
	case []float32:
		for i := range d {
			d[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
		}
	}
}
