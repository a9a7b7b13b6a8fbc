// Package molecule implements the strict subset of the molecule serialization
// used by lock scripts and cells: tables, dynamic vectors, fixed vectors and
// little-endian integers. Parsing never copies: returned elements are sub-slices
// of the input, so the input must be treated as immutable.
package molecule

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// always littleendian
var byteOrder = binary.LittleEndian

// HeaderSize is the size of the total_size/item_count header and of each offset
const HeaderSize = 4

var (
	ErrHeader     = errors.New("molecule: header is too short")
	ErrTotalSize  = errors.New("molecule: total size mismatch")
	ErrOffset     = errors.New("molecule: wrong offset")
	ErrFieldCount = errors.New("molecule: wrong field count")
	ErrItemSize   = errors.New("molecule: wrong item size")
)

func PackUint32(v uint32) []byte {
	var ret [4]byte
	byteOrder.PutUint32(ret[:], v)
	return ret[:]
}

func PackUint64(v uint64) []byte {
	var ret [8]byte
	byteOrder.PutUint64(ret[:], v)
	return ret[:]
}

func Uint32(data []byte) (uint32, error) {
	if len(data) != 4 {
		return 0, fmt.Errorf("%w: expected 4 bytes, got %d", ErrItemSize, len(data))
	}
	return byteOrder.Uint32(data), nil
}

func Uint64(data []byte) (uint64, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("%w: expected 8 bytes, got %d", ErrItemSize, len(data))
	}
	return byteOrder.Uint64(data), nil
}

// TotalSize reads the size header of a table or dynvec. It does not check it against len(data)
func TotalSize(data []byte) (int, error) {
	if len(data) < HeaderSize {
		return 0, ErrHeader
	}
	return int(byteOrder.Uint32(data[:HeaderSize])), nil
}

// ParseTable parses a table with exactly fieldCount fields
func ParseTable(data []byte, fieldCount int) ([][]byte, error) {
	ret, err := parseOffsets(data)
	if err != nil {
		return nil, err
	}
	if len(ret) != fieldCount {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrFieldCount, fieldCount, len(ret))
	}
	return ret, nil
}

// ParseDynVec parses a vector of variable size items
func ParseDynVec(data []byte) ([][]byte, error) {
	return parseOffsets(data)
}

// parseOffsets is common to tables and dynvecs: total_size, offsets, then the items
func parseOffsets(data []byte) ([][]byte, error) {
	total, err := TotalSize(data)
	if err != nil {
		return nil, err
	}
	if total != len(data) {
		return nil, fmt.Errorf("%w: header says %d, got %d bytes", ErrTotalSize, total, len(data))
	}
	if total == HeaderSize {
		return [][]byte{}, nil
	}
	if total < 2*HeaderSize {
		return nil, ErrHeader
	}
	first := int(byteOrder.Uint32(data[HeaderSize : 2*HeaderSize]))
	if first%HeaderSize != 0 || first < 2*HeaderSize || first > total {
		return nil, fmt.Errorf("%w: first offset %d", ErrOffset, first)
	}
	n := first/HeaderSize - 1
	offsets := make([]int, n+1)
	for i := 0; i < n; i++ {
		pos := HeaderSize * (i + 1)
		offsets[i] = int(byteOrder.Uint32(data[pos : pos+HeaderSize]))
	}
	offsets[n] = total
	ret := make([][]byte, n)
	for i := 0; i < n; i++ {
		if offsets[i] > offsets[i+1] {
			return nil, fmt.Errorf("%w: offset #%d (%d) is after offset #%d (%d)", ErrOffset, i, offsets[i], i+1, offsets[i+1])
		}
		ret[i] = data[offsets[i]:offsets[i+1]]
	}
	return ret, nil
}

// ParseFixVec parses a vector of items of the same fixed size
func ParseFixVec(data []byte, itemSize int) ([][]byte, error) {
	if len(data) < HeaderSize {
		return nil, ErrHeader
	}
	n := int(byteOrder.Uint32(data[:HeaderSize]))
	if itemSize <= 0 || (len(data)-HeaderSize)%itemSize != 0 || (len(data)-HeaderSize)/itemSize != n {
		return nil, fmt.Errorf("%w: %d items of %d bytes do not fit into %d bytes", ErrTotalSize, n, itemSize, len(data))
	}
	ret := make([][]byte, n)
	for i := range ret {
		pos := HeaderSize + i*itemSize
		ret[i] = data[pos : pos+itemSize]
	}
	return ret, nil
}

// ParseBytes parses the 'Bytes' type, a fixvec of bytes
func ParseBytes(data []byte) ([]byte, error) {
	if len(data) < HeaderSize {
		return nil, ErrHeader
	}
	n := int(byteOrder.Uint32(data[:HeaderSize]))
	if n != len(data)-HeaderSize {
		return nil, fmt.Errorf("%w: 'Bytes' header says %d, got %d", ErrTotalSize, n, len(data)-HeaderSize)
	}
	return data[HeaderSize:], nil
}

func PackBytes(data []byte) []byte {
	ret := make([]byte, HeaderSize, HeaderSize+len(data))
	byteOrder.PutUint32(ret, uint32(len(data)))
	return append(ret, data...)
}

func PackFixVec(items ...[]byte) []byte {
	ret := PackUint32(uint32(len(items)))
	for _, it := range items {
		ret = append(ret, it...)
	}
	return ret
}

// PackTable serializes fields as a table. PackDynVec produces the same layout
func PackTable(fields ...[]byte) []byte {
	headerLen := HeaderSize * (len(fields) + 1)
	total := headerLen
	for _, f := range fields {
		total += len(f)
	}
	ret := make([]byte, headerLen, total)
	byteOrder.PutUint32(ret[:HeaderSize], uint32(total))
	offset := headerLen
	for i, f := range fields {
		pos := HeaderSize * (i + 1)
		byteOrder.PutUint32(ret[pos:pos+HeaderSize], uint32(offset))
		offset += len(f)
	}
	for _, f := range fields {
		ret = append(ret, f...)
	}
	return ret
}

func PackDynVec(items ...[]byte) []byte {
	return PackTable(items...)
}
