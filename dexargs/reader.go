package dexargs

import (
	"encoding/binary"

	"lukechampine.com/uint128"
)

// reader is a cursor over the argument buffer. Every read advances by the declared
// width or fails with a DecodeError, the buffer itself is never indexed directly
type reader struct {
	buf []byte
	pos int
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) remaining() int {
	return len(r.buf) - r.pos
}

// next takes n bytes. Returned slice shares the buffer
func (r *reader) next(n int, field string) ([]byte, error) {
	if n < 0 || n > r.remaining() {
		return nil, newError(TooShort, "%s needs %d bytes, %d left", field, n, r.remaining())
	}
	ret := r.buf[r.pos : r.pos+n]
	r.pos += n
	return ret, nil
}

// peekUint32LE reads the little-endian size header without advancing
func (r *reader) peekUint32LE(field string) (uint32, error) {
	if r.remaining() < 4 {
		return 0, newError(MalformedFixedWidth, "%s size header needs 4 bytes, %d left", field, r.remaining())
	}
	return binary.LittleEndian.Uint32(r.buf[r.pos : r.pos+4]), nil
}

func (r *reader) readByte(field string) (byte, error) {
	b, err := r.next(1, field)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) readUint128BE(field string) (uint128.Uint128, error) {
	b, err := r.next(16, field)
	if err != nil {
		return uint128.Zero, err
	}
	return uint128.FromBytesBE(b), nil
}

func (r *reader) readFingerprint(field string) (ret [FingerprintSize]byte, err error) {
	if r.remaining() != FingerprintSize {
		err = newError(MalformedFixedWidth, "%s must be exactly %d bytes, got %d", field, FingerprintSize, r.remaining())
		return
	}
	b, _ := r.next(FingerprintSize, field)
	copy(ret[:], b)
	return
}

// rest takes everything left
func (r *reader) rest() []byte {
	ret := r.buf[r.pos:]
	r.pos = len(r.buf)
	return ret
}
