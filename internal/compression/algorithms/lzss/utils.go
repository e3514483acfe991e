package lzss

import "encoding/binary"

const (
	// ID is the container magic, the bytes "LZSS" read as a little-endian uint32.
	ID = 1397971532

	HeaderSize = 8
	LookShift  = 4
	FlagBits   = 8

	// MaxMatch is the longest back-reference a match token can encode.
	MaxMatch = 0x0F + 1
	// MaxPosition is the largest 12-bit position; it reaches MaxPosition+1 bytes back.
	MaxPosition = 1<<12 - 1
)

// Header is the fixed prefix of every compressed blob.
type Header struct {
	ID         uint32
	ActualSize uint32
}

// Bytes encodes h in its on-disk layout.
func (h Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(b[0:4], h.ID)
	binary.LittleEndian.PutUint32(b[4:8], h.ActualSize)
	return b
}

func splitMatch(b0, b1 byte) (position, rawLength int) {
	position = int(b0)<<LookShift | int(b1>>LookShift)
	rawLength = int(b1 & 0x0F)
	return position, rawLength
}
