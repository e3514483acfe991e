package lzss

import (
	"encoding/binary"
	"fmt"
)

// ParseHeader reads the container header at the start of buf.
// A wrong magic yields ErrNotCompressed even when buf is shorter than a full header.
func ParseHeader(buf []byte) (Header, error) {
	if len(buf) < 4 {
		return Header{}, fmt.Errorf("%w: have %d bytes", ErrTruncatedHeader, len(buf))
	}

	id := binary.LittleEndian.Uint32(buf[0:4])
	if id != ID {
		return Header{}, fmt.Errorf("%w: magic 0x%08x, expected 0x%08x", ErrNotCompressed, id, uint32(ID))
	}

	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("%w: have %d bytes", ErrTruncatedHeader, len(buf))
	}

	return Header{
		ID:         id,
		ActualSize: binary.LittleEndian.Uint32(buf[4:8]),
	}, nil
}

// GetActualSize returns the uncompressed size declared by buf's header.
func GetActualSize(buf []byte) (uint32, error) {
	h, err := ParseHeader(buf)
	if err != nil {
		return 0, err
	}
	return h.ActualSize, nil
}

// IsCompressed reports whether buf carries a complete LZSS header.
func IsCompressed(buf []byte) bool {
	_, err := ParseHeader(buf)
	return err == nil
}
