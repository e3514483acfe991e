/*
Package lzss decodes the LZSS asset container.

Layout: 4-byte magic ID ("LZSS", little-endian 1397971532), 4-byte little-endian
uncompressed size, then the token stream. One command byte governs the next 8 tokens,
least-significant bit first: 0 = literal byte, 1 = match. A match is two bytes holding a
12-bit position and a 4-bit length-1; it copies length bytes starting position+1 bytes
behind the write cursor and may overlap its own output. A match with length nibble 0 ends
the stream.

	size, err := lzss.GetActualSize(buf)
	if errors.Is(err, lzss.ErrNotCompressed) {
		// use buf as is
	}
	out, err := lzss.Decode(buf[lzss.HeaderSize:], size, nil)

Uncompress does both steps in one call.
*/
package lzss
