package lzss

import "errors"

var (
	// ErrNotCompressed reports a buffer without the LZSS magic. It is an expected
	// outcome for arbitrary input, not a decode failure.
	ErrNotCompressed        = errors.New("lzss: buffer is not compressed")
	ErrTruncatedHeader      = errors.New("lzss: truncated header")
	ErrTruncatedInput       = errors.New("lzss: unexpected end of token stream")
	ErrInvalidBackReference = errors.New("lzss: back-reference before start of output")
	ErrOutputOverflow       = errors.New("lzss: output exceeds declared size")
	ErrSizeMismatch         = errors.New("lzss: decoded size does not match declared size")
)
