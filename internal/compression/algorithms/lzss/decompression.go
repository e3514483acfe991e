package lzss

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
)

type decompressionCore struct {
	isInputBufferClosed bool
	lock                sync.Mutex
	inputBuffer         io.ReadWriter
	outputBuffer        io.ReadWriter
	options             *Options
	consumed            int
}

type DecompressionWriter struct {
	core *decompressionCore
}

type DecompressionReader struct {
	core *decompressionCore
}

// Write buffers a chunk of the compressed container. Nothing is decoded until Close.
func (dw *DecompressionWriter) Write(data []byte) (int, error) {
	dw.core.lock.Lock()
	defer dw.core.lock.Unlock()
	if dw.core.isInputBufferClosed {
		return 0, errors.New("lzss: write after close")
	}
	return dw.core.inputBuffer.Write(data)
}

// Close decodes everything written so far and makes the result readable.
func (dw *DecompressionWriter) Close() error {
	dw.core.lock.Lock()
	defer dw.core.lock.Unlock()
	if dw.core.isInputBufferClosed {
		return nil
	}
	dw.core.isInputBufferClosed = true
	compressedData, err := io.ReadAll(dw.core.inputBuffer)
	if err != nil {
		return err
	}
	size, err := GetActualSize(compressedData)
	if err != nil {
		return err
	}
	decompressedData, consumed, err := DecodeBlock(compressedData[HeaderSize:], size, dw.core.options)
	if err != nil {
		return err
	}
	dw.core.consumed = HeaderSize + consumed
	_, err = dw.core.outputBuffer.Write(decompressedData)
	return err
}

// Consumed returns how many container bytes the decoder used, header included.
func (dw *DecompressionWriter) Consumed() int {
	dw.core.lock.Lock()
	defer dw.core.lock.Unlock()
	return dw.core.consumed
}

func (dr *DecompressionReader) Read(data []byte) (int, error) {
	dr.core.lock.Lock()
	defer dr.core.lock.Unlock()
	if !dr.core.isInputBufferClosed {
		return 0, errors.New("lzss: decompression input has not been closed")
	}
	return dr.core.outputBuffer.Read(data)
}

func (dr *DecompressionReader) Close() error {
	dr.core.lock.Lock()
	defer dr.core.lock.Unlock()
	if buf, ok := dr.core.inputBuffer.(*bytes.Buffer); ok {
		buf.Reset()
		return nil
	}
	return errors.New("lzss: input buffer is not a *bytes.Buffer")
}

// NewDecompressionReaderAndWriter returns a pair sharing one decoder: write the whole
// container to the writer, close it, then read the decoded bytes from the reader.
func NewDecompressionReaderAndWriter(opts *Options) (io.ReadCloser, io.WriteCloser) {
	if opts == nil {
		opts = DefaultOptions()
	}
	core := &decompressionCore{
		inputBuffer:  new(bytes.Buffer),
		outputBuffer: new(bytes.Buffer),
		options:      opts,
	}
	return &DecompressionReader{core: core}, &DecompressionWriter{core: core}
}

// Uncompress decodes a complete container: header followed by the token stream.
func Uncompress(buf []byte, opts *Options) ([]byte, error) {
	size, err := GetActualSize(buf)
	if err != nil {
		return nil, err
	}
	return Decode(buf[HeaderSize:], size, opts)
}

// Decode decodes a token stream that starts right after the header into a new buffer
// of exactly declaredSize bytes. Bytes after the end-of-stream token are ignored.
func Decode(src []byte, declaredSize uint32, opts *Options) ([]byte, error) {
	out, _, err := DecodeBlock(src, declaredSize, opts)
	return out, err
}

// DecodeBlock is Decode that also returns the number of token-stream bytes consumed,
// end-of-stream token included.
func DecodeBlock(src []byte, declaredSize uint32, opts *Options) ([]byte, int, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	limit, err := outputLimit(declaredSize)
	if err != nil {
		return nil, 0, err
	}
	d := decoder{
		src:    src,
		out:    make([]byte, 0, limit),
		limit:  limit,
		tracer: opts.Tracer,
	}
	if err := d.run(); err != nil {
		return nil, d.pos, err
	}
	return d.out, d.pos, nil
}

// outputLimit converts a declared size to a slice length. Sizes past math.MaxInt
// only occur on 32-bit targets.
func outputLimit(declaredSize uint32) (int, error) {
	if uint64(declaredSize) > math.MaxInt {
		return 0, fmt.Errorf("%w: declared %d exceeds addressable size", ErrOutputOverflow, declaredSize)
	}
	return int(declaredSize), nil
}

// decoder holds the whole decode state: the command byte shift register,
// the read cursor and the output written so far.
type decoder struct {
	src   []byte
	pos   int
	out   []byte
	limit int

	cmdByte  byte
	bitIndex uint8

	tracer Tracer
}

func (d *decoder) run() error {
	for {
		if d.bitIndex == 0 {
			start := d.pos
			b, err := d.readByte()
			if err != nil {
				return err
			}
			d.cmdByte = b
			d.trace(Event{Kind: EventCommand, Input: start, Output: len(d.out), Command: b})
		}
		isMatch := d.cmdByte&0x01 == 1
		d.cmdByte >>= 1
		d.bitIndex = (d.bitIndex + 1) & (FlagBits - 1)

		if !isMatch {
			if err := d.literal(); err != nil {
				return err
			}
			continue
		}

		done, err := d.match()
		if err != nil {
			return err
		}
		if done {
			break
		}
	}

	if len(d.out) != d.limit {
		return fmt.Errorf("%w: decoded %d bytes, declared %d", ErrSizeMismatch, len(d.out), d.limit)
	}
	return nil
}

func (d *decoder) literal() error {
	start := d.pos
	b, err := d.readByte()
	if err != nil {
		return err
	}
	if len(d.out)+1 > d.limit {
		return fmt.Errorf("%w: literal at input offset %d, declared %d", ErrOutputOverflow, start, d.limit)
	}
	d.trace(Event{Kind: EventLiteral, Input: start, Output: len(d.out), Literal: b})
	d.out = append(d.out, b)
	return nil
}

// match decodes one back-reference and reports whether it was the end-of-stream token.
func (d *decoder) match() (bool, error) {
	start := d.pos
	b0, err := d.readByte()
	if err != nil {
		return false, err
	}
	b1, err := d.readByte()
	if err != nil {
		return false, err
	}

	position, rawLength := splitMatch(b0, b1)
	if rawLength == 0 {
		d.trace(Event{Kind: EventEnd, Input: start, Output: len(d.out)})
		return true, nil
	}
	length := rawLength + 1

	source := len(d.out) - position - 1
	if source < 0 {
		return false, fmt.Errorf("%w: position %d at output offset %d", ErrInvalidBackReference, position, len(d.out))
	}
	if len(d.out)+length > d.limit {
		return false, fmt.Errorf("%w: match of %d bytes at output offset %d, declared %d",
			ErrOutputOverflow, length, len(d.out), d.limit)
	}
	d.trace(Event{Kind: EventMatch, Input: start, Output: len(d.out), Position: position, Length: length, Source: source})

	// Byte by byte: when position < length-1 the source runs into bytes this match writes.
	for i := 0; i < length; i++ {
		d.out = append(d.out, d.out[source+i])
	}
	return false, nil
}

func (d *decoder) readByte() (byte, error) {
	if d.pos >= len(d.src) {
		return 0, fmt.Errorf("%w: at input offset %d, output offset %d", ErrTruncatedInput, d.pos, len(d.out))
	}
	b := d.src[d.pos]
	d.pos++
	return b, nil
}

func (d *decoder) trace(e Event) {
	if d.tracer != nil {
		d.tracer.Trace(e)
	}
}
