package compression

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/jcoene/lzss/internal/compression/algorithms/lzss"
)

// SupportedAlgorithms contains all supported container formats
var SupportedAlgorithms = []string{
	"lzss",
}

// DefaultAlgorithm is used when Options.Algorithm is empty
const DefaultAlgorithm = "lzss"

// ErrDeclaredSizeTooLarge is returned when a header asks for more output than allowed
var ErrDeclaredSizeTooLarge = errors.New("declared size exceeds limit")

// Options contains decompression options
type Options struct {
	Algorithm string
	// PassThrough returns input without a recognised header unchanged instead of failing.
	PassThrough bool
	// MaxOutputSize refuses headers declaring more bytes than this. Zero means no limit.
	MaxOutputSize uint32
	Tracer        lzss.Tracer
}

// Stats contains decompression statistics
type Stats struct {
	OriginalSize     int
	ProcessedSize    int
	ConsumedSize     int
	CompressionRatio float64
	Algorithm        string
	PassedThrough    bool
}

// HeaderInfo describes the leading header of a buffer
type HeaderInfo struct {
	Algorithm  string
	Compressed bool
	Magic      uint32
	ActualSize uint32
	InputSize  int
}

// AlgorithmFactory defines the interface for container decoders
type AlgorithmFactory interface {
	NewDecompressionReaderAndWriter(options Options) (io.ReadCloser, io.WriteCloser)
	DeclaredSize(data []byte) (uint32, error)
	NotCompressed(err error) bool
}

// factoryMap maps algorithm names to their factories
var factoryMap = map[string]AlgorithmFactory{
	"lzss": &LZSSFactory{},
}

type LZSSFactory struct{}

func (f *LZSSFactory) NewDecompressionReaderAndWriter(options Options) (io.ReadCloser, io.WriteCloser) {
	return lzss.NewDecompressionReaderAndWriter(&lzss.Options{Tracer: options.Tracer})
}
func (f *LZSSFactory) DeclaredSize(data []byte) (uint32, error) {
	return lzss.GetActualSize(data)
}
func (f *LZSSFactory) NotCompressed(err error) bool {
	return errors.Is(err, lzss.ErrNotCompressed)
}

// IsValidAlgorithm checks if the provided algorithm is supported
func IsValidAlgorithm(algorithm string) bool {
	_, exists := factoryMap[algorithmOrDefault(algorithm)]
	return exists
}

// GetSupportedAlgorithms returns a list of supported algorithms
func GetSupportedAlgorithms() []string {
	return append([]string{}, SupportedAlgorithms...)
}

func algorithmOrDefault(algorithm string) string {
	if algorithm == "" {
		return DefaultAlgorithm
	}
	return algorithm
}

// Inspect reads the header of data without decoding the payload.
// Input that is not compressed is reported through HeaderInfo, not as an error.
func Inspect(data []byte, options Options) (*HeaderInfo, error) {
	algorithm := algorithmOrDefault(options.Algorithm)
	factory, ok := factoryMap[algorithm]
	if !ok {
		return nil, fmt.Errorf("unsupported algorithm: %s", options.Algorithm)
	}

	info := &HeaderInfo{Algorithm: algorithm, InputSize: len(data)}
	if len(data) >= 4 {
		info.Magic = binary.LittleEndian.Uint32(data[0:4])
	}

	size, err := factory.DeclaredSize(data)
	switch {
	case err == nil:
		info.Compressed = true
		info.ActualSize = size
	case factory.NotCompressed(err):
	default:
		return nil, err
	}
	return info, nil
}

// Decompress decompresses data using the specified algorithm
func Decompress(data []byte, options Options) ([]byte, *Stats, error) {
	algorithm := algorithmOrDefault(options.Algorithm)
	factory, ok := factoryMap[algorithm]
	if !ok {
		return nil, nil, fmt.Errorf("unsupported algorithm: %s", options.Algorithm)
	}

	stats := &Stats{
		OriginalSize: len(data),
		Algorithm:    algorithm,
	}

	size, err := factory.DeclaredSize(data)
	if err != nil {
		if options.PassThrough && factory.NotCompressed(err) {
			stats.ProcessedSize = len(data)
			stats.ConsumedSize = len(data)
			stats.PassedThrough = true
			if len(data) > 0 {
				stats.CompressionRatio = 100
			}
			return append([]byte{}, data...), stats, nil
		}
		return nil, nil, fmt.Errorf("decompression failed: %w", err)
	}
	if options.MaxOutputSize > 0 && size > options.MaxOutputSize {
		return nil, nil, fmt.Errorf("%w: %d > %d", ErrDeclaredSizeTooLarge, size, options.MaxOutputSize)
	}

	reader, writer := factory.NewDecompressionReaderAndWriter(options)

	decompressedData, err := processData(data, reader, writer)
	if err != nil {
		return nil, nil, fmt.Errorf("decompression failed: %w", err)
	}

	stats.ProcessedSize = len(decompressedData)
	stats.ConsumedSize = len(data)
	if c, ok := writer.(interface{ Consumed() int }); ok {
		stats.ConsumedSize = c.Consumed()
	}
	if len(decompressedData) > 0 {
		stats.CompressionRatio = float64(len(data)) / float64(len(decompressedData)) * 100
	}

	return decompressedData, stats, nil
}

// processData writes the whole input, closes the writer to run the decoder,
// then drains the reader
func processData(inputData []byte, reader io.ReadCloser, writer io.WriteCloser) ([]byte, error) {
	defer reader.Close()

	if _, err := writer.Write(inputData); err != nil {
		return nil, fmt.Errorf("failed to write data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	return io.ReadAll(reader)
}
