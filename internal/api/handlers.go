package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jcoene/lzss/internal/compression"
	"github.com/jcoene/lzss/internal/compression/algorithms/lzss"
	"github.com/jcoene/lzss/internal/config"
)

// DecompressRequest represents the decompression request payload
type DecompressRequest struct {
	Algorithm   string `form:"algorithm"`
	PassThrough *bool  `form:"passthrough,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// InspectResponse describes the header of an uploaded file
type InspectResponse struct {
	Algorithm        string `json:"algorithm"`
	Filename         string `json:"filename"`
	Compressed       bool   `json:"compressed"`
	Magic            string `json:"magic"`
	InputSize        int    `json:"input_size"`
	UncompressedSize uint32 `json:"uncompressed_size"`
}

// HandleDecompress handles file decompression requests
func HandleDecompress(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DecompressRequest
		if err := c.ShouldBind(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid request", err.Error())
			return
		}

		if !validateAlgorithm(c, req.Algorithm) {
			return
		}

		fileContent, header, ok := readUpload(c, cfg)
		if !ok {
			return
		}

		options := compression.Options{
			Algorithm:     req.Algorithm,
			PassThrough:   cfg.PassThrough,
			MaxOutputSize: cfg.MaxOutputSize,
		}
		if req.PassThrough != nil {
			options.PassThrough = *req.PassThrough
		}
		if cfg.Trace {
			options.Tracer = newTraceLogger(gin.DefaultWriter, header.Filename)
		}

		decompressedData, stats, err := compression.Decompress(fileContent, options)
		if err != nil {
			abortWithError(c, statusForDecodeError(err), "Decompression failed", err.Error())
			return
		}

		// Set response headers for file download
		filename := fmt.Sprintf("%s_decompressed.bin", getBaseFilename(header.Filename))
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
		c.Header("X-Original-Size", strconv.Itoa(stats.OriginalSize))
		c.Header("X-Decompressed-Size", strconv.Itoa(stats.ProcessedSize))
		c.Header("X-Passed-Through", strconv.FormatBool(stats.PassedThrough))

		c.Data(http.StatusOK, "application/octet-stream", decompressedData)
	}
}

// HandleInspect reports the header of an uploaded file without decoding it
func HandleInspect(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DecompressRequest
		if err := c.ShouldBind(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid request", err.Error())
			return
		}

		if !validateAlgorithm(c, req.Algorithm) {
			return
		}

		fileContent, header, ok := readUpload(c, cfg)
		if !ok {
			return
		}

		info, err := compression.Inspect(fileContent, compression.Options{Algorithm: req.Algorithm})
		if err != nil {
			abortWithError(c, statusForDecodeError(err), "Inspection failed", err.Error())
			return
		}

		c.JSON(http.StatusOK, InspectResponse{
			Algorithm:        info.Algorithm,
			Filename:         header.Filename,
			Compressed:       info.Compressed,
			Magic:            fmt.Sprintf("0x%08x", info.Magic),
			InputSize:        info.InputSize,
			UncompressedSize: info.ActualSize,
		})
	}
}

// HandleInfo provides information about supported algorithms
func HandleInfo(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		info := map[string]interface{}{
			"service": "LZSS Asset Decompression Service",
			"version": "1.0.0",
			"algorithms": map[string]interface{}{
				"supported": compression.GetSupportedAlgorithms(),
				"descriptions": map[string]string{
					"lzss": fmt.Sprintf("LZSS container: magic 0x%08x, little-endian size, 12-bit position / 4-bit length tokens", uint32(lzss.ID)),
				},
			},
			"limits": map[string]interface{}{
				"max_file_size":   fmt.Sprintf("%d bytes (%.1f MB)", cfg.MaxFileSize, float64(cfg.MaxFileSize)/(1024*1024)),
				"max_output_size": fmt.Sprintf("%d bytes (%.1f MB)", cfg.MaxOutputSize, float64(cfg.MaxOutputSize)/(1024*1024)),
			},
			"passthrough": cfg.PassThrough,
			"endpoints": map[string]interface{}{
				"decompress": "POST /api/v1/decompress - Upload file for decompression",
				"inspect":    "POST /api/v1/inspect - Read the container header",
				"info":       "GET /info - Get service information",
				"health":     "GET /health - Health check",
			},
		}

		c.JSON(http.StatusOK, info)
	}
}

// HandleHealth provides a simple health check endpoint
func HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "lzss-service",
	})
}

func abortWithError(c *gin.Context, code int, title, message string) {
	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   title,
		Code:    code,
		Message: message,
	})
}

func validateAlgorithm(c *gin.Context, algorithm string) bool {
	if compression.IsValidAlgorithm(algorithm) {
		return true
	}
	abortWithError(c, http.StatusBadRequest, "Invalid algorithm",
		fmt.Sprintf("Supported algorithms: %v", compression.GetSupportedAlgorithms()))
	return false
}

// readUpload reads the "file" form field, enforcing the configured size limit
func readUpload(c *gin.Context, cfg *config.Config) ([]byte, *multipart.FileHeader, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "File upload error", "No file provided or file upload failed")
		return nil, nil, false
	}
	defer file.Close()

	if header.Size > cfg.MaxFileSize {
		abortWithError(c, http.StatusRequestEntityTooLarge, "File too large",
			fmt.Sprintf("Maximum file size is %d bytes", cfg.MaxFileSize))
		return nil, nil, false
	}

	fileContent, err := io.ReadAll(file)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "File read error", "Failed to read uploaded file")
		return nil, nil, false
	}
	return fileContent, header, true
}

func statusForDecodeError(err error) int {
	switch {
	case errors.Is(err, compression.ErrDeclaredSizeTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, lzss.ErrNotCompressed),
		errors.Is(err, lzss.ErrTruncatedHeader),
		errors.Is(err, lzss.ErrTruncatedInput),
		errors.Is(err, lzss.ErrInvalidBackReference),
		errors.Is(err, lzss.ErrOutputOverflow),
		errors.Is(err, lzss.ErrSizeMismatch):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// Helper functions
func getBaseFilename(filename string) string {
	if filename == "" {
		return "file"
	}

	// Remove extension
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '.' {
			return filename[:i]
		}
	}
	return filename
}
