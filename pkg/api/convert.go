package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/james-see/svsbridge/pkg/converter"
)

// WarningHeader carries one conversion warning per header value
const WarningHeader = "X-Conversion-Warning"

// handleConvert godoc
// @Summary Convert a project
// @Description Upload a project file and receive it in another format
// @Tags convert
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true "Project file to convert"
// @Param to query string true "Target format (midi, yaml)"
// @Param from query string false "Source format, detected when omitted"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/convert [post]
func (s *Server) handleConvert(c *gin.Context) {
	to := converter.Format(c.Query("to"))
	if to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing target format"})
		return
	}

	// Get uploaded file
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	in, err := readUpload(header.Filename, file, converter.Format(c.Query("from")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, finish := s.metrics.StartTransaction(c.Request.Context(), "api.convert")
	defer finish()

	start := time.Now()
	result, err := s.conv.Convert(in.Data, in.Format, to)
	s.metrics.RecordConversion(ctx, string(in.Format), string(to), warningCount(result), time.Since(start), err)
	if err != nil {
		abortWithError(c, err)
		return
	}

	sendResult(c, result, outputName(header.Filename, to))
}

// handleMerge godoc
// @Summary Merge projects
// @Description Upload several project files and receive them merged into one
// @Tags convert
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param files formData file true "Project files, first one wins tempo and meter"
// @Param to query string true "Target format (midi, yaml)"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/merge [post]
func (s *Server) handleMerge(c *gin.Context) {
	to := converter.Format(c.Query("to"))
	if to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing target format"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files uploaded"})
		return
	}

	var inputs []converter.Input
	for _, fh := range form.File["files"] {
		file, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
			return
		}
		in, err := readUpload(fh.Filename, file, "")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		inputs = append(inputs, in)
	}

	ctx, finish := s.metrics.StartTransaction(c.Request.Context(), "api.merge")
	defer finish()

	start := time.Now()
	result, err := s.conv.Merge(inputs, to)
	s.metrics.RecordConversion(ctx, "merge", string(to), warningCount(result), time.Since(start), err)
	if err != nil {
		abortWithError(c, err)
		return
	}

	sendResult(c, result, outputName("merged", to))
}

func readUpload(name string, file multipart.File, format converter.Format) (converter.Input, error) {
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return converter.Input{}, fmt.Errorf("failed to read %s", name)
	}
	if format == "" {
		format = converter.DetectFormat(name)
	}
	if format == converter.FormatUnknown {
		format = converter.DetectFormatFromContent(data)
	}
	if format == converter.FormatUnknown {
		return converter.Input{}, fmt.Errorf("cannot determine the format of %s", name)
	}
	return converter.Input{Name: name, Data: data, Format: format}, nil
}

func warningCount(result *converter.Result) int {
	if result == nil {
		return 0
	}
	return len(result.Warnings)
}

func sendResult(c *gin.Context, result *converter.Result, filename string) {
	for _, w := range result.Warnings {
		c.Writer.Header().Add(WarningHeader, w.String())
	}

	// Set content type and headers
	var contentType string
	switch result.Format {
	case converter.FormatMIDI:
		contentType = "audio/midi"
	case converter.FormatYAML:
		contentType = "application/yaml"
	default:
		contentType = "application/octet-stream"
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, contentType, result.Data)
}

func outputName(inputName string, to converter.Format) string {
	base := strings.TrimSuffix(filepath.Base(inputName), filepath.Ext(inputName))
	if base == "" || base == "." {
		base = "converted"
	}
	switch to {
	case converter.FormatMIDI:
		return base + ".mid"
	case converter.FormatYAML:
		return base + ".yaml"
	default:
		return base + "." + string(to)
	}
}
