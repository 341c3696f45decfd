// Package analyzer turns uploaded soil test reports into measurements. Image
// and PDF reports go to a vision model; text, CSV, and spreadsheet exports are
// parsed locally. Every value passes soil range validation before it is
// returned.
package analyzer

import (
	"context"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/i474232898/lawn-tracker/internal/lawn"
)

// Document is an uploaded report.
type Document struct {
	Name      string
	MediaType string
	Data      []byte
}

// Analyzer extracts a measurement from a document. The returned measurement
// has no ID or date; the caller assigns them when it is stored.
type Analyzer interface {
	Analyze(ctx context.Context, doc Document) (lawn.SoilMeasurement, error)
}

// Format is the family a document belongs to.
type Format string

const (
	FormatImage       Format = "image"
	FormatPDF         Format = "pdf"
	FormatText        Format = "text"
	FormatSpreadsheet Format = "spreadsheet"
	FormatUnknown     Format = ""
)

const (
	mediaTypePDF  = "application/pdf"
	mediaTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ResolvedMediaType is the declared media type of doc, falling back to its
// file extension and then its content.
func (doc Document) ResolvedMediaType() string {
	if mt, _, err := mime.ParseMediaType(doc.MediaType); err == nil && mt != "application/octet-stream" {
		return mt
	}
	switch strings.ToLower(filepath.Ext(doc.Name)) {
	case ".pdf":
		return mediaTypePDF
	case ".xlsx":
		return mediaTypeXLSX
	case ".csv":
		return "text/csv"
	case ".txt":
		return "text/plain"
	}
	if mt := mime.TypeByExtension(filepath.Ext(doc.Name)); mt != "" {
		if parsed, _, err := mime.ParseMediaType(mt); err == nil {
			return parsed
		}
	}
	if len(doc.Data) > 0 {
		mt, _, _ := mime.ParseMediaType(http.DetectContentType(doc.Data))
		return mt
	}
	return ""
}

// DetectFormat reports which family doc belongs to.
func DetectFormat(doc Document) Format {
	ext := strings.ToLower(filepath.Ext(doc.Name))
	mt := doc.ResolvedMediaType()
	switch {
	case strings.HasPrefix(mt, "image/"):
		return FormatImage
	case mt == mediaTypePDF || ext == ".pdf":
		return FormatPDF
	case mt == mediaTypeXLSX || ext == ".xlsx":
		return FormatSpreadsheet
	case ext == ".txt" || ext == ".csv" || mt == "text/plain" || mt == "text/csv":
		return FormatText
	}
	return FormatUnknown
}

// visionMediaTypes are the image types accepted by both vision providers.
var visionMediaTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

const prompt = `Please analyze this soil test report and provide both the data extraction and recommendations.

Extract the following values:
{
  "pH": number,
  "nitrogen": number (ppm),
  "phosphorus": number (ppm),
  "potassium": number (ppm),
  "calcium": number (ppm),
  "magnesium": number (ppm),
  "organicMatter": number (percent)
}
If a value is not found or unclear, use null.

Base recommendations on these ranges:
- pH 6.0-7.0
- Nitrogen 20-60 ppm
- Phosphorus 10-40 ppm
- Potassium 100-300 ppm
- Calcium 500-1500 ppm
- Magnesium 50-200 ppm
- Organic matter 2-6%

Return only JSON in exactly this format:
{
  "soilData": { ...extracted values... },
  "recommendations": ["Specific recommendation", "..."],
  "overallAssessment": "Brief overall assessment of soil health",
  "priorityActions": ["Most important action", "Second priority action"]
}

Common label variations:
- pH may be "pH", "pH Level", or a bare number
- Nitrogen may be "N", "Nitrogen", "Total N"
- Phosphorus may be "P", "Phosphorus", "P2O5"
- Potassium may be "K", "Potassium", "K2O"
- Calcium may be "Ca", "Calcium"
- Magnesium may be "Mg", "Magnesium"
- Organic matter may be "OM", "Organic Matter", "Organic Carbon"`
